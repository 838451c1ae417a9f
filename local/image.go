package local

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"pyro/accel"
	"pyro/http/request"
	"pyro/image"
	"pyro/logger"

	"github.com/schollz/progressbar/v3"
)

// imageModel is the loaded image model handle returned by Runner.LoadImage.
type imageModel struct {
	runner *Runner
	model  string
}

// Generate runs one txt2img call on the loaded image model and returns the
// raw image bytes.
func (m *imageModel) Generate(ctx context.Context, req accel.ImageRequest) ([]byte, error) {
	call := request.Request{
		Url:     m.runner.url("sdapi/v1/txt2img"),
		Method:  "POST",
		Headers: []request.Headers{{Key: "Content-Type", Value: "application/json"}},
		Payload: &Txt2ImgRequest{
			Prompt: req.Prompt,
			Seed:   int64(req.Seed),
			Steps:  req.Steps,
			Width:  req.Width,
			Height: req.Height,
		},
	}

	var response Txt2ImgResponse
	if err := call.Call(ctx, &response); err != nil {
		return nil, err
	}

	if len(response.Images) == 0 {
		return nil, errors.New("runner returned no images")
	}

	data, err := base64.StdEncoding.DecodeString(response.Images[0])
	if err != nil {
		return nil, fmt.Errorf("failed to decode image data: %w", err)
	}

	return data, nil
}

func (m *imageModel) Release() error {
	return m.runner.free(context.Background())
}

// ImageGenerator adapts the local runner to the image generation contract,
// acquiring the accelerator through the residency manager on every call.
type ImageGenerator struct {
	manager *accel.Manager
	steps   int
}

func NewImageGenerator(manager *accel.Manager, steps int) *ImageGenerator {
	return &ImageGenerator{manager: manager, steps: steps}
}

func (g *ImageGenerator) Generate(ctx context.Context, req image.Request) (*image.Result, error) {
	handle, err := g.manager.AcquireImage(ctx)
	if err != nil {
		return nil, err
	}

	steps := req.Steps
	if steps == 0 {
		steps = g.steps
	}

	// The runner reports nothing until the image is done, so show an
	// indeterminate spinner rather than per-step progress.
	bar := progressbar.Default(-1, fmt.Sprintf("Generating image (seed: %d)", req.Seed))
	data, err := handle.Generate(ctx, accel.ImageRequest{
		Prompt: req.Prompt,
		Width:  req.Width,
		Height: req.Height,
		Steps:  steps,
		Seed:   req.Seed,
	})
	_ = bar.Finish()
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(req.OutputPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write image: %w", err)
	}

	logger.Info("Image saved", "path", req.OutputPath, "seed", req.Seed)
	return &image.Result{Path: req.OutputPath, Seed: req.Seed}, nil
}
