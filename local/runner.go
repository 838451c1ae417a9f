// Package local talks to the local inference runner: a single daemon that
// hosts either the text model or the image model on the machine's one
// accelerator. Residency is arbitrated by accel.Manager; this package only
// implements the load/free/infer calls.
package local

import (
	"context"
	"errors"
	"fmt"

	"pyro/accel"
	"pyro/helpers"
	"pyro/http/request"
	"pyro/logger"
	"pyro/settings"
)

const gigabyte = 1024 * 1024 * 1024

// Runner is the HTTP client for the local inference daemon. It implements
// accel.TextLoader, accel.ImageLoader and accel.MemoryReporter.
type Runner struct {
	config settings.LocalConfig
}

func NewRunner(config settings.LocalConfig) *Runner {
	return &Runner{config: config}
}

func (r *Runner) url(path string) string {
	return helpers.MakeUrlWithPort(r.config.Url, r.config.Port) + path
}

// loadModel asks the runner to load the named weights.
func (r *Runner) loadModel(ctx context.Context, model string) error {
	req := request.Request{
		Url:     r.url("load"),
		Method:  "POST",
		Headers: []request.Headers{{Key: "Content-Type", Value: "application/json"}},
		Payload: &LoadRequest{Model: model},
	}

	if err := req.Call(ctx, nil); err != nil {
		return fmt.Errorf("could not load model %s: %w", model, err)
	}

	logger.Model(model).Info("Local runner loaded model")
	return nil
}

// free asks the runner to unload everything and reclaim accelerator memory.
// The call blocks until the runner has finished freeing.
func (r *Runner) free(ctx context.Context) error {
	req := request.Request{
		Url:     r.url("free"),
		Method:  "POST",
		Headers: []request.Headers{{Key: "Content-Type", Value: "application/json"}},
		Payload: &FreeRequest{UnloadModels: true, FreeMemory: true},
	}

	if err := req.Call(ctx, nil); err != nil {
		return fmt.Errorf("could not send free request: %w", err)
	}

	logger.Debug("Local runner freed accelerator memory")
	return nil
}

// LoadText implements accel.TextLoader.
func (r *Runner) LoadText(ctx context.Context) (accel.TextModel, error) {
	if r.config.TextModel == "" {
		return nil, errors.New("no local text model configured")
	}
	if err := r.loadModel(ctx, r.config.TextModel); err != nil {
		return nil, err
	}
	return &textModel{runner: r, model: r.config.TextModel}, nil
}

// LoadImage implements accel.ImageLoader.
func (r *Runner) LoadImage(ctx context.Context) (accel.ImageModel, error) {
	if r.config.ImageModel == "" {
		return nil, errors.New("no local image model configured")
	}
	if err := r.loadModel(ctx, r.config.ImageModel); err != nil {
		return nil, err
	}
	return &imageModel{runner: r, model: r.config.ImageModel}, nil
}

// MemoryInfo implements accel.MemoryReporter using the runner's system
// stats endpoint. A machine without an accelerator reports unavailable,
// not zeros.
func (r *Runner) MemoryInfo(ctx context.Context) (accel.MemoryInfo, error) {
	req := request.Request{
		Url:    r.url("system_stats"),
		Method: "GET",
	}

	var stats SystemStats
	if err := req.Call(ctx, &stats); err != nil {
		return accel.MemoryInfo{}, err
	}

	if len(stats.Devices) == 0 {
		return accel.MemoryInfo{}, errors.New("no accelerator device reported")
	}

	device := stats.Devices[0]
	return accel.MemoryInfo{
		Available:   true,
		AllocatedGB: float64(device.TorchVramTotal-device.TorchVramFree) / gigabyte,
		ReservedGB:  float64(device.TorchVramTotal) / gigabyte,
		TotalGB:     float64(device.VramTotal) / gigabyte,
		FreeGB:      float64(device.VramFree) / gigabyte,
	}, nil
}
