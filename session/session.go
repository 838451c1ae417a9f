package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pyro/helpers"
	"pyro/history"
	"pyro/image"
	"pyro/logger"
)

type Resolver interface {
	Resolve(ctx context.Context, prompt string, autoGenerate bool) string
}

type Enhancer interface {
	Enhance(ctx context.Context, prompt string, instruction string) (string, error)
}

type Generator interface {
	Generate(ctx context.Context, req image.Request) (*image.Result, error)
}

// Releaser frees the text model between the prompt phase and the
// image phase of a batch, so both never sit on the accelerator at
// once.
type Releaser interface {
	ReleaseText(ctx context.Context) error
}

type Recorder interface {
	Put(rec history.Record) (history.Record, error)
}

// Session drives generation requests end to end. A batch runs in two
// phases: all prompts are resolved and enhanced first, then the text
// model is released and all images are generated.
type Session struct {
	Resolver  Resolver
	Enhancer  Enhancer
	Generator Generator
	Releaser  Releaser
	Recorder  Recorder
	OutputDir string

	seed    *uint32
	size    BatchParams
	now     func() time.Time
	newSeed func() (uint32, error)
}

func New(resolver Resolver, generator Generator) *Session {
	return &Session{
		Resolver:  resolver,
		Generator: generator,
		size:      DefaultBatchParams(),
		now:       time.Now,
		newSeed:   image.GenerateSeed,
	}
}

// PinSeed fixes the seed for following generations until ClearSeed.
func (s *Session) PinSeed(seed uint32) {
	s.seed = &seed
}

func (s *Session) ClearSeed() {
	s.seed = nil
}

func (s *Session) PinnedSeed() (uint32, bool) {
	if s.seed == nil {
		return 0, false
	}
	return *s.seed, true
}

// SetSize changes the default image dimensions. Batch parameters on a
// prompt still override them per request.
func (s *Session) SetSize(width, height int) error {
	if width < 1 || height < 1 {
		return errors.New("width and height must be positive")
	}
	s.size.Width = width
	s.size.Height = height
	return nil
}

func (s *Session) Size() (int, int) {
	return s.size.Width, s.size.Height
}

// Run executes one user request, which may expand to several images.
func (s *Session) Run(ctx context.Context, input string) ([]image.Result, error) {
	promptPart, params := ParseBatchParams(input, s.size)
	base, instruction, enhance := SplitEnhancement(promptPart)

	logger.Info("Resolving prompts", "count", params.Count)
	prompts := make([]string, 0, params.Count)
	for i := 0; i < params.Count; i++ {
		resolved := base
		if s.Resolver != nil {
			resolved = s.Resolver.Resolve(ctx, base, true)
		}
		if enhance {
			if s.Enhancer == nil {
				return nil, errors.New("no text backend configured for prompt enhancement")
			}
			enhanced, err := s.Enhancer.Enhance(ctx, resolved, instruction)
			if err != nil {
				return nil, fmt.Errorf("failed to enhance prompt: %w", err)
			}
			resolved = enhanced
		}
		prompts = append(prompts, resolved)
	}

	if s.Releaser != nil && params.Count > 1 {
		logger.Debug("Releasing text model before image phase")
		if err := s.Releaser.ReleaseText(ctx); err != nil {
			logger.Warn("Error releasing text model", "error", err)
		}
	}

	if s.OutputDir != "" {
		if err := os.MkdirAll(s.OutputDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	logger.Info("Generating images", "count", len(prompts), "width", params.Width, "height", params.Height)
	results := make([]image.Result, 0, len(prompts))
	for i, prompt := range prompts {
		seed, err := s.nextSeed()
		if err != nil {
			return results, err
		}
		req := image.Request{
			Prompt:     prompt,
			Width:      params.Width,
			Height:     params.Height,
			Seed:       seed,
			OutputPath: s.outputPath(seed, prompt),
		}
		result, err := s.Generator.Generate(ctx, req)
		if err != nil {
			return results, fmt.Errorf("failed to generate image %d of %d: %w", i+1, len(prompts), err)
		}
		s.writeSidecar(result.Path, prompt)
		s.record(input, prompt, params, *result)
		results = append(results, *result)
	}

	// A pinned seed covers one request, then reverts to random.
	s.seed = nil

	return results, nil
}

func (s *Session) nextSeed() (uint32, error) {
	if s.seed != nil {
		return *s.seed, nil
	}
	if s.newSeed == nil {
		return image.GenerateSeed()
	}
	return s.newSeed()
}

func (s *Session) outputPath(seed uint32, prompt string) string {
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	name := fmt.Sprintf("pyro_%s_%d", now().Format("20060102_150405"), seed)
	if len(prompt) > 40 {
		prompt = prompt[:40]
	}
	if slug := helpers.CleanFileName(prompt); slug != "" {
		name += "_" + slug
	}
	name += ".png"
	if s.OutputDir == "" {
		return name
	}
	return filepath.Join(s.OutputDir, name)
}

// writeSidecar stores the final prompt next to the image so a result
// can be reproduced later.
func (s *Session) writeSidecar(imagePath, prompt string) {
	sidecar := strings.TrimSuffix(imagePath, filepath.Ext(imagePath)) + ".txt"
	if err := os.WriteFile(sidecar, []byte(prompt+"\n"), 0o644); err != nil {
		logger.Warn("Failed to write prompt sidecar", "path", sidecar, "error", err)
	}
}

func (s *Session) record(input, prompt string, params BatchParams, result image.Result) {
	if s.Recorder == nil {
		return
	}
	_, err := s.Recorder.Put(history.Record{
		RawPrompt:      input,
		ResolvedPrompt: prompt,
		Seed:           result.Seed,
		Width:          params.Width,
		Height:         params.Height,
		ImagePath:      result.Path,
	})
	if err != nil {
		logger.Warn("Failed to record generation", "error", err)
	}
}
