package main

import (
	"context"
	"fmt"

	"pyro/accel"
	"pyro/history"
	"pyro/image/comfyui"
	"pyro/local"
	"pyro/logger"
	"pyro/session"
	"pyro/settings"
	"pyro/text/gemini"
	"pyro/text/ollama"
	"pyro/vars"

	"github.com/joho/godotenv"
)

// textBackend is what both the variable resolver and the session need
// from a text model provider.
type textBackend interface {
	GenerateValues(ctx context.Context, variableName string, contextPrompt string, minCount int) ([]string, error)
	Enhance(ctx context.Context, prompt string, instruction string) (string, error)
}

func newTextBackend(config *settings.Config, manager *accel.Manager) (textBackend, error) {
	switch config.Pyro.TextBackend {
	case "ollama":
		return ollama.NewClient(config.Ollama), nil
	case "gemini":
		return gemini.NewClient(config.Gemini), nil
	case "local":
		return local.NewTextGenerator(manager), nil
	default:
		return nil, fmt.Errorf("unknown text backend: %s", config.Pyro.TextBackend)
	}
}

func newImageBackend(config *settings.Config, manager *accel.Manager) (session.Generator, error) {
	switch config.Pyro.ImageBackend {
	case "comfyui":
		return comfyui.NewGenerator(config.ComfyUi), nil
	case "local":
		return local.NewImageGenerator(manager, config.Local.Steps), nil
	default:
		return nil, fmt.Errorf("unknown image backend: %s", config.Pyro.ImageBackend)
	}
}

// managerReleaser adapts the residency manager to the session's phase
// boundary hook.
type managerReleaser struct {
	manager *accel.Manager
}

func (r managerReleaser) ReleaseText(_ context.Context) error {
	r.manager.ReleaseText()
	return nil
}

func main() {
	// Optional, keeps API keys out of config files.
	_ = godotenv.Load()

	config, err := settings.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}

	logger.Init(config.Logging)
	logger.With("text", config.Pyro.TextBackend, "image", config.Pyro.ImageBackend).Info("Backends configured")

	var manager *accel.Manager
	if config.Pyro.TextBackend == "local" || config.Pyro.ImageBackend == "local" {
		runner := local.NewRunner(config.Local)
		manager = accel.NewManager(runner, runner, runner)
		defer manager.ReleaseAll()
	}

	text, err := newTextBackend(config, manager)
	if err != nil {
		logger.Fatal("Failed to set up text backend", "error", err)
	}

	generator, err := newImageBackend(config, manager)
	if err != nil {
		logger.Fatal("Failed to set up image backend", "error", err)
	}

	hist, err := history.Open(config.Pyro.HistoryDb)
	if err != nil {
		logger.Fatal("Failed to open history database", "error", err)
	}
	defer hist.Close()

	store := vars.NewStore(config.Pyro.VarsDir)

	sess := session.New(vars.NewResolver(store, text), generator)
	sess.Enhancer = text
	sess.Recorder = hist
	sess.OutputDir = config.Pyro.OutputDir
	if manager != nil {
		sess.Releaser = managerReleaser{manager: manager}
	}

	var comfy *comfyui.Generator
	if config.Pyro.ImageBackend == "comfyui" {
		comfy = generator.(*comfyui.Generator)
	}

	sh := &shell{
		session: sess,
		store:   store,
		history: hist,
		manager: manager,
		comfy:   comfy,
	}
	sh.run(context.Background())
}
