package settings

import (
	"pyro/logger"
)

type (
	Config struct {
		Pyro    PyroConfig    `toml:"pyro" validate:"required"`
		ComfyUi ComfyUiConfig `toml:"comfyui"`
		Ollama  OllamaConfig  `toml:"ollama"`
		Gemini  GeminiConfig  `toml:"gemini"`
		Local   LocalConfig   `toml:"local"`
		Logging logger.Config `toml:"logging" validate:"required"`
	}

	// PyroConfig holds the general application settings.
	PyroConfig struct {
		VarsDir      string `toml:"varsDir" validate:"required"`
		OutputDir    string `toml:"outputDir" validate:"required"`
		HistoryDb    string `toml:"historyDb"`
		TextBackend  string `toml:"textBackend" validate:"omitempty,oneof=ollama gemini local"`
		ImageBackend string `toml:"imageBackend" validate:"omitempty,oneof=comfyui local"`
	}

	ComfyUiConfig struct {
		Url            string `toml:"url"`
		Port           int    `toml:"port"`
		WorkflowFile   string `toml:"workflowFile"`
		PromptNode     string `toml:"promptNode"`
		PromptWidget   int    `toml:"promptWidget"`
		SeedNode       string `toml:"seedNode"`
		SeedWidget     int    `toml:"seedWidget"`
		SizeNode       string `toml:"sizeNode"`
		WidthWidget    int    `toml:"widthWidget"`
		HeightWidget   int    `toml:"heightWidget"`
		FreeVramOnDone bool   `toml:"freeVramOnDone"`
	}

	OllamaConfig struct {
		Url          string `toml:"url" validate:"omitempty,url"`
		Port         string `toml:"port"`
		DefaultModel string `toml:"defaultModel"`
	}

	GeminiConfig struct {
		ApiKey string `toml:"apiKey"`
		Model  string `toml:"model"`
	}

	// LocalConfig points at the local inference runner which hosts the
	// text and image models on the single shared accelerator.
	LocalConfig struct {
		Url        string `toml:"url" validate:"omitempty,url"`
		Port       string `toml:"port"`
		TextModel  string `toml:"textModel"`
		ImageModel string `toml:"imageModel"`
		Steps      int    `toml:"steps"`
	}
)
