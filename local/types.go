package local

type (
	// API request for the runner's completion endpoint
	CompletionRequest struct {
		Model       string   `json:"model"`
		Prompt      string   `json:"prompt"`
		Temperature float64  `json:"temperature"`
		TopP        float64  `json:"top_p,omitempty"`
		Stop        []string `json:"stop,omitempty"`
		MaxTokens   int      `json:"max_tokens"`
	}

	CompletionResponse struct {
		Object  string             `json:"object"`
		Model   string             `json:"model"`
		Choices []CompletionChoice `json:"choices"`
	}

	CompletionChoice struct {
		Text string `json:"text"`
	}

	Txt2ImgRequest struct {
		Prompt string `json:"prompt"`
		Seed   int64  `json:"seed"`
		Steps  int    `json:"steps"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
	}

	Txt2ImgResponse struct {
		Images []string `json:"images"` // base64 encoded
	}

	LoadRequest struct {
		Model string `json:"model"`
	}

	FreeRequest struct {
		UnloadModels bool `json:"unload_models"`
		FreeMemory   bool `json:"free_memory"`
	}

	SystemStats struct {
		Devices []DeviceStats `json:"devices"`
	}

	DeviceStats struct {
		Name           string `json:"name"`
		VramTotal      int64  `json:"vram_total"`
		VramFree       int64  `json:"vram_free"`
		TorchVramTotal int64  `json:"torch_vram_total"`
		TorchVramFree  int64  `json:"torch_vram_free"`
	}
)
