package local

import (
	"context"
	"errors"
	"strings"

	"pyro/accel"
	"pyro/http/request"
	"pyro/logger"
	"pyro/text"
)

// textModel is the loaded text model handle returned by Runner.LoadText.
type textModel struct {
	runner *Runner
	model  string
}

// Complete runs a single completion on the loaded text model.
func (m *textModel) Complete(ctx context.Context, system string, prompt string) (string, error) {
	fullPrompt := prompt
	if system != "" {
		fullPrompt = system + "\n\n" + prompt
	}

	req := request.Request{
		Url:     m.runner.url("v1/completions"),
		Method:  "POST",
		Headers: []request.Headers{{Key: "Content-Type", Value: "application/json"}},
		Payload: &CompletionRequest{
			Model:       m.model,
			Prompt:      fullPrompt,
			Temperature: 0.7,
			TopP:        0.8,
			MaxTokens:   4096,
		},
	}

	var response CompletionResponse
	if err := req.Call(ctx, &response); err != nil {
		return "", err
	}

	if len(response.Choices) == 0 || response.Choices[0].Text == "" {
		return "", errors.New("no content found")
	}

	return strings.TrimSpace(response.Choices[0].Text), nil
}

func (m *textModel) Release() error {
	return m.runner.free(context.Background())
}

// TextGenerator adapts the local runner to the text generation contract,
// acquiring the accelerator through the residency manager on every call.
type TextGenerator struct {
	manager *accel.Manager
}

func NewTextGenerator(manager *accel.Manager) *TextGenerator {
	return &TextGenerator{manager: manager}
}

// GenerateValues asks the local text model for candidate values for a
// missing prompt variable.
func (g *TextGenerator) GenerateValues(ctx context.Context, variableName string, contextPrompt string, minCount int) ([]string, error) {
	handle, err := g.manager.AcquireText(ctx)
	if err != nil {
		return nil, err
	}

	instruction := text.ValuesInstruction(variableName, contextPrompt, minCount)
	response, err := handle.Complete(ctx, "", instruction)
	if err != nil {
		return nil, err
	}

	values := text.ParseValues(response, minCount)
	if values == nil {
		logger.Variable(variableName).Warn("Could not parse enough values from local model response")
		return nil, errors.New("model returned too few usable values")
	}

	return values, nil
}

// Enhance expands a prompt using the local text model.
func (g *TextGenerator) Enhance(ctx context.Context, prompt string, instruction string) (string, error) {
	handle, err := g.manager.AcquireText(ctx)
	if err != nil {
		return "", err
	}

	userPrompt := "Original prompt: " + text.AppendFullStop(prompt)
	if instruction != "" {
		userPrompt += "\nAdditional instructions: " + text.AppendFullStop(instruction)
	}
	userPrompt += "\n\nEnhanced prompt:"

	return handle.Complete(ctx, text.EnhanceSystemPrompt, userPrompt)
}
