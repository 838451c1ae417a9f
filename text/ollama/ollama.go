// Package ollama implements text generation against a running Ollama server.
package ollama

import (
	"context"
	"errors"
	"strings"

	"pyro/helpers"
	"pyro/http/request"
	"pyro/logger"
	"pyro/settings"
	"pyro/text"
)

type Client struct {
	config settings.OllamaConfig
}

func NewClient(config settings.OllamaConfig) *Client {
	return &Client{config: config}
}

// GenerateValues asks the model for candidate values for a missing prompt
// variable. An empty slice with a nil error never happens; parsing failure is
// reported as an error so the resolver treats the variable as unknown.
func (c *Client) GenerateValues(ctx context.Context, variableName string, contextPrompt string, minCount int) ([]string, error) {
	instruction := text.ValuesInstruction(variableName, contextPrompt, minCount)

	response, err := c.SingleRequest(ctx, instruction, "")
	if err != nil {
		return nil, err
	}

	values := text.ParseValues(response, minCount)
	if values == nil {
		logger.Variable(variableName).Warn("Could not parse enough values from model response")
		return nil, errors.New("model returned too few usable values")
	}

	return values, nil
}

// Enhance expands a prompt into a more detailed one for image generation.
func (c *Client) Enhance(ctx context.Context, prompt string, instruction string) (string, error) {
	userPrompt := "Enhance the following prompt: " + text.AppendFullStop(prompt)
	if instruction != "" {
		userPrompt += "\n\nEnhancement instruction: " + text.AppendFullStop(instruction)
	}

	return c.SingleRequest(ctx, userPrompt, text.EnhanceSystemPrompt)
}

// SingleRequest performs a one-shot chat call with an optional system prompt.
func (c *Client) SingleRequest(ctx context.Context, message string, system string) (string, error) {
	requestBody := &OllamaRequestBody{
		Model:     c.config.DefaultModel,
		Stream:    false,
		KeepAlive: "0m",
	}

	if system != "" {
		requestBody.Messages = append(requestBody.Messages, text.Message{
			Role:    "system",
			Content: system,
		})
	}

	requestBody.Messages = append(requestBody.Messages, text.Message{
		Role:    "user",
		Content: message,
	})

	ollamaRequest := request.Request{
		Url:     helpers.MakeUrlWithPort(c.config.Url, c.config.Port) + "api/chat",
		Method:  "POST",
		Headers: []request.Headers{{Key: "Content-Type", Value: "application/json"}},
		Payload: requestBody,
	}

	var response OllamaResponse
	if err := ollamaRequest.Call(ctx, &response); err != nil {
		return "", err
	}

	if response.Message.Content != "" {
		return strings.TrimSpace(response.Message.Content), nil
	}

	return "", errors.New("no content found")
}
