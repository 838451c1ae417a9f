// Package gemini implements text generation through the Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"strings"

	"pyro/logger"
	"pyro/settings"
	"pyro/text"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type Client struct {
	config settings.GeminiConfig
}

func NewClient(config settings.GeminiConfig) *Client {
	return &Client{config: config}
}

// newClient creates and returns a new genai.Client
func newClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	return genai.NewClient(ctx, option.WithAPIKey(apiKey))
}

// processResponse extracts the first text content part from the genai response.
func processResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("no candidates found in response")
	}
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if txt, ok := part.(genai.Text); ok {
					return string(txt), nil
				}
			}
		}
	}
	return "", errors.New("no text content found in response")
}

// GenerateValues asks Gemini for candidate values for a missing variable.
func (c *Client) GenerateValues(ctx context.Context, variableName string, contextPrompt string, minCount int) ([]string, error) {
	instruction := text.ValuesInstruction(variableName, contextPrompt, minCount)

	response, err := c.SingleRequest(ctx, instruction)
	if err != nil {
		return nil, err
	}

	values := text.ParseValues(response, minCount)
	if values == nil {
		logger.Variable(variableName).Warn("Could not parse enough values from Gemini response")
		return nil, errors.New("model returned too few usable values")
	}

	return values, nil
}

// Enhance expands a prompt into a more detailed one for image generation.
func (c *Client) Enhance(ctx context.Context, prompt string, instruction string) (string, error) {
	fullPrompt := text.EnhanceSystemPrompt + "\n\nOriginal prompt: " + text.AppendFullStop(prompt)
	if instruction != "" {
		fullPrompt += "\nAdditional instructions: " + text.AppendFullStop(instruction)
	}
	fullPrompt += "\n\nEnhanced prompt:"

	response, err := c.SingleRequest(ctx, fullPrompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(response), nil
}

// SingleRequest performs a one-shot content generation call.
func (c *Client) SingleRequest(ctx context.Context, prompt string) (string, error) {
	client, err := newClient(ctx, c.config.ApiKey)
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel(c.config.Model)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}

	return processResponse(resp)
}
