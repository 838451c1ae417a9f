package request

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"pyro/logger"
)

func (r *Request) GetUrl() string {
	return r.Url
}

func (r *Request) GetMethod() string {
	if r.Method == "" {
		return "GET"
	}
	return r.Method
}

func (r *Request) IsPost() bool {
	return r.GetMethod() == "POST"
}

func (r *Request) GetHeaders() []Headers {
	return r.Headers
}

func (r *Request) GetPayload() interface{} {
	return r.Payload
}

// Call executes the request and decodes the response into the given value.
// A *string response receives the raw body, anything else is decoded as JSON.
func (r *Request) Call(ctx context.Context, response interface{}) error {
	reqBody := &bytes.Buffer{}

	if r.IsPost() && r.GetPayload() != nil {
		jsonData, err := json.Marshal(r.GetPayload())
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, r.GetMethod(), r.GetUrl(), reqBody)
	if err != nil {
		return fmt.Errorf("failed to create new request: %w", err)
	}

	for _, header := range r.GetHeaders() {
		req.Header.Set(header.Key, header.Value)
	}

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("request to %s failed with status: %s", r.GetUrl(), resp.Status)
	}

	if response == nil {
		return nil
	}

	// Some endpoints return a plain string and not any JSON
	if strPtr, ok := response.(*string); ok {
		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}
		*strPtr = string(bodyBytes)
	} else {
		// Handle as JSON for everything else
		err = json.NewDecoder(resp.Body).Decode(response)
		if err != nil {
			logger.Error("Failed to decode JSON response", "url", r.GetUrl(), "error", err)
			return fmt.Errorf("failed to decode JSON response: %w", err)
		}
	}

	return nil
}

