package session

import (
	"strconv"
	"strings"
)

// BatchParams controls one generation request. They are appended to a
// prompt after a colon, for example "a cat : x10,h832,w1216".
type BatchParams struct {
	Count  int
	Width  int
	Height int
}

func DefaultBatchParams() BatchParams {
	return BatchParams{Count: 1, Width: 1024, Height: 1024}
}

// ParseBatchParams splits trailing batch parameters off a prompt.
// When the text after the last colon does not look like parameters the
// colon is treated as part of the prompt and defaults are returned.
func ParseBatchParams(input string, defaults BatchParams) (string, BatchParams) {
	idx := strings.LastIndex(input, ":")
	if idx < 0 {
		return input, defaults
	}

	promptPart := strings.TrimSpace(input[:idx])
	paramPart := strings.TrimSpace(input[idx+1:])

	if !looksLikeParams(paramPart) {
		return input, defaults
	}

	params := defaults
	for _, token := range strings.Split(paramPart, ",") {
		token = strings.ToLower(strings.TrimSpace(token))
		if len(token) < 2 || !isDigits(token[1:]) {
			continue
		}
		value, err := strconv.Atoi(token[1:])
		if err != nil || value < 1 {
			continue
		}
		switch token[0] {
		case 'x':
			params.Count = value
		case 'h':
			params.Height = value
		case 'w':
			params.Width = value
		}
	}
	return promptPart, params
}

func looksLikeParams(s string) bool {
	for _, token := range strings.Split(s, ",") {
		token = strings.ToLower(strings.TrimSpace(token))
		if len(token) < 2 {
			continue
		}
		if token[0] != 'x' && token[0] != 'h' && token[0] != 'w' {
			continue
		}
		if strings.ContainsAny(token, "0123456789") {
			return true
		}
	}
	return false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// SplitEnhancement splits "base prompt > instruction" input. The
// returned flag reports whether an enhancement marker was present at
// all, since an empty instruction still requests enhancement.
func SplitEnhancement(input string) (string, string, bool) {
	idx := strings.Index(input, ">")
	if idx < 0 {
		return input, "", false
	}
	return strings.TrimSpace(input[:idx]), strings.TrimSpace(input[idx+1:]), true
}
