// Package text holds the pieces shared by every text generation backend:
// the chat message shape, the instruction builders for variable-value
// generation, and the response parsing that turns model output into a
// usable value list.
package text

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EnhanceSystemPrompt instructs a model to expand a prompt for image
// generation without changing its intent.
const EnhanceSystemPrompt = `You are an expert prompt engineer for image generation models.
Your task is to enhance the user's prompt to create more detailed, vivid, and visually
compelling descriptions that will produce stunning images.

Rules:
- Add specific details about lighting, atmosphere, style, and composition
- Maintain the core intent of the original prompt
- Keep the enhanced prompt concise but descriptive
- Output ONLY the enhanced prompt, nothing else`

func AppendFullStop(message string) string {
	if !strings.HasSuffix(message, ".") && !strings.HasSuffix(message, "!") && !strings.HasSuffix(message, "?") {
		message = message + "."
	}

	return message
}

// sceneAffixes mark variable names that ask for complete scene descriptions
// rather than short substitutable values.
var sceneAffixes = []string{"variation", "scene", "description", "prompt", "version"}

// valueSuffixes override back to short-value generation even when a scene
// affix matched.
var valueSuffixes = []string{"_style", "_color", "_type", "_mood", "_artist", "_genre", "_setting"}

// IsSceneRequest decides whether a variable name asks for full scene
// descriptions. The affix lists are deliberately fixed; do not grow them
// without product guidance.
func IsSceneRequest(variableName string) bool {
	lower := strings.ToLower(variableName)

	matched := false
	for _, affix := range sceneAffixes {
		if strings.HasPrefix(lower, affix) || strings.Contains(lower, "_"+affix) || strings.Contains(lower, affix+"_of") {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}

	for _, suffix := range valueSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return false
		}
	}
	return true
}

// ValuesInstruction builds the generation instruction for a missing
// variable. The shape of the request depends on whether the name asks for
// full scene descriptions or short values; the substitution algorithm does
// not care either way.
func ValuesInstruction(variableName string, contextPrompt string, count int) string {
	if IsSceneRequest(variableName) {
		return fmt.Sprintf(`Generate %d diverse, creative COMPLETE SCENE DESCRIPTIONS for use in image generation.

The variable name "%s" suggests you should create full, detailed scene descriptions.
Context prompt: "%s"

Requirements:
- Each value should be a COMPLETE, standalone image generation prompt
- Include rich visual details: lighting, atmosphere, composition, style
- Make each variation distinctly different from the others
- Values should be 1-3 sentences each, painting a vivid picture
- Return ONLY a valid JSON array of strings

JSON array:`, count, variableName, contextPrompt)
	}

	return fmt.Sprintf(`Generate a list of %d diverse values for the variable "%s".

This variable will be substituted into this image generation prompt: "%s"
The variable __%s__ should be REPLACED by each value you generate.

Requirements:
- Values should be specific nouns, adjectives, or short phrases
- Include both common and unique/interesting options
- Each value should grammatically fit when substituted into the prompt
- Return ONLY a valid JSON array of strings

Examples:
- For "cat_breed": ["Persian", "Siamese", "Maine Coon", "Bengal"]
- For "art_style": ["impressionist", "cyberpunk", "watercolor", "art nouveau"]
- For "emotion": ["joyful", "melancholic", "serene", "fierce"]

JSON array:`, count, variableName, contextPrompt, variableName)
}

// ParseValues extracts a value list from a model response. It tries the JSON
// array the instruction asked for first, then falls back to line-oriented
// parsing. Too few usable values signal total failure: nil is returned
// rather than a short list.
func ParseValues(response string, count int) []string {
	start := strings.Index(response, "[")
	end := strings.LastIndex(response, "]")
	if start != -1 && end > start {
		var values []string
		if err := json.Unmarshal([]byte(response[start:end+1]), &values); err == nil && len(values) >= count {
			if len(values) > count+10 {
				values = values[:count+10]
			}
			return values
		}
	}

	var lines []string
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "[") || strings.HasPrefix(line, "]") {
			continue
		}
		line = strings.Trim(line, `"`)
		line = strings.Trim(line, `'`)
		line = strings.Trim(line, ",")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}

	if len(lines) >= count/2 {
		return lines
	}

	return nil
}
