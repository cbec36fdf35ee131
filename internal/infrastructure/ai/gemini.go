package ai

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/doeshing/nlsh/internal/domain"
)

func geminiAdapter() providerAdapter {
	return providerAdapter{
		url: func(def domain.BackendDefinition) string {
			return fmt.Sprintf("%s/v1beta/models/%s:generateContent", def.ResolvedEndpoint(), url.PathEscape(def.ResolvedModel()))
		},
		buildRequest:  buildGeminiRequest,
		parseResponse: parseGeminiResponse,
		setHeaders:    setGeminiHeaders,
	}
}

type geminiRequest struct {
	Contents          []geminiContent        `json:"contents"`
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

func buildGeminiRequest(def domain.BackendDefinition, system string, user string) ([]byte, error) {
	req := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: user}}},
		},
		GenerationConfig: geminiGenerationConfig{
			MaxOutputTokens: def.ResolvedMaxTokens(),
			Temperature:     def.ResolvedTemperature(),
		},
	}
	if system != "" {
		req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: system}}}
	}
	return json.Marshal(req)
}

func parseGeminiResponse(body []byte) (string, error) {
	var response geminiResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", decodeError(err)
	}
	if len(response.Candidates) == 0 {
		if response.PromptFeedback != nil && response.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("%w: prompt blocked (%s)", domain.ErrModelUnavailable, response.PromptFeedback.BlockReason)
		}
		return "", nil
	}
	var parts []string
	for _, part := range response.Candidates[0].Content.Parts {
		parts = append(parts, part.Text)
	}
	return strings.TrimSpace(strings.Join(parts, "")), nil
}

func setGeminiHeaders(req *http.Request, def domain.BackendDefinition) error {
	apiKey, err := resolveAPIKey(def)
	if err != nil {
		return err
	}
	req.Header.Set("x-goog-api-key", apiKey)
	return nil
}
