package ai

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/doeshing/nlsh/internal/domain"
)

const anthropicVersion = "2023-06-01"

func anthropicAdapter() providerAdapter {
	return providerAdapter{
		url: func(def domain.BackendDefinition) string {
			return def.ResolvedEndpoint() + "/v1/messages"
		},
		buildRequest:  buildAnthropicRequest,
		parseResponse: parseAnthropicResponse,
		setHeaders:    setAnthropicHeaders,
	}
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature float64            `json:"temperature"`
}

type anthropicMessage struct {
	Role    string             `json:"role"`
	Content []anthropicContent `json:"content"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicResponse struct {
	Content []anthropicContent `json:"content"`
}

func buildAnthropicRequest(def domain.BackendDefinition, system string, user string) ([]byte, error) {
	return json.Marshal(anthropicRequest{
		Model:     def.ResolvedModel(),
		MaxTokens: def.ResolvedMaxTokens(),
		System:    system,
		Messages: []anthropicMessage{
			{Role: "user", Content: []anthropicContent{{Type: "text", Text: user}}},
		},
		Temperature: def.ResolvedTemperature(),
	})
}

func parseAnthropicResponse(body []byte) (string, error) {
	var response anthropicResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", decodeError(err)
	}
	var parts []string
	for _, block := range response.Content {
		if block.Type == "" || block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n")), nil
}

func setAnthropicHeaders(req *http.Request, def domain.BackendDefinition) error {
	apiKey, err := resolveAPIKey(def)
	if err != nil {
		return err
	}
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	return nil
}
