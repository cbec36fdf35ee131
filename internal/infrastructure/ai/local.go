package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/doeshing/nlsh/internal/domain"
	"github.com/doeshing/nlsh/internal/ports"
)

// localBackend talks to an Ollama-compatible server on the user's machine.
type localBackend struct {
	*httpBackend
}

func localAdapter() providerAdapter {
	return providerAdapter{
		url: func(def domain.BackendDefinition) string {
			return def.ResolvedEndpoint() + "/api/chat"
		},
		buildRequest:  buildLocalRequest,
		parseResponse: parseLocalResponse,
		setHeaders: func(*http.Request, domain.BackendDefinition) error {
			return nil
		},
	}
}

type localChatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  localOptions  `json:"options"`
}

type localOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type localChatResponse struct {
	Message chatMessage `json:"message"`
	Error   string      `json:"error,omitempty"`
}

type localTagsResponse struct {
	Models []struct {
		Name  string `json:"name"`
		Model string `json:"model"`
	} `json:"models"`
}

func buildLocalRequest(def domain.BackendDefinition, system string, user string) ([]byte, error) {
	return json.Marshal(localChatRequest{
		Model:    def.ResolvedModel(),
		Messages: chatMessages(system, user),
		Stream:   false,
		Options: localOptions{
			Temperature: def.ResolvedTemperature(),
			NumPredict:  def.ResolvedMaxTokens(),
		},
	})
}

func parseLocalResponse(body []byte) (string, error) {
	var response localChatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", decodeError(err)
	}
	if response.Error != "" {
		return "", fmt.Errorf("%w: %s", domain.ErrModelUnavailable, response.Error)
	}
	return strings.TrimSpace(response.Message.Content), nil
}

// Ping checks that the server answers and has the configured model pulled.
func (b *localBackend) Ping(ctx context.Context) error {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.def.ResolvedEndpoint()+"/api/tags", nil)
	if err != nil {
		return domain.NewBackendError(b.def.Name, err)
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return domain.NewBackendError(b.def.Name, mapTransportError(ctx, b.def.Kind, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return domain.NewBackendError(b.def.Name, mapTransportError(ctx, b.def.Kind, err))
	}
	if resp.StatusCode != http.StatusOK {
		return domain.NewBackendError(b.def.Name, mapHTTPError(resp.StatusCode, body))
	}

	var tags localTagsResponse
	if err := json.Unmarshal(body, &tags); err != nil {
		return domain.NewBackendError(b.def.Name, decodeError(err))
	}
	model := b.def.ResolvedModel()
	for _, m := range tags.Models {
		if modelMatches(m.Name, model) || modelMatches(m.Model, model) {
			return nil
		}
	}
	return domain.NewBackendError(b.def.Name, fmt.Errorf("%w: model %s is not pulled (run `ollama pull %s`)", domain.ErrModelUnavailable, model, model))
}

// modelMatches treats "name" and "name:latest" as the same model.
func modelMatches(listed, want string) bool {
	if listed == "" {
		return false
	}
	if listed == want {
		return true
	}
	if !strings.Contains(want, ":") {
		return listed == want+":latest"
	}
	return false
}

var (
	_ ports.Backend = (*localBackend)(nil)
	_ ports.Pinger  = (*localBackend)(nil)
)
