package ai

import (
	"encoding/json"
	"net/http"

	"github.com/doeshing/nlsh/internal/domain"
)

const defaultOpenAIOrgEnvVar = "OPENAI_ORG_ID"

func openaiAdapter() providerAdapter {
	return providerAdapter{
		url: func(def domain.BackendDefinition) string {
			return def.ResolvedEndpoint() + "/v1/chat/completions"
		},
		buildRequest:  buildOpenAIRequest,
		parseResponse: parseChatCompletionResponse,
		setHeaders:    setOpenAIHeaders,
	}
}

func buildOpenAIRequest(def domain.BackendDefinition, system string, user string) ([]byte, error) {
	return json.Marshal(chatCompletionRequest{
		Model:               def.ResolvedModel(),
		Messages:            chatMessages(system, user),
		MaxCompletionTokens: def.ResolvedMaxTokens(),
		Temperature:         def.ResolvedTemperature(),
	})
}

func parseChatCompletionResponse(body []byte) (string, error) {
	var response chatCompletionResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", decodeError(err)
	}
	return response.FirstMessage(), nil
}

func setOpenAIHeaders(req *http.Request, def domain.BackendDefinition) error {
	apiKey, err := resolveAPIKey(def)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)

	if org := resolveEnv([]string{def.OrgEnvVar, defaultOpenAIOrgEnvVar}); org != "" {
		req.Header.Set("OpenAI-Organization", org)
	}
	return nil
}
