package providers

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"jobforge/pkg/models"
)

// GeminiProvider adapts Google's GenAI API to the Invoker contract.
type GeminiProvider struct {
	client      *genai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewGeminiProvider creates a Gemini adapter bound to one model and key.
func NewGeminiProvider(ctx context.Context, apiKey, model string, maxTokens int, temperature float32) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client:      client,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}, nil
}

func (gp *GeminiProvider) Name() string {
	return "gemini"
}

// geminiRole maps a chat message role onto the GenAI turn role.
func geminiRole(role string) genai.Role {
	if role == models.RoleAssistant {
		return genai.RoleModel
	}
	return genai.RoleUser
}

// Invoke sends the chat history followed by the prompt and returns the
// reply text. Assistant turns map to the model role.
func (gp *GeminiProvider) Invoke(ctx context.Context, prompt string, history []models.ChatMessage) (string, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, msg := range history {
		contents = append(contents, genai.NewContentFromText(msg.Content, geminiRole(msg.Role)))
	}
	contents = append(contents, genai.NewContentFromText(prompt, genai.RoleUser))

	result, err := gp.client.Models.GenerateContent(ctx, gp.model, contents, &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(gp.temperature),
		MaxOutputTokens: int32(gp.maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("failed to call Gemini API: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("empty response from Gemini model %s", gp.model)
	}
	return text, nil
}
