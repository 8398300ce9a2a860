package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient talks to Google Gemini through the generative-ai-go SDK.
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient dials Gemini with apiKey.
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client, config: config}, nil
}

// geminiCall describes one request; history is only used by Chat.
type geminiCall struct {
	tier        ModelTier
	system      string
	temperature float32
	jsonOutput  bool
	history     []Message
	prompt      string
}

func (c *GeminiClient) do(ctx context.Context, call geminiCall) (string, error) {
	name := c.config.GetModel(call.tier)
	if name == "" {
		return "", fmt.Errorf("no model configured for tier %s", call.tier)
	}

	model := c.client.GenerativeModel(name)
	model.SetTemperature(call.temperature)
	if call.system != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(call.system))
	}
	if call.jsonOutput {
		model.ResponseMIMEType = "application/json"
	}

	var (
		resp *genai.GenerateContentResponse
		err  error
	)
	if len(call.history) > 0 {
		session := model.StartChat()
		session.History = geminiHistory(call.history)
		resp, err = session.SendMessage(ctx, genai.Text(call.prompt))
	} else {
		resp, err = model.GenerateContent(ctx, genai.Text(call.prompt))
	}
	if err != nil {
		return "", &ProviderError{Provider: ProviderGemini, Model: name, Cause: err}
	}
	return extractTextFromResponse(resp)
}

// GenerateContent returns free text for prompt.
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.do(ctx, geminiCall{tier: tier, temperature: c.config.Temperature, prompt: prompt})
}

// GenerateJSON asks for an application/json response under system.
func (c *GeminiClient) GenerateJSON(ctx context.Context, system, prompt string, tier ModelTier) (string, error) {
	text, err := c.do(ctx, geminiCall{
		tier:        tier,
		system:      system,
		temperature: c.config.Temperature,
		jsonOutput:  true,
		prompt:      prompt,
	})
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

// Chat replays history in a chat session and sends message.
func (c *GeminiClient) Chat(ctx context.Context, system string, history []Message, message string, tier ModelTier) (string, error) {
	return c.do(ctx, geminiCall{
		tier:        tier,
		system:      system,
		temperature: c.config.ChatTemperature,
		history:     history,
		prompt:      message,
	})
}

func (c *GeminiClient) GetModel(tier ModelTier) string { return c.config.GetModel(tier) }

func (c *GeminiClient) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// geminiHistory maps chat turns onto Gemini contents. Gemini names the
// assistant role "model".
func geminiHistory(history []Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(m.Content)}})
	}
	return contents
}

var errEmptyResponse = errors.New("empty response")

// extractTextFromResponse joins the text parts of the first candidate.
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: no candidates", errEmptyResponse)
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("%w: no text parts", errEmptyResponse)
	}
	return sb.String(), nil
}
