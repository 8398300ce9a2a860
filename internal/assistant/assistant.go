// Package assistant answers chat messages in the voice of a career persona.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/prompts"
	"github.com/jonathan/resume-builder/internal/types"
)

const (
	// MaxHistory is the number of prior messages sent with each request.
	MaxHistory = 20

	maxResumeContext = 12000
)

// ErrEmptyMessage is returned when the user message is blank.
var ErrEmptyMessage = errors.New("message is empty")

// Assistant produces persona replies through an llm.Client.
type Assistant struct {
	client llm.Client
	logger *zap.Logger
}

// New creates an Assistant. A nil client makes Reply fail with
// llm.ErrNotConfigured.
func New(client llm.Client, logger *zap.Logger) *Assistant {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assistant{client: client, logger: logger}
}

// Available reports whether a model client is configured.
func (a *Assistant) Available() bool {
	return a != nil && a.client != nil
}

// Reply answers message as persona, given the prior conversation and
// optionally the user's resume as plain text.
func (a *Assistant) Reply(ctx context.Context, persona string, history []types.ChatMessage, message, resumeText string) (string, error) {
	p, err := LookupPersona(persona)
	if err != nil {
		return "", err
	}
	if !a.Available() {
		return "", fmt.Errorf("failed to reply: %w", llm.ErrNotConfigured)
	}
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}

	system, err := SystemPrompt(p.ID, resumeText)
	if err != nil {
		return "", err
	}

	start := time.Now()
	reply, err := a.client.Chat(ctx, system, toLLMHistory(TrimHistory(history)), message, llm.TierStandard)
	if err != nil {
		return "", fmt.Errorf("failed to reply as %s: %w", p.ID, err)
	}
	a.logger.Debug("assistant replied",
		zap.String("persona", p.ID),
		zap.Int("history", len(history)),
		zap.Duration("duration", time.Since(start)))

	return strings.TrimSpace(reply), nil
}

// SystemPrompt builds the system instruction for a persona.
func SystemPrompt(persona, resumeText string) (string, error) {
	system, err := prompts.Get(prompts.ChatFile, "persona-"+persona)
	if err != nil {
		return "", err
	}
	resumeText = strings.TrimSpace(resumeText)
	if resumeText == "" {
		return system, nil
	}
	resumeText = clip(resumeText, maxResumeContext)
	resumeBlock, err := prompts.Render(prompts.ChatFile, "resume-context", map[string]string{"Resume": resumeText})
	if err != nil {
		return "", err
	}
	return system + "\n\n" + resumeBlock, nil
}

// clip cuts s to at most n bytes on a rune boundary.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// TrimHistory keeps the last MaxHistory messages.
func TrimHistory(history []types.ChatMessage) []types.ChatMessage {
	if len(history) <= MaxHistory {
		return history
	}
	return history[len(history)-MaxHistory:]
}

func toLLMHistory(history []types.ChatMessage) []llm.Message {
	out := make([]llm.Message, 0, len(history))
	for _, m := range history {
		role := llm.RoleUser
		if m.Role == types.ChatRoleAssistant {
			role = llm.RoleAssistant
		}
		out = append(out, llm.Message{Role: role, Content: m.Content})
	}
	return out
}
