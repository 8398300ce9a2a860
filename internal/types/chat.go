package types

import (
	"time"

	"github.com/google/uuid"
)

// ChatRole identifies the author of a chat message.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one turn of a conversation.
type ChatMessage struct {
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatConversation is an ordered exchange between a user and one persona.
type ChatConversation struct {
	ID        uuid.UUID     `json:"id"`
	UserID    uuid.UUID     `json:"user_id"`
	Persona   string        `json:"persona"`
	Title     string        `json:"title"`
	Messages  []ChatMessage `json:"messages"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Persona describes a chat assistant personality.
type Persona struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Greeting    string `json:"greeting"`
}

// ChatRequest is the body of POST /api/chat. ConversationID is empty for a
// new conversation; ResumeID optionally grounds the reply on a resume.
type ChatRequest struct {
	ConversationID string `json:"conversation_id,omitempty" validate:"omitempty,uuid"`
	Persona        string `json:"persona,omitempty"`
	Message        string `json:"message" validate:"required,max=8000"`
	ResumeID       string `json:"resume_id,omitempty" validate:"omitempty,uuid"`
}

// ChatResponse returns the assistant reply and the conversation it belongs to.
type ChatResponse struct {
	ConversationID uuid.UUID   `json:"conversation_id"`
	Persona        string      `json:"persona"`
	Reply          ChatMessage `json:"reply"`
}
