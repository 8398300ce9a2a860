package server

import (
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/jonathan/resume-builder/internal/assistant"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/types"
)

const conversationTitleLength = 60

// handleListPersonas returns the persona table.
func (s *Server) handleListPersonas(w http.ResponseWriter, _ *http.Request) {
	jsonResponse(w, http.StatusOK, assistant.Personas())
}

// ownedConversation loads a conversation, treating other users' as missing.
func (s *Server) ownedConversation(r *http.Request, userID, id uuid.UUID) (*types.ChatConversation, error) {
	conv, err := s.store.GetConversation(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if conv.UserID != userID {
		return nil, db.ErrNotFound
	}
	return conv, nil
}

// handleChat sends a message to a persona. Without a conversation_id a new
// conversation is started; it is stored only once the reply succeeds.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	var req types.ChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.handleError(w, r, &ErrValidation{Field: "message", Message: "message is required"})
		return
	}
	ctx := r.Context()

	var conv *types.ChatConversation
	if req.ConversationID != "" {
		id, err := parseUUID("conversation_id", req.ConversationID)
		if err != nil {
			s.handleError(w, r, err)
			return
		}
		if conv, err = s.ownedConversation(r, userID, id); err != nil {
			s.handleError(w, r, err)
			return
		}
	} else {
		persona, err := assistant.LookupPersona(req.Persona)
		if err != nil {
			s.handleError(w, r, err)
			return
		}
		conv = &types.ChatConversation{
			UserID:  userID,
			Persona: persona.ID,
			Title:   conversationTitle(req.Message),
		}
	}

	var resumeText string
	if req.ResumeID != "" {
		id, err := parseUUID("resume_id", req.ResumeID)
		if err != nil {
			s.handleError(w, r, err)
			return
		}
		resume, err := s.resumes.Get(ctx, userID, id)
		if err != nil {
			s.handleError(w, r, err)
			return
		}
		resumeText = s.resumes.PlainText(resume)
	}

	reply, err := s.assistant.Reply(ctx, conv.Persona, conv.Messages, req.Message, resumeText)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	now := time.Now().UTC()
	userMsg := types.ChatMessage{Role: types.ChatRoleUser, Content: req.Message, CreatedAt: now}
	replyMsg := types.ChatMessage{Role: types.ChatRoleAssistant, Content: reply, CreatedAt: now}

	if conv.ID == uuid.Nil {
		conv.ID = uuid.New()
		conv.CreatedAt = now
		conv.UpdatedAt = now
		conv.Messages = []types.ChatMessage{userMsg, replyMsg}
		err = s.store.CreateConversation(ctx, conv)
	} else {
		err = s.store.AppendMessages(ctx, conv.ID, userMsg, replyMsg)
	}
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	jsonResponse(w, http.StatusOK, types.ChatResponse{
		ConversationID: conv.ID,
		Persona:        conv.Persona,
		Reply:          replyMsg,
	})
}

// handleListConversations lists the caller's conversations without messages.
func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	list, err := s.store.ListConversations(r.Context(), userID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if list == nil {
		list = []types.ChatConversation{}
	}
	jsonResponse(w, http.StatusOK, list)
}

// handleGetConversation returns a conversation with its messages.
func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	userID, id, err := ownerAndID(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	conv, err := s.ownedConversation(r, userID, id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, conv)
}

// handleDeleteConversation deletes a conversation.
func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	userID, id, err := ownerAndID(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if _, err := s.ownedConversation(r, userID, id); err != nil {
		s.handleError(w, r, err)
		return
	}
	if err := s.store.DeleteConversation(r.Context(), id); err != nil {
		s.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// conversationTitle derives a title from the opening message.
func conversationTitle(message string) string {
	title := strings.Join(strings.Fields(message), " ")
	if utf8.RuneCountInString(title) <= conversationTitleLength {
		return title
	}
	runes := []rune(title)
	return strings.TrimSpace(string(runes[:conversationTitleLength])) + "..."
}
