package db

import "github.com/jonathan/resume-builder/internal/types"

// The memory store hands out copies so callers never alias stored slices.

func cloneResume(r *types.Resume) *types.Resume {
	c := *r
	c.Sections = append([]types.ResumeSection{}, r.Sections...)
	return &c
}

func cloneConversation(conv *types.ChatConversation) *types.ChatConversation {
	c := *conv
	c.Messages = append([]types.ChatMessage{}, conv.Messages...)
	return &c
}

func cloneUser(u *User) *User {
	c := *u
	return &c
}
