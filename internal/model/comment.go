package model

import (
	"errors"
	"time"
	"unicode/utf8"
)

// MaxCommentLength bounds the content of a single comment.
const MaxCommentLength = 2000

// Comment is a message on an approved item. ParentCommentID is nil for
// top-level comments; replies point at the comment they answer.
type Comment struct {
	ID              string       `json:"id"`
	ItemID          string       `json:"itemId"`
	UserID          string       `json:"userId"`
	User            *UserSummary `json:"user,omitempty"`
	Content         string       `json:"content"`
	ParentCommentID *string      `json:"parentCommentId"`
	CreatedAt       time.Time    `json:"createdAt"`
}

// ValidateComment checks trimmed comment content.
func ValidateComment(content string) error {
	if content == "" {
		return errors.New("content is required")
	}
	if utf8.RuneCountInString(content) > MaxCommentLength {
		return errors.New("content is too long")
	}
	return nil
}
