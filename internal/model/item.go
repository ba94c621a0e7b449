package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// ItemStatus is the review state of a lost/found report.
type ItemStatus string

// Item statuses.
const (
	ItemStatusPending  ItemStatus = "pending"
	ItemStatusApproved ItemStatus = "approved"
)

// Valid reports whether s is one of the known statuses.
func (s ItemStatus) Valid() bool {
	return s == ItemStatusPending || s == ItemStatusApproved
}

// Field limits for item reports.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
)

// UnknownReporterEmail is recorded when the submitter's token carries no email.
const UnknownReporterEmail = "unknown@campus.edu"

// Item is a lost or found report.
type Item struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Image         string       `json:"image,omitempty"`
	Status        ItemStatus   `json:"status"`
	CreatedByID   string       `json:"createdById"`
	CreatedBy     *UserSummary `json:"createdBy,omitempty"`
	ReporterEmail string       `json:"reporterEmail"`
	CreatedAt     time.Time    `json:"createdAt"`
}

// ValidateItem checks the title and description of a report. Both values are
// expected to be trimmed already.
func ValidateItem(title, description string) error {
	if title == "" {
		return errors.New("title is required")
	}
	if description == "" {
		return errors.New("description is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return errors.New("title is too long")
	}
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return errors.New("description is too long")
	}
	return nil
}

// NormalizeText trims surrounding whitespace from user-supplied text.
func NormalizeText(s string) string {
	return strings.TrimSpace(s)
}
