// Package models defines the domain types for InkFlow.
package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/starford/inkflow/internal/apperr"
)

// DefaultTitle replaces blank note titles.
const DefaultTitle = "Untitled"

// Status is the workflow state of a note.
type Status string

const (
	StatusNone      Status = "none"
	StatusActive    Status = "active"
	StatusOnHold    Status = "onHold"
	StatusCompleted Status = "completed"
	StatusDropped   Status = "dropped"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusNone, StatusActive, StatusOnHold, StatusCompleted, StatusDropped}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusNone, StatusActive, StatusOnHold, StatusCompleted, StatusDropped:
		return true
	}
	return false
}

// ParseStatus converts a string into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", apperr.ErrInvalidStatus, raw)
	}
	return s, nil
}

// UnmarshalJSON rejects unknown statuses so a document carrying one is treated
// as corrupt. An empty string decodes as the zero Status, which loaders
// normalize to none.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		*s = ""
		return nil
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Note is a titled markdown document that belongs to exactly one notebook.
type Note struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	NotebookID string   `json:"notebookId"`
	Tags       []string `json:"tags"`
	Status     Status   `json:"status"`
	Pinned     bool     `json:"pinned"`
	CreatedAt  int64    `json:"createdAt"`
	UpdatedAt  int64    `json:"updatedAt"`
}

// Clone returns a deep copy of n.
func (n Note) Clone() Note {
	out := n
	out.Tags = append([]string{}, n.Tags...)
	return out
}

// HasTag reports whether the note carries tag exactly.
func (n Note) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Millis converts t to milliseconds since the Unix epoch.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}
