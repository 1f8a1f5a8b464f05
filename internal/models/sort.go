package models

import (
	"fmt"

	"github.com/starford/inkflow/internal/apperr"
)

// SortKey selects the ordering of a note listing.
type SortKey string

const (
	SortUpdated SortKey = "updated"
	SortCreated SortKey = "created"
	SortTitle   SortKey = "title"
)

// ParseSortKey converts a string into a SortKey. An empty string yields SortUpdated.
func ParseSortKey(raw string) (SortKey, error) {
	switch k := SortKey(raw); k {
	case "":
		return SortUpdated, nil
	case SortUpdated, SortCreated, SortTitle:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", apperr.ErrInvalidSortKey, raw)
}
