// Package apperr holds the sentinel errors shared by the core and its transports.
package apperr

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrBlankName       = errors.New("name must not be blank")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidSortKey  = errors.New("invalid sort key")
	ErrHostUnsupported = errors.New("host unsupported: no sync bridge available")
	ErrDefaultNotebook = errors.New("the default notebook cannot be deleted")
)
