// server/domain/note.go
package domain

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

const (
	MaxTitleLength = 50
	MaxBodyLength  = 100
)

type Note struct {
	ID    int64  `json:"id"`
	Title string `json:"titulo"`
	Body  string `json:"texto"`
}

var (
	// ErrMalformed marks a request the client has to fix before retrying.
	ErrMalformed = errors.New("malformed request")
	ErrNotFound  = errors.New("note not found")
)

// StorageError wraps a failure of the backing store. It is always fatal
// for the request that hit it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Malformed returns an error matching ErrMalformed with a client facing reason.
func Malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

// ValidateNote checks the length caps of the title and body columns.
// Lengths are counted in characters, not bytes.
func ValidateNote(title, body string) error {
	if n := utf8.RuneCountInString(title); n > MaxTitleLength {
		return Malformed("titulo is %d characters long, at most %d allowed", n, MaxTitleLength)
	}
	if n := utf8.RuneCountInString(body); n > MaxBodyLength {
		return Malformed("texto is %d characters long, at most %d allowed", n, MaxBodyLength)
	}
	return nil
}
