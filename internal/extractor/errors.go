package extractor

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that no definition is registered under a name.
var ErrNotFound = errors.New("definition not found")

// NotFoundError carries the name that was requested from Extract.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unable to extract <%s>, not found", e.Name)
}

// Is reports whether target is ErrNotFound, so callers can use errors.Is.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
