package dataset

import (
	"errors"
	"fmt"

	"github.com/Brownie44l1/dataset-api/internal/storage"
)

var (
	// ErrNotFound is matched by every error reporting a missing manifest,
	// directory, image or annotation file.
	ErrNotFound = storage.ErrNotFound

	ErrCategoryListNotFound = fmt.Errorf("category list %w", ErrNotFound)
	ErrCategoryNotFound     = fmt.Errorf("category %w", ErrNotFound)
	ErrImageNotFound        = fmt.Errorf("image %w", ErrNotFound)
	ErrAnnotationNotFound   = fmt.Errorf("annotation file %w", ErrNotFound)

	// ErrMalformed is matched by every *MalformedError.
	ErrMalformed = errors.New("malformed annotation")

	// ErrInvalidName indicates a category or file name that could address
	// something outside the dataset root.
	ErrInvalidName = errors.New("invalid name")
)

// MalformedError reports an annotation line that could not be parsed.
type MalformedError struct {
	Line   int
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%v: line %d: %s", ErrMalformed, e.Line, e.Reason)
}

func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformed
}

// notFound wraps a storage miss with the dataset-level sentinel kind while
// keeping the storage error text.
func notFound(kind error, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %v", kind, err)
	}
	return err
}
