package evolution

import (
	"errors"
	"fmt"

	"evolog/internal/ops"
)

var (
	// ErrNotFound matches every *NotFoundError
	ErrNotFound = errors.New("not found in oplog")
	// ErrAmbiguous is returned when a short id names more than one commit
	ErrAmbiguous = errors.New("ambiguous commit prefix")
	// ErrPrefixTooShort is returned for ids shorter than MinPrefixLen
	ErrPrefixTooShort = errors.New("commit prefix too short")
)

// NotFoundError carries the fingerprint that matched no commit
type NotFoundError struct {
	Sha ops.Sha
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("SHA %s not found in oplog", e.Sha)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
