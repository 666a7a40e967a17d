package commits

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"evolog/internal/ops"
)

// ShortLen is how many hex chars of an id PrettyPrint shows
const ShortLen = 10

var (
	ErrContentHashMismatch = errors.New("content hash does not match operation")
	ErrIDMismatch          = errors.New("id does not match content hash and parent")
)

// Commit binds one operation to its parent. ID is derived, never assigned.
type Commit struct {
	Operation   ops.Operation
	ContentHash ops.Sha
	Parent      ops.Sha
	ID          ops.Sha
}

// IDFor computes the chaining hash of a commit
func IDFor(contentHash, parent ops.Sha) ops.Sha {
	sum := sha256.Sum256([]byte(contentHash + "-" + parent))
	return hex.EncodeToString(sum[:])
}

// New builds the commit for op on top of parent. Pointer variants are
// stored by value.
func New(parent ops.Sha, op ops.Operation) Commit {
	op = ops.Value(op)
	h := ops.Hash(op)
	return Commit{
		Operation:   op,
		ContentHash: h,
		Parent:      parent,
		ID:          IDFor(h, parent),
	}
}

// NewRoot builds the root commit of a history
func NewRoot(nonce string) Commit {
	return New("", ops.Create{Nonce: nonce})
}

// IsRoot reports whether c has the shape of a history root
func (c Commit) IsRoot() bool {
	_, ok := c.Operation.(ops.Create)
	return ok && c.Parent == ""
}

// Short returns the abbreviated id
func (c Commit) Short() string {
	if len(c.ID) <= ShortLen {
		return c.ID
	}
	return c.ID[:ShortLen]
}

func (c Commit) PrettyPrint() string {
	return fmt.Sprintf("%s: %s", c.Short(), ops.PrettyPrint(c.Operation))
}

// Verify recomputes both derived hashes
func (c Commit) Verify() error {
	if c.Operation == nil {
		return fmt.Errorf("commit %s: missing operation", c.Short())
	}
	if h := ops.Hash(c.Operation); h != c.ContentHash {
		return fmt.Errorf("commit %s: %w (stored %s, computed %s)", c.Short(), ErrContentHashMismatch, c.ContentHash, h)
	}
	if id := IDFor(c.ContentHash, c.Parent); id != c.ID {
		return fmt.Errorf("commit %s: %w (computed %s)", c.Short(), ErrIDMismatch, id)
	}
	return nil
}

type commitJSON struct {
	Operation   json.RawMessage `json:"operation"`
	ContentHash ops.Sha         `json:"content_hash"`
	Parent      ops.Sha         `json:"parent"`
	ID          ops.Sha         `json:"id"`
}

func (c Commit) MarshalJSON() ([]byte, error) {
	op, err := ops.Marshal(c.Operation)
	if err != nil {
		return nil, err
	}
	return json.Marshal(commitJSON{
		Operation:   op,
		ContentHash: c.ContentHash,
		Parent:      c.Parent,
		ID:          c.ID,
	})
}

func (c *Commit) UnmarshalJSON(data []byte) error {
	var raw commitJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal commit: %w", err)
	}
	op, err := ops.Unmarshal(raw.Operation)
	if err != nil {
		return err
	}
	*c = Commit{
		Operation:   op,
		ContentHash: raw.ContentHash,
		Parent:      raw.Parent,
		ID:          raw.ID,
	}
	return nil
}
