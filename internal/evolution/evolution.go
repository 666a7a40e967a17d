package evolution

import (
	"fmt"
	"io"
	"strings"

	"evolog/internal/commits"
	"evolog/internal/ops"
	"evolog/internal/oplog"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// MinPrefixLen is the shortest id prefix Resolve accepts
const MinPrefixLen = 4

// Options tunes a new EvolutionLog
type Options struct {
	// Nonce seeds the root commit. Empty means a fresh random UUID.
	Nonce string
	// Logger receives debug output. Nil discards it.
	Logger *logrus.Entry
}

// EvolutionLog pairs an OpLog with a cursor naming the current commit.
// It is single-writer; wrap it in Shared to use it from several goroutines.
type EvolutionLog struct {
	cursor ops.Sha
	oplog  *oplog.OpLog
	log    *logrus.Entry
}

// New creates a log whose root is seeded with a random nonce
func New() *EvolutionLog {
	return NewWithOptions(Options{})
}

// NewWithOptions creates a log with a root commit and the cursor on it
func NewWithOptions(opts Options) *EvolutionLog {
	nonce := opts.Nonce
	if nonce == "" {
		nonce = uuid.NewString()
	}
	ol := oplog.New()
	root := ol.Init(nonce)
	e := &EvolutionLog{
		cursor: root.ID,
		oplog:  ol,
		log:    loggerOrDiscard(opts.Logger),
	}
	e.log.WithField("root", root.Short()).Debug("initialized evolution log")
	return e
}

func loggerOrDiscard(l *logrus.Entry) *logrus.Entry {
	if l != nil {
		return l
	}
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	return logrus.NewEntry(discard)
}

// SetLogger replaces the logger, nil discards output
func (e *EvolutionLog) SetLogger(l *logrus.Entry) {
	e.log = loggerOrDiscard(l)
}

// Cursor returns the id of the current commit
func (e *EvolutionLog) Cursor() ops.Sha {
	return e.cursor
}

// Head returns the commit the cursor points at
func (e *EvolutionLog) Head() commits.Commit {
	c, _ := e.oplog.Find(e.cursor)
	return c
}

// Len returns the number of commits in the log
func (e *EvolutionLog) Len() int {
	return e.oplog.Len()
}

// Last returns the most recently appended commit, which need not be Head
func (e *EvolutionLog) Last() commits.Commit {
	c, _ := e.oplog.Last()
	return c
}

// Root returns the root commit
func (e *EvolutionLog) Root() commits.Commit {
	return e.oplog.At(0)
}

// Commits returns a copy of every commit in append order
func (e *EvolutionLog) Commits() []commits.Commit {
	return e.oplog.Commits()
}

// Find looks a commit up by full id
func (e *EvolutionLog) Find(id ops.Sha) (commits.Commit, bool) {
	return e.oplog.Find(id)
}

// Filter returns commits whose kind matches pattern, see oplog.Filter
func (e *EvolutionLog) Filter(pattern string) ([]commits.Commit, error) {
	return e.oplog.Filter(pattern)
}

// Kinds returns the set of operation kinds present in the log
func (e *EvolutionLog) Kinds() mapset.Set[ops.Kind] {
	return e.oplog.Kinds()
}

// Verify checks the underlying log and the cursor
func (e *EvolutionLog) Verify() error {
	if err := e.oplog.Verify(); err != nil {
		return err
	}
	if !e.oplog.Contains(e.cursor) {
		return &NotFoundError{Sha: e.cursor}
	}
	return nil
}

// Append records op on top of the cursor and moves the cursor to it
func (e *EvolutionLog) Append(op ops.Operation) ops.Sha {
	parent := e.cursor
	c := e.oplog.Append(parent, op)
	e.cursor = c.ID
	e.log.WithFields(logrus.Fields{
		"commit": c.Short(),
		"parent": shortSha(parent),
		"kind":   op.Kind().String(),
	}).Debug("appended commit")
	return e.cursor
}

// Checkout moves the cursor to an existing commit. History is untouched.
func (e *EvolutionLog) Checkout(sha ops.Sha) error {
	if !e.oplog.Contains(sha) {
		e.log.WithField("commit", sha).Warn("checkout target not found")
		return &NotFoundError{Sha: sha}
	}
	e.log.WithFields(logrus.Fields{
		"from": shortSha(e.cursor),
		"to":   shortSha(sha),
	}).Debug("checked out commit")
	e.cursor = sha
	return nil
}

// CherryPick replays the operation of commit sha as a new commit on top of
// the cursor and returns the new cursor
func (e *EvolutionLog) CherryPick(sha ops.Sha) (ops.Sha, error) {
	src, ok := e.oplog.Find(sha)
	if !ok {
		e.log.WithField("commit", sha).Warn("cherry-pick source not found")
		return "", &NotFoundError{Sha: sha}
	}
	e.log.WithField("source", src.Short()).Debug("cherry-picking commit")
	return e.Append(src.Operation), nil
}

// Resolve expands a unique id prefix to a full id
func (e *EvolutionLog) Resolve(prefix string) (ops.Sha, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if e.oplog.Contains(prefix) {
		return prefix, nil
	}
	if len(prefix) < MinPrefixLen {
		return "", fmt.Errorf("%w: %q needs at least %d characters", ErrPrefixTooShort, prefix, MinPrefixLen)
	}
	var match ops.Sha
	for _, c := range e.oplog.Commits() {
		if !strings.HasPrefix(c.ID, prefix) || c.ID == match {
			continue
		}
		if match != "" {
			return "", fmt.Errorf("%w: %s matches %s and %s", ErrAmbiguous, prefix, shortSha(match), shortSha(c.ID))
		}
		match = c.ID
	}
	if match == "" {
		return "", &NotFoundError{Sha: prefix}
	}
	return match, nil
}

// Ancestry returns the chain of commits from the root to the cursor
func (e *EvolutionLog) Ancestry() []commits.Commit {
	var chain []commits.Commit
	id := e.cursor
	for i := 0; i < e.oplog.Len() && id != ""; i++ {
		c, ok := e.oplog.Find(id)
		if !ok {
			break
		}
		chain = append(chain, c)
		id = c.Parent
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// PrettyPrint renders every commit in append order, one per line
func (e *EvolutionLog) PrettyPrint() string {
	var sb strings.Builder
	// strings.Builder never returns a write error
	_ = e.Fprint(&sb)
	return strings.TrimSuffix(sb.String(), "\n")
}

// Fprint writes one line per commit to w
func (e *EvolutionLog) Fprint(w io.Writer) error {
	for i := 0; i < e.oplog.Len(); i++ {
		if _, err := fmt.Fprintln(w, e.oplog.At(i).PrettyPrint()); err != nil {
			return err
		}
	}
	return nil
}

func shortSha(s ops.Sha) string {
	if len(s) > commits.ShortLen {
		return s[:commits.ShortLen]
	}
	return s
}
