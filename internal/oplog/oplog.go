package oplog

import (
	"encoding/json"
	"fmt"

	"evolog/internal/commits"
	"evolog/internal/ops"

	"github.com/bmatcuk/doublestar/v4"
	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/multierr"
)

// OpLog is the append-only sequence of commits. The zero value is an empty
// log; call Init before the first Append.
type OpLog struct {
	commits []commits.Commit
	// id -> index of the first commit with that id
	index map[ops.Sha]int
}

// New returns an empty log with no root
func New() *OpLog {
	return &OpLog{index: make(map[ops.Sha]int)}
}

// Init appends a root commit seeded with nonce. Calling it twice leaves two
// roots in the log, which Verify reports.
func (l *OpLog) Init(nonce string) commits.Commit {
	return l.push(commits.NewRoot(nonce))
}

// Append chains op onto parent. parent is trusted to be an id in the log.
func (l *OpLog) Append(parent ops.Sha, op ops.Operation) commits.Commit {
	return l.push(commits.New(parent, ops.Value(op)))
}

func (l *OpLog) push(c commits.Commit) commits.Commit {
	if l.index == nil {
		l.index = make(map[ops.Sha]int)
	}
	if _, ok := l.index[c.ID]; !ok {
		l.index[c.ID] = len(l.commits)
	}
	l.commits = append(l.commits, c)
	return c
}

// Last returns the most recently appended commit
func (l *OpLog) Last() (commits.Commit, bool) {
	if len(l.commits) == 0 {
		return commits.Commit{}, false
	}
	return l.commits[len(l.commits)-1], true
}

// Len returns the number of commits
func (l *OpLog) Len() int {
	return len(l.commits)
}

// At returns the i-th commit in append order
func (l *OpLog) At(i int) commits.Commit {
	return l.commits[i]
}

// Commits returns a copy of the sequence in append order
func (l *OpLog) Commits() []commits.Commit {
	out := make([]commits.Commit, len(l.commits))
	copy(out, l.commits)
	return out
}

// Find looks a commit up by id
func (l *OpLog) Find(id ops.Sha) (commits.Commit, bool) {
	i, ok := l.index[id]
	if !ok {
		return commits.Commit{}, false
	}
	return l.commits[i], true
}

// Contains reports whether some commit has the given id
func (l *OpLog) Contains(id ops.Sha) bool {
	_, ok := l.index[id]
	return ok
}

// Filter returns the commits whose operation kind matches a glob such as
// "New*" or "{NewCircle,NewRectangle}"
func (l *OpLog) Filter(pattern string) ([]commits.Commit, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid kind pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}
	var out []commits.Commit
	for _, c := range l.commits {
		// the pattern has been validated, Match cannot fail
		if ok, _ := doublestar.Match(pattern, c.Operation.Kind().String()); ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// Kinds returns the set of operation kinds present in the log
func (l *OpLog) Kinds() mapset.Set[ops.Kind] {
	kinds := mapset.NewThreadUnsafeSet[ops.Kind]()
	for _, c := range l.commits {
		kinds.Add(c.Operation.Kind())
	}
	return kinds
}

// Verify checks roots, hashes and parent links and reports all violations
func (l *OpLog) Verify() error {
	if len(l.commits) == 0 {
		return fmt.Errorf("oplog has no root commit")
	}
	var err error
	if !l.commits[0].IsRoot() {
		err = multierr.Append(err, fmt.Errorf("commit 0 (%s) is not a root", l.commits[0].Short()))
	}
	seen := mapset.NewThreadUnsafeSet[ops.Sha]()
	for i, c := range l.commits {
		if e := c.Verify(); e != nil {
			err = multierr.Append(err, fmt.Errorf("commit %d: %w", i, e))
		}
		if i > 0 && !seen.Contains(c.Parent) {
			err = multierr.Append(err, fmt.Errorf("commit %d (%s): parent %q is not an earlier commit", i, c.Short(), c.Parent))
		}
		seen.Add(c.ID)
	}
	return err
}

type oplogJSON struct {
	Commits []commits.Commit `json:"commits"`
}

func (l *OpLog) MarshalJSON() ([]byte, error) {
	cs := l.commits
	if cs == nil {
		cs = []commits.Commit{}
	}
	return json.Marshal(oplogJSON{Commits: cs})
}

// UnmarshalJSON restores the sequence as stored. It does not verify;
// call Verify before trusting the result.
func (l *OpLog) UnmarshalJSON(data []byte) error {
	var raw oplogJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal oplog: %w", err)
	}
	fresh := New()
	for _, c := range raw.Commits {
		fresh.push(c)
	}
	*l = *fresh
	return nil
}
