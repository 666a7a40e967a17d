package repo

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"evolog/internal/evolution"
	"evolog/internal/ops"

	"github.com/sirupsen/logrus"
)

const (
	EvoDir      = ".evolog"
	SessionFile = "session.bin"
)

var (
	// ErrExists is returned by InitRepo when a session directory is present
	ErrExists = errors.New("evolog session already exists here")
	// ErrCorruptSession is returned when the session header disagrees with the file
	ErrCorruptSession = errors.New("corrupt session file")
)

// SessionPath returns the session file of the repo at repoPath
func SessionPath(repoPath string) string {
	return filepath.Join(repoPath, EvoDir, SessionFile)
}

// InitRepo creates the .evolog folder with a config dir and a fresh log.
// An empty nonce seeds the root with a random one.
func InitRepo(path, nonce string, logger *logrus.Entry) (*evolution.EvolutionLog, error) {
	evoPath := filepath.Join(path, EvoDir)
	if _, err := os.Stat(evoPath); err == nil {
		return nil, ErrExists
	}

	dirs := []string{
		evoPath,
		filepath.Join(evoPath, "config"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			return nil, err
		}
	}

	e := evolution.NewWithOptions(evolution.Options{Nonce: nonce, Logger: logger})
	if err := SaveLog(path, e); err != nil {
		return nil, err
	}
	return e, nil
}

// FindRepoRoot searches for .evolog directory walking up from start
func FindRepoRoot(start string) (string, error) {
	cur, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(cur, EvoDir)); err == nil {
			return cur, nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return "", os.ErrNotExist
		}
		cur = parent
	}
}

// SaveLog writes e as [4 bytes big-endian length][json], replacing the
// previous session atomically
func SaveLog(repoPath string, e *evolution.EvolutionLog) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal evolution log: %w", err)
	}
	sz := make([]byte, 4)
	binary.BigEndian.PutUint32(sz, uint32(len(data)))

	fp := SessionPath(repoPath)
	tmp, err := os.CreateTemp(filepath.Dir(fp), SessionFile+".*")
	if err != nil {
		return fmt.Errorf("failed to create session file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(sz); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), fp); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

// LoadLog reads the session written by SaveLog
func LoadLog(repoPath string, logger *logrus.Entry) (*evolution.EvolutionLog, error) {
	f, err := os.Open(SessionPath(repoPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open session file: %w", err)
	}
	defer f.Close()

	szBuf := make([]byte, 4)
	if _, err := io.ReadFull(f, szBuf); err != nil {
		return nil, fmt.Errorf("failed to read session header: %w", err)
	}
	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat session file: %w", err)
	}
	// the header must not claim more than the file holds
	sz := int64(binary.BigEndian.Uint32(szBuf))
	if body := fi.Size() - int64(len(szBuf)); sz > body {
		return nil, fmt.Errorf("%w: header claims %d bytes, file has %d", ErrCorruptSession, sz, body)
	}
	data := make([]byte, sz)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, fmt.Errorf("failed to read session body: %w", err)
	}
	return evolution.Decode(data, logger)
}

// ExportOps writes the operations on the path from the root to the cursor,
// root excluded, as binary records. It returns how many were written.
func ExportOps(filename string, e *evolution.EvolutionLog) (int, error) {
	if err := os.Remove(filename); err != nil && !os.IsNotExist(err) {
		return 0, err
	}
	n := 0
	for _, c := range e.Ancestry() {
		if c.IsRoot() {
			continue
		}
		if err := ops.AppendOp(filename, c.Operation); err != nil {
			return n, fmt.Errorf("failed to export commit %s: %w", c.Short(), err)
		}
		n++
	}
	return n, nil
}

// ReplayOps appends every record in filename onto the cursor of e
func ReplayOps(filename string, e *evolution.EvolutionLog) (int, error) {
	loaded, err := ops.LoadAllOps(filename)
	if err != nil {
		return 0, fmt.Errorf("failed to load operations: %w", err)
	}
	for _, op := range loaded {
		e.Append(op)
	}
	return len(loaded), nil
}
