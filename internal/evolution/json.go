package evolution

import (
	"encoding/json"
	"fmt"

	"evolog/internal/ops"
	"evolog/internal/oplog"

	"github.com/sirupsen/logrus"
)

type evolutionJSON struct {
	Cursor ops.Sha      `json:"cursor"`
	OpLog  *oplog.OpLog `json:"oplog"`
}

func (e *EvolutionLog) MarshalJSON() ([]byte, error) {
	return json.Marshal(evolutionJSON{Cursor: e.cursor, OpLog: e.oplog})
}

// Decode restores a log written by MarshalJSON. The history must verify and
// the cursor must name one of its commits.
func Decode(data []byte, logger *logrus.Entry) (*EvolutionLog, error) {
	raw := evolutionJSON{OpLog: oplog.New()}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal evolution log: %w", err)
	}
	if raw.OpLog == nil {
		return nil, fmt.Errorf("invalid evolution log: missing oplog")
	}
	e := &EvolutionLog{
		cursor: raw.Cursor,
		oplog:  raw.OpLog,
		log:    loggerOrDiscard(logger),
	}
	if err := e.Verify(); err != nil {
		return nil, fmt.Errorf("invalid evolution log: %w", err)
	}
	e.log.WithFields(logrus.Fields{
		"commits": e.Len(),
		"cursor":  shortSha(e.cursor),
	}).Debug("decoded evolution log")
	return e, nil
}
