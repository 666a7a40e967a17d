package logging

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// New builds a text logger writing to w at the named level
func New(w io.Writer, level string) (*logrus.Entry, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(lvl)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	return logrus.NewEntry(l).WithField("component", "evolog"), nil
}
