// Package logging provides the default zmtp.Logger implementation, backed
// by logrus.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/jabolina/go-zmtp/zmtp"
)

// Default wraps a *logrus.Logger to satisfy zmtp.Logger.
type Default struct {
	*logrus.Logger
}

// NewDefault returns a logrus-backed logger writing to stderr at Info
// level, until ToggleDebug(true) is called.
func NewDefault() *Default {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	return &Default{Logger: l}
}

// ToggleDebug flips the logger between Info and Debug level, mirroring the
// teacher's DefaultLogger.ToggleDebug.
func (d *Default) ToggleDebug(enabled bool) bool {
	if enabled {
		d.SetLevel(logrus.DebugLevel)
	} else {
		d.SetLevel(logrus.InfoLevel)
	}
	return enabled
}

var _ zmtp.Logger = (*Default)(nil)
