// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package txlog provides the node's subsystem-tagged leveled logging,
// backed by rotating log files: one for info-and-above messages, one for
// errors, and a third for raw inbound peer messages.
package txlog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"
)

// logWriter fans bytes written to it out to both a rotator-backed file
// and, for the info log, standard output.
type logWriter struct {
	file   *rotator.Rotator
	toTerm bool
}

func (w logWriter) Write(p []byte) (int, error) {
	if w.toTerm {
		os.Stdout.Write(p)
	}
	w.file.Write(p)
	return len(p), nil
}

// Manager owns the node's three append-only log files (info, error, and
// raw inbound peer messages) and hands out subsystem-tagged loggers drawn
// from a shared slog backend.
type Manager struct {
	infoRotator *rotator.Rotator
	errRotator  *rotator.Rotator
	rawRotator  *rotator.Rotator

	backend *slog.Backend
}

// New creates the node's three log files under logDir (created if
// missing) and returns a Manager ready to mint subsystem loggers.
func New(logDir string, maxRolls int) (*Manager, error) {
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return nil, fmt.Errorf("txlog: create log directory: %w", err)
	}

	infoR, err := rotator.New(filepath.Join(logDir, "btcnode.log"), 10*1024, false, maxRolls)
	if err != nil {
		return nil, fmt.Errorf("txlog: open info log: %w", err)
	}
	errR, err := rotator.New(filepath.Join(logDir, "btcnode-error.log"), 10*1024, false, maxRolls)
	if err != nil {
		return nil, fmt.Errorf("txlog: open error log: %w", err)
	}
	rawR, err := rotator.New(filepath.Join(logDir, "btcnode-raw.log"), 10*1024, false, maxRolls)
	if err != nil {
		return nil, fmt.Errorf("txlog: open raw message log: %w", err)
	}

	m := &Manager{infoRotator: infoR, errRotator: errR, rawRotator: rawR}
	m.backend = slog.NewBackend(logWriter{file: infoR, toTerm: true})
	return m, nil
}

// Logger returns a leveled logger tagged with subsystem, writing through
// the shared info-log backend. Callers route their own error-severity
// messages to the error log via (*Manager).LogError.
func (m *Manager) Logger(subsystem string) slog.Logger {
	l := m.backend.Logger(subsystem)
	l.SetLevel(slog.LevelInfo)
	return l
}

// LogError appends a formatted line to the dedicated error log, in
// addition to whatever the caller separately logs through a subsystem
// Logger at LevelError.
func (m *Manager) LogError(subsystem, format string, args ...interface{}) {
	line := fmt.Sprintf("[%s] "+format+"\n", append([]interface{}{subsystem}, args...)...)
	m.errRotator.Write([]byte(line))
}

// LogRawMessage appends a line describing an inbound peer message to the
// raw message log, independent of the leveled info/error logs.
func (m *Manager) LogRawMessage(peerAddr, command string, payloadLen int) {
	line := fmt.Sprintf("%s command=%s bytes=%d\n", peerAddr, command, payloadLen)
	m.rawRotator.Write([]byte(line))
}

// Close flushes and closes all three rotators.
func (m *Manager) Close() error {
	var firstErr error
	for _, r := range []io.Closer{m.infoRotator, m.errRotator, m.rawRotator} {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
