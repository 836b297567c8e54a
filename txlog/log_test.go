// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txlog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewCreatesThreeLogFiles(t *testing.T) {
	dir := t.TempDir()
	m, err := New(dir, 3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer m.Close()

	log := m.Logger("TEST")
	log.Info("node starting")
	m.LogError("TEST", "something went wrong: %d", 7)
	m.LogRawMessage("127.0.0.1:8333", "version", 102)

	for _, name := range []string{"btcnode.log", "btcnode-error.log", "btcnode-raw.log"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s to exist: %v", name, err)
		}
	}
}
