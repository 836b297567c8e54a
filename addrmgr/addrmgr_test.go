// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

import "testing"

func TestNextCandidatesExcludesInUseAndNonRetryable(t *testing.T) {
	m := New([]string{"a:8333", "b:8333", "c:8333"})

	first := m.NextCandidates(2)
	if len(first) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(first))
	}

	m.MarkNonRetryable(first[0])
	m.Release(first[1])

	second := m.NextCandidates(2)
	for _, addr := range second {
		if addr == first[0] {
			t.Fatalf("non-retryable address %s was reissued", addr)
		}
	}
	if len(second) != 2 {
		t.Fatalf("expected released + remaining candidate, got %d: %v", len(second), second)
	}
}

func TestDuplicateAddressesCollapse(t *testing.T) {
	m := New([]string{"a:8333", "a:8333", "b:8333"})
	if m.Len() != 2 {
		t.Fatalf("expected duplicates collapsed to 2, got %d", m.Len())
	}
}

func TestRetryableCount(t *testing.T) {
	m := New([]string{"a:8333", "b:8333"})
	if got := m.RetryableCount(); got != 2 {
		t.Fatalf("RetryableCount() = %d, want 2", got)
	}
	addrs := m.NextCandidates(1)
	if got := m.RetryableCount(); got != 1 {
		t.Fatalf("RetryableCount() after claim = %d, want 1", got)
	}
	m.MarkNonRetryable(addrs[0])
	if got := m.RetryableCount(); got != 1 {
		t.Fatalf("RetryableCount() after non-retryable = %d, want 1", got)
	}
}
