// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package config

import "testing"

func TestValidateRejectsDualAddressSource(t *testing.T) {
	cfg := &Config{
		ConnectToDNS:          true,
		DNSSeed:               "seed.example.com",
		CustomNodeIPs:         "127.0.0.1",
		BlocksDownloadPerNode: 16,
		HeightFirstBlock:      100,
	}
	if err := cfg.validate(); err == nil {
		t.Fatalf("expected an error when both dns_seed and custom_nodes_ips are set")
	}
}

func TestValidateRejectsNoAddressSource(t *testing.T) {
	cfg := &Config{
		BlocksDownloadPerNode: 16,
		HeightFirstBlock:      100,
	}
	if err := cfg.validate(); err == nil {
		t.Fatalf("expected an error when neither address source is configured")
	}
}

func TestValidateRejectsMissingFirstBlockPosition(t *testing.T) {
	cfg := &Config{
		ConnectToDNS:          true,
		DNSSeed:               "seed.example.com",
		BlocksDownloadPerNode: 16,
		HeightFirstBlock:      -1,
	}
	if err := cfg.validate(); err == nil {
		t.Fatalf("expected an error when no first-block position is configured")
	}
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	cfg := &Config{
		ConnectToDNS:          true,
		DNSSeed:               "seed.example.com",
		BlocksDownloadPerNode: 16,
		HeightFirstBlock:      0,
	}
	if err := cfg.validate(); err != nil {
		t.Fatalf("validate() = %v, want nil", err)
	}
}

func TestFirstBlockDateParsesConfiguredFormat(t *testing.T) {
	cfg := &Config{DateFirstBlock: "2021-06-01", DateFormat: "2006-01-02"}
	got, err := cfg.FirstBlockDate()
	if err != nil {
		t.Fatalf("FirstBlockDate: %v", err)
	}
	if got.Year() != 2021 || got.Month() != 6 || got.Day() != 1 {
		t.Fatalf("FirstBlockDate() = %v, want 2021-06-01", got)
	}
}
