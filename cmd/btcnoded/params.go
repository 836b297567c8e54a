// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/btcnode/node/chaincfg"
)

// selectParams returns the chain parameters identified by name, the way
// activeNetParams was picked from a fixed table of supported networks.
func selectParams(name string) (*chaincfg.Params, error) {
	switch name {
	case "", "mainnet":
		return chaincfg.MainNetParams(), nil
	case "testnet", "testnet3":
		return chaincfg.TestNet3Params(), nil
	case "regnet", "regtest":
		return chaincfg.RegNetParams(), nil
	default:
		return nil, fmt.Errorf("unknown network %q", name)
	}
}
