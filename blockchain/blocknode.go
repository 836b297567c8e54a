// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"time"

	"github.com/btcnode/node/chainhash"
	"github.com/btcnode/node/wire"
)

// blockNode represents a block within the header chain and is used to
// efficiently track the full chain of block headers without requiring the
// full block data for ancestors other than the current tip.
type blockNode struct {
	parent *blockNode
	hash   chainhash.Hash
	height int64

	version    int32
	bits       uint32
	nonce      uint32
	timestamp  int64
	merkleRoot chainhash.Hash
}

// newBlockNode returns a new block node for the given block header and
// parent node, filling in the height accordingly. It is the caller's
// responsibility to set parent to nil when this is the genesis node.
func newBlockNode(header *wire.BlockHeader, parent *blockNode) *blockNode {
	node := &blockNode{
		parent:     parent,
		hash:       header.BlockHash(),
		version:    header.Version,
		bits:       header.Bits,
		nonce:      header.Nonce,
		timestamp:  header.Timestamp.Unix(),
		merkleRoot: header.MerkleRoot,
	}
	if parent != nil {
		node.height = parent.height + 1
	}
	return node
}

// Header reconstructs the block header for this node from the data stored
// in the node.
func (node *blockNode) Header() wire.BlockHeader {
	var prevHash chainhash.Hash
	if node.parent != nil {
		prevHash = node.parent.hash
	}
	return wire.BlockHeader{
		Version:    node.version,
		PrevBlock:  prevHash,
		MerkleRoot: node.merkleRoot,
		Timestamp:  time.Unix(node.timestamp, 0),
		Bits:       node.bits,
		Nonce:      node.nonce,
	}
}

// ancestorAt returns the ancestor of node at the given height, walking the
// parent chain. Returns nil if height is out of range for this branch.
func (node *blockNode) ancestorAt(height int64) *blockNode {
	if node == nil || height < 0 || height > node.height {
		return nil
	}
	n := node
	for n != nil && n.height > height {
		n = n.parent
	}
	return n
}
