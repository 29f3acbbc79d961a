// Copyright (c) 2015-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blocknode

import (
	"github.com/kaspanet/utxochain/domain/consensus/model/externalapi"
	"github.com/kaspanet/utxochain/domain/consensus/utils/utxo"
)

// Node represents a block within the fork tree, together with the UTXO set
// that results from applying the block on top of its ancestors.
//
// The parent and the children of a node are referenced by hash and are
// resolved through the Index holding the nodes.
type Node struct {
	hash       *externalapi.DomainHash
	block      *externalapi.DomainBlock
	parentHash *externalapi.DomainHash

	// height is the position of the node in the tree. The genesis node has
	// height 1 and every other node is one higher than its parent.
	height uint64

	// utxoSet is nil once released.
	utxoSet        *utxo.Set
	utxoCommitment *externalapi.DomainHash

	children []*externalapi.DomainHash
}

// NewNode returns a new node for block, identified by hash, holding
// utxoSet as its resulting UTXO set. The node takes ownership of utxoSet.
// A nil parent makes the node a genesis node; otherwise the node is
// registered as a child of parent.
func NewNode(block *externalapi.DomainBlock, hash *externalapi.DomainHash, parent *Node, utxoSet *utxo.Set) *Node {
	node := &Node{
		hash:           hash.Clone(),
		block:          block,
		height:         1,
		utxoSet:        utxoSet,
		utxoCommitment: utxoSet.Commitment(),
	}
	if parent != nil {
		node.parentHash = parent.hash.Clone()
		node.height = parent.height + 1
		parent.children = append(parent.children, node.hash)
	}
	return node
}

// Hash returns the hash of the node's block.
func (node *Node) Hash() *externalapi.DomainHash {
	return node.hash
}

// Block returns the node's block.
func (node *Node) Block() *externalapi.DomainBlock {
	return node.block
}

// ParentHash returns the hash of the node's parent, or nil for a genesis node.
func (node *Node) ParentHash() *externalapi.DomainHash {
	return node.parentHash
}

// Height returns the height of the node.
func (node *Node) Height() uint64 {
	return node.height
}

// IsGenesis returns whether the node has no parent.
func (node *Node) IsGenesis() bool {
	return node.parentHash == nil
}

// Children returns a copy of the hashes of the node's children, in the
// order they were added.
func (node *Node) Children() []*externalapi.DomainHash {
	children := make([]*externalapi.DomainHash, len(node.children))
	copy(children, node.children)
	return children
}

// RemoveChild forgets the child with the given hash, if it exists.
func (node *Node) RemoveChild(childHash *externalapi.DomainHash) {
	for i, child := range node.children {
		if child.Equal(childHash) {
			node.children = append(node.children[:i], node.children[i+1:]...)
			return
		}
	}
}

// UTXOSetCopy returns a clone of the node's UTXO set. Mutating the clone
// never affects the node. It returns false if the set was released.
func (node *Node) UTXOSetCopy() (*utxo.Set, bool) {
	if node.utxoSet == nil {
		return nil, false
	}
	return node.utxoSet.Clone(), true
}

// UTXOCommitment returns the commitment to the node's UTXO set. It remains
// available after the set is released.
func (node *Node) UTXOCommitment() *externalapi.DomainHash {
	return node.utxoCommitment
}

// HasUTXOSet returns whether the node still holds its UTXO set.
func (node *Node) HasUTXOSet() bool {
	return node.utxoSet != nil
}

// ReleaseUTXOSet drops the node's UTXO set. Nodes that can no longer have
// blocks built on top of them don't need it.
func (node *Node) ReleaseUTXOSet() {
	node.utxoSet = nil
}

// Less returns whether node sorts before other: lower nodes first, then by
// hash.
func (node *Node) Less(other *Node) bool {
	if node.height != other.height {
		return node.height < other.height
	}
	return node.hash.Less(other.hash)
}
