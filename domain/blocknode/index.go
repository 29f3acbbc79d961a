// Copyright (c) 2015-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blocknode

import (
	"github.com/kaspanet/utxochain/domain/consensus/model/externalapi"
)

// Index provides facilities for keeping track of the in-memory nodes of the
// fork tree, keyed by block hash.
//
// This type is NOT safe for concurrent access.
type Index struct {
	index map[externalapi.DomainHash]*Node
}

// NewIndex returns a new empty instance of a block Index.
func NewIndex() *Index {
	return &Index{
		index: make(map[externalapi.DomainHash]*Node),
	}
}

// Has returns whether or not the block Index contains the provided hash.
func (bi *Index) Has(hash *externalapi.DomainHash) bool {
	_, ok := bi.index[*hash]
	return ok
}

// Lookup returns the block node identified by the provided hash.
func (bi *Index) Lookup(hash *externalapi.DomainHash) (*Node, bool) {
	node, ok := bi.index[*hash]
	return node, ok
}

// Add adds the provided node to the block Index. Duplicate entries are not
// checked so it is up to caller to avoid adding them.
func (bi *Index) Add(node *Node) {
	bi.index[*node.hash] = node
}

// Remove removes the node with the given hash from the Index. Links between
// the node and its parent or children are left to the caller.
func (bi *Index) Remove(hash *externalapi.DomainHash) {
	delete(bi.index, *hash)
}

// Len returns the number of nodes in the Index.
func (bi *Index) Len() int {
	return len(bi.index)
}

// Nodes returns all nodes in the Index in no particular order.
func (bi *Index) Nodes() []*Node {
	nodes := make([]*Node, 0, len(bi.index))
	for _, node := range bi.index {
		nodes = append(nodes, node)
	}
	return nodes
}
