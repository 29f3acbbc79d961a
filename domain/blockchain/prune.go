package blockchain

import (
	"github.com/kaspanet/utxochain/domain/blocknode"
	"github.com/kaspanet/utxochain/domain/consensus/model/externalapi"
	"github.com/kaspanet/utxochain/domain/consensus/utils/hashset"
)

// pruneStaleNodes evicts the nodes at or below the cutoff height that no
// node above it descends from, and releases the UTXO sets of the remaining
// nodes that are below the cutoff height. Evicted blocks are passed to the
// archive lowest first.
//
// Ancestors of the retained nodes are never evicted, so the node count still
// grows with the chain. Only the memory held by UTXO sets is bounded.
func (bc *BlockChain) pruneStaleNodes() {
	if bc.maxHeight <= CutoffDepth {
		return
	}
	cutoffHeight := bc.maxHeight - CutoffDepth

	ancestors := hashset.New()
	for _, node := range bc.index.Nodes() {
		if node.Height() <= cutoffHeight {
			continue
		}
		for parentHash := node.ParentHash(); parentHash != nil && !ancestors.Contains(parentHash); {
			ancestors.Add(parentHash)
			parent, ok := bc.index.Lookup(parentHash)
			if !ok {
				break
			}
			parentHash = parent.ParentHash()
		}
	}

	var stale []*blocknode.Node
	for _, node := range bc.index.Nodes() {
		if node.Height() > cutoffHeight {
			continue
		}
		if !ancestors.Contains(node.Hash()) {
			stale = append(stale, node)
			continue
		}
		if node.Height() < cutoffHeight && node.HasUTXOSet() {
			node.ReleaseUTXOSet()
		}
	}
	if len(stale) == 0 {
		return
	}

	evicted := blocknode.NewUpHeap()
	evicted.PushSlice(stale)

	blocks := make([]*externalapi.DomainBlock, 0, evicted.Len())
	for evicted.Len() > 0 {
		node := evicted.Pop()
		bc.index.Remove(node.Hash())
		if !node.IsGenesis() {
			if parent, ok := bc.index.Lookup(node.ParentHash()); ok {
				parent.RemoveChild(node.Hash())
			}
		}
		blocks = append(blocks, node.Block())
	}
	log.Debugf("Evicted %d blocks at or below height %d. %d blocks remain",
		len(blocks), cutoffHeight, bc.index.Len())

	if bc.archive == nil {
		return
	}
	err := bc.archive.ArchiveBlocks(blocks)
	if err != nil {
		log.Errorf("Failed to archive %d evicted blocks: %+v", len(blocks), err)
	}
}
