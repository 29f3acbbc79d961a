package blockchain

import (
	"github.com/kaspanet/utxochain/domain/consensus/model/externalapi"
	"github.com/kaspanet/utxochain/domain/consensus/utils/txsigning"
)

// CutoffDepth is the distance below the maximum height at which blocks stop
// being admitted. A block is admissible only if its height is greater than
// the maximum height minus CutoffDepth, and nodes at or below that height
// that no retained node descends from are evicted.
const CutoffDepth = 10

// BlockArchive receives the blocks evicted from the fork tree.
type BlockArchive interface {
	ArchiveBlocks(blocks []*externalapi.DomainBlock) error
}

// Config holds the parameters of a BlockChain.
type Config struct {
	// Genesis is the first block of the chain. Only its coinbase is applied.
	Genesis *externalapi.DomainBlock

	// Verifier verifies input signatures. Defaults to Schnorr verification.
	Verifier txsigning.Verifier

	// Archive, if set, receives every evicted block.
	Archive BlockArchive
}
