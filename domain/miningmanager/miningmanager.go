package miningmanager

import (
	"github.com/kaspanet/utxochain/domain/blockchain"
	"github.com/kaspanet/utxochain/domain/consensus/model/externalapi"
	"github.com/kaspanet/utxochain/domain/consensus/processes/transactionvalidator"
	"github.com/kaspanet/utxochain/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/utxochain/domain/consensus/utils/txsigning"
	"github.com/kaspanet/utxochain/domain/miningmanager/blocktemplatebuilder"
	"github.com/pkg/errors"
)

// MiningManager creates block templates for mining as well as maintaining
// known transactions that have no yet been added to any block
type MiningManager interface {
	GetBlockTemplate(coinbasePublicKey []byte, reward int64, nonce uint64) (*externalapi.DomainBlock, error)
	HandleNewBlock(block *externalapi.DomainBlock) error
	ValidateAndInsertTransaction(transaction *externalapi.DomainTransaction) error
}

type miningManager struct {
	chain                *blockchain.BlockChain
	verifier             txsigning.Verifier
	blockTemplateBuilder *blocktemplatebuilder.BlockTemplateBuilder
}

// New returns a MiningManager over chain. A nil verifier means Schnorr
// verification.
func New(chain *blockchain.BlockChain, verifier txsigning.Verifier) MiningManager {
	if verifier == nil {
		verifier = txsigning.NewSchnorrVerifier()
	}
	return &miningManager{
		chain:                chain,
		verifier:             verifier,
		blockTemplateBuilder: blocktemplatebuilder.New(chain, verifier),
	}
}

// GetBlockTemplate creates a block template for a miner to consume
func (mm *miningManager) GetBlockTemplate(coinbasePublicKey []byte, reward int64,
	nonce uint64) (*externalapi.DomainBlock, error) {

	return mm.blockTemplateBuilder.BuildBlockTemplate(coinbasePublicKey, reward, nonce)
}

// HandleNewBlock submits block to the chain. If the tip changes, the
// transactions of the blocks that left the selected chain return to the pool
// and the transactions of the blocks that joined it are removed from it.
func (mm *miningManager) HandleNewBlock(block *externalapi.DomainBlock) error {
	oldTipHash := mm.chain.TipHash()
	err := mm.chain.ValidateAndInsertBlock(block)
	if err != nil {
		return err
	}
	newTipHash := mm.chain.TipHash()
	if newTipHash.Equal(oldTipHash) {
		return nil
	}

	removed, added, err := mm.findChainChanges(oldTipHash, newTipHash)
	if err != nil {
		return err
	}

	pool := mm.chain.TransactionPool()
	restored := 0
	// Lowest first, so that a restored transaction follows the ones it spends.
	for i := len(removed) - 1; i >= 0; i-- {
		for _, transaction := range removed[i].Transactions {
			if pool.AddTransaction(transaction) {
				restored++
			}
		}
	}
	removedCount := 0
	for _, addedBlock := range added {
		for _, transaction := range addedBlock.Transactions {
			if pool.RemoveTransaction(consensushashing.TransactionID(transaction)) {
				removedCount++
			}
		}
	}
	if restored > 0 || removedCount > 0 {
		log.Debugf("Tip moved from %s to %s: %d transactions returned to the pool, %d removed",
			oldTipHash, newTipHash, restored, removedCount)
	}
	return nil
}

// findChainChanges walks back from both tips to their common ancestor and returns
// the blocks above it on the old and on the new selected chain.
func (mm *miningManager) findChainChanges(oldTipHash, newTipHash *externalapi.DomainHash) (
	removed, added []*externalapi.DomainBlock, err error) {

	type cursor struct {
		hash   *externalapi.DomainHash
		block  *externalapi.DomainBlock
		height uint64
	}
	lookup := func(hash *externalapi.DomainHash) (*cursor, error) {
		block, ok := mm.chain.Block(hash)
		if !ok {
			return nil, errors.Errorf("block %s is not retained", hash)
		}
		height, _ := mm.chain.BlockHeight(hash)
		return &cursor{hash: hash, block: block, height: height}, nil
	}

	oldCursor, err := lookup(oldTipHash)
	if err != nil {
		return nil, nil, err
	}
	newCursor, err := lookup(newTipHash)
	if err != nil {
		return nil, nil, err
	}
	for !oldCursor.hash.Equal(newCursor.hash) {
		if oldCursor.height >= newCursor.height {
			removed = append(removed, oldCursor.block)
			oldCursor, err = lookup(oldCursor.block.ParentHash)
		} else {
			added = append(added, newCursor.block)
			newCursor, err = lookup(newCursor.block.ParentHash)
		}
		if err != nil {
			return nil, nil, err
		}
	}
	return removed, added, nil
}

// ValidateAndInsertTransaction validates the given transaction against the
// UTXO set of the current tip, and adds it to the set of known transactions
// that have not yet been added to any block
func (mm *miningManager) ValidateAndInsertTransaction(transaction *externalapi.DomainTransaction) error {
	if transaction.IsCoinbase() {
		return errors.Errorf("transaction %s is a coinbase transaction",
			consensushashing.TransactionID(transaction))
	}
	validator := transactionvalidator.New(mm.chain.TipUTXOSet(), mm.verifier)
	err := validator.ValidateTransaction(transaction)
	if err != nil {
		return err
	}
	mm.chain.AddTransaction(transaction)
	return nil
}
