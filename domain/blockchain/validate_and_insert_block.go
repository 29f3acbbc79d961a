package blockchain

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/kaspanet/utxochain/domain/blocknode"
	"github.com/kaspanet/utxochain/domain/consensus/model/externalapi"
	"github.com/kaspanet/utxochain/domain/consensus/processes/transactionvalidator"
	"github.com/kaspanet/utxochain/domain/consensus/ruleerrors"
	"github.com/kaspanet/utxochain/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/utxochain/infrastructure/logger"
	"github.com/pkg/errors"
)

// AddBlock attempts to add block to the chain and returns whether it was
// accepted. The reason for a rejection is logged.
func (bc *BlockChain) AddBlock(block *externalapi.DomainBlock) bool {
	err := bc.ValidateAndInsertBlock(block)
	if err != nil {
		log.Debugf("Rejected block: %s", err)
		return false
	}
	return true
}

// ValidateAndInsertBlock validates block against the UTXO set of its parent
// and, if it is valid, adds it to the chain. The block becomes the tip if it
// is higher than the current tip. Rejections are reported as rule errors;
// a rejected block leaves the chain unchanged.
func (bc *BlockChain) ValidateAndInsertBlock(block *externalapi.DomainBlock) error {
	onEnd := logger.LogAndMeasureExecutionTime(log, "ValidateAndInsertBlock")
	defer onEnd()

	if block == nil {
		return errors.New("cannot insert a nil block")
	}
	blockHash := consensushashing.BlockHash(block)
	log.Tracef("Validating block %s: %s", blockHash, logger.NewLogClosure(func() string {
		return spew.Sdump(block)
	}))

	if block.ParentHash == nil {
		return errors.Wrapf(ruleerrors.ErrNoParents, "block %s has no parent", blockHash)
	}
	err := checkCoinbase(block)
	if err != nil {
		return err
	}
	if bc.index.Has(blockHash) {
		return errors.Wrapf(ruleerrors.ErrDuplicateBlock, "block %s already exists", blockHash)
	}

	parent, ok := bc.index.Lookup(block.ParentHash)
	if !ok {
		return ruleerrors.NewErrMissingParents([]*externalapi.DomainHash{block.ParentHash})
	}

	height := parent.Height() + 1
	if height+CutoffDepth <= bc.maxHeight {
		return errors.Wrapf(ruleerrors.ErrHeightBelowCutoff, "block %s at height %d is not above "+
			"the cutoff height %d", blockHash, height, bc.maxHeight-CutoffDepth)
	}

	utxoSet, ok := parent.UTXOSetCopy()
	if !ok {
		// Sets are released only below the cutoff height, which was checked above.
		return errors.Errorf("the UTXO set of parent %s was released", parent.Hash())
	}
	validator := transactionvalidator.New(utxoSet, bc.verifier)
	accepted, rejected := validator.Apply(block.Transactions)
	if len(accepted) < len(block.Transactions) {
		return ruleerrors.NewErrInvalidTransactionsInNewBlock(rejected)
	}
	validator.AddTransactionOutputs(block.Coinbase)

	node := blocknode.NewNode(block, blockHash, parent, validator.UTXOSet())
	bc.index.Add(node)
	log.Debugf("Added block %s at height %d with %d transactions", blockHash, height, len(block.Transactions))

	if node.Height() > bc.maxHeight {
		bc.maxHeight = node.Height()
		bc.tip = node
		log.Infof("New tip %s at height %d", blockHash, bc.maxHeight)
		bc.pruneStaleNodes()
	}
	return nil
}

func checkCoinbase(block *externalapi.DomainBlock) error {
	if block.Coinbase == nil {
		return errors.Wrap(ruleerrors.ErrBadCoinbaseTransaction, "block has no coinbase transaction")
	}
	if !block.Coinbase.IsCoinbase() {
		return errors.Wrapf(ruleerrors.ErrBadCoinbaseTransaction, "coinbase transaction has %d inputs",
			len(block.Coinbase.Inputs))
	}
	return nil
}
