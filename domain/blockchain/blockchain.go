package blockchain

import (
	"github.com/kaspanet/utxochain/domain/blocknode"
	"github.com/kaspanet/utxochain/domain/consensus/model/externalapi"
	"github.com/kaspanet/utxochain/domain/consensus/processes/transactionvalidator"
	"github.com/kaspanet/utxochain/domain/consensus/ruleerrors"
	"github.com/kaspanet/utxochain/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/utxochain/domain/consensus/utils/txsigning"
	"github.com/kaspanet/utxochain/domain/consensus/utils/utxo"
	"github.com/kaspanet/utxochain/domain/miningmanager/mempool"
	"github.com/pkg/errors"
)

// BlockChain keeps the tree of competing chains rooted at the genesis block,
// selects the tip among them and holds the pool of pending transactions.
//
// BlockChain is NOT safe for concurrent access. Callers must serialize
// AddBlock, ValidateAndInsertBlock and AddTransaction.
type BlockChain struct {
	index           *blocknode.Index
	tip             *blocknode.Node
	maxHeight       uint64
	transactionPool *mempool.TransactionPool
	verifier        txsigning.Verifier
	archive         BlockArchive
}

// New returns a BlockChain holding only cfg.Genesis. The UTXO set of the
// genesis node is built from the outputs of the genesis coinbase; the
// genesis block's other transactions are not applied.
func New(cfg *Config) (*BlockChain, error) {
	genesis := cfg.Genesis
	if genesis == nil {
		return nil, errors.New("a genesis block is required")
	}
	if genesis.Coinbase == nil {
		return nil, errors.Wrap(ruleerrors.ErrBadCoinbaseTransaction, "the genesis block has no coinbase")
	}
	if !genesis.Coinbase.IsCoinbase() {
		return nil, errors.Wrapf(ruleerrors.ErrBadCoinbaseTransaction, "the genesis coinbase has %d inputs",
			len(genesis.Coinbase.Inputs))
	}

	verifier := cfg.Verifier
	if verifier == nil {
		verifier = txsigning.NewSchnorrVerifier()
	}

	validator := transactionvalidator.New(utxo.NewSet(), verifier)
	validator.AddTransactionOutputs(genesis.Coinbase)
	genesisHash := consensushashing.BlockHash(genesis)
	genesisNode := blocknode.NewNode(genesis, genesisHash, nil, validator.UTXOSet())

	index := blocknode.NewIndex()
	index.Add(genesisNode)

	log.Infof("Initialized chain with genesis %s", genesisHash)
	return &BlockChain{
		index:           index,
		tip:             genesisNode,
		maxHeight:       genesisNode.Height(),
		transactionPool: mempool.New(),
		verifier:        verifier,
		archive:         cfg.Archive,
	}, nil
}

// TipBlock returns the block of the current tip.
func (bc *BlockChain) TipBlock() *externalapi.DomainBlock {
	return bc.tip.Block()
}

// TipHash returns the hash of the current tip.
func (bc *BlockChain) TipHash() *externalapi.DomainHash {
	return bc.tip.Hash()
}

// TipUTXOSet returns a copy of the UTXO set of the current tip. Mutating it
// does not affect the chain.
func (bc *BlockChain) TipUTXOSet() *utxo.Set {
	utxoSet, ok := bc.tip.UTXOSetCopy()
	if !ok {
		// The tip is above the eviction threshold, so its set is never released.
		panic(errors.Errorf("tip %s has no UTXO set", bc.tip.Hash()))
	}
	return utxoSet
}

// TipUTXOCommitment returns the MuHash commitment of the tip's UTXO set.
func (bc *BlockChain) TipUTXOCommitment() *externalapi.DomainHash {
	return bc.tip.UTXOCommitment()
}

// MaxHeight returns the height of the current tip.
func (bc *BlockChain) MaxHeight() uint64 {
	return bc.maxHeight
}

// TransactionPool returns the pool of pending transactions.
func (bc *BlockChain) TransactionPool() *mempool.TransactionPool {
	return bc.transactionPool
}

// AddTransaction adds tx to the pool of pending transactions. tx is not
// validated; it is validated only when included in a block.
func (bc *BlockChain) AddTransaction(tx *externalapi.DomainTransaction) {
	bc.transactionPool.AddTransaction(tx)
}

// HaveBlock returns whether the block with the given hash is retained.
func (bc *BlockChain) HaveBlock(blockHash *externalapi.DomainHash) bool {
	return bc.index.Has(blockHash)
}

// BlockHeight returns the height of the retained block with the given hash.
func (bc *BlockChain) BlockHeight(blockHash *externalapi.DomainHash) (uint64, bool) {
	node, ok := bc.index.Lookup(blockHash)
	if !ok {
		return 0, false
	}
	return node.Height(), true
}

// Block returns the retained block with the given hash.
func (bc *BlockChain) Block(blockHash *externalapi.DomainHash) (*externalapi.DomainBlock, bool) {
	node, ok := bc.index.Lookup(blockHash)
	if !ok {
		return nil, false
	}
	return node.Block(), true
}

// NodeCount returns the number of retained blocks.
func (bc *BlockChain) NodeCount() int {
	return bc.index.Len()
}

// Tips returns the hashes of the retained blocks with no retained children,
// highest first. The current tip is always among them.
func (bc *BlockChain) Tips() []*externalapi.DomainHash {
	leaves := blocknode.NewDownHeap()
	for _, node := range bc.index.Nodes() {
		if len(node.Children()) == 0 {
			leaves.Push(node)
		}
	}
	tips := make([]*externalapi.DomainHash, 0, leaves.Len())
	for leaves.Len() > 0 {
		tips = append(tips, leaves.Pop().Hash())
	}
	return tips
}
