package externalapi

// DomainBlock represents a block. ParentHash is nil only for the genesis
// block. Structural validity (proof-of-work, encoding) is established
// upstream; the consensus core only inspects the ledger effects.
type DomainBlock struct {
	ParentHash   *DomainHash
	Coinbase     *DomainTransaction
	Transactions []*DomainTransaction
	Nonce        uint64
}

// IsGenesis returns whether the block declares no parent.
func (block *DomainBlock) IsGenesis() bool {
	return block.ParentHash == nil
}

// Clone returns a deep copy of the block.
func (block *DomainBlock) Clone() *DomainBlock {
	var coinbase *DomainTransaction
	if block.Coinbase != nil {
		coinbase = block.Coinbase.Clone()
	}
	transactions := make([]*DomainTransaction, len(block.Transactions))
	for i, tx := range block.Transactions {
		transactions[i] = tx.Clone()
	}
	return &DomainBlock{
		ParentHash:   block.ParentHash.Clone(),
		Coinbase:     coinbase,
		Transactions: transactions,
		Nonce:        block.Nonce,
	}
}
