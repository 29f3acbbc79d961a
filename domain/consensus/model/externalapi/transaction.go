package externalapi

import (
	"fmt"
)

// DomainTransaction represents a transaction. A transaction without inputs
// is a coinbase.
type DomainTransaction struct {
	Inputs  []*DomainTransactionInput
	Outputs []*DomainTransactionOutput
	Payload []byte
}

// DomainTransactionInput references an unspent output and carries the
// signature authorizing its spend.
type DomainTransactionInput struct {
	PreviousOutpoint DomainOutpoint
	Signature        []byte
}

// DomainOutpoint identifies a transaction output: the ID of the producing
// transaction and the index of the output within it.
type DomainOutpoint struct {
	TransactionID DomainTransactionID
	Index         uint32
}

// NewDomainOutpoint returns a new outpoint for the given transaction ID and index.
func NewDomainOutpoint(transactionID *DomainTransactionID, index uint32) *DomainOutpoint {
	return &DomainOutpoint{
		TransactionID: *transactionID,
		Index:         index,
	}
}

// String stringifies an outpoint.
func (op DomainOutpoint) String() string {
	return fmt.Sprintf("%s:%d", op.TransactionID, op.Index)
}

// DomainTransactionOutput is a value paid to the owner of PublicKey.
type DomainTransactionOutput struct {
	Value     int64
	PublicKey []byte
}

// DomainTransactionID represents the ID of a transaction
type DomainTransactionID DomainHash

// String stringifies a transaction ID.
func (id DomainTransactionID) String() string {
	return DomainHash(id).String()
}

// Equal returns whether id equals to other
func (id *DomainTransactionID) Equal(other *DomainTransactionID) bool {
	return (*DomainHash)(id).Equal((*DomainHash)(other))
}

// IsCoinbase returns whether the transaction has no inputs.
func (tx *DomainTransaction) IsCoinbase() bool {
	return len(tx.Inputs) == 0
}

// Clone returns a deep copy of the transaction.
func (tx *DomainTransaction) Clone() *DomainTransaction {
	inputs := make([]*DomainTransactionInput, len(tx.Inputs))
	for i, input := range tx.Inputs {
		inputs[i] = &DomainTransactionInput{
			PreviousOutpoint: input.PreviousOutpoint,
			Signature:        cloneBytes(input.Signature),
		}
	}
	outputs := make([]*DomainTransactionOutput, len(tx.Outputs))
	for i, output := range tx.Outputs {
		outputs[i] = &DomainTransactionOutput{
			Value:     output.Value,
			PublicKey: cloneBytes(output.PublicKey),
		}
	}
	return &DomainTransaction{
		Inputs:  inputs,
		Outputs: outputs,
		Payload: cloneBytes(tx.Payload),
	}
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	clone := make([]byte, len(b))
	copy(clone, b)
	return clone
}
