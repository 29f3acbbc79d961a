// Package testutils provides fixtures shared by the tests of the consensus
// packages: deterministic keys and builders for signed transactions and
// blocks.
package testutils

import (
	"encoding/binary"
	"testing"

	"github.com/kaspanet/go-secp256k1"
	"github.com/kaspanet/utxochain/domain/consensus/model/externalapi"
	"github.com/kaspanet/utxochain/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/utxochain/domain/consensus/utils/txsigning"
)

// Participant is a key pair together with its serialized public key.
type Participant struct {
	KeyPair   *secp256k1.SchnorrKeyPair
	PublicKey []byte
}

// NewParticipant deterministically derives a Participant from name.
func NewParticipant(t testing.TB, name string) *Participant {
	keyPair, err := txsigning.KeyPairFromSeed([]byte(name))
	if err != nil {
		t.Fatalf("KeyPairFromSeed: %+v", err)
	}
	publicKey, err := txsigning.PublicKey(keyPair)
	if err != nil {
		t.Fatalf("PublicKey: %+v", err)
	}
	return &Participant{KeyPair: keyPair, PublicKey: publicKey}
}

// Output returns a transaction output paying value to p.
func (p *Participant) Output(value int64) *externalapi.DomainTransactionOutput {
	return &externalapi.DomainTransactionOutput{Value: value, PublicKey: p.PublicKey}
}

// Coinbase returns a coinbase transaction with the given outputs. tag is
// written to the payload so coinbases with equal outputs get different IDs.
func Coinbase(tag uint64, outputs ...*externalapi.DomainTransactionOutput) *externalapi.DomainTransaction {
	payload := make([]byte, 8)
	binary.LittleEndian.PutUint64(payload, tag)
	return &externalapi.DomainTransaction{
		Inputs:  []*externalapi.DomainTransactionInput{},
		Outputs: outputs,
		Payload: payload,
	}
}

// Outpoint returns the outpoint of output index of tx.
func Outpoint(tx *externalapi.DomainTransaction, index uint32) *externalapi.DomainOutpoint {
	return externalapi.NewDomainOutpoint(consensushashing.TransactionID(tx), index)
}

// Spend returns a transaction spending outpoints to outputs, with every
// input signed by owner.
func Spend(t testing.TB, owner *Participant, outpoints []*externalapi.DomainOutpoint,
	outputs ...*externalapi.DomainTransactionOutput) *externalapi.DomainTransaction {

	tx := UnsignedSpend(outpoints, outputs...)
	err := txsigning.SignAllInputs(tx, owner.KeyPair)
	if err != nil {
		t.Fatalf("SignAllInputs: %+v", err)
	}
	return tx
}

// UnsignedSpend returns a transaction spending outpoints to outputs, without
// signatures.
func UnsignedSpend(outpoints []*externalapi.DomainOutpoint,
	outputs ...*externalapi.DomainTransactionOutput) *externalapi.DomainTransaction {

	inputs := make([]*externalapi.DomainTransactionInput, len(outpoints))
	for i, outpoint := range outpoints {
		inputs[i] = &externalapi.DomainTransactionInput{PreviousOutpoint: *outpoint}
	}
	return &externalapi.DomainTransaction{Inputs: inputs, Outputs: outputs}
}

// Block returns a block on top of parent holding coinbase and transactions.
func Block(parent *externalapi.DomainHash, coinbase *externalapi.DomainTransaction,
	transactions ...*externalapi.DomainTransaction) *externalapi.DomainBlock {

	if transactions == nil {
		transactions = []*externalapi.DomainTransaction{}
	}
	return &externalapi.DomainBlock{
		ParentHash:   parent,
		Coinbase:     coinbase,
		Transactions: transactions,
	}
}
