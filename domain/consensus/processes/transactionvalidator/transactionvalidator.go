package transactionvalidator

import (
	"github.com/kaspanet/utxochain/domain/consensus/model/externalapi"
	"github.com/kaspanet/utxochain/domain/consensus/utils/txsigning"
	"github.com/kaspanet/utxochain/domain/consensus/utils/utxo"
)

// TransactionValidator validates transactions against a working UTXO set
// and applies the ones it accepts to that set.
//
// This type is NOT safe for concurrent access.
type TransactionValidator struct {
	utxoSet  *utxo.Set
	verifier txsigning.Verifier
}

// New instantiates a new TransactionValidator. The validator takes ownership
// of utxoSet and mutates it as transactions are applied, so callers should
// pass a clone of any set they intend to keep.
func New(utxoSet *utxo.Set, verifier txsigning.Verifier) *TransactionValidator {
	return &TransactionValidator{
		utxoSet:  utxoSet,
		verifier: verifier,
	}
}

// UTXOSet returns the working set of the validator, reflecting every
// transaction applied so far.
func (v *TransactionValidator) UTXOSet() *utxo.Set {
	return v.utxoSet
}

// IsValid returns whether tx passes ValidateTransaction against the current
// working set.
func (v *TransactionValidator) IsValid(tx *externalapi.DomainTransaction) bool {
	return v.ValidateTransaction(tx) == nil
}

// ValidateTransaction validates tx against the current working set and
// returns the first rule it violates. The rules are checked in order:
// every input references an unspent output, every signature is valid, no
// output is spent twice, no output value is negative, and the inputs are
// worth at least as much as the outputs.
func (v *TransactionValidator) ValidateTransaction(tx *externalapi.DomainTransaction) error {
	entries, err := v.checkInputsExist(tx)
	if err != nil {
		return err
	}

	err = v.checkSignatures(tx, entries)
	if err != nil {
		return err
	}

	err = checkDuplicateTransactionInputs(tx)
	if err != nil {
		return err
	}

	totalOut, err := checkTransactionOutputAmounts(tx)
	if err != nil {
		return err
	}

	totalIn, err := checkTransactionInputAmounts(entries)
	if err != nil {
		return err
	}

	return checkSpend(totalIn, totalOut)
}
