package transactionvalidator

import (
	"math"

	"github.com/kaspanet/utxochain/domain/consensus/model/externalapi"
	"github.com/kaspanet/utxochain/domain/consensus/ruleerrors"
	"github.com/kaspanet/utxochain/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/utxochain/domain/consensus/utils/utxo"
	"github.com/pkg/errors"
)

func (v *TransactionValidator) checkInputsExist(tx *externalapi.DomainTransaction) ([]*utxo.Entry, error) {
	entries := make([]*utxo.Entry, len(tx.Inputs))
	var missingOutpoints []*externalapi.DomainOutpoint
	for i, input := range tx.Inputs {
		entry, ok := v.utxoSet.Get(&input.PreviousOutpoint)
		if !ok {
			missingOutpoints = append(missingOutpoints, &input.PreviousOutpoint)
			continue
		}
		entries[i] = entry
	}
	if len(missingOutpoints) > 0 {
		return nil, ruleerrors.NewErrMissingTxOut(missingOutpoints)
	}
	return entries, nil
}

func (v *TransactionValidator) checkSignatures(tx *externalapi.DomainTransaction, entries []*utxo.Entry) error {
	for i, input := range tx.Inputs {
		sigHash, err := consensushashing.SignatureHash(tx, i)
		if err != nil {
			return err
		}
		if !v.verifier.Verify(entries[i].PublicKey(), sigHash, input.Signature) {
			return errors.Wrapf(ruleerrors.ErrInvalidSignature, "signature of input %d spending %s is invalid",
				i, input.PreviousOutpoint)
		}
	}
	return nil
}

func checkDuplicateTransactionInputs(tx *externalapi.DomainTransaction) error {
	existingTxOut := make(map[externalapi.DomainOutpoint]struct{}, len(tx.Inputs))
	for _, txIn := range tx.Inputs {
		if _, exists := existingTxOut[txIn.PreviousOutpoint]; exists {
			return errors.Wrapf(ruleerrors.ErrDuplicateTxInputs, "transaction "+
				"contains duplicate inputs of %s", txIn.PreviousOutpoint)
		}
		existingTxOut[txIn.PreviousOutpoint] = struct{}{}
	}
	return nil
}

func checkTransactionOutputAmounts(tx *externalapi.DomainTransaction) (totalOut int64, err error) {
	for i, output := range tx.Outputs {
		if output.Value < 0 {
			return 0, errors.Wrapf(ruleerrors.ErrBadTxOutValue, "transaction output %d "+
				"has negative value of %d", i, output.Value)
		}
		totalOut, err = addAmounts(totalOut, output.Value, "outputs")
		if err != nil {
			return 0, err
		}
	}
	return totalOut, nil
}

func checkTransactionInputAmounts(entries []*utxo.Entry) (totalIn int64, err error) {
	for _, entry := range entries {
		totalIn, err = addAmounts(totalIn, entry.Amount(), "inputs")
		if err != nil {
			return 0, err
		}
	}
	return totalIn, nil
}

// addAmounts adds amount to total and fails if the sum leaves the range of
// int64.
func addAmounts(total, amount int64, what string) (int64, error) {
	if (amount > 0 && total > math.MaxInt64-amount) || (amount < 0 && total < math.MinInt64-amount) {
		return 0, errors.Wrapf(ruleerrors.ErrBadTxOutValue, "total value of all transaction "+
			"%s overflows after adding %d to %d", what, amount, total)
	}
	return total + amount, nil
}

func checkSpend(totalIn, totalOut int64) error {
	if totalIn < totalOut {
		return errors.Wrapf(ruleerrors.ErrSpendTooHigh, "total value of all transaction inputs for "+
			"the transaction is %d which is less than the amount "+
			"spent of %d", totalIn, totalOut)
	}
	return nil
}
