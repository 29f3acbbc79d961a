package transactionvalidator

import (
	"github.com/kaspanet/utxochain/domain/consensus/model/externalapi"
	"github.com/kaspanet/utxochain/domain/consensus/ruleerrors"
	"github.com/kaspanet/utxochain/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/utxochain/domain/consensus/utils/utxo"
	"github.com/pkg/errors"
)

// Apply greedily processes candidates in the given order. Every candidate
// is validated against the working set as left by the candidates accepted
// before it; valid ones are applied immediately, invalid ones (and repeats
// of an already accepted transaction) are skipped. Acceptance is therefore
// order dependent: of two transactions spending the same output only the
// first is accepted.
//
// When Apply returns, the working set reflects exactly the accepted
// transactions.
func (v *TransactionValidator) Apply(candidates []*externalapi.DomainTransaction) (
	accepted []*externalapi.DomainTransaction, rejected []ruleerrors.InvalidTransaction) {

	acceptedIDs := make(map[externalapi.DomainTransactionID]struct{}, len(candidates))
	for _, tx := range candidates {
		transactionID := consensushashing.TransactionID(tx)
		if _, ok := acceptedIDs[*transactionID]; ok {
			rejected = append(rejected, ruleerrors.InvalidTransaction{
				Transaction: tx,
				Error: errors.Wrapf(ruleerrors.ErrDuplicateTx, "transaction %s "+
					"was already accepted", transactionID),
			})
			continue
		}

		err := v.ValidateTransaction(tx)
		if err != nil {
			log.Tracef("Transaction %s rejected: %s", transactionID, err)
			rejected = append(rejected, ruleerrors.InvalidTransaction{Transaction: tx, Error: err})
			continue
		}

		v.applyTransaction(tx, transactionID)
		acceptedIDs[*transactionID] = struct{}{}
		accepted = append(accepted, tx)
	}

	log.Debugf("Applied %d transactions out of %d candidates", len(accepted), len(candidates))
	return accepted, rejected
}

// AddTransactionOutputs adds every output of tx to the working set without
// validating tx. It is used for coinbase transactions, whose outputs are
// created from nothing.
func (v *TransactionValidator) AddTransactionOutputs(tx *externalapi.DomainTransaction) {
	v.addOutputs(tx, consensushashing.TransactionID(tx))
}

func (v *TransactionValidator) applyTransaction(tx *externalapi.DomainTransaction,
	transactionID *externalapi.DomainTransactionID) {

	for _, input := range tx.Inputs {
		v.utxoSet.Remove(&input.PreviousOutpoint)
	}
	v.addOutputs(tx, transactionID)
}

func (v *TransactionValidator) addOutputs(tx *externalapi.DomainTransaction,
	transactionID *externalapi.DomainTransactionID) {

	isCoinbase := tx.IsCoinbase()
	for i, output := range tx.Outputs {
		outpoint := externalapi.NewDomainOutpoint(transactionID, uint32(i))
		v.utxoSet.Add(outpoint, utxo.NewEntry(output.Value, output.PublicKey, isCoinbase))
	}
}
