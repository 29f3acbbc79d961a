package consensushashing

import (
	"io"

	"github.com/kaspanet/utxochain/domain/consensus/model/externalapi"
	"github.com/kaspanet/utxochain/domain/consensus/utils/hashes"
	"github.com/kaspanet/utxochain/domain/consensus/utils/serialization"
	"github.com/pkg/errors"
)

// TransactionHash returns the transaction hash, which commits to every field
// of the transaction including its signatures.
func TransactionHash(tx *externalapi.DomainTransaction) *externalapi.DomainHash {
	writer := hashes.NewTransactionHashWriter()
	serializeTransaction(writer, tx, true)
	return writer.Finalize()
}

// TransactionID returns the transaction ID. Signatures are excluded, so
// signing a transaction never changes its ID.
func TransactionID(tx *externalapi.DomainTransaction) *externalapi.DomainTransactionID {
	writer := hashes.NewTransactionIDWriter()
	serializeTransaction(writer, tx, false)
	return (*externalapi.DomainTransactionID)(writer.Finalize())
}

// TransactionIDs converts the provided slice of DomainTransactions
// to a corresponding slice of TransactionIDs
func TransactionIDs(txs []*externalapi.DomainTransaction) []*externalapi.DomainTransactionID {
	txIDs := make([]*externalapi.DomainTransactionID, len(txs))
	for i, tx := range txs {
		txIDs[i] = TransactionID(tx)
	}
	return txIDs
}

func serializeTransaction(w io.Writer, tx *externalapi.DomainTransaction, includeSignatures bool) {
	err := serialization.SerializeTransaction(w, tx, includeSignatures)
	if err != nil {
		// It seems like this could only happen if the writer returned an error.
		// and this writer should never return an error (no allocations or possible failures)
		// the only non-writer error path here is unknown types in `WriteElement`
		panic(errors.Wrap(err, "TransactionHash() failed. this should never fail for structurally-valid transactions"))
	}
}
