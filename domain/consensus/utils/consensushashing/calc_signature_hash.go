package consensushashing

import (
	"github.com/kaspanet/utxochain/domain/consensus/model/externalapi"
	"github.com/kaspanet/utxochain/domain/consensus/utils/hashes"
	"github.com/kaspanet/utxochain/domain/consensus/utils/serialization"
	"github.com/pkg/errors"
)

// SignatureHash calculates the hash that the owner of the output referenced
// by input inputIndex of tx signs. It covers the referenced outpoint, every
// output of tx and its payload. Signatures of other inputs are not covered.
func SignatureHash(tx *externalapi.DomainTransaction, inputIndex int) (*externalapi.DomainHash, error) {
	if inputIndex < 0 || inputIndex >= len(tx.Inputs) {
		return nil, errors.Errorf("input index %d out of range for a transaction with %d inputs",
			inputIndex, len(tx.Inputs))
	}

	writer := hashes.NewTransactionSigningHashWriter()
	mustWrite(serialization.WriteOutpoint(writer, &tx.Inputs[inputIndex].PreviousOutpoint))
	mustWrite(serialization.WriteElement(writer, uint64(len(tx.Outputs))))
	for _, output := range tx.Outputs {
		mustWrite(serialization.WriteElements(writer, output.Value, output.PublicKey))
	}
	mustWrite(serialization.WriteElement(writer, tx.Payload))

	return writer.Finalize(), nil
}
