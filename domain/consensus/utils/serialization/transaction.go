package serialization

import (
	"io"

	"github.com/kaspanet/utxochain/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// maxCollectionLength bounds the element count read for any inputs, outputs
// or transactions list.
const maxCollectionLength = 1 << 16

// SerializeTransaction writes tx to w. Signatures are omitted when
// includeSignatures is false, which is the encoding transaction IDs are
// computed over.
func SerializeTransaction(w io.Writer, tx *externalapi.DomainTransaction, includeSignatures bool) error {
	err := WriteElement(w, uint64(len(tx.Inputs)))
	if err != nil {
		return err
	}
	for _, input := range tx.Inputs {
		err = WriteOutpoint(w, &input.PreviousOutpoint)
		if err != nil {
			return err
		}
		if includeSignatures {
			err = WriteElement(w, input.Signature)
			if err != nil {
				return err
			}
		}
	}

	err = WriteElement(w, uint64(len(tx.Outputs)))
	if err != nil {
		return err
	}
	for _, output := range tx.Outputs {
		err = WriteElements(w, output.Value, output.PublicKey)
		if err != nil {
			return err
		}
	}
	return WriteElement(w, tx.Payload)
}

// DeserializeTransaction reads a transaction that was written by
// SerializeTransaction with includeSignatures set.
func DeserializeTransaction(r io.Reader) (*externalapi.DomainTransaction, error) {
	inputCount, err := readCollectionLength(r)
	if err != nil {
		return nil, err
	}
	inputs := make([]*externalapi.DomainTransactionInput, inputCount)
	for i := range inputs {
		input := &externalapi.DomainTransactionInput{}
		err = ReadOutpoint(r, &input.PreviousOutpoint)
		if err != nil {
			return nil, err
		}
		err = ReadElement(r, &input.Signature)
		if err != nil {
			return nil, err
		}
		inputs[i] = input
	}

	outputCount, err := readCollectionLength(r)
	if err != nil {
		return nil, err
	}
	outputs := make([]*externalapi.DomainTransactionOutput, outputCount)
	for i := range outputs {
		output := &externalapi.DomainTransactionOutput{}
		err = ReadElements(r, &output.Value, &output.PublicKey)
		if err != nil {
			return nil, err
		}
		outputs[i] = output
	}

	tx := &externalapi.DomainTransaction{Inputs: inputs, Outputs: outputs}
	err = ReadElement(r, &tx.Payload)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// WriteOutpoint writes the transaction ID and index of outpoint to w.
func WriteOutpoint(w io.Writer, outpoint *externalapi.DomainOutpoint) error {
	return WriteElements(w, outpoint.TransactionID, outpoint.Index)
}

// ReadOutpoint reads an outpoint written by WriteOutpoint into outpoint.
func ReadOutpoint(r io.Reader, outpoint *externalapi.DomainOutpoint) error {
	return ReadElements(r, &outpoint.TransactionID, &outpoint.Index)
}

func readCollectionLength(r io.Reader) (uint64, error) {
	var length uint64
	err := ReadElement(r, &length)
	if err != nil {
		return 0, err
	}
	if length > maxCollectionLength {
		return 0, errors.Wrapf(errMalformed, "collection of length %d exceeds the maximum of %d",
			length, maxCollectionLength)
	}
	return length, nil
}
