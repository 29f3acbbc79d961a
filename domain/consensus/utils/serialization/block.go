package serialization

import (
	"bytes"
	"io"

	"github.com/kaspanet/utxochain/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// SerializeBlock writes block to w, including signatures.
func SerializeBlock(w io.Writer, block *externalapi.DomainBlock) error {
	if block.Coinbase == nil {
		return errors.New("cannot serialize a block without a coinbase")
	}
	hasParent := block.ParentHash != nil
	err := WriteElement(w, hasParent)
	if err != nil {
		return err
	}
	if hasParent {
		err = WriteElement(w, block.ParentHash)
		if err != nil {
			return err
		}
	}
	err = SerializeTransaction(w, block.Coinbase, true)
	if err != nil {
		return err
	}
	err = WriteElement(w, uint64(len(block.Transactions)))
	if err != nil {
		return err
	}
	for _, tx := range block.Transactions {
		err = SerializeTransaction(w, tx, true)
		if err != nil {
			return err
		}
	}
	return WriteElement(w, block.Nonce)
}

// DeserializeBlock reads a block written by SerializeBlock.
func DeserializeBlock(r io.Reader) (*externalapi.DomainBlock, error) {
	block := &externalapi.DomainBlock{}
	var hasParent bool
	err := ReadElement(r, &hasParent)
	if err != nil {
		return nil, err
	}
	if hasParent {
		block.ParentHash = &externalapi.DomainHash{}
		err = ReadElement(r, block.ParentHash)
		if err != nil {
			return nil, err
		}
	}
	block.Coinbase, err = DeserializeTransaction(r)
	if err != nil {
		return nil, err
	}
	transactionCount, err := readCollectionLength(r)
	if err != nil {
		return nil, err
	}
	block.Transactions = make([]*externalapi.DomainTransaction, transactionCount)
	for i := range block.Transactions {
		block.Transactions[i], err = DeserializeTransaction(r)
		if err != nil {
			return nil, err
		}
	}
	err = ReadElement(r, &block.Nonce)
	if err != nil {
		return nil, err
	}
	return block, nil
}

// BlockToBytes returns the serialized form of block.
func BlockToBytes(block *externalapi.DomainBlock) ([]byte, error) {
	buf := &bytes.Buffer{}
	err := SerializeBlock(buf, block)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BlockFromBytes parses a serialized block and fails if trailing data remains.
func BlockFromBytes(serializedBlock []byte) (*externalapi.DomainBlock, error) {
	reader := bytes.NewReader(serializedBlock)
	block, err := DeserializeBlock(reader)
	if err != nil {
		return nil, err
	}
	if reader.Len() != 0 {
		return nil, errors.Wrapf(errMalformed, "%d trailing bytes after serialized block", reader.Len())
	}
	return block, nil
}
