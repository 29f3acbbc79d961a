package utxo

import (
	"bytes"
	"io"

	"github.com/kaspanet/utxochain/domain/consensus/model/externalapi"
	"github.com/kaspanet/utxochain/domain/consensus/utils/serialization"
	"github.com/pkg/errors"
)

// SerializeUTXO returns the byte-slice representation for given Entry-outpoint pair
func SerializeUTXO(entry *Entry, outpoint *externalapi.DomainOutpoint) []byte {
	w := &bytes.Buffer{}

	err := serialization.WriteOutpoint(w, outpoint)
	if err != nil {
		panic(errors.Wrap(err, "writing to a bytes.Buffer should never fail"))
	}
	err = serializeEntry(w, entry)
	if err != nil {
		panic(errors.Wrap(err, "writing to a bytes.Buffer should never fail"))
	}

	return w.Bytes()
}

// DeserializeUTXO deserializes the given byte slice to Entry-outpoint pair
func DeserializeUTXO(utxoBytes []byte) (entry *Entry, outpoint *externalapi.DomainOutpoint, err error) {
	r := bytes.NewReader(utxoBytes)
	outpoint = &externalapi.DomainOutpoint{}
	err = serialization.ReadOutpoint(r, outpoint)
	if err != nil {
		return nil, nil, err
	}

	entry, err = deserializeEntry(r)
	if err != nil {
		return nil, nil, err
	}

	return entry, outpoint, nil
}

func serializeEntry(w io.Writer, entry *Entry) error {
	return serialization.WriteElements(w, entry.amount, entry.isCoinbase, entry.publicKey)
}

func deserializeEntry(r io.Reader) (*Entry, error) {
	entry := &Entry{}
	err := serialization.ReadElements(r, &entry.amount, &entry.isCoinbase, &entry.publicKey)
	if err != nil {
		return nil, err
	}
	if entry.publicKey == nil {
		entry.publicKey = []byte{}
	}
	return entry, nil
}
