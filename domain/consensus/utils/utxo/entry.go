package utxo

import (
	"bytes"
)

// Entry houses details about an individual unspent transaction output: how
// much it is worth, who may spend it and whether it was created by a
// coinbase. Entries are immutable once created.
type Entry struct {
	amount     int64
	publicKey  []byte
	isCoinbase bool
}

// NewEntry returns a new Entry. publicKey is copied.
func NewEntry(amount int64, publicKey []byte, isCoinbase bool) *Entry {
	publicKeyCopy := make([]byte, len(publicKey))
	copy(publicKeyCopy, publicKey)
	return &Entry{
		amount:     amount,
		publicKey:  publicKeyCopy,
		isCoinbase: isCoinbase,
	}
}

// Amount returns the value of the output.
func (entry *Entry) Amount() int64 {
	return entry.amount
}

// PublicKey returns the public key of the output's owner. The returned
// slice must not be modified.
func (entry *Entry) PublicKey() []byte {
	return entry.publicKey
}

// IsCoinbase returns whether the output was created by a coinbase transaction.
func (entry *Entry) IsCoinbase() bool {
	return entry.isCoinbase
}

// Equal returns whether entry equals to other
func (entry *Entry) Equal(other *Entry) bool {
	if entry == nil || other == nil {
		return entry == other
	}
	return entry.amount == other.amount &&
		entry.isCoinbase == other.isCoinbase &&
		bytes.Equal(entry.publicKey, other.publicKey)
}
