package hashes

import (
	"golang.org/x/crypto/blake2b"

	"github.com/pkg/errors"
)

const (
	transactionHashDomain    = "TransactionHash"
	transactionIDDomain      = "TransactionID"
	transactionSigningDomain = "TransactionSigningHash"
	blockDomain              = "BlockHash"
)

func newBlake2bWriter(domain string) HashWriter {
	blake, err := blake2b.New256([]byte(domain))
	if err != nil {
		panic(errors.Wrapf(err, "this should never happen. %s is less than 64 bytes", domain))
	}
	return HashWriter{blake}
}

// NewTransactionHashWriter returns a new HashWriter used for transaction hashes
func NewTransactionHashWriter() HashWriter {
	return newBlake2bWriter(transactionHashDomain)
}

// NewTransactionIDWriter returns a new HashWriter used for transaction IDs
func NewTransactionIDWriter() HashWriter {
	return newBlake2bWriter(transactionIDDomain)
}

// NewTransactionSigningHashWriter returns a new HashWriter used for signing on a transaction
func NewTransactionSigningHashWriter() HashWriter {
	return newBlake2bWriter(transactionSigningDomain)
}

// NewBlockHashWriter returns a new HashWriter used for hashing blocks
func NewBlockHashWriter() HashWriter {
	return newBlake2bWriter(blockDomain)
}
