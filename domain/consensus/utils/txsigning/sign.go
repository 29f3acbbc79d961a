package txsigning

import (
	"github.com/kaspanet/go-secp256k1"
	"github.com/kaspanet/utxochain/domain/consensus/model/externalapi"
	"github.com/kaspanet/utxochain/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/utxochain/domain/consensus/utils/hashes"
	"github.com/pkg/errors"
)

// RawTxInSignature returns the serialized Schnorr signature for the input idx
// of the given transaction.
func RawTxInSignature(tx *externalapi.DomainTransaction, idx int, keyPair *secp256k1.SchnorrKeyPair) ([]byte, error) {
	hash, err := consensushashing.SignatureHash(tx, idx)
	if err != nil {
		return nil, err
	}
	secpHash := secp256k1.Hash(*hash)
	signature, err := keyPair.SchnorrSign(&secpHash)
	if err != nil {
		return nil, errors.Errorf("cannot sign tx input: %s", err)
	}
	return signature.Serialize()[:], nil
}

// SignInput signs input idx of tx with keyPair and stores the signature in
// the input.
func SignInput(tx *externalapi.DomainTransaction, idx int, keyPair *secp256k1.SchnorrKeyPair) error {
	signature, err := RawTxInSignature(tx, idx, keyPair)
	if err != nil {
		return err
	}
	tx.Inputs[idx].Signature = signature
	return nil
}

// SignAllInputs signs every input of tx with keyPair. Signature hashes don't
// cover signatures, so the inputs can be signed in any order.
func SignAllInputs(tx *externalapi.DomainTransaction, keyPair *secp256k1.SchnorrKeyPair) error {
	for i := range tx.Inputs {
		err := SignInput(tx, i, keyPair)
		if err != nil {
			return err
		}
	}
	return nil
}

// PublicKey returns the serialized x-only public key of keyPair, which is the
// form outputs are paid to.
func PublicKey(keyPair *secp256k1.SchnorrKeyPair) ([]byte, error) {
	publicKey, err := keyPair.SchnorrPublicKey()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate public key")
	}
	serialized, err := publicKey.Serialize()
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize public key")
	}
	return serialized[:], nil
}

// KeyPairFromSeed deterministically derives a Schnorr key pair from seed.
func KeyPairFromSeed(seed []byte) (*secp256k1.SchnorrKeyPair, error) {
	writer := hashes.NewTransactionSigningHashWriter()
	writer.InfallibleWrite(seed)
	privateKeyBytes := writer.Finalize()
	keyPair, err := secp256k1.DeserializeSchnorrPrivateKeyFromSlice(privateKeyBytes[:])
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive private key from seed")
	}
	return keyPair, nil
}
