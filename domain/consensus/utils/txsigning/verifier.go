package txsigning

import (
	"github.com/kaspanet/go-secp256k1"
	"github.com/kaspanet/utxochain/domain/consensus/model/externalapi"
)

// Verifier checks that signature is a valid signature of sigHash by the owner
// of publicKey. Malformed keys or signatures are reported as invalid.
type Verifier interface {
	Verify(publicKey []byte, sigHash *externalapi.DomainHash, signature []byte) bool
}

// SchnorrVerifier verifies Schnorr signatures over secp256k1 with 32 byte
// x-only public keys.
type SchnorrVerifier struct{}

// NewSchnorrVerifier returns a Schnorr signature Verifier.
func NewSchnorrVerifier() Verifier {
	return SchnorrVerifier{}
}

// Verify implements the Verifier interface.
func (SchnorrVerifier) Verify(publicKey []byte, sigHash *externalapi.DomainHash, signature []byte) bool {
	if len(signature) != secp256k1.SerializedSchnorrSignatureSize {
		return false
	}
	pubKey, err := secp256k1.DeserializeSchnorrPubKey(publicKey)
	if err != nil {
		return false
	}
	schnorrSignature, err := secp256k1.DeserializeSchnorrSignatureFromSlice(signature)
	if err != nil {
		return false
	}
	secpHash := secp256k1.Hash(*sigHash)
	return pubKey.SchnorrVerify(&secpHash, schnorrSignature)
}

// VerifierFunc adapts an ordinary function to the Verifier interface.
type VerifierFunc func(publicKey []byte, sigHash *externalapi.DomainHash, signature []byte) bool

// Verify implements the Verifier interface.
func (f VerifierFunc) Verify(publicKey []byte, sigHash *externalapi.DomainHash, signature []byte) bool {
	return f(publicKey, sigHash, signature)
}
