package multiset

import (
	"github.com/kaspanet/go-muhash"
	"github.com/kaspanet/utxochain/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// Multiset is a MuHash accumulator over a multiset of byte strings. Its hash
// depends only on the elements it holds, not on the order they were added
// or removed in.
type Multiset struct {
	ms *muhash.MuHash
}

// New returns a new, empty Multiset.
func New() *Multiset {
	return &Multiset{ms: muhash.NewMuHash()}
}

// Add adds data to the multiset.
func (m *Multiset) Add(data []byte) {
	m.ms.Add(data)
}

// Remove removes data from the multiset.
func (m *Multiset) Remove(data []byte) {
	m.ms.Remove(data)
}

// Hash returns the finalized hash of the multiset.
func (m *Multiset) Hash() *externalapi.DomainHash {
	finalizedHash := m.ms.Finalize()
	var hash externalapi.DomainHash
	copy(hash[:], finalizedHash[:])
	return &hash
}

// Serialize returns the serialized accumulator state.
func (m *Multiset) Serialize() []byte {
	return m.ms.Serialize()[:]
}

// Clone returns an independent copy of the multiset.
func (m *Multiset) Clone() *Multiset {
	return &Multiset{ms: m.ms.Clone()}
}

// FromBytes deserializes the given bytes slice and returns a multiset.
func FromBytes(multisetBytes []byte) (*Multiset, error) {
	serialized := &muhash.SerializedMuHash{}
	if len(serialized) != len(multisetBytes) {
		return nil, errors.Errorf("mutliset bytes expected to be in length of %d but got %d",
			len(serialized), len(multisetBytes))
	}
	copy(serialized[:], multisetBytes)
	ms, err := muhash.DeserializeMuHash(serialized)
	if err != nil {
		return nil, err
	}

	return &Multiset{ms: ms}, nil
}
