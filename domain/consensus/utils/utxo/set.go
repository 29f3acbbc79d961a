package utxo

import (
	"github.com/kaspanet/utxochain/domain/consensus/model/externalapi"
	"github.com/kaspanet/utxochain/domain/consensus/utils/multiset"
)

// Set is a collection of unspent transaction outputs keyed by outpoint,
// together with a MuHash commitment to its contents.
//
// This type is NOT safe for concurrent access.
type Set struct {
	entries  map[externalapi.DomainOutpoint]*Entry
	multiset *multiset.Multiset
}

// NewSet returns a new, empty Set.
func NewSet() *Set {
	return &Set{
		entries:  make(map[externalapi.DomainOutpoint]*Entry),
		multiset: multiset.New(),
	}
}

// Contains returns whether the set holds an entry for outpoint.
func (s *Set) Contains(outpoint *externalapi.DomainOutpoint) bool {
	_, ok := s.entries[*outpoint]
	return ok
}

// Get returns the entry for outpoint, if it exists.
func (s *Set) Get(outpoint *externalapi.DomainOutpoint) (*Entry, bool) {
	entry, ok := s.entries[*outpoint]
	return entry, ok
}

// Add inserts entry under outpoint, replacing any entry already stored
// there.
func (s *Set) Add(outpoint *externalapi.DomainOutpoint, entry *Entry) {
	if existing, ok := s.entries[*outpoint]; ok {
		s.multiset.Remove(SerializeUTXO(existing, outpoint))
	}
	s.entries[*outpoint] = entry
	s.multiset.Add(SerializeUTXO(entry, outpoint))
}

// Remove deletes the entry for outpoint and returns whether one existed.
func (s *Set) Remove(outpoint *externalapi.DomainOutpoint) bool {
	entry, ok := s.entries[*outpoint]
	if !ok {
		return false
	}
	delete(s.entries, *outpoint)
	s.multiset.Remove(SerializeUTXO(entry, outpoint))
	return true
}

// Len returns the number of entries in the set.
func (s *Set) Len() int {
	return len(s.entries)
}

// Clone returns a copy of the set that shares no mutable storage with it.
// Entries are immutable and are shared between the two.
func (s *Set) Clone() *Set {
	entries := make(map[externalapi.DomainOutpoint]*Entry, len(s.entries))
	for outpoint, entry := range s.entries {
		entries[outpoint] = entry
	}
	return &Set{
		entries:  entries,
		multiset: s.multiset.Clone(),
	}
}

// Commitment returns the MuHash of the set's outpoint-entry pairs. Sets with
// the same contents have the same commitment.
func (s *Set) Commitment() *externalapi.DomainHash {
	return s.multiset.Hash()
}

// Iterator returns an iterator over a snapshot of the set's entries.
func (s *Set) Iterator() *Iterator {
	return newIterator(s.entries)
}
