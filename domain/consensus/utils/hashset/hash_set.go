package hashset

import (
	"sort"

	"github.com/kaspanet/utxochain/domain/consensus/model/externalapi"
)

// HashSet is an unsorted unique collection of DomainHashes
type HashSet map[externalapi.DomainHash]struct{}

// New creates and returns an empty HashSet
func New() HashSet {
	return HashSet{}
}

// NewFromSlice creates and returns a HashSet containing the given hashes
func NewFromSlice(hashes ...*externalapi.DomainHash) HashSet {
	set := New()
	for _, hash := range hashes {
		set.Add(hash)
	}
	return set
}

// Add appends a hash to this HashSet. If the given hash already exists it does nothing
func (hs HashSet) Add(hash *externalapi.DomainHash) {
	hs[*hash] = struct{}{}
}

// Remove removes a hash from this HashSet. If the given hash does not exist it does nothing
func (hs HashSet) Remove(hash *externalapi.DomainHash) {
	delete(hs, *hash)
}

// Contains returns true if this HashSet contains the given hash
func (hs HashSet) Contains(hash *externalapi.DomainHash) bool {
	_, ok := hs[*hash]
	return ok
}

// Length returns the amount of hashes in this HashSet
func (hs HashSet) Length() int {
	return len(hs)
}

// ToSlice converts this HashSet to a slice of hashes, sorted in ascending order
func (hs HashSet) ToSlice() []*externalapi.DomainHash {
	slice := make([]*externalapi.DomainHash, 0, len(hs))
	for hash := range hs {
		hash := hash
		slice = append(slice, &hash)
	}
	sort.Slice(slice, func(i, j int) bool {
		return slice[i].Less(slice[j])
	})
	return slice
}
