package utxo

import (
	"github.com/kaspanet/utxochain/domain/consensus/model/externalapi"
)

type outpointEntryPair struct {
	outpoint externalapi.DomainOutpoint
	entry    *Entry
}

// Iterator iterates over the outpoint-entry pairs of a Set in no particular
// order. Changes made to the set after the iterator was created are not
// observed.
type Iterator struct {
	index int
	pairs []outpointEntryPair
}

func newIterator(entries map[externalapi.DomainOutpoint]*Entry) *Iterator {
	pairs := make([]outpointEntryPair, 0, len(entries))
	for outpoint, entry := range entries {
		pairs = append(pairs, outpointEntryPair{outpoint: outpoint, entry: entry})
	}
	return &Iterator{index: -1, pairs: pairs}
}

// Next advances the iterator and returns false once it is exhausted.
func (it *Iterator) Next() bool {
	it.index++
	return it.index < len(it.pairs)
}

// Get returns the current outpoint-entry pair.
func (it *Iterator) Get() (outpoint *externalapi.DomainOutpoint, entry *Entry) {
	pair := it.pairs[it.index]
	return &pair.outpoint, pair.entry
}
