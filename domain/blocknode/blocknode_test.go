package blocknode

import (
	"testing"

	"github.com/kaspanet/utxochain/domain/consensus/model/externalapi"
	"github.com/kaspanet/utxochain/domain/consensus/utils/utxo"
)

func testNode(hashByte byte, parent *Node) *Node {
	var parentHash *externalapi.DomainHash
	if parent != nil {
		parentHash = parent.Hash()
	}
	block := &externalapi.DomainBlock{ParentHash: parentHash}
	return NewNode(block, &externalapi.DomainHash{hashByte}, parent, utxo.NewSet())
}

func TestNewNode(t *testing.T) {
	genesis := testNode(1, nil)
	if genesis.Height() != 1 || !genesis.IsGenesis() || genesis.ParentHash() != nil {
		t.Fatalf("TestNewNode: unexpected genesis node: height %d, genesis %t", genesis.Height(), genesis.IsGenesis())
	}

	child := testNode(2, genesis)
	sibling := testNode(3, genesis)
	grandchild := testNode(4, child)

	if child.Height() != 2 || grandchild.Height() != 3 {
		t.Fatalf("TestNewNode: unexpected heights. Want: 2 and 3, got: %d and %d",
			child.Height(), grandchild.Height())
	}
	if !child.ParentHash().Equal(genesis.Hash()) || child.IsGenesis() {
		t.Fatalf("TestNewNode: child does not reference its parent")
	}

	children := genesis.Children()
	if len(children) != 2 || !children[0].Equal(child.Hash()) || !children[1].Equal(sibling.Hash()) {
		t.Fatalf("TestNewNode: unexpected children of genesis: %v", children)
	}

	children[0] = &externalapi.DomainHash{0xff}
	if !genesis.Children()[0].Equal(child.Hash()) {
		t.Fatalf("TestNewNode: Children exposes the node's storage")
	}

	genesis.RemoveChild(child.Hash())
	children = genesis.Children()
	if len(children) != 1 || !children[0].Equal(sibling.Hash()) {
		t.Fatalf("TestNewNode: unexpected children after RemoveChild: %v", children)
	}
}

func TestNodeUTXOSet(t *testing.T) {
	set := utxo.NewSet()
	outpoint := &externalapi.DomainOutpoint{TransactionID: externalapi.DomainTransactionID{1}}
	set.Add(outpoint, utxo.NewEntry(5, []byte{1}, true))
	node := NewNode(&externalapi.DomainBlock{}, &externalapi.DomainHash{1}, nil, set)
	commitment := node.UTXOCommitment()

	copy1, ok := node.UTXOSetCopy()
	if !ok {
		t.Fatalf("TestNodeUTXOSet: expected the node to hold a UTXO set")
	}
	copy1.Remove(outpoint)

	copy2, ok := node.UTXOSetCopy()
	if !ok || !copy2.Contains(outpoint) {
		t.Fatalf("TestNodeUTXOSet: mutating a copy changed the node's UTXO set")
	}

	node.ReleaseUTXOSet()
	if node.HasUTXOSet() {
		t.Fatalf("TestNodeUTXOSet: the set was not released")
	}
	if _, ok := node.UTXOSetCopy(); ok {
		t.Fatalf("TestNodeUTXOSet: UTXOSetCopy succeeded after release")
	}
	if !node.UTXOCommitment().Equal(commitment) {
		t.Fatalf("TestNodeUTXOSet: the commitment changed after release")
	}
}

func TestIndex(t *testing.T) {
	index := NewIndex()
	genesis := testNode(1, nil)
	child := testNode(2, genesis)
	index.Add(genesis)
	index.Add(child)

	if index.Len() != 2 {
		t.Fatalf("TestIndex: unexpected length. Want: 2, got: %d", index.Len())
	}
	node, ok := index.Lookup(&externalapi.DomainHash{2})
	if !ok || node != child {
		t.Fatalf("TestIndex: Lookup did not return the added node")
	}
	if index.Has(&externalapi.DomainHash{3}) {
		t.Fatalf("TestIndex: Has returned true for a missing hash")
	}

	index.Remove(child.Hash())
	if index.Has(child.Hash()) || index.Len() != 1 || len(index.Nodes()) != 1 {
		t.Fatalf("TestIndex: the node was not removed")
	}
}

// TestBlockHeap tests pushing, popping, and determining the length of the heap.
func TestBlockHeap(t *testing.T) {
	block0 := testNode(5, nil)
	block1 := testNode(6, block0)
	block0smallHash := testNode(0, nil)

	tests := []struct {
		name           string
		toPush         []*Node
		up             bool
		expectedLength int
		expectedPop    *Node
	}{
		{
			name:           "empty heap must have length 0",
			toPush:         []*Node{},
			up:             true,
			expectedLength: 0,
			expectedPop:    nil,
		},
		{
			name:           "heap with one push and one pop",
			toPush:         []*Node{block0},
			up:             true,
			expectedLength: 0,
			expectedPop:    block0,
		},
		{
			name:           "up heap pops the lowest block",
			toPush:         []*Node{block1, block0},
			up:             true,
			expectedLength: 1,
			expectedPop:    block0,
		},
		{
			name:           "down heap pops the highest block",
			toPush:         []*Node{block0, block1},
			up:             false,
			expectedLength: 1,
			expectedPop:    block1,
		},
		{
			name:           "up heap breaks height ties by hash",
			toPush:         []*Node{block0, block0smallHash},
			up:             true,
			expectedLength: 1,
			expectedPop:    block0smallHash,
		},
		{
			name:           "down heap breaks height ties by hash",
			toPush:         []*Node{block0smallHash, block0},
			up:             false,
			expectedLength: 1,
			expectedPop:    block0,
		},
	}

	for _, test := range tests {
		heap := NewDownHeap()
		if test.up {
			heap = NewUpHeap()
		}
		heap.PushSlice(test.toPush)

		var poppedBlock *Node
		if test.expectedPop != nil {
			poppedBlock = heap.Pop()
		}
		if heap.Len() != test.expectedLength {
			t.Errorf("unexpected heap length in test \"%s\". "+
				"Expected: %v, got: %v", test.name, test.expectedLength, heap.Len())
		}
		if poppedBlock != test.expectedPop {
			t.Errorf("unexpected popped block in test \"%s\". "+
				"Expected: %v, got: %v", test.name, test.expectedPop, poppedBlock)
		}
	}
}
