package blockchain

import (
	"testing"

	"github.com/kaspanet/utxochain/domain/consensus/model/externalapi"
	"github.com/kaspanet/utxochain/domain/consensus/ruleerrors"
	"github.com/kaspanet/utxochain/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/utxochain/domain/consensus/utils/testutils"
	"github.com/pkg/errors"
)

type testChain struct {
	t          *testing.T
	chain      *BlockChain
	alice, bob *testutils.Participant
	carol      *testutils.Participant
	genesis    *externalapi.DomainBlock
	nextTag    uint64
}

// newTestChain returns a chain whose genesis coinbase pays alice 25.
func newTestChain(t *testing.T, archive BlockArchive) *testChain {
	alice := testutils.NewParticipant(t, "alice")
	genesis := testutils.Block(nil, testutils.Coinbase(0, alice.Output(25)))
	chain, err := New(&Config{Genesis: genesis, Archive: archive})
	if err != nil {
		t.Fatalf("New: %+v", err)
	}
	return &testChain{
		t:       t,
		chain:   chain,
		alice:   alice,
		bob:     testutils.NewParticipant(t, "bob"),
		carol:   testutils.NewParticipant(t, "carol"),
		genesis: genesis,
		nextTag: 1,
	}
}

// block returns a new block on top of parent, with a coinbase paying bob 25.
func (tc *testChain) block(parent *externalapi.DomainHash, transactions ...*externalapi.DomainTransaction) *externalapi.DomainBlock {
	tc.nextTag++
	return testutils.Block(parent, testutils.Coinbase(tc.nextTag, tc.bob.Output(25)), transactions...)
}

// mustAdd adds a new block on top of parent and fails the test if it's rejected.
func (tc *testChain) mustAdd(parent *externalapi.DomainHash) *externalapi.DomainHash {
	block := tc.block(parent)
	err := tc.chain.ValidateAndInsertBlock(block)
	if err != nil {
		tc.t.Fatalf("ValidateAndInsertBlock: %+v", err)
	}
	return consensushashing.BlockHash(block)
}

// extendTo builds a chain on top of from until it reaches height and
// returns the hashes of the added blocks.
func (tc *testChain) extendTo(from *externalapi.DomainHash, height uint64) []*externalapi.DomainHash {
	fromHeight, ok := tc.chain.BlockHeight(from)
	if !ok {
		tc.t.Fatalf("extendTo: block %s is not in the chain", from)
	}
	var hashes []*externalapi.DomainHash
	current := from
	for h := fromHeight + 1; h <= height; h++ {
		current = tc.mustAdd(current)
		hashes = append(hashes, current)
	}
	return hashes
}

func (tc *testChain) genesisHash() *externalapi.DomainHash {
	return consensushashing.BlockHash(tc.genesis)
}

func TestNewChain(t *testing.T) {
	tc := newTestChain(t, nil)
	chain := tc.chain

	if chain.MaxHeight() != 1 || chain.NodeCount() != 1 {
		t.Fatalf("TestNewChain: unexpected initial state: max height %d, %d nodes",
			chain.MaxHeight(), chain.NodeCount())
	}
	if chain.TipBlock() != tc.genesis || !chain.TipHash().Equal(tc.genesisHash()) {
		t.Fatalf("TestNewChain: the genesis block is not the tip")
	}
	if chain.TransactionPool().Count() != 0 {
		t.Fatalf("TestNewChain: the transaction pool is not empty")
	}

	utxoSet := chain.TipUTXOSet()
	if utxoSet.Len() != 1 {
		t.Fatalf("TestNewChain: unexpected genesis UTXO set size. Want: 1, got: %d", utxoSet.Len())
	}
	entry, ok := utxoSet.Get(testutils.Outpoint(tc.genesis.Coinbase, 0))
	if !ok || entry.Amount() != 25 || !entry.IsCoinbase() {
		t.Fatalf("TestNewChain: the genesis coinbase output is missing from the UTXO set")
	}
	if !chain.TipUTXOCommitment().Equal(utxoSet.Commitment()) {
		t.Fatalf("TestNewChain: the tip commitment does not match the tip UTXO set")
	}
}

func TestNewChainIgnoresGenesisTransactions(t *testing.T) {
	alice := testutils.NewParticipant(t, "alice")
	spend := testutils.UnsignedSpend([]*externalapi.DomainOutpoint{{Index: 3}}, alice.Output(1))
	genesis := testutils.Block(nil, testutils.Coinbase(0, alice.Output(25)), spend)

	chain, err := New(&Config{Genesis: genesis})
	if err != nil {
		t.Fatalf("New: %+v", err)
	}
	utxoSet := chain.TipUTXOSet()
	if utxoSet.Len() != 1 || utxoSet.Contains(testutils.Outpoint(spend, 0)) {
		t.Fatalf("TestNewChainIgnoresGenesisTransactions: a genesis transaction was applied")
	}
}

func TestNewChainErrors(t *testing.T) {
	alice := testutils.NewParticipant(t, "alice")
	tests := []struct {
		name    string
		genesis *externalapi.DomainBlock
	}{
		{"nil genesis", nil},
		{"no coinbase", testutils.Block(nil, nil)},
		{"coinbase with inputs", testutils.Block(nil,
			testutils.UnsignedSpend([]*externalapi.DomainOutpoint{{}}, alice.Output(25)))},
	}
	for _, test := range tests {
		_, err := New(&Config{Genesis: test.genesis})
		if err == nil {
			t.Errorf("%s: expected an error", test.name)
		}
	}
}

// TestBlockSpendingGenesisCoinbase spends the genesis coinbase in the first block.
func TestBlockSpendingGenesisCoinbase(t *testing.T) {
	tc := newTestChain(t, nil)
	spend := testutils.Spend(t, tc.alice,
		[]*externalapi.DomainOutpoint{testutils.Outpoint(tc.genesis.Coinbase, 0)}, tc.carol.Output(25))
	block := tc.block(tc.genesisHash(), spend)

	if !tc.chain.AddBlock(block) {
		t.Fatalf("TestBlockSpendingGenesisCoinbase: the block was rejected")
	}
	if tc.chain.MaxHeight() != 2 || !tc.chain.TipHash().Equal(consensushashing.BlockHash(block)) {
		t.Fatalf("TestBlockSpendingGenesisCoinbase: the block did not become the tip at height 2")
	}

	utxoSet := tc.chain.TipUTXOSet()
	if utxoSet.Contains(testutils.Outpoint(tc.genesis.Coinbase, 0)) {
		t.Fatalf("TestBlockSpendingGenesisCoinbase: the spent genesis output is still in the UTXO set")
	}
	if !utxoSet.Contains(testutils.Outpoint(block.Coinbase, 0)) {
		t.Fatalf("TestBlockSpendingGenesisCoinbase: the coinbase output is missing from the UTXO set")
	}
	entry, ok := utxoSet.Get(testutils.Outpoint(spend, 0))
	if !ok || entry.Amount() != 25 {
		t.Fatalf("TestBlockSpendingGenesisCoinbase: the output paying carol is missing from the UTXO set")
	}
	if utxoSet.Len() != 2 {
		t.Fatalf("TestBlockSpendingGenesisCoinbase: unexpected UTXO set size. Want: 2, got: %d", utxoSet.Len())
	}
}

// TestPoolIndependentOfBlocks checks that the pool is independent of block contents.
func TestPoolIndependentOfBlocks(t *testing.T) {
	tc := newTestChain(t, nil)
	pending := testutils.Spend(t, tc.alice,
		[]*externalapi.DomainOutpoint{testutils.Outpoint(tc.genesis.Coinbase, 0)}, tc.carol.Output(25))
	tc.chain.AddTransaction(pending)

	tc.mustAdd(tc.genesisHash())

	if !tc.chain.TransactionPool().HasTransaction(consensushashing.TransactionID(pending)) {
		t.Fatalf("TestPoolIndependentOfBlocks: adding a block removed a pending transaction")
	}

	included := tc.block(tc.chain.TipHash(), pending)
	if !tc.chain.AddBlock(included) {
		t.Fatalf("TestPoolIndependentOfBlocks: the block spending the pending transaction was rejected")
	}
	if tc.chain.TransactionPool().Count() != 1 {
		t.Fatalf("TestPoolIndependentOfBlocks: including a pending transaction in a block removed it from the pool")
	}
}

// TestSiblingDoesNotReplaceTip checks that a block at the same height never replaces the tip.
func TestSiblingDoesNotReplaceTip(t *testing.T) {
	tc := newTestChain(t, nil)
	first := tc.block(tc.genesisHash())
	second := tc.block(tc.genesisHash())

	if !tc.chain.AddBlock(first) || !tc.chain.AddBlock(second) {
		t.Fatalf("TestSiblingDoesNotReplaceTip: a sibling block was rejected")
	}
	if !tc.chain.TipHash().Equal(consensushashing.BlockHash(first)) {
		t.Fatalf("TestSiblingDoesNotReplaceTip: the second sibling replaced the tip")
	}
	if !tc.chain.HaveBlock(consensushashing.BlockHash(second)) || tc.chain.NodeCount() != 3 {
		t.Fatalf("TestSiblingDoesNotReplaceTip: the second sibling was not kept")
	}
	kept, ok := tc.chain.Block(consensushashing.BlockHash(second))
	if !ok || kept != second {
		t.Fatalf("TestSiblingDoesNotReplaceTip: the second sibling cannot be looked up")
	}

	overtaking := tc.block(consensushashing.BlockHash(second))
	if !tc.chain.AddBlock(overtaking) {
		t.Fatalf("TestSiblingDoesNotReplaceTip: extending the second sibling was rejected")
	}
	if !tc.chain.TipHash().Equal(consensushashing.BlockHash(overtaking)) || tc.chain.MaxHeight() != 3 {
		t.Fatalf("TestSiblingDoesNotReplaceTip: a higher block did not become the tip")
	}

	tips := tc.chain.Tips()
	if len(tips) != 2 || !tips[0].Equal(consensushashing.BlockHash(overtaking)) ||
		!tips[1].Equal(consensushashing.BlockHash(first)) {
		t.Fatalf("TestSiblingDoesNotReplaceTip: unexpected tips: %v", tips)
	}
}

func TestValidateAndInsertBlockErrors(t *testing.T) {
	tc := newTestChain(t, nil)
	existing := tc.block(tc.genesisHash())
	if !tc.chain.AddBlock(existing) {
		t.Fatalf("TestValidateAndInsertBlockErrors: failed to add a block")
	}
	outpoint := testutils.Outpoint(tc.genesis.Coinbase, 0)

	tests := []struct {
		name        string
		block       *externalapi.DomainBlock
		expectedErr error
	}{
		{
			name:        "no parent",
			block:       tc.block(nil),
			expectedErr: ruleerrors.ErrNoParents,
		},
		{
			name:        "unknown parent",
			block:       tc.block(&externalapi.DomainHash{0xff}),
			expectedErr: ruleerrors.ErrMissingParents{},
		},
		{
			name:        "duplicate block",
			block:       existing,
			expectedErr: ruleerrors.ErrDuplicateBlock,
		},
		{
			name:        "missing coinbase",
			block:       testutils.Block(tc.genesisHash(), nil),
			expectedErr: ruleerrors.ErrBadCoinbaseTransaction,
		},
		{
			name: "coinbase with inputs",
			block: testutils.Block(tc.genesisHash(),
				testutils.Spend(t, tc.alice, []*externalapi.DomainOutpoint{outpoint}, tc.bob.Output(25))),
			expectedErr: ruleerrors.ErrBadCoinbaseTransaction,
		},
		{
			name: "one invalid transaction",
			block: tc.block(tc.genesisHash(),
				testutils.Spend(t, tc.alice, []*externalapi.DomainOutpoint{outpoint}, tc.carol.Output(20)),
				testutils.Spend(t, tc.alice, []*externalapi.DomainOutpoint{outpoint}, tc.carol.Output(25))),
			expectedErr: ruleerrors.ErrInvalidTransactionsInNewBlock{},
		},
		{
			name: "spending a coinbase of the same block",
			block: func() *externalapi.DomainBlock {
				block := tc.block(tc.genesisHash())
				block.Transactions = []*externalapi.DomainTransaction{testutils.Spend(t, tc.bob,
					[]*externalapi.DomainOutpoint{testutils.Outpoint(block.Coinbase, 0)}, tc.carol.Output(25))}
				return block
			}(),
			expectedErr: ruleerrors.ErrInvalidTransactionsInNewBlock{},
		},
	}

	for _, test := range tests {
		tipBefore, maxHeightBefore, countBefore := tc.chain.TipHash(), tc.chain.MaxHeight(), tc.chain.NodeCount()

		err := tc.chain.ValidateAndInsertBlock(test.block)
		switch expected := test.expectedErr.(type) {
		case ruleerrors.ErrMissingParents:
			if !errors.As(err, &expected) {
				t.Errorf("%s: expected ErrMissingParents, got: %v", test.name, err)
			}
		case ruleerrors.ErrInvalidTransactionsInNewBlock:
			if !errors.As(err, &expected) {
				t.Errorf("%s: expected ErrInvalidTransactionsInNewBlock, got: %v", test.name, err)
			}
		default:
			if !errors.Is(err, test.expectedErr) {
				t.Errorf("%s: expected %v, got: %v", test.name, test.expectedErr, err)
			}
		}

		if !tc.chain.TipHash().Equal(tipBefore) || tc.chain.MaxHeight() != maxHeightBefore ||
			tc.chain.NodeCount() != countBefore {
			t.Errorf("%s: a rejected block changed the chain", test.name)
		}
		if tc.chain.AddBlock(test.block) {
			t.Errorf("%s: AddBlock accepted a block ValidateAndInsertBlock rejected", test.name)
		}
	}

	if tc.chain.AddBlock(nil) {
		t.Fatalf("TestValidateAndInsertBlockErrors: a nil block was accepted")
	}
}

func TestCutoffBoundary(t *testing.T) {
	tc := newTestChain(t, nil)
	mainChain := tc.extendTo(tc.genesisHash(), 12)
	if tc.chain.MaxHeight() != 12 {
		t.Fatalf("TestCutoffBoundary: unexpected max height. Want: 12, got: %d", tc.chain.MaxHeight())
	}

	// A block on genesis lands at height 2 = 12 - CutoffDepth.
	atCutoff := tc.block(tc.genesisHash())
	err := tc.chain.ValidateAndInsertBlock(atCutoff)
	if !errors.Is(err, ruleerrors.ErrHeightBelowCutoff) {
		t.Fatalf("TestCutoffBoundary: expected ErrHeightBelowCutoff, got: %v", err)
	}

	// mainChain[0] is at height 2, so its child lands right above the cutoff.
	aboveCutoff := tc.block(mainChain[0])
	err = tc.chain.ValidateAndInsertBlock(aboveCutoff)
	if err != nil {
		t.Fatalf("TestCutoffBoundary: the block above the cutoff was rejected: %+v", err)
	}
	height, ok := tc.chain.BlockHeight(consensushashing.BlockHash(aboveCutoff))
	if !ok || height != 3 {
		t.Fatalf("TestCutoffBoundary: unexpected height of the accepted block. Want: 3, got: %d", height)
	}
	if !tc.chain.TipHash().Equal(mainChain[len(mainChain)-1]) {
		t.Fatalf("TestCutoffBoundary: a low block replaced the tip")
	}
}

type testArchive struct {
	blocks []*externalapi.DomainBlock
	err    error
}

func (a *testArchive) ArchiveBlocks(blocks []*externalapi.DomainBlock) error {
	a.blocks = append(a.blocks, blocks...)
	return a.err
}

func TestPruneStaleNodes(t *testing.T) {
	archive := &testArchive{}
	tc := newTestChain(t, archive)

	sideBranch := tc.extendTo(tc.genesisHash(), 3)
	mainChain := []*externalapi.DomainHash{tc.mustAdd(tc.genesisHash())}
	mainChain = append(mainChain, tc.extendTo(mainChain[0], 12)...)

	// At max height 12 the side branch block at height 3 is above the cutoff,
	// so both side branch blocks are kept.
	for _, hash := range sideBranch {
		if !tc.chain.HaveBlock(hash) {
			t.Fatalf("TestPruneStaleNodes: a side branch block was evicted too early")
		}
	}
	if len(archive.blocks) != 0 {
		t.Fatalf("TestPruneStaleNodes: unexpected archived blocks: %d", len(archive.blocks))
	}

	tc.mustAdd(tc.chain.TipHash())
	if tc.chain.MaxHeight() != 13 {
		t.Fatalf("TestPruneStaleNodes: unexpected max height. Want: 13, got: %d", tc.chain.MaxHeight())
	}
	for _, hash := range sideBranch {
		if tc.chain.HaveBlock(hash) {
			t.Fatalf("TestPruneStaleNodes: side branch block %s was not evicted", hash)
		}
	}
	if len(archive.blocks) != 2 {
		t.Fatalf("TestPruneStaleNodes: unexpected number of archived blocks. Want: 2, got: %d", len(archive.blocks))
	}
	for i, hash := range sideBranch {
		if !consensushashing.BlockHash(archive.blocks[i]).Equal(hash) {
			t.Fatalf("TestPruneStaleNodes: archived blocks are not in height order")
		}
	}

	if !tc.chain.HaveBlock(tc.genesisHash()) {
		t.Fatalf("TestPruneStaleNodes: the genesis block was evicted")
	}
	for _, hash := range mainChain {
		if !tc.chain.HaveBlock(hash) {
			t.Fatalf("TestPruneStaleNodes: main chain block %s was evicted", hash)
		}
	}
	if tc.chain.NodeCount() != 1+len(mainChain)+1 {
		t.Fatalf("TestPruneStaleNodes: unexpected node count. Want: %d, got: %d",
			1+len(mainChain)+1, tc.chain.NodeCount())
	}

	// The UTXO sets below the cutoff are released and the one at the cutoff is kept.
	genesisNode, _ := tc.chain.index.Lookup(tc.genesisHash())
	secondNode, _ := tc.chain.index.Lookup(mainChain[0])
	thirdNode, _ := tc.chain.index.Lookup(mainChain[1])
	if genesisNode.HasUTXOSet() || secondNode.HasUTXOSet() || !thirdNode.HasUTXOSet() {
		t.Fatalf("TestPruneStaleNodes: unexpected released UTXO sets: genesis %t, height 2 %t, height 3 %t",
			!genesisNode.HasUTXOSet(), !secondNode.HasUTXOSet(), !thirdNode.HasUTXOSet())
	}
	if len(genesisNode.Children()) != 1 {
		t.Fatalf("TestPruneStaleNodes: evicted children are still referenced by genesis")
	}
	if len(tc.chain.Tips()) != 1 {
		t.Fatalf("TestPruneStaleNodes: unexpected number of tips. Want: 1, got: %d", len(tc.chain.Tips()))
	}

	// The cutoff must still be enforced, without ever reading a released set.
	err := tc.chain.ValidateAndInsertBlock(tc.block(mainChain[0]))
	if !errors.Is(err, ruleerrors.ErrHeightBelowCutoff) {
		t.Fatalf("TestPruneStaleNodes: expected ErrHeightBelowCutoff, got: %v", err)
	}
	err = tc.chain.ValidateAndInsertBlock(tc.block(sideBranch[1]))
	if !errors.As(err, &ruleerrors.ErrMissingParents{}) {
		t.Fatalf("TestPruneStaleNodes: expected ErrMissingParents for a child of an evicted block, got: %v", err)
	}
}

func TestArchiveFailureDoesNotRejectBlock(t *testing.T) {
	archive := &testArchive{err: errors.New("disk full")}
	tc := newTestChain(t, archive)
	tc.mustAdd(tc.genesisHash())
	tc.extendTo(tc.mustAdd(tc.genesisHash()), 12)

	if len(archive.blocks) != 1 {
		t.Fatalf("TestArchiveFailureDoesNotRejectBlock: unexpected number of archived blocks. "+
			"Want: 1, got: %d", len(archive.blocks))
	}
	if tc.chain.MaxHeight() != 12 {
		t.Fatalf("TestArchiveFailureDoesNotRejectBlock: a block was rejected because archiving failed")
	}
}

func TestTipUTXOSetIsACopy(t *testing.T) {
	tc := newTestChain(t, nil)
	outpoint := testutils.Outpoint(tc.genesis.Coinbase, 0)

	utxoSet := tc.chain.TipUTXOSet()
	utxoSet.Remove(outpoint)

	if !tc.chain.TipUTXOSet().Contains(outpoint) {
		t.Fatalf("TestTipUTXOSetIsACopy: mutating the returned set changed the chain")
	}
}

// TestMaxHeightIsReachableFromTip submits a mix of valid and invalid blocks
// and checks after every submission that the tip is at the maximum height
// and that rejections change nothing.
func TestMaxHeightIsReachableFromTip(t *testing.T) {
	tc := newTestChain(t, nil)
	hashes := []*externalapi.DomainHash{tc.genesisHash()}

	for i := 0; i < 60; i++ {
		var block *externalapi.DomainBlock
		switch i % 4 {
		case 0, 1:
			block = tc.block(tc.chain.TipHash())
		case 2:
			block = tc.block(hashes[i%len(hashes)])
		case 3:
			block = tc.block(&externalapi.DomainHash{byte(i)})
		}

		maxHeightBefore, tipBefore := tc.chain.MaxHeight(), tc.chain.TipHash()
		accepted := tc.chain.AddBlock(block)
		if accepted {
			hashes = append(hashes, consensushashing.BlockHash(block))
		} else if tc.chain.MaxHeight() != maxHeightBefore || !tc.chain.TipHash().Equal(tipBefore) {
			t.Fatalf("TestMaxHeightIsReachableFromTip: a rejected block changed the tip")
		}
		if tc.chain.MaxHeight() < maxHeightBefore {
			t.Fatalf("TestMaxHeightIsReachableFromTip: the max height decreased")
		}

		tipHeight, ok := tc.chain.BlockHeight(tc.chain.TipHash())
		if !ok || tipHeight != tc.chain.MaxHeight() {
			t.Fatalf("TestMaxHeightIsReachableFromTip: tip height %d differs from max height %d",
				tipHeight, tc.chain.MaxHeight())
		}

		// Every ancestor of the tip must still be retained.
		node, _ := tc.chain.index.Lookup(tc.chain.TipHash())
		for !node.IsGenesis() {
			parent, ok := tc.chain.index.Lookup(node.ParentHash())
			if !ok {
				t.Fatalf("TestMaxHeightIsReachableFromTip: an ancestor of the tip was evicted")
			}
			if parent.Height()+1 != node.Height() {
				t.Fatalf("TestMaxHeightIsReachableFromTip: inconsistent heights along the tip's chain")
			}
			node = parent
		}
		if node.Height() != 1 {
			t.Fatalf("TestMaxHeightIsReachableFromTip: the tip's chain does not end at height 1")
		}
	}
}
