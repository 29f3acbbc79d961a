package blockarchive_test

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/kaspanet/utxochain/domain/blockchain"
	"github.com/kaspanet/utxochain/domain/consensus/model/externalapi"
	"github.com/kaspanet/utxochain/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/utxochain/domain/consensus/utils/testutils"
	"github.com/kaspanet/utxochain/infrastructure/db/blockarchive"
)

var _ blockchain.BlockArchive = (*blockarchive.Archive)(nil)

func testBlocks(t *testing.T) []*externalapi.DomainBlock {
	alice := testutils.NewParticipant(t, "alice")
	bob := testutils.NewParticipant(t, "bob")
	genesis := testutils.Block(nil, testutils.Coinbase(0, alice.Output(25)))
	spend := testutils.Spend(t, alice,
		[]*externalapi.DomainOutpoint{testutils.Outpoint(genesis.Coinbase, 0)}, bob.Output(25))
	child := testutils.Block(consensushashing.BlockHash(genesis), testutils.Coinbase(1, bob.Output(25)), spend)
	child.Nonce = 42
	return []*externalapi.DomainBlock{genesis, child}
}

func TestArchiveBlocks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive")
	archive, err := blockarchive.Open(path)
	if err != nil {
		t.Fatalf("Open: %+v", err)
	}
	blocks := testBlocks(t)

	err = archive.ArchiveBlocks(blocks)
	if err != nil {
		t.Fatalf("ArchiveBlocks: %+v", err)
	}
	if archive.Count() != 2 {
		t.Fatalf("TestArchiveBlocks: unexpected count. Want: 2, got: %d", archive.Count())
	}

	for _, block := range blocks {
		blockHash := consensushashing.BlockHash(block)
		exists, err := archive.Has(blockHash)
		if err != nil {
			t.Fatalf("Has: %+v", err)
		}
		if !exists {
			t.Fatalf("TestArchiveBlocks: block %s is missing", blockHash)
		}
		archived, ok, err := archive.Block(blockHash)
		if err != nil {
			t.Fatalf("Block: %+v", err)
		}
		if !ok || !reflect.DeepEqual(archived, block) {
			t.Fatalf("TestArchiveBlocks: unexpected archived block. Want: %s, got: %s",
				spew.Sdump(block), spew.Sdump(archived))
		}
	}

	_, ok, err := archive.Block(&externalapi.DomainHash{1})
	if err != nil {
		t.Fatalf("Block: %+v", err)
	}
	if ok {
		t.Fatalf("TestArchiveBlocks: found a block that was never archived")
	}

	// Archiving the same blocks again, also within one call, changes nothing.
	err = archive.ArchiveBlocks([]*externalapi.DomainBlock{blocks[1], blocks[1], blocks[0]})
	if err != nil {
		t.Fatalf("ArchiveBlocks: %+v", err)
	}
	if archive.Count() != 2 {
		t.Fatalf("TestArchiveBlocks: re-archiving changed the count to %d", archive.Count())
	}

	err = archive.Close()
	if err != nil {
		t.Fatalf("Close: %+v", err)
	}

	reopened, err := blockarchive.Open(path)
	if err != nil {
		t.Fatalf("Open: %+v", err)
	}
	defer func() {
		err := reopened.Close()
		if err != nil {
			t.Fatalf("Close: %+v", err)
		}
	}()
	if reopened.Count() != 2 {
		t.Fatalf("TestArchiveBlocks: unexpected count after reopening. Want: 2, got: %d", reopened.Count())
	}
	exists, err := reopened.Has(consensushashing.BlockHash(blocks[1]))
	if err != nil {
		t.Fatalf("Has: %+v", err)
	}
	if !exists {
		t.Fatalf("TestArchiveBlocks: an archived block was lost on reopening")
	}
}

func TestChainArchivesEvictedBlocks(t *testing.T) {
	archive, err := blockarchive.Open(filepath.Join(t.TempDir(), "archive"))
	if err != nil {
		t.Fatalf("Open: %+v", err)
	}
	defer archive.Close()

	miner := testutils.NewParticipant(t, "miner")
	genesis := testutils.Block(nil, testutils.Coinbase(0, miner.Output(25)))
	chain, err := blockchain.New(&blockchain.Config{Genesis: genesis, Archive: archive})
	if err != nil {
		t.Fatalf("blockchain.New: %+v", err)
	}

	tag := uint64(1)
	newBlock := func(parent *externalapi.DomainHash) *externalapi.DomainBlock {
		tag++
		return testutils.Block(parent, testutils.Coinbase(tag, miner.Output(25)))
	}

	stale := newBlock(chain.TipHash())
	if !chain.AddBlock(stale) {
		t.Fatalf("TestChainArchivesEvictedBlocks: the stale block was rejected")
	}
	parent := consensushashing.BlockHash(genesis)
	for chain.MaxHeight() < 1+blockchain.CutoffDepth+1 {
		block := newBlock(parent)
		if !chain.AddBlock(block) {
			t.Fatalf("TestChainArchivesEvictedBlocks: a main chain block was rejected")
		}
		parent = consensushashing.BlockHash(block)
	}

	if chain.HaveBlock(consensushashing.BlockHash(stale)) {
		t.Fatalf("TestChainArchivesEvictedBlocks: the stale block was not evicted")
	}
	exists, err := archive.Has(consensushashing.BlockHash(stale))
	if err != nil {
		t.Fatalf("Has: %+v", err)
	}
	if !exists || archive.Count() != 1 {
		t.Fatalf("TestChainArchivesEvictedBlocks: the evicted block was not archived")
	}
}
