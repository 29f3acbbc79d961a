// Package blockarchive persists the blocks evicted from the fork tree in a
// leveldb database, keyed by block hash.
package blockarchive

import (
	"encoding/binary"

	"github.com/kaspanet/utxochain/domain/consensus/model/externalapi"
	"github.com/kaspanet/utxochain/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/utxochain/domain/consensus/utils/serialization"
	"github.com/kaspanet/utxochain/infrastructure/db/ldb"
	"github.com/pkg/errors"
)

var (
	blockKeyPrefix = []byte("block-")
	countKey       = []byte("count")
)

// Archive is a write-once store of blocks. Archiving a block that is
// already in the archive does nothing.
//
// This type is NOT safe for concurrent access.
type Archive struct {
	db    *ldb.LevelDB
	count uint64
}

// Open opens the archive at path, creating it if it doesn't exist.
func Open(path string) (*Archive, error) {
	db, err := ldb.NewLevelDB(path)
	if err != nil {
		return nil, err
	}

	count, err := readCount(db)
	if err != nil {
		closeErr := db.Close()
		if closeErr != nil {
			log.Errorf("Failed to close archive at %s: %s", path, closeErr)
		}
		return nil, err
	}

	log.Infof("Opened block archive at %s holding %d blocks", path, count)
	return &Archive{db: db, count: count}, nil
}

func readCount(db *ldb.LevelDB) (uint64, error) {
	serializedCount, err := db.Get(countKey)
	if err != nil {
		return 0, err
	}
	if serializedCount == nil {
		return 0, nil
	}
	if len(serializedCount) != 8 {
		return 0, errors.Errorf("archive block count is %d bytes long instead of 8", len(serializedCount))
	}
	return binary.LittleEndian.Uint64(serializedCount), nil
}

func blockKey(blockHash *externalapi.DomainHash) []byte {
	key := make([]byte, 0, len(blockKeyPrefix)+externalapi.DomainHashSize)
	key = append(key, blockKeyPrefix...)
	return append(key, blockHash.ByteSlice()...)
}

// ArchiveBlocks stores blocks in the archive. Either all of them are
// stored or none is.
func (a *Archive) ArchiveBlocks(blocks []*externalapi.DomainBlock) error {
	batch := a.db.NewBatch()
	added := make(map[externalapi.DomainHash]struct{}, len(blocks))
	for _, block := range blocks {
		blockHash := consensushashing.BlockHash(block)
		if _, ok := added[*blockHash]; ok {
			continue
		}
		key := blockKey(blockHash)
		exists, err := a.db.Has(key)
		if err != nil {
			return err
		}
		if exists {
			log.Debugf("Block %s is already archived", blockHash)
			continue
		}

		serializedBlock, err := serialization.BlockToBytes(block)
		if err != nil {
			return errors.Wrapf(err, "failed to serialize block %s", blockHash)
		}
		batch.Put(key, serializedBlock)
		added[*blockHash] = struct{}{}
	}
	if len(added) == 0 {
		return nil
	}

	count := a.count + uint64(len(added))
	serializedCount := make([]byte, 8)
	binary.LittleEndian.PutUint64(serializedCount, count)
	batch.Put(countKey, serializedCount)

	err := batch.Commit()
	if err != nil {
		return err
	}
	a.count = count
	log.Debugf("Archived %d blocks. The archive holds %d blocks", len(added), count)
	return nil
}

// Block returns the archived block with the given hash, or false if there
// is none.
func (a *Archive) Block(blockHash *externalapi.DomainHash) (*externalapi.DomainBlock, bool, error) {
	serializedBlock, err := a.db.Get(blockKey(blockHash))
	if err != nil {
		return nil, false, err
	}
	if serializedBlock == nil {
		return nil, false, nil
	}
	block, err := serialization.BlockFromBytes(serializedBlock)
	if err != nil {
		return nil, false, errors.Wrapf(err, "archived block %s is malformed", blockHash)
	}
	return block, true, nil
}

// Has returns whether the block with the given hash is archived.
func (a *Archive) Has(blockHash *externalapi.DomainHash) (bool, error) {
	return a.db.Has(blockKey(blockHash))
}

// Count returns the number of archived blocks.
func (a *Archive) Count() uint64 {
	return a.count
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}
