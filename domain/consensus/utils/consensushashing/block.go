package consensushashing

import (
	"github.com/kaspanet/utxochain/domain/consensus/model/externalapi"
	"github.com/kaspanet/utxochain/domain/consensus/utils/hashes"
	"github.com/kaspanet/utxochain/domain/consensus/utils/serialization"
	"github.com/pkg/errors"
)

// BlockHash returns the given block's hash. It commits to the parent hash,
// the coinbase ID, the ordered IDs of the block's transactions and the nonce.
// A block without a coinbase still hashes, so that it can be identified while
// being rejected.
func BlockHash(block *externalapi.DomainBlock) *externalapi.DomainHash {
	writer := hashes.NewBlockHashWriter()

	hasParent := block.ParentHash != nil
	mustWrite(serialization.WriteElement(writer, hasParent))
	if hasParent {
		mustWrite(serialization.WriteElement(writer, block.ParentHash))
	}

	hasCoinbase := block.Coinbase != nil
	mustWrite(serialization.WriteElement(writer, hasCoinbase))
	if hasCoinbase {
		mustWrite(serialization.WriteElement(writer, *TransactionID(block.Coinbase)))
	}

	mustWrite(serialization.WriteElement(writer, uint64(len(block.Transactions))))
	for _, tx := range block.Transactions {
		mustWrite(serialization.WriteElement(writer, *TransactionID(tx)))
	}
	mustWrite(serialization.WriteElement(writer, block.Nonce))

	return writer.Finalize()
}

func mustWrite(err error) {
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. Hash digest should never return an error"))
	}
}
