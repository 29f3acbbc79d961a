package blocktemplatebuilder

import (
	"encoding/binary"

	"github.com/kaspanet/utxochain/domain/consensus/model/externalapi"
	"github.com/kaspanet/utxochain/domain/consensus/processes/transactionvalidator"
	"github.com/kaspanet/utxochain/domain/consensus/utils/txsigning"
	"github.com/kaspanet/utxochain/domain/consensus/utils/utxo"
	"github.com/kaspanet/utxochain/domain/miningmanager/mempool"
	"github.com/pkg/errors"
)

// Chain is the part of the chain manager a BlockTemplateBuilder builds on.
type Chain interface {
	TipHash() *externalapi.DomainHash
	TipUTXOSet() *utxo.Set
	MaxHeight() uint64
	TransactionPool() *mempool.TransactionPool
}

// coinbasePayloadLength is the length of a coinbase payload: the block
// height followed by the nonce, both little endian.
const coinbasePayloadLength = 16

// BlockTemplateBuilder creates block templates for a miner to consume
type BlockTemplateBuilder struct {
	chain    Chain
	verifier txsigning.Verifier
}

// New creates a new BlockTemplateBuilder
func New(chain Chain, verifier txsigning.Verifier) *BlockTemplateBuilder {
	if verifier == nil {
		verifier = txsigning.NewSchnorrVerifier()
	}
	return &BlockTemplateBuilder{
		chain:    chain,
		verifier: verifier,
	}
}

// BuildBlockTemplate creates a block on top of the current tip. The pool
// transactions are applied in pool order to a copy of the tip's UTXO set
// and the block holds exactly the ones that were accepted, together with a
// coinbase paying reward to coinbasePublicKey.
func (btb *BlockTemplateBuilder) BuildBlockTemplate(coinbasePublicKey []byte, reward int64,
	nonce uint64) (*externalapi.DomainBlock, error) {

	if reward < 0 {
		return nil, errors.Errorf("negative block reward %d", reward)
	}

	candidates := btb.chain.TransactionPool().Transactions()
	validator := transactionvalidator.New(btb.chain.TipUTXOSet(), btb.verifier)
	accepted, rejected := validator.Apply(candidates)
	if len(rejected) > 0 {
		log.Debugf("Left %d of %d pool transactions out of the template", len(rejected), len(candidates))
	}
	if accepted == nil {
		accepted = []*externalapi.DomainTransaction{}
	}

	height := btb.chain.MaxHeight() + 1
	block := &externalapi.DomainBlock{
		ParentHash:   btb.chain.TipHash(),
		Coinbase:     NewCoinbase(coinbasePublicKey, reward, height, nonce),
		Transactions: accepted,
		Nonce:        nonce,
	}
	log.Debugf("Built a block template at height %d with %d transactions", height, len(accepted))
	return block, nil
}

// NewCoinbase returns a coinbase transaction paying reward to publicKey.
// The payload holds height and nonce so that coinbases paying the same
// reward to the same key at different heights have different IDs.
func NewCoinbase(publicKey []byte, reward int64, height uint64, nonce uint64) *externalapi.DomainTransaction {
	payload := make([]byte, coinbasePayloadLength)
	binary.LittleEndian.PutUint64(payload[:8], height)
	binary.LittleEndian.PutUint64(payload[8:], nonce)

	return &externalapi.DomainTransaction{
		Inputs: []*externalapi.DomainTransactionInput{},
		Outputs: []*externalapi.DomainTransactionOutput{{
			Value:     reward,
			PublicKey: append([]byte(nil), publicKey...),
		}},
		Payload: payload,
	}
}

// CoinbaseHeight returns the height encoded in the payload of a coinbase
// created by NewCoinbase.
func CoinbaseHeight(coinbase *externalapi.DomainTransaction) (uint64, error) {
	if len(coinbase.Payload) != coinbasePayloadLength {
		return 0, errors.Errorf("coinbase payload is %d bytes long instead of %d",
			len(coinbase.Payload), coinbasePayloadLength)
	}
	return binary.LittleEndian.Uint64(coinbase.Payload[:8]), nil
}
