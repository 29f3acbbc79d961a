package main

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"sort"

	"github.com/davecgh/go-spew/spew"
	"github.com/kaspanet/go-secp256k1"
	"github.com/kaspanet/utxochain/domain/blockchain"
	"github.com/kaspanet/utxochain/domain/consensus/model/externalapi"
	"github.com/kaspanet/utxochain/domain/consensus/ruleerrors"
	"github.com/kaspanet/utxochain/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/utxochain/domain/consensus/utils/txsigning"
	"github.com/kaspanet/utxochain/domain/miningmanager"
	"github.com/kaspanet/utxochain/domain/miningmanager/blocktemplatebuilder"
	"github.com/kaspanet/utxochain/infrastructure/db/blockarchive"
	"github.com/kaspanet/utxochain/infrastructure/logger"
	"github.com/kaspanet/utxochain/infrastructure/os/signal"
	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip39"
)

// conflictRate is the probability that a spend is submitted together with an
// unvalidated conflicting spend of the same output.
const conflictRate = 0.1

type participant struct {
	keyPair   *secp256k1.SchnorrKeyPair
	publicKey []byte
}

type spendableOutput struct {
	outpoint externalapi.DomainOutpoint
	amount   int64
	owner    *participant
}

type simulationStats struct {
	acceptedBlocks uint64
	rejectedBlocks uint64
	forkBlocks     uint64
	acceptedTxs    uint64
	rejectedTxs    uint64
	conflictingTxs uint64
}

type simulator struct {
	cfg          *configFlags
	random       *rand.Rand
	participants []*participant
	owners       map[string]*participant
	chain        *blockchain.BlockChain
	manager      miningmanager.MiningManager
	archive      *blockarchive.Archive
	recentBlocks []*externalapi.DomainHash
	nonce        uint64
	stats        simulationStats
}

func newSimulator(cfg *configFlags) (*simulator, error) {
	random := rand.New(rand.NewSource(cfg.Seed))

	mnemonic := cfg.Mnemonic
	if mnemonic == "" {
		entropy := make([]byte, 32)
		random.Read(entropy)
		var err error
		mnemonic, err = bip39.NewMnemonic(entropy)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		log.Infof("Generated participant mnemonic: %s", mnemonic)
	}
	participants, err := deriveParticipants(mnemonic, cfg.Participants)
	if err != nil {
		return nil, err
	}
	owners := make(map[string]*participant, len(participants))
	for _, p := range participants {
		owners[string(p.publicKey)] = p
	}

	sim := &simulator{
		cfg:          cfg,
		random:       random,
		participants: participants,
		owners:       owners,
	}

	chainConfig := &blockchain.Config{Genesis: sim.genesis()}
	if cfg.ArchiveDir != "" {
		sim.archive, err = blockarchive.Open(cfg.ArchiveDir)
		if err != nil {
			return nil, err
		}
		chainConfig.Archive = sim.archive
	}
	sim.chain, err = blockchain.New(chainConfig)
	if err != nil {
		sim.close()
		return nil, err
	}
	sim.manager = miningmanager.New(sim.chain, nil)
	sim.recentBlocks = []*externalapi.DomainHash{sim.chain.TipHash()}
	return sim, nil
}

// deriveParticipants derives count key pairs from the BIP-39 seed of mnemonic.
func deriveParticipants(mnemonic string, count int) ([]*participant, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, errors.New("invalid mnemonic")
	}
	seed := bip39.NewSeed(mnemonic, "")

	participants := make([]*participant, count)
	for i := range participants {
		participantSeed := make([]byte, len(seed)+4)
		copy(participantSeed, seed)
		binary.BigEndian.PutUint32(participantSeed[len(seed):], uint32(i))

		keyPair, err := txsigning.KeyPairFromSeed(participantSeed)
		if err != nil {
			return nil, err
		}
		publicKey, err := txsigning.PublicKey(keyPair)
		if err != nil {
			return nil, err
		}
		participants[i] = &participant{keyPair: keyPair, publicKey: publicKey}
	}
	return participants, nil
}

func (sim *simulator) genesis() *externalapi.DomainBlock {
	return &externalapi.DomainBlock{
		Coinbase:     blocktemplatebuilder.NewCoinbase(sim.participants[0].publicKey, sim.cfg.Reward, 1, 0),
		Transactions: []*externalapi.DomainTransaction{},
	}
}

func (sim *simulator) close() {
	if sim.archive == nil {
		return
	}
	err := sim.archive.Close()
	if err != nil {
		log.Errorf("Error closing the block archive: %s", err)
	}
	sim.archive = nil
}

// run submits cfg.Blocks blocks, or fewer if interrupt is closed first.
func (sim *simulator) run(interrupt <-chan struct{}) error {
	for i := uint64(0); i < sim.cfg.Blocks; i++ {
		if signal.InterruptRequested(interrupt) {
			log.Infof("Simulation interrupted after %d blocks", i)
			return nil
		}

		err := sim.submitTransactions()
		if err != nil {
			return err
		}
		err = sim.submitBlock()
		if err != nil {
			return err
		}
	}
	return nil
}

func (sim *simulator) randomParticipant() *participant {
	return sim.participants[sim.random.Intn(len(sim.participants))]
}

// spendableOutputs returns the outputs of the tip UTXO set owned by a
// participant and not spent by a pool transaction, sorted by outpoint.
func (sim *simulator) spendableOutputs() []*spendableOutput {
	reserved := make(map[externalapi.DomainOutpoint]struct{})
	for _, tx := range sim.chain.TransactionPool().Transactions() {
		for _, input := range tx.Inputs {
			reserved[input.PreviousOutpoint] = struct{}{}
		}
	}

	var outputs []*spendableOutput
	iterator := sim.chain.TipUTXOSet().Iterator()
	for iterator.Next() {
		outpoint, entry := iterator.Get()
		if _, ok := reserved[*outpoint]; ok || entry.Amount() <= 0 {
			continue
		}
		owner, ok := sim.owners[string(entry.PublicKey())]
		if !ok {
			continue
		}
		outputs = append(outputs, &spendableOutput{outpoint: *outpoint, amount: entry.Amount(), owner: owner})
	}
	sort.Slice(outputs, func(i, j int) bool {
		cmp := bytes.Compare(outputs[i].outpoint.TransactionID[:], outputs[j].outpoint.TransactionID[:])
		if cmp != 0 {
			return cmp < 0
		}
		return outputs[i].outpoint.Index < outputs[j].outpoint.Index
	})
	return outputs
}

// spend returns a transaction paying a random part of output to recipient
// and the rest back to its owner.
func (sim *simulator) spend(output *spendableOutput, recipient *participant) (*externalapi.DomainTransaction, error) {
	value := sim.random.Int63n(output.amount) + 1
	outputs := []*externalapi.DomainTransactionOutput{{Value: value, PublicKey: recipient.publicKey}}
	if change := output.amount - value; change > 0 {
		outputs = append(outputs, &externalapi.DomainTransactionOutput{Value: change, PublicKey: output.owner.publicKey})
	}
	tx := &externalapi.DomainTransaction{
		Inputs:  []*externalapi.DomainTransactionInput{{PreviousOutpoint: output.outpoint}},
		Outputs: outputs,
	}
	err := txsigning.SignAllInputs(tx, output.owner.keyPair)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func (sim *simulator) submitTransactions() error {
	if sim.cfg.TxsPerBlock == 0 {
		return nil
	}
	outputs := sim.spendableOutputs()
	sim.random.Shuffle(len(outputs), func(i, j int) { outputs[i], outputs[j] = outputs[j], outputs[i] })

	count := sim.random.Intn(sim.cfg.TxsPerBlock + 1)
	for i := 0; i < count && i < len(outputs); i++ {
		tx, err := sim.spend(outputs[i], sim.randomParticipant())
		if err != nil {
			return err
		}
		err = sim.manager.ValidateAndInsertTransaction(tx)
		if err != nil {
			if !errors.As(err, &ruleerrors.RuleError{}) {
				return err
			}
			log.Debugf("Transaction %s rejected: %s", consensushashing.TransactionID(tx), err)
			sim.stats.rejectedTxs++
			continue
		}
		sim.stats.acceptedTxs++

		if sim.random.Float64() < conflictRate {
			conflicting, err := sim.spend(outputs[i], sim.randomParticipant())
			if err != nil {
				return err
			}
			// The pool takes it without validation. At most one of the two
			// makes it into a block.
			sim.chain.AddTransaction(conflicting)
			sim.stats.conflictingTxs++
		}
	}
	return nil
}

func (sim *simulator) submitBlock() error {
	miner := sim.randomParticipant()
	sim.nonce++

	var block *externalapi.DomainBlock
	if sim.random.Float64() < sim.cfg.ForkRate && len(sim.recentBlocks) > 1 {
		block = sim.forkBlock(miner)
	}
	if block == nil {
		var err error
		block, err = sim.manager.GetBlockTemplate(miner.publicKey, sim.cfg.Reward, sim.nonce)
		if err != nil {
			return err
		}
	} else {
		sim.stats.forkBlocks++
	}

	blockHash := consensushashing.BlockHash(block)
	err := sim.manager.HandleNewBlock(block)
	if err != nil {
		if !errors.As(err, &ruleerrors.RuleError{}) {
			return err
		}
		log.Debugf("Block %s rejected: %s", blockHash, err)
		sim.stats.rejectedBlocks++
		return nil
	}
	sim.stats.acceptedBlocks++

	sim.recentBlocks = append(sim.recentBlocks, blockHash)
	if len(sim.recentBlocks) > blockchain.CutoffDepth+1 {
		sim.recentBlocks = sim.recentBlocks[1:]
	}
	return nil
}

// forkBlock returns an empty block on top of a random recent block, or nil
// if that block is no longer retained.
func (sim *simulator) forkBlock(miner *participant) *externalapi.DomainBlock {
	parentHash := sim.recentBlocks[sim.random.Intn(len(sim.recentBlocks))]
	parentHeight, ok := sim.chain.BlockHeight(parentHash)
	if !ok {
		return nil
	}
	return &externalapi.DomainBlock{
		ParentHash:   parentHash,
		Coinbase:     blocktemplatebuilder.NewCoinbase(miner.publicKey, sim.cfg.Reward, parentHeight+1, sim.nonce),
		Transactions: []*externalapi.DomainTransaction{},
		Nonce:        sim.nonce,
	}
}

func (sim *simulator) report() {
	utxoSet := sim.chain.TipUTXOSet()
	log.Infof("Tip %s at height %d. %d blocks retained in %d branches",
		sim.chain.TipHash(), sim.chain.MaxHeight(), sim.chain.NodeCount(), len(sim.chain.Tips()))
	log.Infof("Blocks: %d accepted, %d rejected, %d forks attempted",
		sim.stats.acceptedBlocks, sim.stats.rejectedBlocks, sim.stats.forkBlocks)
	log.Infof("Transactions: %d accepted into the pool, %d rejected, %d conflicting. %d pending",
		sim.stats.acceptedTxs, sim.stats.rejectedTxs, sim.stats.conflictingTxs,
		sim.chain.TransactionPool().Count())
	log.Infof("Tip UTXO set holds %d outputs with commitment %s", utxoSet.Len(), sim.chain.TipUTXOCommitment())
	if sim.archive != nil {
		log.Infof("The archive holds %d blocks", sim.archive.Count())
	}
	log.Tracef("Tip block: %s", logger.NewLogClosure(func() string {
		return spew.Sdump(sim.chain.TipBlock())
	}))
}
