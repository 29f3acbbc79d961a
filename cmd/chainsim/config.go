package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/kaspanet/utxochain/infrastructure/config"
	"github.com/kaspanet/utxochain/util/profiling"
	"github.com/kaspanet/utxochain/version"
	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip39"
)

const (
	appName = "chainsim"

	defaultBlocks       = 200
	defaultForkRate     = 0.2
	defaultParticipants = 4
	defaultReward       = 50
	defaultTxsPerBlock  = 3
)

type configFlags struct {
	ShowVersion  bool    `short:"V" long:"version" description:"Display version information and exit"`
	Blocks       uint64  `short:"n" long:"blocks" description:"Number of blocks to submit"`
	ForkRate     float64 `long:"forkrate" description:"Probability in [0, 1] that a block extends a random recent block instead of the tip"`
	TxsPerBlock  int     `long:"txsperblock" description:"Maximum number of spend transactions submitted between blocks"`
	Seed         int64   `long:"seed" description:"Seed of the random source of the simulation"`
	Mnemonic     string  `long:"mnemonic" description:"BIP-39 mnemonic the participant keys are derived from. A random one is generated if omitted"`
	Participants int     `short:"p" long:"participants" description:"Number of participants sending transactions to each other"`
	Reward       int64   `long:"reward" description:"Value of the coinbase output of every block"`
	ArchiveDir   string  `long:"archivedir" description:"Directory of a leveldb archive receiving evicted blocks. No archive is kept if omitted"`
	Profile      string  `long:"profile" description:"Enable HTTP profiling on given port -- NOTE port must be between 1024 and 65536"`
	config.LogFlags
}

func parseConfig() (*configFlags, error) {
	cfg := &configFlags{
		Blocks:       defaultBlocks,
		ForkRate:     defaultForkRate,
		TxsPerBlock:  defaultTxsPerBlock,
		Seed:         1,
		Participants: defaultParticipants,
		Reward:       defaultReward,
		LogFlags:     config.DefaultLogFlags(appName),
	}
	parser := flags.NewParser(cfg, flags.PrintErrors|flags.HelpFlag)
	_, err := parser.Parse()

	// Show the version and exit if the version flag was specified.
	if cfg.ShowVersion {
		name := filepath.Base(os.Args[0])
		name = strings.TrimSuffix(name, filepath.Ext(name))
		fmt.Println(name, "version", version.Version())
		os.Exit(0)
	}

	if err != nil {
		return nil, err
	}

	err = cfg.validate()
	if err != nil {
		return nil, err
	}

	err = cfg.InitLog(appName)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *configFlags) validate() error {
	if cfg.Blocks == 0 {
		return errors.New("--blocks must be positive")
	}
	if cfg.ForkRate < 0 || cfg.ForkRate > 1 {
		return errors.Errorf("--forkrate must be between 0 and 1, got %f", cfg.ForkRate)
	}
	if cfg.TxsPerBlock < 0 {
		return errors.Errorf("--txsperblock must not be negative, got %d", cfg.TxsPerBlock)
	}
	if cfg.Participants < 2 {
		return errors.Errorf("--participants must be at least 2, got %d", cfg.Participants)
	}
	if cfg.Reward <= 0 {
		return errors.Errorf("--reward must be positive, got %d", cfg.Reward)
	}
	if cfg.Profile != "" {
		err := profiling.ValidatePort(cfg.Profile)
		if err != nil {
			return err
		}
	}
	if cfg.Mnemonic != "" && !bip39.IsMnemonicValid(cfg.Mnemonic) {
		return errors.New("--mnemonic is not a valid BIP-39 mnemonic")
	}
	return nil
}
