package miningmanager

import (
	"github.com/kaspanet/utxochain/infrastructure/logger"
)

var log = logger.RegisterSubSystem("MINR")
