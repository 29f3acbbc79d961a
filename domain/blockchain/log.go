package blockchain

import (
	"github.com/kaspanet/utxochain/infrastructure/logger"
)

var log = logger.RegisterSubSystem("BCHN")
