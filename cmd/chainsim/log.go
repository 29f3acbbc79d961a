package main

import (
	"github.com/kaspanet/utxochain/infrastructure/logger"
	"github.com/kaspanet/utxochain/util/panics"
)

var (
	log   = logger.RegisterSubSystem("CSIM")
	spawn = panics.GoroutineWrapperFunc(log)
)
