package profiling

import (
	"net"
	"net/http"
	"strconv"

	// Registers the pprof handlers on http.DefaultServeMux
	_ "net/http/pprof"

	"github.com/kaspanet/utxochain/infrastructure/logger"
	"github.com/kaspanet/utxochain/util/panics"
	"github.com/pkg/errors"
)

// ValidatePort returns an error unless port is a number between 1024 and
// 65535.
func ValidatePort(port string) error {
	profilePort, err := strconv.Atoi(port)
	if err != nil || profilePort < 1024 || profilePort > 65535 {
		return errors.Errorf("the profile port must be between 1024 and 65535, got %s", port)
	}
	return nil
}

// Start starts a pprof server on port in the background. Failures are logged.
func Start(port string, log *logger.Logger) {
	spawn := panics.GoroutineWrapperFunc(log)
	spawn("profiling.Start", func() {
		listenAddr := net.JoinHostPort("", port)
		log.Infof("Profile server listening on %s", listenAddr)
		profileRedirect := http.RedirectHandler("/debug/pprof", http.StatusSeeOther)
		http.Handle("/", profileRedirect)
		log.Errorf("Profile server stopped: %s", http.ListenAndServe(listenAddr, nil))
	})
}
