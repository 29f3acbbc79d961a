// Package version reports the version of the commands of this module.
package version

import (
	"fmt"
	"strings"
)

// validCharacters is a list of characters valid in the appBuild string
const validCharacters = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-"

const (
	appMajor uint = 0
	appMinor uint = 1
	appPatch uint = 0
)

// appBuild may be set at link time with
// '-ldflags "-X github.com/kaspanet/utxochain/version.appBuild=foo"'.
// It is ignored unless it consists of validCharacters only.
var appBuild string

// Version returns the version as major.minor.patch, followed by
// -appBuild when a valid build string was linked in.
func Version() string {
	version := fmt.Sprintf("%d.%d.%d", appMajor, appMinor, appPatch)
	if isValidBuild(appBuild) {
		version = fmt.Sprintf("%s-%s", version, appBuild)
	}
	return version
}

func isValidBuild(build string) bool {
	if build == "" {
		return false
	}
	for _, r := range build {
		if !strings.ContainsRune(validCharacters, r) {
			return false
		}
	}
	return true
}
