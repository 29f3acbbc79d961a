// Package config holds the command line options shared by the commands of
// this module.
package config

import (
	"path/filepath"

	"github.com/btcsuite/btcutil"
	"github.com/kaspanet/utxochain/infrastructure/logger"
	"github.com/pkg/errors"
)

const (
	defaultLogLevel = "info"
	logDirName      = "logs"
)

// DefaultAppDir returns the default data directory of the application
// named appName for the current operating system.
func DefaultAppDir(appName string) string {
	return btcutil.AppDataDir(appName, false)
}

// LogFlags holds the logging configuration of a command.
type LogFlags struct {
	LogDir   string `long:"logdir" description:"Directory to log output"`
	LogLevel string `short:"d" long:"loglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems"`
	NoLog    bool   `long:"nolog" description:"Disable writing logs to files"`
}

// DefaultLogFlags returns the LogFlags of appName before the command line
// is parsed.
func DefaultLogFlags(appName string) LogFlags {
	return LogFlags{
		LogDir:   filepath.Join(DefaultAppDir(appName), logDirName),
		LogLevel: defaultLogLevel,
	}
}

// InitLog starts the logger backend as configured by the flags. Unless
// NoLog is set, appName.log and appName_err.log are written to LogDir.
func (logFlags *LogFlags) InitLog(appName string) error {
	err := logger.ParseAndSetLogLevels(logFlags.LogLevel)
	if err != nil {
		return errors.Wrapf(err, "invalid --loglevel %s", logFlags.LogLevel)
	}

	if logFlags.NoLog {
		return logger.InitLogStdout(logger.LevelInfo)
	}
	logFile := filepath.Join(logFlags.LogDir, appName+".log")
	errLogFile := filepath.Join(logFlags.LogDir, appName+"_err.log")
	return logger.InitLog(logFile, errLogFile)
}
