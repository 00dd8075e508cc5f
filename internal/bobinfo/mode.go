package bobinfo

import "sync/atomic"

var (
	quietMode   atomic.Bool
	debugMode   atomic.Bool
	verboseMode atomic.Bool
)

func SetQuiet(enabled bool) { quietMode.Store(enabled) }
func IsQuiet() bool         { return quietMode.Load() }

func SetDebug(enabled bool) { debugMode.Store(enabled) }
func IsDebug() bool         { return debugMode.Load() }

func SetVerbose(enabled bool) { verboseMode.Store(enabled) }
func IsVerbose() bool         { return verboseMode.Load() }
