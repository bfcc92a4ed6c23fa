package common

import (
	"fmt"
)

const (
	Version = "v0.9.2"
)

var (
	LogLinenumbers bool
	LogHides       []string

	debugFlag  bool
	traceFlag  bool
	silentFlag bool
)

func DefineVerbosity(silent, debug, trace bool) {
	silentFlag = silent
	debugFlag = debug
	traceFlag = trace
}

func DebugFlag() bool {
	return debugFlag || traceFlag
}

func TraceFlag() bool {
	return traceFlag
}

func Silent() bool {
	return silentFlag
}

func UserAgent() string {
	return fmt.Sprintf("depgate/%s", Version)
}
