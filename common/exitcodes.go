package common

import (
	"fmt"
)

type ExitCode struct {
	Code    int
	Message string
}

func (it ExitCode) ShowMessage() {
	if len(it.Message) > 0 {
		Log("%s", it.Message)
	}
}

// Exit panics with an ExitCode, to be recovered by ExitProtection
// at the top of main. Nothing between here and there should swallow it.
func Exit(code int, format string, details ...interface{}) {
	panic(ExitCode{
		Code:    code,
		Message: fmt.Sprintf(format, details...),
	})
}
