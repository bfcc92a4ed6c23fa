package pretty

import (
	"fmt"

	"github.com/ossreview/depgate/common"
)

func Ok() error {
	Exit(0, "OK.")
	return nil
}

// Exit panics with common.ExitCode, to be recovered at the top of main.
func Exit(code int, format string, rest ...interface{}) error {
	var message string
	if code == 0 {
		message = fmt.Sprintf(Green+format+Reset, rest...)
	} else {
		message = fmt.Sprintf(Red+format+Reset, rest...)
	}
	panic(common.ExitCode{Code: code, Message: message})
}

// Guard exits with given code and message unless condition holds.
func Guard(condition bool, code int, format string, rest ...interface{}) {
	if !condition {
		Exit(code, format, rest...)
	}
}

func Warning(format string, rest ...interface{}) {
	common.Log(Yellow+"Warning: "+format+Reset, rest...)
}

func Note(format string, rest ...interface{}) {
	common.Log(Cyan+"Note: "+format+Reset, rest...)
}

func Highlight(format string, rest ...interface{}) {
	common.Log(Bold+format+Reset, rest...)
}
