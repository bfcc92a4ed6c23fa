package pretty

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/ossreview/depgate/common"
)

var (
	Colorless   bool
	Disabled    bool
	Interactive bool
	White       string
	Grey        string
	Black       string
	Red         string
	Green       string
	Blue        string
	Yellow      string
	Magenta     string
	Cyan        string
	Reset       string
	Bold        string
	Faint       string
	Italic      string
	Underline   string
)

func csi(value string) string {
	return fmt.Sprintf("\033[%s", value)
}

func Setup() {
	stdin := isatty.IsTerminal(os.Stdin.Fd())
	stdout := isatty.IsTerminal(os.Stdout.Fd())
	stderr := isatty.IsTerminal(os.Stderr.Fd())

	if os.Getenv("NO_COLOR") != "" {
		Colorless = true
	}

	if os.Getenv("TERM") == "" {
		Colorless = true
	}

	// Prompting is only safe when all three standard streams are terminals.
	Interactive = stdin && stdout && stderr

	visualOutput := stdout && !Colorless

	common.Trace("Interactive mode enabled: %v; colors enabled: %v", Interactive, visualOutput && !Disabled)
	if visualOutput && !Disabled {
		White = csi("97m")
		Grey = csi("90m")
		Black = csi("30m")
		Red = csi("91m")
		Green = csi("92m")
		Yellow = csi("93m")
		Blue = csi("94m")
		Magenta = csi("95m")
		Cyan = csi("96m")
		Reset = csi("0m")
		Bold = csi("1m")
		Faint = csi("2m")
		Italic = csi("3m")
		Underline = csi("4m")
	}
}
