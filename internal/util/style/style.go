package style

import (
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
)

var (
	// Respect https://no-color.org/ and https://bixense.com/clicolors/.
	noColor    = os.Getenv("NO_COLOR") != ""
	forceColor = os.Getenv("CLICOLOR_FORCE") != "" && os.Getenv("CLICOLOR_FORCE") != "0"

	isColor    = colorFor(os.Stdout.Fd())
	isErrColor = colorFor(os.Stderr.Fd())
)

func colorFor(fd uintptr) bool {
	if noColor {
		return false
	}
	return forceColor || isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func StdoutSupportsColor() bool { return isColor }
func StderrSupportsColor() bool { return isErrColor }

func doS(ms []int) string {
	if len(ms) == 0 {
		return "\033[0m"
	}
	var b strings.Builder
	_, _ = b.WriteString("\033[")
	for i, m := range ms {
		if i != 0 {
			_ = b.WriteByte(';')
		}
		_, _ = b.WriteString(strconv.Itoa(m))
	}
	_ = b.WriteByte('m')
	return b.String()
}

// SE returns the escape sequence for the given SGR codes if stderr is colored.
func SE(ms ...int) string {
	if isErrColor {
		return doS(ms)
	}
	return ""
}

func WithSE(s string, ms ...int) string { return SE(ms...) + s + SE() }
