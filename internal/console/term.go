package console

import (
	"os"

	"golang.org/x/term"
)

const defaultTerminalWidth = 80

// terminalWidth returns stderr's terminal width, falling back to a fixed
// default when it cannot be determined (not a TTY, or the ioctl fails).
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stderr.Fd()))
	if err != nil || width <= 0 {
		return defaultTerminalWidth
	}
	return width
}
