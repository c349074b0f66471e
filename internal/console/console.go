// Package console provides pantry's terminal output: consistent message
// formatting, an inline spinner/progress bar for installs, and an
// interactive confirm prompt for destructive clean operations. All
// formatting degrades gracefully (no ANSI) when stdout/stderr is not a
// TTY or when ACCESSIBLE/NO_COLOR is set, since the same binary's stdout
// is sometimes `eval`'d by a shell hook (internal/activate) and must
// never carry styling escapes on that channel.
package console

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/pantry-dev/pantry/internal/pantrylog"
	"github.com/pantry-dev/pantry/internal/styles"
)

var log = pantrylog.New("console:console")

func isAccessibleMode() bool {
	return os.Getenv("ACCESSIBLE") != "" || os.Getenv("TERM") == "dumb" || os.Getenv("NO_COLOR") != ""
}

// isStderrTTY reports whether stderr is a terminal, used to decide
// whether to apply ANSI styling to human-facing messages.
func isStderrTTY() bool {
	return isatty.IsTerminal(os.Stderr.Fd()) && !isAccessibleMode()
}

func applyStyle(style lipgloss.Style, text string) string {
	if isStderrTTY() {
		return style.Render(text)
	}
	return text
}

// FormatSuccessMessage formats a success message ("✓ <message>").
func FormatSuccessMessage(message string) string {
	return applyStyle(styles.Success, "✓ ") + message
}

// FormatInfoMessage formats an informational message ("ℹ <message>").
func FormatInfoMessage(message string) string {
	return applyStyle(styles.Info, "ℹ ") + message
}

// FormatWarningMessage formats a warning message ("⚠ <message>").
func FormatWarningMessage(message string) string {
	return applyStyle(styles.Warning, "⚠ ") + message
}

// FormatErrorMessage formats a simple error message ("✗ <message>"),
// matching spec §7's "Error: <description>" shape for global failures
// when the caller prefixes message with "Error: ".
func FormatErrorMessage(message string) string {
	return applyStyle(styles.Error, "✗ ") + message
}

// FormatPackageFailure formats a per-package failure line in the shape
// spec §7 requires: "<pkg>@<version> (<reason>)".
func FormatPackageFailure(name, version, reason string) string {
	return applyStyle(styles.Error, "✗ ") + name + "@" + version + " (" + reason + ")"
}

// FormatLocationMessage formats a file/directory location message.
func FormatLocationMessage(message string) string {
	return applyStyle(styles.Path, "📁 ") + message
}

// FormatCountMessage formats a numeric summary message.
func FormatCountMessage(message string) string {
	return applyStyle(styles.Muted, "📊 ") + message
}

// FormatVerboseMessage formats verbose diagnostic output.
func FormatVerboseMessage(message string) string {
	return applyStyle(styles.Muted, "🔍 ") + message
}
