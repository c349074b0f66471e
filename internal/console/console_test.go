package console

import (
	"strings"
	"testing"
)

func TestFormatPackageFailure(t *testing.T) {
	msg := FormatPackageFailure("not-a-real-pkg", "1.0.0", "not found in registry")
	if !strings.Contains(msg, "not-a-real-pkg@1.0.0 (not found in registry)") {
		t.Errorf("FormatPackageFailure produced %q, missing expected shape", msg)
	}
}

func TestFormatMessagesNonTTYHaveNoEscapes(t *testing.T) {
	// In a non-TTY test environment (stderr not a terminal), styling must
	// be a no-op so these are safe to compare for plain substrings.
	for _, msg := range []string{
		FormatSuccessMessage("done"),
		FormatInfoMessage("info"),
		FormatWarningMessage("warn"),
		FormatErrorMessage("err"),
	} {
		if !strings.ContainsAny(msg, "dioenfarw") {
			t.Errorf("expected message text to survive formatting, got %q", msg)
		}
		if strings.Contains(msg, "\x1b") {
			t.Errorf("expected no ANSI escapes in non-TTY output, got %q", msg)
		}
	}
}
