package stringutil

import "testing"

func TestStripKnownPrefix(t *testing.T) {
	got, stripped := StripKnownPrefix("local:mylib", "local:", "auto:", "github:")
	if !stripped || got != "mylib" {
		t.Errorf("got (%q, %v), want (mylib, true)", got, stripped)
	}

	got, stripped = StripKnownPrefix("node", "local:", "auto:", "github:")
	if stripped || got != "node" {
		t.Errorf("got (%q, %v), want (node, false)", got, stripped)
	}
}

func TestLooksLikeFilesystemPath(t *testing.T) {
	for _, s := range []string{"/abs/path", "./rel", "../rel", "~/home"} {
		if !LooksLikeFilesystemPath(s) {
			t.Errorf("%q should look like a filesystem path", s)
		}
	}
	for _, s := range []string{"1.0.0", "latest", "^2.3", "main"} {
		if LooksLikeFilesystemPath(s) {
			t.Errorf("%q should not look like a filesystem path", s)
		}
	}
}
