package sliceutil

import "testing"

func TestContains(t *testing.T) {
	if !Contains([]string{"a", "b"}, "a") {
		t.Error("expected Contains to find a")
	}
	if Contains([]string{"a", "b"}, "c") {
		t.Error("expected Contains to not find c")
	}
	if Contains(nil, "a") {
		t.Error("expected Contains(nil, ...) to be false")
	}
}
