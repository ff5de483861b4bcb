package elfimage

import (
	"errors"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	e := newError("load", "a.elf", KindInvalidMagic, nil)
	want := "elfimage: load a.elf: invalid ELF magic"
	if got := e.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	wrapped := newError("load", "a.elf", KindIO, errors.New("disk gone"))
	if got := wrapped.Error(); got != "elfimage: load a.elf: io error: disk gone" {
		t.Errorf("Error() = %q", got)
	}
}

func TestErrorIsMatchesByKind(t *testing.T) {
	e1 := newError("load", "a.elf", KindSectionOverlap, nil)
	e2 := newError("save", "b.elf", KindSectionOverlap, errors.New("different cause"))
	if !errors.Is(e1, e2) {
		t.Error("errors with the same Kind should match via errors.Is, regardless of Op/Path/Err")
	}

	e3 := newError("load", "a.elf", KindBadClass, nil)
	if errors.Is(e1, e3) {
		t.Error("errors with different Kinds should not match via errors.Is")
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	e := newError("load", "a.elf", KindIO, cause)
	if !errors.Is(e, cause) {
		t.Error("errors.Is should reach the wrapped cause through Unwrap")
	}
}
