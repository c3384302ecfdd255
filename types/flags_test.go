package types

import "testing"

func TestLinkFlagsAccessors(t *testing.T) {
	var f LinkFlags
	f.SetHasLinkTargetIDList(true)
	f.SetHasName(true)
	f.SetIsUnicode(true)

	if !f.HasLinkTargetIDList() || !f.HasName() || !f.IsUnicode() {
		t.Fatalf("expected flags set, got %v", f.List())
	}
	if f.HasLinkInfo() || f.HasArguments() {
		t.Fatalf("unexpected flags set: %v", f.List())
	}

	f.SetHasName(false)
	if f.HasName() {
		t.Fatal("HasName should have cleared")
	}
}

func TestLinkFlagsNamed(t *testing.T) {
	var f LinkFlags
	if ok := f.SetNamed("HasArguments", true); !ok {
		t.Fatal("SetNamed(HasArguments) should succeed")
	}
	if v, ok := f.Named("HasArguments"); !ok || !v {
		t.Fatalf("Named(HasArguments) = %v, %v; want true, true", v, ok)
	}
	if _, ok := f.Named("NotARealFlag"); ok {
		t.Fatal("Named should reject unknown flag names")
	}
	if ok := f.SetNamed("NotARealFlag", true); ok {
		t.Fatal("SetNamed should reject unknown flag names")
	}
}

func TestFileAttributesString(t *testing.T) {
	var a FileAttributes
	a.SetDirectory(true)
	a.SetArchive(true)
	if !a.Directory() || !a.Archive() {
		t.Fatalf("expected Directory and Archive set, got %v", a.List())
	}
	s := a.String()
	if s == "" {
		t.Fatal("String() should not be empty when flags are set")
	}
}

func TestModifierKeysString(t *testing.T) {
	m := ModControl | ModShift
	s := m.String()
	if s != "CONTROL+SHIFT+" {
		t.Fatalf("String() = %q, want %q", s, "CONTROL+SHIFT+")
	}
}
