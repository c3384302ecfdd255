package types

import "strings"

// bitName pairs a flag's bit number with its name. The tables below are
// the single source of truth for each flag's bit position. In
// linkFlagBits the bit equals the declaration position; fileAttributeBits
// leaves out the unused bits 3 and 6, so there the explicit bit number
// governs.
type bitName struct {
	bit  uint
	name string
}

// LinkFlags is the ShellLinkHeader LinkFlags field ([MS-SHLLINK] 2.1.1).
// Bit i (declaration position i below) controls presence of an optional
// section or the string encoding used for STRING_DATA.
type LinkFlags uint32

var linkFlagBits = []bitName{
	{0, "HasLinkTargetIDList"},
	{1, "HasLinkInfo"},
	{2, "HasName"},
	{3, "HasRelativePath"},
	{4, "HasWorkingDir"},
	{5, "HasArguments"},
	{6, "HasIconLocation"},
	{7, "IsUnicode"},
	{8, "ForceNoLinkInfo"},
	{9, "HasExpString"},
	{10, "RunInSeparateProcess"},
	{11, "Unused1"},
	{12, "HasDarwinID"},
	{13, "RunAsUser"},
	{14, "HasExpIcon"},
	{15, "NoPidlAlias"},
	{16, "Unused2"},
	{17, "RunWithShimLayer"},
	{18, "ForceNoLinkTrack"},
	{19, "EnableTargetMetadata"},
	{20, "DisableLinkPathTracking"},
	{21, "DisableKnownFolderTracking"},
	{22, "DisableKnownFolderAlias"},
	{23, "AllowLinkToLink"},
	{24, "UnaliasOnSave"},
	{25, "PreferEnvironmentPath"},
	{26, "KeepLocalIDListForUNCTarget"},
}

func (f LinkFlags) has(bit uint) bool     { return f&(1<<bit) != 0 }
func (f *LinkFlags) set(bit uint, v bool) {
	if v {
		*f |= 1 << bit
	} else {
		*f &^= 1 << bit
	}
}

func (f LinkFlags) HasLinkTargetIDList() bool { return f.has(0) }
func (f LinkFlags) HasLinkInfo() bool         { return f.has(1) }
func (f LinkFlags) HasName() bool             { return f.has(2) }
func (f LinkFlags) HasRelativePath() bool     { return f.has(3) }
func (f LinkFlags) HasWorkingDir() bool       { return f.has(4) }
func (f LinkFlags) HasArguments() bool        { return f.has(5) }
func (f LinkFlags) HasIconLocation() bool     { return f.has(6) }
func (f LinkFlags) IsUnicode() bool           { return f.has(7) }
func (f LinkFlags) ForceNoLinkInfo() bool     { return f.has(8) }
func (f LinkFlags) HasExpString() bool        { return f.has(9) }

func (f *LinkFlags) SetHasLinkTargetIDList(v bool) { f.set(0, v) }
func (f *LinkFlags) SetHasLinkInfo(v bool)         { f.set(1, v) }
func (f *LinkFlags) SetHasName(v bool)             { f.set(2, v) }
func (f *LinkFlags) SetHasRelativePath(v bool)     { f.set(3, v) }
func (f *LinkFlags) SetHasWorkingDir(v bool)       { f.set(4, v) }
func (f *LinkFlags) SetHasArguments(v bool)        { f.set(5, v) }
func (f *LinkFlags) SetHasIconLocation(v bool)     { f.set(6, v) }
func (f *LinkFlags) SetIsUnicode(v bool)           { f.set(7, v) }
func (f *LinkFlags) SetForceNoLinkInfo(v bool)     { f.set(8, v) }
func (f *LinkFlags) SetHasExpString(v bool)        { f.set(9, v) }

func (f LinkFlags) EnableTargetMetadata() bool      { return f.has(19) }
func (f *LinkFlags) SetEnableTargetMetadata(v bool) { f.set(19, v) }

// Named looks up a flag by its [MS-SHLLINK] name, for callers (the CLI,
// tests) that only have the string form. Returns false, false if the name
// is not one of the 27 declared bits.
func (f LinkFlags) Named(name string) (value, ok bool) {
	for _, b := range linkFlagBits {
		if b.name == name {
			return f.has(b.bit), true
		}
	}
	return false, false
}

// SetNamed sets a flag by name; it is a no-op returning false if name is
// not recognized.
func (f *LinkFlags) SetNamed(name string, value bool) bool {
	for _, b := range linkFlagBits {
		if b.name == name {
			f.set(b.bit, value)
			return true
		}
	}
	return false
}

// Names returns the flag names in declaration order.
func (f LinkFlags) Names() []string {
	names := make([]string, len(linkFlagBits))
	for i, b := range linkFlagBits {
		names[i] = b.name
	}
	return names
}

// List returns the names of every flag currently set, in declaration order.
func (f LinkFlags) List() []string {
	var set []string
	for _, b := range linkFlagBits {
		if f.has(b.bit) {
			set = append(set, b.name)
		}
	}
	return set
}

func (f LinkFlags) String() string { return strings.Join(f.List(), ", ") }

// FileAttributes is the ShellLinkHeader FileAttributes field
// ([MS-SHLLINK] 2.1.2, MS-FSCC file attribute bits).
type FileAttributes uint32

var fileAttributeBits = []bitName{
	{0, "ReadOnly"},
	{1, "Hidden"},
	{2, "System"},
	{4, "Directory"},
	{5, "Archive"},
	{7, "Normal"},
	{8, "Temporary"},
	{9, "SparseFile"},
	{10, "ReparsePoint"},
	{11, "Compressed"},
	{12, "Offline"},
	{13, "NotContentIndexed"},
	{14, "Encrypted"},
}

func (f FileAttributes) has(bit uint) bool     { return f&(1<<bit) != 0 }
func (f *FileAttributes) set(bit uint, v bool) {
	if v {
		*f |= 1 << bit
	} else {
		*f &^= 1 << bit
	}
}

func (f FileAttributes) ReadOnly() bool          { return f.has(0) }
func (f FileAttributes) Hidden() bool            { return f.has(1) }
func (f FileAttributes) System() bool            { return f.has(2) }
func (f FileAttributes) Directory() bool         { return f.has(4) }
func (f FileAttributes) Archive() bool           { return f.has(5) }
func (f FileAttributes) Normal() bool            { return f.has(7) }
func (f FileAttributes) Temporary() bool         { return f.has(8) }
func (f FileAttributes) SparseFile() bool        { return f.has(9) }
func (f FileAttributes) ReparsePoint() bool      { return f.has(10) }
func (f FileAttributes) Compressed() bool        { return f.has(11) }
func (f FileAttributes) Offline() bool           { return f.has(12) }
func (f FileAttributes) NotContentIndexed() bool { return f.has(13) }
func (f FileAttributes) Encrypted() bool         { return f.has(14) }

func (f *FileAttributes) SetDirectory(v bool) { f.set(4, v) }
func (f *FileAttributes) SetArchive(v bool)   { f.set(5, v) }
func (f *FileAttributes) SetNormal(v bool)    { f.set(7, v) }

func (f FileAttributes) Named(name string) (value, ok bool) {
	for _, b := range fileAttributeBits {
		if b.name == name {
			return f.has(b.bit), true
		}
	}
	return false, false
}

func (f FileAttributes) List() []string {
	var set []string
	for _, b := range fileAttributeBits {
		if f.has(b.bit) {
			set = append(set, b.name)
		}
	}
	return set
}

func (f FileAttributes) String() string { return strings.Join(f.List(), ", ") }

// ModifierKeys is the 3-bit hot-key modifier mask ([MS-SHLLINK] 2.1.3's
// high byte of HotKeyFlags). Declaration order follows the wire layout
// (bit 0 = Shift, bit 1 = Control, bit 2 = Alt) but String always renders
// in the fixed CONTROL+SHIFT+ALT+ order regardless of which bits are set.
type ModifierKeys uint8

const (
	ModShift ModifierKeys = 1 << iota
	ModControl
	ModAlt
)

func (m ModifierKeys) Shift() bool   { return m&ModShift != 0 }
func (m ModifierKeys) Control() bool { return m&ModControl != 0 }
func (m ModifierKeys) Alt() bool     { return m&ModAlt != 0 }

func (m ModifierKeys) String() string {
	var s strings.Builder
	if m.Control() {
		s.WriteString("CONTROL+")
	}
	if m.Shift() {
		s.WriteString("SHIFT+")
	}
	if m.Alt() {
		s.WriteString("ALT+")
	}
	return s.String()
}
