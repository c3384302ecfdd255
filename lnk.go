package lnk

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/strayge/go-lnk/types"
)

var lnkSignature = [4]byte{'L', 0x00, 0x00, 0x00}

// lnkClassGUID is the fixed CLSID every well-formed .lnk file carries
// immediately after the signature ([MS-SHLLINK] 2.1.1).
var lnkClassGUID = [16]byte{0x01, 0x14, 0x02, 0x00, 0x00, 0x00, 0x00, 0x00, 0xC0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x46}

// Window show-command modes ([MS-SHLLINK] 2.1.1 ShowCommand).
const (
	WindowNormal    = "Normal"
	WindowMaximized = "Maximized"
	WindowMinimized = "Minimized"
)

var showCommandsByID = map[uint32]string{1: WindowNormal, 3: WindowMaximized, 7: WindowMinimized}
var showCommandIDs = map[string]uint32{WindowNormal: 1, WindowMaximized: 3, WindowMinimized: 7}

var hotKeyNames = map[byte]string{
	0x30: "0", 0x31: "1", 0x32: "2", 0x33: "3", 0x34: "4", 0x35: "5", 0x36: "6",
	0x37: "7", 0x38: "8", 0x39: "9", 0x41: "A", 0x42: "B", 0x43: "C", 0x44: "D",
	0x45: "E", 0x46: "F", 0x47: "G", 0x48: "H", 0x49: "I", 0x4A: "J", 0x4B: "K",
	0x4C: "L", 0x4D: "M", 0x4E: "N", 0x4F: "O", 0x50: "P", 0x51: "Q", 0x52: "R",
	0x53: "S", 0x54: "T", 0x55: "U", 0x56: "V", 0x57: "W", 0x58: "X", 0x59: "Y",
	0x5A: "Z", 0x70: "F1", 0x71: "F2", 0x72: "F3", 0x73: "F4", 0x74: "F5",
	0x75: "F6", 0x76: "F7", 0x77: "F8", 0x78: "F9", 0x79: "F10", 0x7A: "F11",
	0x7B: "F12", 0x7C: "F13", 0x7D: "F14", 0x7E: "F15", 0x7F: "F16", 0x80: "F17",
	0x81: "F18", 0x82: "F19", 0x83: "F20", 0x84: "F21", 0x85: "F22", 0x86: "F23",
	0x87: "F24", 0x90: "NUM LOCK", 0x91: "SCROLL LOCK",
}

var hotKeyCodes = func() map[string]byte {
	m := make(map[string]byte, len(hotKeyNames))
	for code, name := range hotKeyNames {
		m[name] = code
	}
	return m
}()

// Lnk is the top-level parsed representation of a .lnk shell link file
// ([MS-SHLLINK] 2.1), the aggregate of a header, an optional Target ID
// List, an optional LinkInfo, the string-data fields, and a trailing
// ExtraData stream.
type Lnk struct {
	LinkFlags      types.LinkFlags
	FileAttributes types.FileAttributes

	CreationTime     time.Time
	AccessTime       time.Time
	ModificationTime time.Time

	FileSize  uint32
	IconIndex int32
	showMode  string
	HotKey    string

	shellItemIDList *LinkTargetIDList
	linkInfo        *LinkInfo
	description     *string
	relativePath    *string
	workDir         *string
	arguments       *string
	icon            *string

	ExtraData *ExtraData

	// path is the file this Lnk was opened from, used as the default save
	// target.
	path string
}

// New returns an empty Lnk: now for every timestamp, Normal window mode,
// and an empty (but present) LinkInfo.
func New() *Lnk {
	now := time.Now()
	return &Lnk{
		CreationTime:     now,
		AccessTime:       now,
		ModificationTime: now,
		showMode:         WindowNormal,
		linkInfo:         &LinkInfo{},
	}
}

// Parse decodes a complete .lnk byte stream.
func Parse(raw []byte) (*Lnk, error) {
	if len(raw) < 20 {
		return nil, formatErrorf(0, nil, "too short to be a .lnk file")
	}
	var sig [4]byte
	copy(sig[:], raw[:4])
	if sig != lnkSignature {
		return nil, formatErrorf(0, nil, "this is not a .lnk file")
	}
	var guid [16]byte
	copy(guid[:], raw[4:20])
	if guid != lnkClassGUID {
		return nil, formatErrorf(0, nil, "cannot read this kind of .lnk file")
	}

	l := &Lnk{linkInfo: &LinkInfo{}}
	r := bytes.NewReader(raw[20:])

	linkFlagsRaw, err := types.ReadU32(r)
	if err != nil {
		return nil, fmt.Errorf("lnk: header link flags: %w", err)
	}
	l.LinkFlags = types.LinkFlags(linkFlagsRaw)
	fileFlagsRaw, err := types.ReadU32(r)
	if err != nil {
		return nil, fmt.Errorf("lnk: header file attributes: %w", err)
	}
	l.FileAttributes = types.FileAttributes(fileFlagsRaw)

	creation, err := types.ReadU64(r)
	if err != nil {
		return nil, fmt.Errorf("lnk: header creation time: %w", err)
	}
	l.CreationTime = types.FileTimeToTime(creation)
	access, err := types.ReadU64(r)
	if err != nil {
		return nil, fmt.Errorf("lnk: header access time: %w", err)
	}
	l.AccessTime = types.FileTimeToTime(access)
	modification, err := types.ReadU64(r)
	if err != nil {
		return nil, fmt.Errorf("lnk: header modification time: %w", err)
	}
	l.ModificationTime = types.FileTimeToTime(modification)

	fileSize, err := types.ReadU32(r)
	if err != nil {
		return nil, fmt.Errorf("lnk: header file size: %w", err)
	}
	l.FileSize = fileSize
	iconIndex, err := types.ReadU32(r)
	if err != nil {
		return nil, fmt.Errorf("lnk: header icon index: %w", err)
	}
	l.IconIndex = int32(iconIndex)

	showCommand, err := types.ReadU32(r)
	if err != nil {
		return nil, fmt.Errorf("lnk: header show command: %w", err)
	}
	if name, ok := showCommandsByID[showCommand]; ok {
		l.showMode = name
	} else {
		l.showMode = WindowNormal
	}

	hotKey, err := l.readHotKey(r)
	if err != nil {
		return nil, err
	}
	l.HotKey = hotKey

	reserved := make([]byte, 10)
	if _, err := io.ReadFull(r, reserved); err != nil {
		return nil, fmt.Errorf("lnk: header reserved field: %w", err)
	}

	if l.LinkFlags.HasLinkTargetIDList() {
		size, err := types.ReadU16(r)
		if err != nil {
			return nil, fmt.Errorf("lnk: target id list size: %w", err)
		}
		body := make([]byte, int(size))
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, fmt.Errorf("lnk: target id list body: %w", err)
		}
		idList, err := ParseLinkTargetIDList(body)
		if err != nil {
			return nil, err
		}
		l.shellItemIDList = idList
	}

	if l.LinkFlags.HasLinkInfo() && !l.LinkFlags.ForceNoLinkInfo() {
		remaining := make([]byte, r.Len())
		startPos := len(raw) - r.Len()
		if _, err := io.ReadFull(r, remaining); err != nil {
			return nil, fmt.Errorf("lnk: link info: %w", err)
		}
		linkInfoSize := uint32(0)
		if len(remaining) >= 4 {
			linkInfoSize = uint32(remaining[0]) | uint32(remaining[1])<<8 | uint32(remaining[2])<<16 | uint32(remaining[3])<<24
		}
		li, err := ParseLinkInfo(remaining)
		if err != nil {
			return nil, err
		}
		l.linkInfo = li
		nextPos := startPos + int(linkInfoSize)
		if nextPos > len(raw) {
			return nil, formatErrorf(int64(startPos), linkInfoSize, "link info size exceeds file length:")
		}
		r = bytes.NewReader(raw[nextPos:])
	}

	if l.LinkFlags.HasName() {
		s, err := types.ReadSizedString(r, l.LinkFlags.IsUnicode(), types.DefaultCodepage)
		if err != nil {
			return nil, fmt.Errorf("lnk: name string: %w", err)
		}
		l.description = &s
	}
	if l.LinkFlags.HasRelativePath() {
		s, err := types.ReadSizedString(r, l.LinkFlags.IsUnicode(), types.DefaultCodepage)
		if err != nil {
			return nil, fmt.Errorf("lnk: relative path string: %w", err)
		}
		l.relativePath = &s
	}
	if l.LinkFlags.HasWorkingDir() {
		s, err := types.ReadSizedString(r, l.LinkFlags.IsUnicode(), types.DefaultCodepage)
		if err != nil {
			return nil, fmt.Errorf("lnk: working dir string: %w", err)
		}
		l.workDir = &s
	}
	if l.LinkFlags.HasArguments() {
		s, err := types.ReadSizedString(r, l.LinkFlags.IsUnicode(), types.DefaultCodepage)
		if err != nil {
			return nil, fmt.Errorf("lnk: arguments string: %w", err)
		}
		l.arguments = &s
	}
	if l.LinkFlags.HasIconLocation() {
		s, err := types.ReadSizedString(r, l.LinkFlags.IsUnicode(), types.DefaultCodepage)
		if err != nil {
			return nil, fmt.Errorf("lnk: icon location string: %w", err)
		}
		l.icon = &s
	}

	tail := make([]byte, r.Len())
	if len(tail) > 0 {
		if _, err := io.ReadFull(r, tail); err != nil {
			return nil, fmt.Errorf("lnk: extra data: %w", err)
		}
	}
	ed, err := ParseExtraData(tail)
	if err != nil {
		return nil, err
	}
	l.ExtraData = ed

	return l, nil
}

func (l *Lnk) readHotKey(r *bytes.Reader) (string, error) {
	low, err := types.ReadU8(r)
	if err != nil {
		return "", fmt.Errorf("lnk: hot key low byte: %w", err)
	}
	high, err := types.ReadU8(r)
	if err != nil {
		return "", fmt.Errorf("lnk: hot key high byte: %w", err)
	}
	key := hotKeyNames[low]
	modifier := ""
	if high != 0 {
		modifier = types.ModifierKeys(high).String()
	}
	return modifier + key, nil
}

func (l *Lnk) writeHotKey(w *bytes.Buffer) error {
	if l.HotKey == "" {
		return writeHotKeyBytes(w, 0, 0)
	}
	parts := strings.Split(l.HotKey, "+")
	keyName := parts[len(parts)-1]
	low, ok := hotKeyCodes[keyName]
	if !ok {
		return fmt.Errorf("%w: cannot find key code for %s", ErrInvalidKey, keyName)
	}
	var mods types.ModifierKeys
	for _, m := range parts[:len(parts)-1] {
		switch strings.ToUpper(m) {
		case "SHIFT":
			mods |= types.ModShift
		case "CONTROL":
			mods |= types.ModControl
		case "ALT":
			mods |= types.ModAlt
		default:
			return fmt.Errorf("%w: unknown modifier %s", ErrInvalidKey, m)
		}
	}
	return writeHotKeyBytes(w, low, byte(mods))
}

func writeHotKeyBytes(w *bytes.Buffer, low, high byte) error {
	if err := types.WriteU8(w, low); err != nil {
		return err
	}
	return types.WriteU8(w, high)
}

// Open reads a .lnk file from disk. If path does not exist and lacks a
// ".lnk" suffix, it is retried once with ".lnk" appended.
func Open(path string) (*Lnk, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if !strings.HasSuffix(path, ".lnk") {
			path += ".lnk"
			raw, err = os.ReadFile(path)
		}
		if err != nil {
			return nil, fmt.Errorf("lnk: open %s: %w", path, err)
		}
	}
	l, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	l.path = path
	return l, nil
}

// Save writes the link to path (or the path it was opened from, if path
// is empty). When forceExt is set, ".lnk" is appended if the target name
// lacks it.
func (l *Lnk) Save(path string, forceExt bool) error {
	if path == "" {
		path = l.path
	}
	if path == "" {
		return fmt.Errorf("%w: no file specified for saving", ErrMissingInformation)
	}
	if forceExt && !strings.HasSuffix(path, ".lnk") {
		path += ".lnk"
	}
	b, err := l.Bytes()
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// Bytes serializes the link: header, target ID list, link info, the five
// string fields in fixed order, then extra data (or four zero bytes if
// there is none).
func (l *Lnk) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(lnkSignature[:])
	buf.Write(lnkClassGUID[:])

	if err := types.WriteU32(&buf, uint32(l.LinkFlags)); err != nil {
		return nil, err
	}
	if err := types.WriteU32(&buf, uint32(l.FileAttributes)); err != nil {
		return nil, err
	}
	if err := types.WriteU64(&buf, types.TimeToFileTime(l.CreationTime)); err != nil {
		return nil, err
	}
	if err := types.WriteU64(&buf, types.TimeToFileTime(l.AccessTime)); err != nil {
		return nil, err
	}
	if err := types.WriteU64(&buf, types.TimeToFileTime(l.ModificationTime)); err != nil {
		return nil, err
	}
	if err := types.WriteU32(&buf, l.FileSize); err != nil {
		return nil, err
	}
	if err := types.WriteU32(&buf, uint32(l.IconIndex)); err != nil {
		return nil, err
	}
	showID, ok := showCommandIDs[l.showMode]
	if !ok {
		showID = showCommandIDs[WindowNormal]
	}
	if err := types.WriteU32(&buf, showID); err != nil {
		return nil, err
	}
	if err := l.writeHotKey(&buf); err != nil {
		return nil, err
	}
	buf.Write(make([]byte, 10)) // reserved

	if l.LinkFlags.HasLinkTargetIDList() {
		b, err := l.shellItemIDList.Bytes()
		if err != nil {
			return nil, err
		}
		if err := types.WriteU16(&buf, uint16(len(b))); err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	if l.LinkFlags.HasLinkInfo() {
		b, err := l.linkInfo.Bytes()
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	for _, s := range []*string{l.description, l.relativePath, l.workDir, l.arguments, l.icon} {
		if s == nil {
			continue
		}
		if err := types.WriteSizedString(&buf, *s, l.LinkFlags.IsUnicode(), types.DefaultCodepage); err != nil {
			return nil, err
		}
	}
	if l.ExtraData != nil {
		b, err := l.ExtraData.Bytes()
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	} else {
		buf.Write(make([]byte, 4))
	}
	return buf.Bytes(), nil
}

// Description, RelativePath, WorkingDir, Arguments, and IconLocation are
// the five STRING_DATA accessors. Each getter returns "" when absent;
// each setter flips the matching LinkFlag.

func (l *Lnk) Description() string {
	if l.description == nil {
		return ""
	}
	return *l.description
}

func (l *Lnk) SetDescription(v string) {
	l.setStringField(&l.description, v, (*types.LinkFlags).SetHasName)
}

func (l *Lnk) RelativePath() string {
	if l.relativePath == nil {
		return ""
	}
	return *l.relativePath
}

func (l *Lnk) SetRelativePath(v string) {
	l.setStringField(&l.relativePath, v, (*types.LinkFlags).SetHasRelativePath)
}

func (l *Lnk) WorkingDir() string {
	if l.workDir == nil {
		return ""
	}
	return *l.workDir
}

func (l *Lnk) SetWorkingDir(v string) {
	l.setStringField(&l.workDir, v, (*types.LinkFlags).SetHasWorkingDir)
}

func (l *Lnk) Arguments() string {
	if l.arguments == nil {
		return ""
	}
	return *l.arguments
}

func (l *Lnk) SetArguments(v string) {
	l.setStringField(&l.arguments, v, (*types.LinkFlags).SetHasArguments)
}

func (l *Lnk) IconLocation() string {
	if l.icon == nil {
		return ""
	}
	return *l.icon
}

func (l *Lnk) SetIconLocation(v string) {
	l.setStringField(&l.icon, v, (*types.LinkFlags).SetHasIconLocation)
}

func (l *Lnk) setStringField(field **string, v string, setFlag func(*types.LinkFlags, bool)) {
	if v == "" {
		*field = nil
		setFlag(&l.LinkFlags, false)
		return
	}
	*field = &v
	setFlag(&l.LinkFlags, true)
}

// ShellItemIDList returns the target ID list, or nil if absent.
func (l *Lnk) ShellItemIDList() *LinkTargetIDList { return l.shellItemIDList }

// SetShellItemIDList sets the target ID list and updates HasLinkTargetIDList.
func (l *Lnk) SetShellItemIDList(v *LinkTargetIDList) {
	l.shellItemIDList = v
	l.LinkFlags.SetHasLinkTargetIDList(v != nil)
}

// Info returns the link-location info, or nil if absent.
func (l *Lnk) Info() *LinkInfo { return l.linkInfo }

// SetInfo sets the link-location info. Passing nil sets ForceNoLinkInfo
// and clears HasLinkInfo.
func (l *Lnk) SetInfo(v *LinkInfo) {
	l.linkInfo = v
	l.LinkFlags.SetForceNoLinkInfo(v == nil)
	l.LinkFlags.SetHasLinkInfo(v != nil)
}

// WindowMode returns the current show-command mode (one of the Window*
// constants).
func (l *Lnk) WindowMode() string { return l.showMode }

// SetWindowMode sets the show-command mode; v must be one of the Window*
// constants.
func (l *Lnk) SetWindowMode(v string) error {
	if _, ok := showCommandIDs[v]; !ok {
		return fmt.Errorf("%w: not a valid window mode: %s", ErrMissingInformation, v)
	}
	l.showMode = v
	return nil
}

// Path computes the best-effort effective target path. A link can carry
// the target in several structures at once; the rules below follow the
// precedence Explorer shows in link properties.
func (l *Lnk) Path() string {
	var idListPath string
	if l.shellItemIDList != nil {
		idListPath = l.shellItemIDList.Path()
	}
	var linkInfoPath string
	if l.linkInfo != nil {
		linkInfoPath = l.linkInfo.Path()
	}
	var envVarPath string
	if l.ExtraData != nil {
		if evb := l.ExtraData.EnvironmentVariableBlock(); evb != nil {
			envVarPath = types.TrimNUL(evb.TargetUnicode)
			if envVarPath == "" {
				envVarPath = types.TrimNUL(evb.TargetAnsi)
			}
		}
	}

	if strings.HasPrefix(idListPath, "%MY_COMPUTER%") {
		return idListPath[14:]
	}
	if strings.HasPrefix(idListPath, "%USERPROFILE%\\::") {
		return idListPath[14:]
	}
	if linkInfoPath != "" {
		return linkInfoPath
	}
	if envVarPath != "" {
		return envVarPath
	}
	return idListPath
}

func (l *Lnk) String() string {
	var b strings.Builder
	b.WriteString("Target file:\n")
	b.WriteString(l.FileAttributes.String())
	fmt.Fprintf(&b, "\nCreation Time: %s", l.CreationTime)
	fmt.Fprintf(&b, "\nModification Time: %s", l.ModificationTime)
	fmt.Fprintf(&b, "\nAccess Time: %s", l.AccessTime)
	fmt.Fprintf(&b, "\nFile size: %d", l.FileSize)
	fmt.Fprintf(&b, "\nWindow mode: %s", l.showMode)
	fmt.Fprintf(&b, "\nHotkey: %s\n", l.HotKey)
	if l.linkInfo != nil {
		b.WriteString(l.linkInfo.String())
	}
	if l.LinkFlags.HasLinkTargetIDList() && l.shellItemIDList != nil {
		fmt.Fprintf(&b, "\n%s", l.shellItemIDList.String())
	}
	if l.LinkFlags.HasName() {
		fmt.Fprintf(&b, "\nDescription: %s", l.Description())
	}
	if l.LinkFlags.HasRelativePath() {
		fmt.Fprintf(&b, "\nRelative Path: %s", l.RelativePath())
	}
	if l.LinkFlags.HasWorkingDir() {
		fmt.Fprintf(&b, "\nWorking Directory: %s", l.WorkingDir())
	}
	if l.LinkFlags.HasArguments() {
		fmt.Fprintf(&b, "\nCommandline Arguments: %s", l.Arguments())
	}
	if l.LinkFlags.HasIconLocation() {
		fmt.Fprintf(&b, "\nIcon: %s", l.IconLocation())
	}
	fmt.Fprintf(&b, "\nUsed Path: %s", l.Path())
	if l.ExtraData != nil {
		b.WriteString(l.ExtraData.String())
	}
	return b.String()
}

// SpecifyLocalLocation configures this link's LinkInfo as a local path.
func (l *Lnk) SpecifyLocalLocation(path string, driveType DriveType, driveSerial uint32, volumeLabel string) {
	if l.linkInfo == nil {
		l.linkInfo = &LinkInfo{}
	}
	l.linkInfo.DriveType = driveType
	l.linkInfo.DriveSerial = driveSerial
	l.linkInfo.VolumeLabel = volumeLabel
	l.linkInfo.LocalBasePath = path
	l.linkInfo.Local = true
	l.LinkFlags.SetHasLinkInfo(true)
	l.LinkFlags.SetForceNoLinkInfo(false)
}

// SpecifyRemoteLocation configures this link's LinkInfo as a UNC network
// share.
func (l *Lnk) SpecifyRemoteLocation(networkShareName, baseName string) {
	if l.linkInfo == nil {
		l.linkInfo = &LinkInfo{}
	}
	l.linkInfo.NetworkShareName = networkShareName
	l.linkInfo.BaseName = baseName
	l.linkInfo.Remote = true
	l.LinkFlags.SetHasLinkInfo(true)
	l.LinkFlags.SetForceNoLinkInfo(false)
}
