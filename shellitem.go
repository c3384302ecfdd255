package lnk

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/strayge/go-lnk/types"
)

// ShellItem is the closed set of Target ID List members ([MS-SHLLINK]
// 2.2.1): RootEntry, DriveEntry, PathSegmentEntry, UwpSegmentEntry. The
// unexported marker method keeps the set closed; parsing dispatches on
// each raw item's leading bytes.
type ShellItem interface {
	shellItem()
	// Bytes returns the item's raw payload, without the enclosing u16
	// length prefix LinkTargetIDList adds when framing it.
	Bytes() ([]byte, error)
	String() string
}

// Well-known root locations ([MS-SHLLINK] 2.2.1's CLSID-keyed roots).
const (
	RootMyComputer     = "MY_COMPUTER"
	RootNetworkPlaces  = "NETWORK_PLACES"
	RootMyDocuments    = "MY_DOCUMENTS"
	RootNetworkShare   = "NETWORK_SHARE"
	RootNetworkServer  = "NETWORK_SERVER"
	RootNetworkDomain  = "NETWORK_DOMAIN"
	RootInternet       = "INTERNET"
	RootRecycleBin     = "RECYCLE_BIN"
	RootControlPanel   = "CONTROL_PANEL"
	RootUserProfile    = "USERPROFILE"
	RootUWPApps        = "APPS"
)

var rootLocationsByGUID = map[string]string{
	"{20D04FE0-3AEA-1069-A2D8-08002B30309D}": RootMyComputer,
	"{450D8FBA-AD25-11D0-98A8-0800361B1103}": RootMyDocuments,
	"{54A754C0-4BF1-11D1-83EE-00A0C90DC849}": RootNetworkShare,
	"{C0542A90-4BF0-11D1-83EE-00A0C90DC849}": RootNetworkServer,
	"{208D2C60-3AEA-1069-A2D7-08002B30309D}": RootNetworkPlaces,
	"{46E06680-4BF0-11D1-83EE-00A0C90DC849}": RootNetworkDomain,
	"{871C5380-42A0-1069-A2EA-08002B30309D}": RootInternet,
	"{645FF040-5081-101B-9F08-00AA002F954E}": RootRecycleBin,
	"{21EC2020-3AEA-1069-A2DD-08002B30309D}": RootControlPanel,
	"{59031A47-3F72-44A7-89C5-5595FE6B30EE}": RootUserProfile,
	"{4234D49B-0245-4DF3-B780-3893943456E1}": RootUWPApps,
}

var rootGUIDsByName = func() map[string]string {
	m := make(map[string]string, len(rootLocationsByGUID))
	for guid, name := range rootLocationsByGUID {
		m[name] = guid
	}
	return m
}()

// RootEntry identifies a named root of the shell namespace by GUID
// ([MS-SHLLINK] 2.2.2 Root Folder Shell Item).
type RootEntry struct {
	Root string // symbolic name, or "UNKNOWN {guid}" if not recognized
	GUID types.GUID
}

func (*RootEntry) shellItem() {}

// NewRootEntry builds a RootEntry from one of the symbolic names above.
func NewRootEntry(root string) (*RootEntry, error) {
	guidStr, ok := rootGUIDsByName[root]
	if !ok {
		return nil, fmt.Errorf("%w: unknown root location %q", ErrMissingInformation, root)
	}
	guid, err := types.ParseGUID(guidStr)
	if err != nil {
		return nil, err
	}
	return &RootEntry{Root: root, GUID: guid}, nil
}

// parseRootEntry decodes the raw payload of a 0x1F-tagged item: a 1-byte
// index (ignored) followed by the 16-byte mixed-endian GUID.
func parseRootEntry(raw []byte) (*RootEntry, error) {
	if len(raw) < 18 {
		return nil, formatErrorf(0, nil, "root entry too short: %d bytes", len(raw))
	}
	guid, err := types.GUIDFromBytes(raw[2:18])
	if err != nil {
		return nil, err
	}
	name, ok := rootLocationsByGUID[guid.String()]
	if !ok {
		name = fmt.Sprintf("UNKNOWN %s", guid.String())
	}
	return &RootEntry{Root: name, GUID: guid}, nil
}

// Bytes emits the 0x1F type byte, a zero index byte, and the mixed-endian
// GUID.
func (r *RootEntry) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(0x1F)
	buf.WriteByte(0x00)
	buf.Write(r.GUID.Bytes())
	return buf.Bytes(), nil
}

func (r *RootEntry) String() string { return fmt.Sprintf("<RootEntry: %s>", r.Root) }

// DriveEntry is a drive-letter Shell Item ([MS-SHLLINK] 2.2.2 CDrive).
type DriveEntry struct {
	Drive string // e.g. "C:"
}

func (*DriveEntry) shellItem() {}

var drivePattern = regexp.MustCompile(`^([A-Za-z]):?[/\\]?$`)

// NewDriveEntry accepts a drive in any of "C", "C:", "C:\", "C:/" form and
// normalizes it to uppercase "C:".
func NewDriveEntry(drive string) (*DriveEntry, error) {
	m := drivePattern.FindStringSubmatch(strings.TrimSpace(drive))
	if m == nil {
		return nil, fmt.Errorf("%w: not a valid drive: %q", ErrMissingInformation, drive)
	}
	return &DriveEntry{Drive: strings.ToUpper(m[1]) + ":"}, nil
}

// parseDriveEntry decodes the 23-byte binary form: type 0x2F, "X:", "\",
// then 19 NUL bytes.
func parseDriveEntry(raw []byte) (*DriveEntry, error) {
	if len(raw) != 23 {
		return nil, formatErrorf(0, nil, "drive entry has unexpected length: %d", len(raw))
	}
	return &DriveEntry{Drive: string(raw[1:3])}, nil
}

func (d *DriveEntry) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(0x2F)
	buf.WriteString(d.Drive)
	buf.WriteByte('\\')
	buf.Write(make([]byte, 19))
	return buf.Bytes(), nil
}

func (d *DriveEntry) String() string { return fmt.Sprintf("<DriveEntry: %s>", d.Drive) }
