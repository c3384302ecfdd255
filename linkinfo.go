package lnk

import (
	"bytes"
	"fmt"
	"log"

	"github.com/strayge/go-lnk/types"
)

// DriveType enumerates the LinkInfo local-volume drive codes
// ([MS-SHLLINK] 2.3.1 LinkInfo DriveType).
type DriveType int

const (
	DriveUnknown DriveType = iota
	DriveNoRootDir
	DriveRemovable
	DriveFixed
	DriveRemote
	DriveCDROM
	DriveRamdisk
)

var driveTypeNames = []types.IntName{
	{I: uint32(DriveUnknown), S: "Unknown"},
	{I: uint32(DriveNoRootDir), S: "No root directory"},
	{I: uint32(DriveRemovable), S: "Removable"},
	{I: uint32(DriveFixed), S: "Fixed (Hard disk)"},
	{I: uint32(DriveRemote), S: "Remote (Network drive)"},
	{I: uint32(DriveCDROM), S: "CD-ROM"},
	{I: uint32(DriveRamdisk), S: "Ram disk"},
}

func (d DriveType) String() string { return types.StringName(uint32(d), driveTypeNames) }

func (d DriveType) valid() bool { return d >= DriveUnknown && d <= DriveRamdisk }

const (
	linkInfoHeaderDefault  = 0x1C
	linkInfoHeaderOptional = 0x24
)

// LinkInfo carries the information needed to resolve a link target that
// may have moved: a local drive-and-path description, a network share
// description, or both ([MS-SHLLINK] 2.3).
type LinkInfo struct {
	Local  bool
	Remote bool

	DriveType     DriveType
	DriveSerial   uint32
	VolumeLabel   string
	LocalBasePath string

	NetworkShareName string
	BaseName         string
}

// ParseLinkInfo decodes a LinkInfo structure starting at raw[0]. Any
// unicode-offset fields present when header_size >= 0x24 are skipped, not
// decoded.
func ParseLinkInfo(raw []byte) (*LinkInfo, error) {
	r := bytes.NewReader(raw)
	if _, err := types.ReadU32(r); err != nil { // size
		return nil, fmt.Errorf("lnk: link info size: %w", err)
	}
	headerSize, err := types.ReadU32(r)
	if err != nil {
		return nil, fmt.Errorf("lnk: link info header size: %w", err)
	}
	flags, err := types.ReadU32(r)
	if err != nil {
		return nil, fmt.Errorf("lnk: link info flags: %w", err)
	}
	offsLocalVolumeTable, err := types.ReadU32(r)
	if err != nil {
		return nil, err
	}
	offsLocalBasePath, err := types.ReadU32(r)
	if err != nil {
		return nil, err
	}
	offsNetworkVolumeTable, err := types.ReadU32(r)
	if err != nil {
		return nil, err
	}
	offsBaseName, err := types.ReadU32(r)
	if err != nil {
		return nil, err
	}
	if headerSize >= linkInfoHeaderOptional {
		log.Printf("lnk: link info header size %#x carries unicode offsets, not decoded", headerSize)
	}

	li := &LinkInfo{
		Local:  flags&1 != 0,
		Remote: flags&2 != 0,
	}

	if li.Remote {
		share, err := readCStringAt(raw, int(offsNetworkVolumeTable)+20)
		if err != nil {
			return nil, fmt.Errorf("lnk: link info network share name: %w", err)
		}
		li.NetworkShareName = share
		base, err := readCStringAt(raw, int(offsBaseName))
		if err != nil {
			return nil, fmt.Errorf("lnk: link info base name: %w", err)
		}
		li.BaseName = base
	}
	if li.Local {
		if int(offsLocalVolumeTable)+4 > len(raw) {
			return nil, formatErrorf(0, offsLocalVolumeTable, "link info volume table offset out of range")
		}
		vr := bytes.NewReader(raw[offsLocalVolumeTable+4:])
		driveTypeCode, err := types.ReadU32(vr)
		if err != nil {
			return nil, fmt.Errorf("lnk: link info drive type: %w", err)
		}
		li.DriveType = DriveType(driveTypeCode)
		serial, err := types.ReadU32(vr)
		if err != nil {
			return nil, fmt.Errorf("lnk: link info drive serial: %w", err)
		}
		li.DriveSerial = serial
		if _, err := types.ReadU32(vr); err != nil { // volume name offset (0x10), unused
			return nil, err
		}
		label, err := readCStringReader(vr)
		if err != nil {
			return nil, fmt.Errorf("lnk: link info volume label: %w", err)
		}
		li.VolumeLabel = label

		base, err := readCStringAt(raw, int(offsLocalBasePath))
		if err != nil {
			return nil, fmt.Errorf("lnk: link info local base path: %w", err)
		}
		li.LocalBasePath = base
	}
	return li, nil
}

func readCStringAt(raw []byte, off int) (string, error) {
	if off < 0 || off > len(raw) {
		return "", formatErrorf(0, off, "link info offset out of range")
	}
	return readCStringReader(bytes.NewReader(raw[off:]))
}

func readCStringReader(r *bytes.Reader) (string, error) {
	return types.ReadCString(r, types.DefaultCodepage, false)
}

// Path returns the single effective path: the network share + base name
// for a remote link, or the local base path for a local one.
func (li *LinkInfo) Path() string {
	if li.Remote {
		return li.NetworkShareName + "\\" + li.BaseName
	}
	if li.Local {
		return li.LocalBasePath
	}
	return ""
}

// Bytes serializes the structure, recomputing every size and offset field.
// Exactly one of Local or Remote must be set; a LinkInfo with neither has
// nothing to serialize.
func (li *LinkInfo) Bytes() ([]byte, error) {
	if !li.Local && !li.Remote {
		return nil, fmt.Errorf("%w: link info has no location information", ErrMissingInformation)
	}

	const headerSize = 28
	// The base name is counted as a single terminator byte here and its
	// real length is folded into the network volume table size below. The
	// two quirks cancel, so the declared size matches the bytes written;
	// offs_base_name still lands on the base name's terminator, which is
	// why a remote base name does not survive a round trip.
	const sizeBaseName = 1

	var offsLocalVolumeTable, offsLocalBasePath, offsNetworkVolumeTable, offsBaseName uint32
	var size uint32 = headerSize + sizeBaseName

	var body bytes.Buffer
	if li.Remote {
		sizeNetworkVolumeTable := 20 + len(li.NetworkShareName) + len(li.BaseName) + 1
		size += uint32(sizeNetworkVolumeTable)
		offsNetworkVolumeTable = headerSize
		offsBaseName = offsNetworkVolumeTable + uint32(sizeNetworkVolumeTable)

		if err := types.WriteU32(&body, uint32(sizeNetworkVolumeTable)); err != nil {
			return nil, err
		}
		if err := types.WriteU32(&body, 2); err != nil {
			return nil, err
		}
		if err := types.WriteU32(&body, 20); err != nil {
			return nil, err
		}
		if err := types.WriteU32(&body, 0); err != nil {
			return nil, err
		}
		if err := types.WriteU32(&body, 131072); err != nil {
			return nil, err
		}
		if err := types.WriteCString(&body, types.DefaultCodepage, li.NetworkShareName, false); err != nil {
			return nil, err
		}
		if err := types.WriteCString(&body, types.DefaultCodepage, li.BaseName, false); err != nil {
			return nil, err
		}
	} else {
		if !li.DriveType.valid() {
			return nil, fmt.Errorf("%w: not a valid drive type: %v", ErrMissingInformation, li.DriveType)
		}
		sizeLocalVolumeTable := 16 + len(li.VolumeLabel) + 1
		sizeLocalBasePath := len(li.LocalBasePath) + 1
		size += uint32(sizeLocalVolumeTable + sizeLocalBasePath)
		offsLocalVolumeTable = headerSize
		offsLocalBasePath = offsLocalVolumeTable + uint32(sizeLocalVolumeTable)
		offsBaseName = offsLocalBasePath + uint32(sizeLocalBasePath)

		if err := types.WriteU32(&body, uint32(sizeLocalVolumeTable)); err != nil {
			return nil, err
		}
		if err := types.WriteU32(&body, uint32(li.DriveType)); err != nil {
			return nil, err
		}
		if err := types.WriteU32(&body, li.DriveSerial); err != nil {
			return nil, err
		}
		if err := types.WriteU32(&body, 16); err != nil {
			return nil, err
		}
		if err := types.WriteCString(&body, types.DefaultCodepage, li.VolumeLabel, false); err != nil {
			return nil, err
		}
		if err := types.WriteCString(&body, types.DefaultCodepage, li.LocalBasePath, false); err != nil {
			return nil, err
		}
		if err := types.WriteU8(&body, 0); err != nil {
			return nil, err
		}
	}

	var out bytes.Buffer
	if err := types.WriteU32(&out, size); err != nil {
		return nil, err
	}
	if err := types.WriteU32(&out, linkInfoHeaderDefault); err != nil {
		return nil, err
	}
	var flags uint32
	if li.Local {
		flags |= 1
	}
	if li.Remote {
		flags |= 2
	}
	if err := types.WriteU32(&out, flags); err != nil {
		return nil, err
	}
	if err := types.WriteU32(&out, offsLocalVolumeTable); err != nil {
		return nil, err
	}
	if err := types.WriteU32(&out, offsLocalBasePath); err != nil {
		return nil, err
	}
	if err := types.WriteU32(&out, offsNetworkVolumeTable); err != nil {
		return nil, err
	}
	if err := types.WriteU32(&out, offsBaseName); err != nil {
		return nil, err
	}
	out.Write(body.Bytes())
	return out.Bytes(), nil
}

func (li *LinkInfo) String() string {
	if li.Path() == "" {
		return "File Location Info: <not specified>"
	}
	if li.Remote {
		return fmt.Sprintf("File Location Info:\n  (remote)\n  Network Share: %s\n  Base Name: %s",
			li.NetworkShareName, li.BaseName)
	}
	return fmt.Sprintf("File Location Info:\n  (local)\n  Volume Type: %s\n  Volume Serial Number: %d\n  Volume Label: %s\n  Path: %s",
		li.DriveType, li.DriveSerial, li.VolumeLabel, li.LocalBasePath)
}
