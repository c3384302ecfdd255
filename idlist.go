package lnk

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/strayge/go-lnk/types"
)

// LinkTargetIDList is the ordered sequence of Shell Item entries
// describing a link's target ([MS-SHLLINK] 2.2).
type LinkTargetIDList struct {
	Items []ShellItem
}

// ParseLinkTargetIDList reads successive (u16 length, length-2 bytes) items
// until a zero-length terminator, then dispatches each raw item to a
// ShellItem constructor.
func ParseLinkTargetIDList(raw []byte) (*LinkTargetIDList, error) {
	r := bytes.NewReader(raw)
	var rawItems [][]byte
	for {
		n, err := types.ReadU16(r)
		if err != nil {
			return nil, formatErrorf(0, nil, "target id list: truncated length prefix")
		}
		if n == 0 {
			break
		}
		item := make([]byte, int(n)-2)
		if _, err := io.ReadFull(r, item); err != nil {
			return nil, formatErrorf(0, nil, "target id list: truncated item")
		}
		rawItems = append(rawItems, item)
	}
	return interpretRawItems(rawItems)
}

// interpretRawItems dispatches each raw item to its entry type: a leading
// RootEntry whose root is MY_COMPUTER requires a DriveEntry or a
// known-folder path segment as its second item; a NETWORK_PLACES root is
// not supported; every other item is dispatched by its own raw bytes.
func interpretRawItems(raw [][]byte) (*LinkTargetIDList, error) {
	list := &LinkTargetIDList{}
	if len(raw) == 0 {
		return list, nil
	}

	items := raw
	if len(raw[0]) > 0 && raw[0][0] == 0x1F {
		root, err := parseRootEntry(raw[0])
		if err != nil {
			return nil, err
		}
		list.Items = append(list.Items, root)

		switch root.Root {
		case RootMyComputer:
			if len(raw) < 2 {
				return nil, formatErrorf(0, nil, "absolute link requires a drive as second element")
			}
			second := raw[1]
			switch {
			case len(second) == 0x17:
				drive, err := parseDriveEntry(second)
				if err != nil {
					return nil, err
				}
				list.Items = append(list.Items, drive)
			case len(second) >= 2 && second[0] == 0x2E && second[1] == 0x80:
				seg, err := parsePathSegmentEntry(second)
				if err != nil {
					return nil, err
				}
				list.Items = append(list.Items, seg)
			default:
				return nil, formatErrorf(0, nil, "this seems to be an absolute link which requires a drive as second element")
			}
			items = raw[2:]
		case RootNetworkPlaces:
			return nil, ErrUnsupported
		default:
			items = raw[1:]
		}
	}

	for _, item := range items {
		if len(item) >= 8 && string(item[4:8]) == "APPS" {
			uwp, err := parseUwpSegmentEntry(item)
			if err != nil {
				return nil, err
			}
			list.Items = append(list.Items, uwp)
			continue
		}
		seg, err := parsePathSegmentEntry(item)
		if err != nil {
			return nil, err
		}
		list.Items = append(list.Items, seg)
	}
	return list, nil
}

// validate enforces the MY_COMPUTER-root invariant before serialization.
func (l *LinkTargetIDList) validate() error {
	if len(l.Items) == 0 {
		return nil
	}
	root, ok := l.Items[0].(*RootEntry)
	if !ok || root.Root != RootMyComputer {
		return nil
	}
	if len(l.Items) < 2 {
		return errAbsoluteLinkNeedsDrive()
	}
	switch second := l.Items[1].(type) {
	case *DriveEntry:
		return nil
	case *PathSegmentEntry:
		if strings.HasPrefix(second.FullName, "::") {
			return nil
		}
	}
	return errAbsoluteLinkNeedsDrive()
}

func errAbsoluteLinkNeedsDrive() error {
	return fmt.Errorf("%w: a drive is required for absolute lnks", ErrStructure)
}

// Bytes validates and serializes the full list, each item framed by a
// (len+2) u16 prefix, terminated by a zero u16.
func (l *LinkTargetIDList) Bytes() ([]byte, error) {
	if err := l.validate(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	for _, item := range l.Items {
		b, err := item.Bytes()
		if err != nil {
			return nil, err
		}
		if err := types.WriteU16(&buf, uint16(len(b)+2)); err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	if err := types.WriteU16(&buf, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Path joins every item into a single display path: a RootEntry renders as
// %NAME%, a DriveEntry as its decoded text, a PathSegmentEntry as its full
// name (skipped if absent), and anything else by its String().
func (l *LinkTargetIDList) Path() string {
	var segments []string
	for _, item := range l.Items {
		switch v := item.(type) {
		case *RootEntry:
			segments = append(segments, "%"+v.Root+"%")
		case *DriveEntry:
			segments = append(segments, v.Drive)
		case *PathSegmentEntry:
			if v.FullName != "" {
				segments = append(segments, v.FullName)
			}
		default:
			segments = append(segments, item.String())
		}
	}
	return strings.Join(segments, "\\")
}

func (l *LinkTargetIDList) String() string {
	var b strings.Builder
	b.WriteString("<LinkTargetIDList>:\n")
	for _, item := range l.Items {
		b.WriteString("  ")
		b.WriteString(item.String())
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
