package lnk

import (
	"fmt"
	"os"
	"path"
	"regexp"
	"strings"
	"time"
)

var driveOnlyPattern = regexp.MustCompile(`^[a-zA-Z]:\\?$`)

// isDrive reports whether s looks like a bare drive root, e.g. "C:\".
func isDrive(s string) bool { return driveOnlyPattern.MatchString(s) }

// pathLevels splits a Windows-style path into its successive prefixes,
// shallowest first ("C:\a\b\c.txt" -> ["C:", "C:\a", "C:\a\b", "C:\a\b\c.txt"]).
func pathLevels(p string) []string {
	var levels []string
	for p != "" {
		levels = append(levels, p)
		dir := path.Dir(strings.ReplaceAll(p, `\`, "/"))
		dir = strings.ReplaceAll(dir, "/", `\`)
		if dir == p || dir == "." {
			break
		}
		p = dir
	}
	for i, j := 0, len(levels)-1; i < j; i, j = i+1, j-1 {
		levels[i], levels[j] = levels[j], levels[i]
	}
	return levels
}

// createSegmentForPath builds a PathSegmentEntry for one path level,
// stat'ing the filesystem when possible and falling back to the current
// time and a name-based file/folder guess when the path doesn't exist.
func createSegmentForPath(p string, isFile *bool) *PathSegmentEntry {
	name := path.Base(strings.ReplaceAll(p, `\`, "/"))
	entry := &PathSegmentEntry{Kind: FileOrFolder, ShortName: name, FullName: name}

	info, err := os.Stat(p)
	now := time.Now()
	if err != nil {
		entry.FileSize = 0
		entry.Modified, entry.Created, entry.Accessed = now, now, now
		if isFile == nil {
			// a leading dot does not make a file
			guess := len(name) > 1 && strings.Contains(name[1:], ".")
			isFile = &guess
		}
	} else {
		if !info.IsDir() {
			entry.FileSize = uint32(info.Size())
		}
		entry.Modified = info.ModTime()
		entry.Created = info.ModTime()
		entry.Accessed = info.ModTime()
		if isFile == nil {
			notDir := !info.IsDir()
			isFile = &notDir
		}
	}
	entry.IsFile = *isFile
	entry.IsDirectory = !*isFile
	return entry
}

// ForFile builds a Lnk targeting targetFile: a remote (UNC share +
// EnvironmentVariableDataBlock) link when the path starts with a UNC
// prefix, otherwise a local drive + path-segment target ID list. The
// leaf's file-or-folder kind is guessed from the filesystem, falling back
// to whether its name contains a dot.
func ForFile(targetFile string, opts ...func(*Lnk)) (*Lnk, error) {
	return forFile(targetFile, nil, opts...)
}

// ForFileKind is ForFile with the leaf kind forced rather than guessed.
func ForFileKind(targetFile string, isFile bool, opts ...func(*Lnk)) (*Lnk, error) {
	return forFile(targetFile, &isFile, opts...)
}

func forFile(targetFile string, leafIsFile *bool, opts ...func(*Lnk)) (*Lnk, error) {
	l := New()
	l.LinkFlags.SetIsUnicode(true)
	l.SetInfo(nil)

	if strings.HasPrefix(targetFile, `\\`) {
		parts := strings.Split(targetFile, `\`)
		shareName := strings.ToUpper(strings.Join(parts[:min(4, len(parts))], `\`))
		baseName := ""
		if len(parts) > 4 {
			baseName = strings.Join(parts[4:], `\`)
		}
		l.SpecifyRemoteLocation(shareName, baseName)

		envBlock := &EnvironmentVariableDataBlock{TargetAnsi: targetFile, TargetUnicode: targetFile}
		l.ExtraData = &ExtraData{Blocks: []ExtraDataBlock{envBlock}}
		l.LinkFlags.SetHasExpString(true)
	} else {
		levels := pathLevels(targetFile)
		if len(levels) == 0 {
			return nil, fmt.Errorf("%w: empty target path", ErrMissingInformation)
		}
		drive, err := NewDriveEntry(levels[0])
		if err != nil {
			return nil, err
		}
		root, err := NewRootEntry(RootMyComputer)
		if err != nil {
			return nil, err
		}
		items := []ShellItem{root, drive}
		for i, level := range levels[1:] {
			// every segment before the last is a directory
			isFile := leafIsFile
			if i != len(levels)-2 {
				notFile := false
				isFile = &notFile
			}
			items = append(items, createSegmentForPath(level, isFile))
		}
		l.SetShellItemIDList(&LinkTargetIDList{Items: items})
	}

	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// WithArguments, WithDescription, WithIcon, WithWorkingDir, and
// WithWindowMode are ForFile option setters for the optional display
// fields a shortcut can carry.

func WithArguments(args string) func(*Lnk) {
	return func(l *Lnk) { l.SetArguments(args) }
}

func WithDescription(description string) func(*Lnk) {
	return func(l *Lnk) { l.SetDescription(description) }
}

func WithIcon(iconFile string, iconIndex int32) func(*Lnk) {
	return func(l *Lnk) {
		l.SetIconLocation(iconFile)
		l.IconIndex = iconIndex
	}
}

func WithWorkingDir(dir string) func(*Lnk) {
	return func(l *Lnk) { l.SetWorkingDir(dir) }
}

func WithWindowMode(mode string) func(*Lnk) {
	return func(l *Lnk) { _ = l.SetWindowMode(mode) }
}

// SegmentSpec describes one path level for FromSegmentList: whether it is
// a file or a folder, a size (ignored for folders), a display name, and
// the three timestamps.
type SegmentSpec struct {
	IsFile   bool
	Size     uint32
	Name     string
	Created  time.Time
	Modified time.Time
	Accessed time.Time
}

// FromSegmentList builds a Lnk directly from a drive (optional) and an
// ordered list of path segment specs, for callers that already know the
// exact metadata they want recorded rather than reading it off disk.
func FromSegmentList(drive string, segments []SegmentSpec) (*Lnk, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: no path segments given", ErrMissingInformation)
	}
	l := New()
	var items []ShellItem
	if drive != "" {
		root, err := NewRootEntry(RootMyComputer)
		if err != nil {
			return nil, err
		}
		de, err := NewDriveEntry(drive)
		if err != nil {
			return nil, err
		}
		items = append(items, root, de)
	}
	for _, spec := range segments {
		entry := &PathSegmentEntry{
			Kind:        FileOrFolder,
			IsFile:      spec.IsFile,
			IsDirectory: !spec.IsFile,
			ShortName:   spec.Name,
			FullName:    spec.Name,
			Created:     spec.Created,
			Modified:    spec.Modified,
			Accessed:    spec.Accessed,
		}
		if spec.IsFile {
			entry.FileSize = spec.Size
		}
		items = append(items, entry)
	}
	l.SetShellItemIDList(&LinkTargetIDList{Items: items})
	if !segments[len(segments)-1].IsFile {
		l.FileAttributes.SetDirectory(true)
	}
	return l, nil
}

// BuildUWP builds a Lnk targeting a UWP (Store) application.
func BuildUWP(packageFamilyName, target, location, logo44x44 string) (*Lnk, error) {
	l := New()
	l.LinkFlags.SetHasLinkTargetIDList(true)
	l.LinkFlags.SetIsUnicode(true)
	l.LinkFlags.SetEnableTargetMetadata(true)

	idList, err := BuildUWPLink(packageFamilyName, target, location, logo44x44)
	if err != nil {
		return nil, err
	}
	l.shellItemIDList = idList
	return l, nil
}

