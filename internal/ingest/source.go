package ingest

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// ErrUnsupported is returned when a path holds no file the decoders accept.
var ErrUnsupported = errors.New("ingest: no xbrl content")

// Format is the markup family of a source file.
type Format int

const (
	FormatUnknown Format = iota // skipped
	FormatXML                   // instance documents, linkbases and schemas
	FormatInline                // inline XBRL embedded in XHTML
)

func (f Format) String() string {
	switch f {
	case FormatXML:
		return "xml"
	case FormatInline:
		return "ixbrl"
	default:
		return "unknown"
	}
}

// File is one source document of a filing.
type File struct {
	Name   string
	Format Format
	Data   []byte
}

// FormatOf classifies a file by extension.
func FormatOf(name string) Format {
	switch strings.ToLower(path.Ext(name)) {
	case ".xml", ".xsd", ".xbrl":
		return FormatXML
	case ".htm", ".html", ".xhtml":
		return FormatInline
	default:
		return FormatUnknown
	}
}

// Collect reads the filing at name from fs. name may be a single document,
// a directory (searched recursively) or a ZIP archive. Files are returned
// sorted by name; files of unknown format are skipped.
func Collect(fs billy.Filesystem, name string) ([]File, error) {
	info, err := fs.Stat(name)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", name, err)
	}

	var files []File
	switch {
	case info.IsDir():
		files, err = collectDir(fs, name)
	case strings.EqualFold(path.Ext(name), ".zip"):
		files, err = collectZip(fs, name)
	default:
		files, err = collectFile(fs, name)
	}
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrUnsupported)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

func collectFile(fs billy.Filesystem, name string) ([]File, error) {
	format := FormatOf(name)
	if format == FormatUnknown {
		return nil, nil
	}
	data, err := util.ReadFile(fs, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return []File{{Name: name, Format: format, Data: data}}, nil
}

func collectDir(fs billy.Filesystem, dir string) ([]File, error) {
	entries, err := fs.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	var out []File
	for _, e := range entries {
		p := fs.Join(dir, e.Name())
		var files []File
		switch {
		case e.IsDir():
			files, err = collectDir(fs, p)
		case strings.EqualFold(path.Ext(p), ".zip"):
			files, err = collectZip(fs, p)
		default:
			files, err = collectFile(fs, p)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, files...)
	}
	return out, nil
}

func collectZip(fs billy.Filesystem, name string) ([]File, error) {
	f, err := fs.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer func() { _ = f.Close() }() // read-only

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("open zip %s: %w", name, err)
	}

	var out []File
	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() {
			continue
		}
		format := FormatOf(zf.Name)
		if format == FormatUnknown {
			continue
		}
		data, err := readZipEntry(zf)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out = append(out, File{Name: name + "!" + zf.Name, Format: format, Data: data})
	}
	return out, nil
}

func readZipEntry(zf *zip.File) ([]byte, error) {
	rc, err := zf.Open()
	if err != nil {
		return nil, fmt.Errorf("open entry %s: %w", zf.Name, err)
	}
	defer func() { _ = rc.Close() }() // read-only
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read entry %s: %w", zf.Name, err)
	}
	return data, nil
}
