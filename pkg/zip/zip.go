// Package zip bundles generated cover images into a zip archive.
package zip

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// Asset is one file of the archive.
type Asset struct {
	Filename string
	MIME     string
	Data     []byte
	Modified time.Time
}

// WriteArchive streams assets into w as a zip archive. Entries keep their
// order; duplicate names get a numeric suffix.
func WriteArchive(w io.Writer, assets []Asset) error {
	zw := zip.NewWriter(w)
	used := make(map[string]int, len(assets))
	for _, asset := range assets {
		name := uniqueName(cleanName(asset.Filename), used)
		if name == "" {
			_ = zw.Close()
			return errors.New("zip: asset filename is required")
		}
		header := &zip.FileHeader{Name: name, Method: zip.Store}
		if !asset.Modified.IsZero() {
			header.Modified = asset.Modified
		}
		if asset.MIME != "" {
			header.Comment = asset.MIME
		}
		entry, err := zw.CreateHeader(header)
		if err != nil {
			_ = zw.Close()
			return fmt.Errorf("zip: create %s: %w", name, err)
		}
		if _, err := entry.Write(asset.Data); err != nil {
			_ = zw.Close()
			return fmt.Errorf("zip: write %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("zip: finalize: %w", err)
	}
	return nil
}

func cleanName(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	name = path.Base(path.Clean("/" + name))
	if name == "/" || name == "." {
		return ""
	}
	return name
}

func uniqueName(name string, used map[string]int) string {
	if name == "" {
		return ""
	}
	n := used[name]
	used[name] = n + 1
	if n == 0 {
		return name
	}
	ext := path.Ext(name)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ext), n+1, ext)
}
