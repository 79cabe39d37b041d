package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"coverstudio/internal/storage"
	"coverstudio/pkg/client"
	"coverstudio/pkg/zip"
)

// SessionOptions configures NewSession.
type SessionOptions struct {
	// ScratchDir is the parent of the session's temporary directory;
	// os.TempDir when empty.
	ScratchDir string
	// Presets seeds the gallery; the built-in catalog when nil.
	Presets []Item
}

// Session ties together the gallery, image handles and generator of one
// editor session.
type Session struct {
	Gallery   *Gallery
	Handles   *HandleStore
	Generator *Generator

	store     *storage.FileStore
	closeOnce sync.Once
	closeErr  error
}

func NewSession(api CoverAPI, opts SessionOptions) (*Session, error) {
	if api == nil {
		return nil, errors.New("editor: cover api is required")
	}
	presets := opts.Presets
	if presets == nil {
		var err error
		if presets, err = LoadPresets(); err != nil {
			return nil, err
		}
	}
	store, err := storage.NewScratchStore(opts.ScratchDir)
	if err != nil {
		return nil, err
	}
	gallery := NewGallery(presets)
	handles := NewHandleStore(store)
	return &Session{
		Gallery:   gallery,
		Handles:   handles,
		Generator: NewGenerator(api, gallery, handles),
		store:     store,
	}, nil
}

// Generate opens the modal if needed and runs one generation.
func (s *Session) Generate(ctx context.Context, req client.CoverRequest) (Item, error) {
	s.Generator.OpenModal()
	return s.Generator.Generate(ctx, req)
}

// SelectedImage returns the bytes of the selected cover when it is a
// generated one. Presets live with the client's static assets.
func (s *Session) SelectedImage(ctx context.Context) ([]byte, Handle, error) {
	item, ok := s.Gallery.Selected()
	if !ok {
		return nil, Handle{}, ErrNotInCatalog
	}
	if item.Category != CategoryGenerated {
		return nil, Handle{}, fmt.Errorf("editor: %q is a preset without local image data", item.ID)
	}
	return s.Handles.Open(ctx, item.Ref)
}

// ExportGenerated writes every generated cover, newest first, to w as a zip
// archive and returns how many were written.
func (s *Session) ExportGenerated(ctx context.Context, w io.Writer) (int, error) {
	var assets []zip.Asset
	for item := range s.Gallery.Filter(CategoryGenerated, "") {
		data, handle, err := s.Handles.Open(ctx, item.Ref)
		if err != nil {
			return 0, err
		}
		assets = append(assets, zip.Asset{
			Filename: item.ID + extensionFor(handle.MIME),
			MIME:     handle.MIME,
			Data:     data,
		})
	}
	if err := zip.WriteArchive(w, assets); err != nil {
		return 0, err
	}
	return len(assets), nil
}

// Close releases every image handle and removes the scratch directory.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.Generator.CloseModal()
		s.closeErr = errors.Join(s.Handles.Close(), s.store.Close())
	})
	return s.closeErr
}
