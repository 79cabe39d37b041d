package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"coverstudio/internal/storage"
)

var (
	ErrUnknownHandle = errors.New("editor: unknown image handle")
	ErrStoreClosed   = errors.New("editor: handle store closed")
)

// Handle references a decoded cover image held by a HandleStore.
type Handle struct {
	Ref  string
	MIME string
	Size int
}

// HandleStore owns the decoded images of one editor session. Every handle is
// released by Close; a closed store refuses new acquisitions.
type HandleStore struct {
	mu     sync.Mutex
	store  *storage.FileStore
	live   map[string]Handle
	closed bool
}

func NewHandleStore(store *storage.FileStore) *HandleStore {
	return &HandleStore{store: store, live: make(map[string]Handle)}
}

// Acquire writes data to the store and returns a handle for it.
func (h *HandleStore) Acquire(ctx context.Context, data []byte, mime string) (Handle, error) {
	if len(data) == 0 {
		return Handle{}, errors.New("editor: empty image")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return Handle{}, ErrStoreClosed
	}
	key := "covers/" + uuid.NewString() + extensionFor(mime)
	ref, err := h.store.Write(ctx, key, data)
	if err != nil {
		return Handle{}, fmt.Errorf("editor: acquire handle: %w", err)
	}
	handle := Handle{Ref: ref, MIME: mime, Size: len(data)}
	h.live[ref] = handle
	return handle, nil
}

// Open returns the bytes behind ref.
func (h *HandleStore) Open(ctx context.Context, ref string) ([]byte, Handle, error) {
	h.mu.Lock()
	handle, ok := h.live[ref]
	closed := h.closed
	h.mu.Unlock()
	if closed {
		return nil, Handle{}, ErrStoreClosed
	}
	if !ok {
		return nil, Handle{}, ErrUnknownHandle
	}
	data, err := h.store.Read(ctx, ref)
	if err != nil {
		return nil, Handle{}, fmt.Errorf("editor: open handle: %w", err)
	}
	return data, handle, nil
}

// Owns reports whether ref is a live handle of this store.
func (h *HandleStore) Owns(ref string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.live[ref]
	return ok
}

// Release frees one handle.
func (h *HandleStore) Release(ctx context.Context, ref string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.live[ref]; !ok {
		return ErrUnknownHandle
	}
	delete(h.live, ref)
	if err := h.store.Delete(ctx, ref); err != nil {
		return fmt.Errorf("editor: release handle: %w", err)
	}
	return nil
}

// Len reports the number of live handles.
func (h *HandleStore) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.live)
}

// Close releases every handle. It is safe to call more than once.
func (h *HandleStore) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	var errs []error
	for ref := range h.live {
		if err := h.store.Delete(context.Background(), ref); err != nil {
			errs = append(errs, err)
		}
		delete(h.live, ref)
	}
	return errors.Join(errs...)
}

func extensionFor(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	default:
		return ".webp"
	}
}
