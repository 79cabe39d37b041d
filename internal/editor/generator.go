package editor

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"coverstudio/pkg/client"
)

// State is a step of the generation flow.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateRequesting
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateRequesting:
		return "requesting"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	// ErrGenerationInFlight is returned when Generate is invoked while a
	// request is outstanding. No HTTP call is made.
	ErrGenerationInFlight = errors.New("editor: a generation is already in progress")
	// ErrResultDiscarded is returned when the modal was closed while the
	// request was outstanding; the image was dropped.
	ErrResultDiscarded = errors.New("editor: modal closed before the cover arrived")
)

// CoverAPI is the server call the generator depends on.
type CoverAPI interface {
	GenerateCover(ctx context.Context, req client.CoverRequest, opts ...client.RequestOption) (*client.Cover, error)
}

// Transition describes one state change. Err is set on entering StateError.
type Transition struct {
	From State
	To   State
	Err  error
}

// Generator drives idle -> validating -> requesting -> success|error -> idle.
// Generations are strictly sequential.
type Generator struct {
	api     CoverAPI
	gallery *Gallery
	handles *HandleStore
	newKey  func() string

	mu         sync.Mutex
	state      State
	lastErr    error
	modalOpen  bool
	modalEpoch uint64
	observers  []func(Transition)
}

func NewGenerator(api CoverAPI, gallery *Gallery, handles *HandleStore) *Generator {
	return &Generator{
		api:     api,
		gallery: gallery,
		handles: handles,
		newKey:  uuid.NewString,
	}
}

// OnTransition registers fn to observe every state change. Observers run
// outside the generator lock, in registration order.
func (g *Generator) OnTransition(fn func(Transition)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.observers = append(g.observers, fn)
}

func (g *Generator) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// LastError is the message to show next to the generate control, or nil.
func (g *Generator) LastError() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastErr
}

// Busy reports whether the generate control should be disabled.
func (g *Generator) Busy() bool {
	return g.State() != StateIdle
}

func (g *Generator) OpenModal() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.modalOpen {
		g.modalOpen = true
		g.lastErr = nil
	}
}

// CloseModal hides the modal. A request in flight keeps running but its
// result is discarded.
func (g *Generator) CloseModal() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.modalOpen {
		g.modalOpen = false
		g.modalEpoch++
	}
}

func (g *Generator) ModalOpen() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.modalOpen
}

// Generate validates req locally, calls the server once and, on success,
// stores the image as a handle, prepends it to the gallery, selects it and
// closes the modal.
func (g *Generator) Generate(ctx context.Context, req client.CoverRequest) (Item, error) {
	var pending []Transition
	defer func() { g.notify(pending) }()

	g.mu.Lock()
	if g.state != StateIdle {
		g.mu.Unlock()
		return Item{}, ErrGenerationInFlight
	}
	g.lastErr = nil
	pending = append(pending, g.moveLocked(StateValidating, nil))
	if err := req.ValidateSelection(); err != nil {
		g.lastErr = err
		pending = append(pending, g.moveLocked(StateError, err), g.moveLocked(StateIdle, nil))
		g.mu.Unlock()
		return Item{}, err
	}
	pending = append(pending, g.moveLocked(StateRequesting, nil))
	epoch := g.modalEpoch
	key := g.newKey()
	observers := g.observers
	g.mu.Unlock()

	// Let observers see "requesting" before the call blocks.
	for _, t := range pending {
		for _, fn := range observers {
			fn(t)
		}
	}
	pending = nil

	cover, err := g.api.GenerateCover(ctx, req, client.WithIdempotencyKey(key))

	g.mu.Lock()
	defer g.mu.Unlock()
	discarded := g.modalEpoch != epoch

	if err != nil {
		if discarded {
			pending = append(pending, g.moveLocked(StateIdle, nil))
			return Item{}, ErrResultDiscarded
		}
		g.lastErr = err
		pending = append(pending, g.moveLocked(StateError, err), g.moveLocked(StateIdle, nil))
		return Item{}, err
	}
	if discarded {
		pending = append(pending, g.moveLocked(StateIdle, nil))
		return Item{}, ErrResultDiscarded
	}

	handle, err := g.handles.Acquire(ctx, cover.Data, cover.MIME)
	if err != nil {
		g.lastErr = err
		pending = append(pending, g.moveLocked(StateError, err), g.moveLocked(StateIdle, nil))
		return Item{}, err
	}
	item := g.gallery.AppendGenerated(Item{Ref: handle.Ref, Label: generatedLabel(req)})
	g.modalOpen = false
	g.modalEpoch++
	pending = append(pending, g.moveLocked(StateSuccess, nil), g.moveLocked(StateIdle, nil))
	return item, nil
}

// moveLocked sets the state and returns the transition for later notification.
func (g *Generator) moveLocked(to State, err error) Transition {
	t := Transition{From: g.state, To: to, Err: err}
	g.state = to
	return t
}

func (g *Generator) notify(ts []Transition) {
	if len(ts) == 0 {
		return
	}
	g.mu.Lock()
	observers := g.observers
	g.mu.Unlock()
	for _, t := range ts {
		for _, fn := range observers {
			fn(t)
		}
	}
}

// generatedLabel names a generated cover after its title, occasion and style.
func generatedLabel(req client.CoverRequest) string {
	parts := []string{
		strings.TrimSpace(req.EventTitle),
		strings.TrimSpace(req.Occasion),
		strings.TrimSpace(req.Style),
	}
	parts = slices.DeleteFunc(parts, func(s string) bool { return s == "" })
	return strings.Join(parts, " · ")
}
