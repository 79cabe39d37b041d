package editor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"coverstudio/pkg/client"
)

type fakeAPI struct {
	calls   atomic.Int32
	keys    chan string
	started chan struct{}
	release chan struct{}
	cover   *client.Cover
	err     error
}

func (f *fakeAPI) GenerateCover(ctx context.Context, _ client.CoverRequest, opts ...client.RequestOption) (*client.Cover, error) {
	f.calls.Add(1)
	cfg := &client.RequestConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if f.keys != nil {
		f.keys <- cfg.IdempotencyKey
	}
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.cover, nil
}

func birthdayRequest() client.CoverRequest {
	return client.CoverRequest{
		Occasion:    "Birthday",
		Vibe:        "Fun",
		Style:       "Illustration",
		Colors:      []string{"Pink", "Gold"},
		IncludeText: client.Bool(true),
		EventTitle:  "Sam's Party",
	}
}

func newTestGenerator(t *testing.T, api CoverAPI) (*Generator, *Gallery, *HandleStore) {
	t.Helper()
	hs, _ := newHandleStore(t)
	gallery := NewGallery(samplePresets())
	return NewGenerator(api, gallery, hs), gallery, hs
}

func recordTransitions(g *Generator) func() []Transition {
	var mu sync.Mutex
	var got []Transition
	g.OnTransition(func(tr Transition) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, tr)
	})
	return func() []Transition {
		mu.Lock()
		defer mu.Unlock()
		return append([]Transition(nil), got...)
	}
}

func states(ts []Transition) []State {
	out := make([]State, len(ts))
	for i, t := range ts {
		out[i] = t.To
	}
	return out
}

func TestGeneratorSuccess(t *testing.T) {
	api := &fakeAPI{cover: &client.Cover{Data: []byte("img"), MIME: "image/webp"}, keys: make(chan string, 1)}
	g, gallery, hs := newTestGenerator(t, api)
	transitions := recordTransitions(g)
	g.OpenModal()

	item, err := g.Generate(context.Background(), birthdayRequest())
	require.NoError(t, err)

	require.Equal(t, []State{StateValidating, StateRequesting, StateSuccess, StateIdle}, states(transitions()))
	require.Equal(t, StateIdle, g.State())
	require.False(t, g.ModalOpen(), "success closes the modal")
	require.NoError(t, g.LastError())
	require.NotEmpty(t, <-api.keys, "each generation carries an idempotency key")

	require.Equal(t, item, gallery.Items()[0])
	sel, _ := gallery.Selected()
	require.Equal(t, item, sel)
	require.Equal(t, CategoryGenerated, item.Category)
	require.Equal(t, "Sam's Party · Birthday · Illustration", item.Label)
	require.True(t, hs.Owns(item.Ref))
}

func TestGeneratorValidationFailsWithoutCall(t *testing.T) {
	api := &fakeAPI{cover: &client.Cover{Data: []byte("img")}}
	g, gallery, _ := newTestGenerator(t, api)
	transitions := recordTransitions(g)
	before := gallery.Items()

	req := birthdayRequest()
	req.Colors = []string{"1", "2", "3", "4", "5", "6"}
	_, err := g.Generate(context.Background(), req)
	require.Error(t, err)
	require.Equal(t, err, g.LastError())

	req = birthdayRequest()
	req.Style = ""
	_, err = g.Generate(context.Background(), req)
	require.EqualError(t, err, "Missing required fields: style")

	require.EqualValues(t, 0, api.calls.Load())
	require.Equal(t, before, gallery.Items())
	ts := transitions()
	require.Equal(t, StateError, ts[1].To)
	require.Error(t, ts[1].Err)
	require.Equal(t, StateIdle, g.State())
}

func TestGeneratorErrorLeavesGalleryUntouched(t *testing.T) {
	api := &fakeAPI{err: &client.Error{StatusCode: 500, Message: "Image generation failed"}}
	g, gallery, hs := newTestGenerator(t, api)
	transitions := recordTransitions(g)
	g.OpenModal()
	before := gallery.Items()
	selBefore, _ := gallery.Selected()

	_, err := g.Generate(context.Background(), birthdayRequest())
	var cerr *client.Error
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, err, g.LastError())
	require.True(t, g.ModalOpen(), "errors keep the modal open for a manual retry")
	require.Equal(t, []State{StateValidating, StateRequesting, StateError, StateIdle}, states(transitions()))

	require.Equal(t, before, gallery.Items())
	selAfter, _ := gallery.Selected()
	require.Equal(t, selBefore, selAfter)
	require.Equal(t, 0, hs.Len())

	api.err = nil
	api.cover = &client.Cover{Data: []byte("img"), MIME: "image/webp"}
	_, err = g.Generate(context.Background(), birthdayRequest())
	require.NoError(t, err)
	require.EqualValues(t, 2, api.calls.Load())
}

func TestGeneratorSecondTriggerIsNoOp(t *testing.T) {
	api := &fakeAPI{
		cover:   &client.Cover{Data: []byte("img"), MIME: "image/webp"},
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	g, _, _ := newTestGenerator(t, api)
	g.OpenModal()

	done := make(chan error, 1)
	go func() {
		_, err := g.Generate(context.Background(), birthdayRequest())
		done <- err
	}()
	<-api.started
	require.Equal(t, StateRequesting, g.State())
	require.True(t, g.Busy())

	_, err := g.Generate(context.Background(), birthdayRequest())
	require.ErrorIs(t, err, ErrGenerationInFlight)
	require.EqualValues(t, 1, api.calls.Load())

	close(api.release)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("generation did not finish")
	}
	require.EqualValues(t, 1, api.calls.Load())
}

func TestGeneratorDiscardsResultWhenModalClosed(t *testing.T) {
	for name, apiErr := range map[string]error{"success": nil, "failure": errors.New("boom")} {
		t.Run(name, func(t *testing.T) {
			api := &fakeAPI{
				cover:   &client.Cover{Data: []byte("img"), MIME: "image/webp"},
				err:     apiErr,
				started: make(chan struct{}, 1),
				release: make(chan struct{}),
			}
			g, gallery, hs := newTestGenerator(t, api)
			g.OpenModal()
			before := gallery.Items()

			done := make(chan error, 1)
			go func() {
				_, err := g.Generate(context.Background(), birthdayRequest())
				done <- err
			}()
			<-api.started
			g.CloseModal()
			g.OpenModal() // reopening does not resurrect the old request
			close(api.release)

			require.ErrorIs(t, <-done, ErrResultDiscarded)
			require.Equal(t, before, gallery.Items())
			require.Equal(t, 0, hs.Len())
			require.NoError(t, g.LastError())
			require.Equal(t, StateIdle, g.State())
		})
	}
}

func TestStateString(t *testing.T) {
	require.Equal(t, "requesting", StateRequesting.String())
	require.Equal(t, "State(42)", State(42).String())
}
