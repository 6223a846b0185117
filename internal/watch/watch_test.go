package watch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/swatches/internal/cache"
	"github.com/dyluth/swatches/pkg/swatch"
)

func setupClient(t *testing.T) *swatch.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := swatch.NewClient(&redis.Options{Addr: mr.Addr()}, "test-instance")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

var red = swatch.ColorPoint{Hue: 0, Name: "Red", Hex: "#FF0000", RGB: swatch.RGB{R: 255}}

func TestPollForSwatches(t *testing.T) {
	ctx := context.Background()
	client := setupClient(t)

	t.Run("returns swatches when present immediately", func(t *testing.T) {
		require.NoError(t, client.Set(ctx, 100, 50, swatch.Collection{red}))

		c, err := PollForSwatches(ctx, client, 100, 50, 10*time.Millisecond, 2*time.Second)
		require.NoError(t, err)
		assert.Equal(t, swatch.Collection{red}, c)
	})

	t.Run("returns swatches stored after a delay", func(t *testing.T) {
		go func() {
			time.Sleep(100 * time.Millisecond)
			_ = client.Set(ctx, 30, 30, swatch.Collection{red})
		}()

		c, err := PollForSwatches(ctx, client, 30, 30, 20*time.Millisecond, 2*time.Second)
		require.NoError(t, err)
		assert.Equal(t, []string{"Red"}, c.Names())
	})

	t.Run("times out", func(t *testing.T) {
		_, err := PollForSwatches(ctx, client, 1, 1, 10*time.Millisecond, 50*time.Millisecond)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "timeout waiting for swatches")
	})

	t.Run("stops on context cancellation", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		go func() {
			time.Sleep(50 * time.Millisecond)
			cancel()
		}()

		_, err := PollForSwatches(cctx, client, 2, 2, 10*time.Millisecond, 5*time.Second)
		require.ErrorIs(t, err, context.Canceled)
	})
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, int, int) (swatch.Collection, error) {
	return nil, &swatch.StorageError{Op: "get", Key: "swatches:1:1", Err: errors.New("connection refused")}
}

func TestPollForSwatches_StorageError(t *testing.T) {
	_, err := PollForSwatches(context.Background(), brokenStore{}, 1, 1, 0, time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to query for swatches")

	var storageErr *swatch.StorageError
	assert.ErrorAs(t, err, &storageErr)
}

func TestPollForSwatches_MemoryStore(t *testing.T) {
	store := cache.NewMemory()
	require.NoError(t, store.Set(context.Background(), 0, 100, swatch.Collection{}))

	c, err := PollForSwatches(context.Background(), store, 0, 100, 0, time.Second)
	require.NoError(t, err)
	assert.Empty(t, c)
}

func TestStreamEvents(t *testing.T) {
	client := setupClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub, err := client.SubscribeEvents(ctx)
	require.NoError(t, err)
	defer sub.Close()

	lightness := 50
	publish := []*swatch.Event{
		{RunID: "a", Saturation: 100, Lightness: 20, Point: red},
		{RunID: "b", Saturation: 100, Lightness: 50, Point: red},
		{RunID: "c", Saturation: 10, Lightness: 50, Point: red},
	}
	for _, e := range publish {
		require.NoError(t, client.PublishEvent(ctx, e))
	}

	var got []string
	errStop := errors.New("stop")
	err = StreamEvents(ctx, sub, Filter{Lightness: &lightness}, func(e *swatch.Event) error {
		got = append(got, e.RunID)
		if len(got) == 2 {
			return errStop
		}
		return nil
	}, nil)

	require.ErrorIs(t, err, errStop)
	assert.Equal(t, []string{"b", "c"}, got)
}

// stubSource is an EventSource backed by plain channels.
type stubSource struct {
	events chan *swatch.Event
	errors chan error
}

func (s *stubSource) Events() <-chan *swatch.Event { return s.events }
func (s *stubSource) Errors() <-chan error         { return s.errors }

func TestStreamEvents_ErrorsDoNotStopStream(t *testing.T) {
	src := &stubSource{events: make(chan *swatch.Event), errors: make(chan error)}

	reported := make(chan error, 1)
	seen := make(chan string, 1)
	done := make(chan error, 1)
	go func() {
		done <- StreamEvents(context.Background(), src, Filter{},
			func(e *swatch.Event) error {
				seen <- e.RunID
				return nil
			},
			func(err error) { reported <- err })
	}()

	src.errors <- errors.New("bad payload")
	assert.EqualError(t, <-reported, "bad payload")

	src.events <- &swatch.Event{RunID: "x", Point: red}
	assert.Equal(t, "x", <-seen)

	close(src.errors)
	close(src.events)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not finish after source closed")
	}
}

func TestStreamEvents_ContextCancel(t *testing.T) {
	src := &stubSource{events: make(chan *swatch.Event), errors: make(chan error)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := StreamEvents(ctx, src, Filter{}, func(*swatch.Event) error { return nil }, nil)
	assert.NoError(t, err)
}
