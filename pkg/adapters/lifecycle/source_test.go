package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mdwiki/pkg/core"
)

func TestSourceForwardsAndCloses(t *testing.T) {
	in := make(chan core.Event, 1)
	src := NewSource(in)
	require.NoError(t, src.Start(context.Background()))

	in <- core.Event{Type: core.EventDraftChanged, Path: "/tmp/1/2.md"}
	select {
	case e := <-src.Events():
		assert.Equal(t, "DRAFT_CHANGED /tmp/1/2.md", e.String())
	case <-time.After(time.Second):
		t.Fatal("event not forwarded")
	}

	close(in)
	select {
	case _, ok := <-src.Events():
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("output not closed")
	}
	assert.Eventually(t, func() bool { return !src.State().(SourceState).Running }, time.Second, 5*time.Millisecond)
}

func TestSourceFiltersTypes(t *testing.T) {
	in := make(chan core.Event, 3)
	src := NewSource(in, core.EventDraftRemoved)
	require.NoError(t, src.Start(context.Background()))

	in <- core.Event{Type: core.EventDraftChanged, Path: "a"}
	in <- core.Event{Type: core.EventSaved, Path: "a"}
	in <- core.Event{Type: core.EventDraftRemoved, Path: "a"}
	close(in)

	var got []string
	for e := range src.Events() {
		got = append(got, e.String())
	}
	assert.Equal(t, []string{"DRAFT_REMOVED a"}, got)

	st := src.State().(SourceState)
	assert.Equal(t, uint64(1), st.Forwarded)
	assert.Equal(t, uint64(2), st.Filtered)
	assert.Equal(t, []string{"DRAFT_REMOVED"}, st.Accept)
	assert.Equal(t, "draft-source", src.ComponentType())
}

func TestSourceStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := NewSource(make(chan core.Event))
	require.NoError(t, src.Start(ctx))
	cancel()

	select {
	case _, ok := <-src.Events():
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("output not closed after cancel")
	}
}
