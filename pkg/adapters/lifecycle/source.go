// Package lifecycle bridges draft events into the lifecycle runtime.
package lifecycle

import (
	"context"
	"slices"
	"sync/atomic"

	"github.com/aretw0/introspection"
	"github.com/aretw0/lifecycle"

	"github.com/aretw0/mdwiki/pkg/core"
)

// Source is a lifecycle.Source over a draft event channel. Only events of
// the accepted types are forwarded; an empty set accepts every type.
type Source struct {
	events <-chan core.Event
	accept []core.EventType
	out    chan lifecycle.Event

	running   atomic.Bool
	forwarded atomic.Uint64
	filtered  atomic.Uint64
}

// NewSource creates a source reading from events.
func NewSource(events <-chan core.Event, accept ...core.EventType) *Source {
	return &Source{
		events: events,
		accept: accept,
		out:    make(chan lifecycle.Event),
	}
}

func (s *Source) Events() <-chan lifecycle.Event {
	return s.out
}

// Start forwards events until the input closes or ctx is done, then
// closes the output.
func (s *Source) Start(ctx context.Context) error {
	s.running.Store(true)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer s.running.Store(false)
		defer close(s.out)
		for {
			var (
				e  core.Event
				ok bool
			)
			select {
			case <-ctx.Done():
				return nil
			case e, ok = <-s.events:
				if !ok {
					return nil
				}
			}
			if len(s.accept) > 0 && !slices.Contains(s.accept, e.Type) {
				s.filtered.Add(1)
				continue
			}
			select {
			case s.out <- e:
				s.forwarded.Add(1)
			case <-ctx.Done():
				return nil
			}
		}
	})
	return nil
}

// SourceState is the introspection snapshot of a Source.
type SourceState struct {
	Running   bool     `json:"running"`
	Accept    []string `json:"accept,omitempty"`
	Forwarded uint64   `json:"forwarded"`
	Filtered  uint64   `json:"filtered"`
}

// State implements introspection.Introspectable.
func (s *Source) State() any {
	st := SourceState{
		Running:   s.running.Load(),
		Forwarded: s.forwarded.Load(),
		Filtered:  s.filtered.Load(),
	}
	for _, t := range s.accept {
		st.Accept = append(st.Accept, string(t))
	}
	return st
}

// ComponentType implements introspection.Component.
func (s *Source) ComponentType() string {
	return "draft-source"
}

var (
	_ lifecycle.Source             = (*Source)(nil)
	_ introspection.Introspectable = (*Source)(nil)
	_ introspection.Component      = (*Source)(nil)
)
