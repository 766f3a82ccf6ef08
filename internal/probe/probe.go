// Package probe answers whether a repository identifier is real.
// Ticket migration refuses to move a ticket into a repository nobody
// can vouch for; a probe is one way of vouching.
package probe

import (
	"context"
	"errors"

	"github.com/boardwalklabs/boardwalk/internal/store"
)

// Probe reports whether a repository is known.
type Probe interface {
	Known(ctx context.Context, repository string) (bool, error)
}

// RepositoryStore is the slice of the ticket store a local probe needs.
type RepositoryStore interface {
	RepositoryKnown(ctx context.Context, repository string) (bool, error)
}

// StoreBacked vouches for any repository that already has tickets. A
// legacy database predates repositories entirely, so it vouches for
// nothing rather than erroring.
func StoreBacked(st RepositoryStore) Probe {
	return storeProbe{st: st}
}

type storeProbe struct {
	st RepositoryStore
}

func (p storeProbe) Known(ctx context.Context, repository string) (bool, error) {
	known, err := p.st.RepositoryKnown(ctx, repository)
	if errors.Is(err, store.ErrLegacySchema) {
		return false, nil
	}
	return known, err
}

// Multi asks each probe in turn and answers true on the first yes.
// Probe errors are collected, not fatal: a flaky remote must not block
// a repository the local store can vouch for. Only when every probe
// says no (or fails) is the first error surfaced.
type Multi []Probe

func (m Multi) Known(ctx context.Context, repository string) (bool, error) {
	var firstErr error
	for _, p := range m {
		known, err := p.Known(ctx, repository)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if known {
			return true, nil
		}
	}
	return false, firstErr
}
