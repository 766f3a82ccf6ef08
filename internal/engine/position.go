package engine

import (
	"strconv"
	"strings"

	"github.com/boardwalklabs/boardwalk/internal/ticket"
)

type placementKind int

const (
	placeBottom placementKind = iota
	placeTop
	placeIndex
)

// placement is a parsed position request: bottom (the default), top,
// or an explicit 0-based rank in the column.
type placement struct {
	kind  placementKind
	index int
}

func parsePlacement(s string) (placement, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bottom":
		return placement{kind: placeBottom}, nil
	case "top":
		return placement{kind: placeTop}, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return placement{}, validationf("invalid position %q: want \"top\", \"bottom\", or a non-negative index", s)
	}
	return placement{kind: placeIndex, index: n}, nil
}

// reindex records a sibling whose stored position must change to keep
// the column contiguous around the insertion point.
type reindex struct {
	ticket   *ticket.Ticket
	position int
}

// planPosition computes the moved ticket's position and the sibling
// rewrites for an insertion. peers is the target column in rendering
// order, without the ticket being moved. Bottom never touches
// siblings, so concurrent appends degrade to a cosmetic ordering
// glitch instead of a lost write.
func planPosition(peers []*ticket.Ticket, p placement) (int, []reindex) {
	if p.kind == placeBottom {
		max := -1
		for _, peer := range peers {
			if peer.Position > max {
				max = peer.Position
			}
		}
		return max + 1, nil
	}

	idx := 0
	if p.kind == placeIndex {
		idx = p.index
		if idx > len(peers) {
			idx = len(peers)
		}
	}

	var moves []reindex
	for i, peer := range peers {
		want := i
		if i >= idx {
			want = i + 1
		}
		if peer.Position != want {
			moves = append(moves, reindex{ticket: peer, position: want})
		}
	}
	return idx, moves
}
