package engine

import (
	"errors"
	"testing"

	"github.com/boardwalklabs/boardwalk/internal/ticket"
)

func TestParsePlacement(t *testing.T) {
	tests := []struct {
		input   string
		want    placement
		wantErr bool
	}{
		{"", placement{kind: placeBottom}, false},
		{"bottom", placement{kind: placeBottom}, false},
		{"Bottom", placement{kind: placeBottom}, false},
		{"top", placement{kind: placeTop}, false},
		{" TOP ", placement{kind: placeTop}, false},
		{"0", placement{kind: placeIndex, index: 0}, false},
		{"3", placement{kind: placeIndex, index: 3}, false},
		{"-1", placement{}, true},
		{"middle", placement{}, true},
		{"1.5", placement{}, true},
	}

	for _, tt := range tests {
		got, err := parsePlacement(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("parsePlacement(%q) error = %v, wantErr = %v", tt.input, err, tt.wantErr)
			continue
		}
		if err != nil {
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("parsePlacement(%q) error type = %T", tt.input, err)
			}
			continue
		}
		if got != tt.want {
			t.Errorf("parsePlacement(%q) = %+v, want %+v", tt.input, got, tt.want)
		}
	}
}

func peersAt(positions ...int) []*ticket.Ticket {
	out := make([]*ticket.Ticket, len(positions))
	for i, p := range positions {
		out[i] = &ticket.Ticket{PrimaryKey: string(rune('a' + i)), Position: p}
	}
	return out
}

func TestPlanPosition_Bottom(t *testing.T) {
	pos, moves := planPosition(peersAt(0, 1, 2), placement{kind: placeBottom})
	if pos != 3 {
		t.Errorf("pos = %d, want 3", pos)
	}
	if moves != nil {
		t.Errorf("bottom should not touch siblings: %v", moves)
	}

	pos, _ = planPosition(nil, placement{kind: placeBottom})
	if pos != 0 {
		t.Errorf("empty column pos = %d, want 0", pos)
	}

	// Non-contiguous positions: append still lands past the max.
	pos, _ = planPosition(peersAt(0, 4, 9), placement{kind: placeBottom})
	if pos != 10 {
		t.Errorf("pos = %d, want 10", pos)
	}
}

func TestPlanPosition_Top(t *testing.T) {
	peers := peersAt(0, 1, 2)
	pos, moves := planPosition(peers, placement{kind: placeTop})
	if pos != 0 {
		t.Errorf("pos = %d, want 0", pos)
	}
	if len(moves) != 3 {
		t.Fatalf("moves = %v, want every sibling shifted", moves)
	}
	for i, mv := range moves {
		if mv.position != i+1 {
			t.Errorf("moves[%d].position = %d, want %d", i, mv.position, i+1)
		}
	}
}

func TestPlanPosition_Index(t *testing.T) {
	peers := peersAt(0, 1, 2)
	pos, moves := planPosition(peers, placement{kind: placeIndex, index: 1})
	if pos != 1 {
		t.Errorf("pos = %d, want 1", pos)
	}
	// Only the members at rank >= 1 shift.
	if len(moves) != 2 {
		t.Fatalf("moves = %v", moves)
	}
	if moves[0].position != 2 || moves[1].position != 3 {
		t.Errorf("moves = %v", moves)
	}
}

func TestPlanPosition_IndexClamped(t *testing.T) {
	pos, moves := planPosition(peersAt(0, 1), placement{kind: placeIndex, index: 99})
	if pos != 2 {
		t.Errorf("pos = %d, want 2", pos)
	}
	if moves != nil {
		t.Errorf("clamped append should not touch siblings: %v", moves)
	}
}

func TestPlanPosition_RepairsDrift(t *testing.T) {
	// Siblings with duplicated positions get reindexed contiguously.
	// The first peer already sits at its wanted rank, so only the
	// other two are rewritten.
	pos, moves := planPosition(peersAt(1, 1, 5), placement{kind: placeTop})
	if pos != 0 {
		t.Errorf("pos = %d, want 0", pos)
	}
	if len(moves) != 2 {
		t.Fatalf("moves = %v", moves)
	}
	if moves[0].position != 2 || moves[1].position != 3 {
		t.Errorf("moves = %v", moves)
	}
}
