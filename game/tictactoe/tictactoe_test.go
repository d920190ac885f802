package tictactoe

import (
	"testing"

	"github.com/fairhopeweb/arcadeum-state/codec"
	"github.com/fairhopeweb/arcadeum-state/domain"
)

func TestWinner(t *testing.T) {
	tests := []struct {
		name  string
		board [3][3]Mark
		want  Mark
	}{
		{"empty", [3][3]Mark{}, MarkNone},
		{
			"top row",
			[3][3]Mark{{MarkOne, MarkOne, MarkOne}},
			MarkOne,
		},
		{
			"diagonal",
			[3][3]Mark{
				{MarkTwo, 0, 0},
				{0, MarkTwo, 0},
				{0, 0, MarkTwo},
			},
			MarkTwo,
		},
		{
			"anti-diagonal",
			[3][3]Mark{
				{0, 0, MarkOne},
				{0, MarkOne, 0},
				{MarkOne, 0, 0},
			},
			MarkOne,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := State{Board: tt.board}
			if got := s.Winner(); got != tt.want {
				t.Fatalf("Winner() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyActionPlacesMark(t *testing.T) {
	s := State{}
	p0 := domain.Player0

	next, err := s.ApplyAction(nil, &p0, Move{Mark: MarkOne, Row: 1, Column: 1})
	if err != nil {
		t.Fatalf("ApplyAction: %v", err)
	}
	if next.Board[1][1] != MarkOne {
		t.Fatalf("expected the center cell to hold MarkOne")
	}
	if next.Nonce != 1 {
		t.Fatalf("expected nonce to advance to 1, got %d", next.Nonce)
	}
}

func TestVerifyActionRejectsOutOfTurn(t *testing.T) {
	s := State{}
	p1 := domain.Player1
	if err := s.VerifyAction(&p1, Move{Mark: MarkTwo, Row: 0, Column: 0}); err == nil {
		t.Fatalf("expected MarkTwo to be rejected on the opening move")
	}
}

func TestVerifyActionRejectsOccupiedCell(t *testing.T) {
	s := State{Nonce: 1, Board: [3][3]Mark{{MarkOne, 0, 0}}}
	p1 := domain.Player1
	if err := s.VerifyAction(&p1, Move{Mark: MarkTwo, Row: 0, Column: 0}); err == nil {
		t.Fatalf("expected a replayed cell to be rejected")
	}
}

func TestVerifyActionRejectsAfterWin(t *testing.T) {
	s := State{
		Nonce: 5,
		Board: [3][3]Mark{{MarkOne, MarkOne, MarkOne}, {MarkTwo, MarkTwo, 0}},
	}
	p1 := domain.Player1
	if err := s.VerifyAction(&p1, Move{Mark: MarkTwo, Row: 1, Column: 2}); err == nil {
		t.Fatalf("expected no further moves to be accepted once a winner exists")
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	s := State{Nonce: 4, Board: [3][3]Mark{{MarkOne, MarkTwo, MarkOne}}}
	w := codec.NewWriter()
	if err := s.Serialize(w); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	got, err := State{}.Deserialize(codec.NewReader(w.Bytes()))
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if got != s {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, s)
	}
}

func TestActionSerializeRoundTrip(t *testing.T) {
	m := Move{Mark: MarkTwo, Row: 2, Column: 0}
	w := codec.NewWriter()
	if err := (State{}).SerializeAction(w, m); err != nil {
		t.Fatalf("SerializeAction: %v", err)
	}
	got, err := (State{}).DeserializeAction(codec.NewReader(w.Bytes()))
	if err != nil {
		t.Fatalf("DeserializeAction: %v", err)
	}
	if got != m {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, m)
	}
}
