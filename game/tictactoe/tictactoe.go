// Package tictactoe implements classic 3x3 tic-tac-toe as a worked example
// of package domain's State interface with no commit-reveal randomness and
// no secrets at all. Ported from original_source/game/src/lib.rs.
package tictactoe

import (
	"fmt"

	"github.com/fairhopeweb/arcadeum-state/codec"
	"github.com/fairhopeweb/arcadeum-state/cryptoadapter"
	"github.com/fairhopeweb/arcadeum-state/domain"
)

// Version identifies this game's rules and wire format.
const Version uint32 = 1

// Event is unused: tic-tac-toe has nothing worth logging beyond the moves
// already recorded in the action log itself.
type Event = struct{}

// Mark is a single board cell's occupant.
type Mark uint8

const (
	MarkNone Mark = iota
	MarkOne
	MarkTwo
)

// State is the board position: a move counter (whose parity decides whose
// turn it is, mirroring the original's nonce field) and the 3x3 grid.
type State struct {
	Nonce int32
	Board [3][3]Mark
}

// Move is the action a player submits: the player mark they're claiming to
// play as, and the cell to place it in.
type Move struct {
	Mark   Mark
	Row    uint8
	Column uint8
}

var _ domain.State[State, Move, Event] = State{}

func (State) Version() uint32 { return Version }

func (State) Challenge() State { return State{} }

// AcceptsChallenge reports whether accepted is an unmodified Challenge() —
// tic-tac-toe has no match parameters to negotiate.
func (s State) AcceptsChallenge(accepted State) bool {
	return accepted == State{}
}

// Approval is the message the owner signs to approve subkey as a delegate
// for player, matching domain.Certificate's wording style.
func (State) Approval(player, subkey cryptoadapter.Address) string {
	return fmt.Sprintf("Approve %s for %s.", subkey.String(), player.String())
}

func (State) IsSerializable() bool { return true }

func (s State) Serialize(w *codec.Writer) error {
	w.WriteUint32(uint32(s.Nonce))
	for _, row := range s.Board {
		for _, cell := range row {
			w.WriteByte(byte(cell))
		}
	}
	return nil
}

func (State) Deserialize(r *codec.Reader) (State, error) {
	nonce, err := r.ReadUint32()
	if err != nil {
		return State{}, err
	}
	var s State
	s.Nonce = int32(nonce)
	for i := range s.Board {
		for j := range s.Board[i] {
			b, err := r.ReadByte()
			if err != nil {
				return State{}, err
			}
			s.Board[i][j] = Mark(b)
		}
	}
	return s, nil
}

// DeserializeSecret always fails: tic-tac-toe has no per-player secret.
func (State) DeserializeSecret(r *codec.Reader) (domain.Secret, error) {
	return nil, fmt.Errorf("tictactoe: game has no secrets")
}

func (State) SerializeAction(w *codec.Writer, action Move) error {
	w.WriteByte(byte(action.Mark))
	w.WriteByte(action.Row)
	w.WriteByte(action.Column)
	return nil
}

func (State) DeserializeAction(r *codec.Reader) (Move, error) {
	mark, err := r.ReadByte()
	if err != nil {
		return Move{}, err
	}
	row, err := r.ReadByte()
	if err != nil {
		return Move{}, err
	}
	column, err := r.ReadByte()
	if err != nil {
		return Move{}, err
	}
	return Move{Mark: Mark(mark), Row: row, Column: column}, nil
}

// lines enumerates the eight index triples that win the game: three rows,
// three columns, two diagonals.
var lines = [8][3][2]int{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

// Winner returns the mark occupying any completed line, or MarkNone if the
// board has no winner yet.
func (s State) Winner() Mark {
	for _, line := range lines {
		a := s.Board[line[0][0]][line[0][1]]
		b := s.Board[line[1][0]][line[1][1]]
		c := s.Board[line[2][0]][line[2][1]]
		if a != MarkNone && a == b && b == c {
			return a
		}
	}
	return MarkNone
}

// nextMark mirrors the original's nonce-parity turn rule: even nonces are
// MarkOne's turn (0, 2, 4, 6, 8), odd nonces are MarkTwo's
// (1, 3, 5, 7); once a winner exists, or all nine cells are filled, no mark
// may move.
func (s State) nextMark() Mark {
	if s.Winner() != MarkNone {
		return MarkNone
	}
	switch s.Nonce {
	case 0, 2, 4, 6, 8:
		return MarkOne
	case 1, 3, 5, 7:
		return MarkTwo
	default:
		return MarkNone
	}
}

// markPlayer maps the acting mark to the domain.Player expected to submit
// it: MarkOne is player 0, MarkTwo is player 1.
func markPlayer(m Mark) (domain.Player, bool) {
	switch m {
	case MarkOne:
		return domain.Player0, true
	case MarkTwo:
		return domain.Player1, true
	default:
		return 0, false
	}
}

func (s State) VerifyAction(player *domain.Player, action Move) error {
	expectedPlayer, ok := markPlayer(action.Mark)
	if !ok {
		return fmt.Errorf("tictactoe: action must claim mark one or two")
	}
	if player == nil || *player != expectedPlayer {
		return fmt.Errorf("tictactoe: action submitted by the wrong player")
	}
	if action.Mark != s.nextMark() {
		return fmt.Errorf("tictactoe: not this mark's turn")
	}
	if action.Row >= 3 {
		return fmt.Errorf("tictactoe: row out of range")
	}
	if action.Column >= 3 {
		return fmt.Errorf("tictactoe: column out of range")
	}
	if s.Board[action.Row][action.Column] != MarkNone {
		return fmt.Errorf("tictactoe: cell already played")
	}
	return nil
}

// ApplyAction places the submitted mark. It never suspends: tic-tac-toe has
// no randomness and no secrets, so ctx is only present to satisfy
// domain.State's uniform signature.
func (s State) ApplyAction(ctx *domain.Context[Event], player *domain.Player, action Move) (State, error) {
	if err := s.VerifyAction(player, action); err != nil {
		return State{}, err
	}

	next := s
	next.Nonce++
	next.Board[action.Row][action.Column] = action.Mark
	return next, nil
}
