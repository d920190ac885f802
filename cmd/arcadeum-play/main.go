// Command arcadeum-play simulates a tic-tac-toe match across three local
// Store replicas: the match owner (a neutral relay and timeout authority)
// and both players. Each replica holds its own signing key and only ever
// learns of the others' moves through the Diff values Store.Dispatch
// produces, exactly as a host relaying diffs over a network would — the
// relay here is just an in-process function call instead of a socket.
//
// Usage:
//
//	arcadeum-play [--config match.yaml] [--verbosity 0-3]
package main

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/fairhopeweb/arcadeum-state/cryptoadapter"
	"github.com/fairhopeweb/arcadeum-state/cryptoadapter/ethsecp256k1"
	"github.com/fairhopeweb/arcadeum-state/domain"
	"github.com/fairhopeweb/arcadeum-state/game/tictactoe"
	"github.com/fairhopeweb/arcadeum-state/logx"
	"github.com/fairhopeweb/arcadeum-state/store"
	"github.com/fairhopeweb/arcadeum-state/storemetrics"
)

var (
	version = "v0.1.0-dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	app := &cli.App{
		Name:    "arcadeum-play",
		Usage:   "simulate a local three-replica tic-tac-toe match",
		Version: fmt.Sprintf("%s (%s)", version, commit),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to a YAML match config (default: a built-in 5-move win)"},
			&cli.IntFlag{Name: "verbosity", Value: 1, Usage: "log level: 0=error 1=info 2=debug"},
		},
		Action: playMatch,
	}

	if err := app.Run(args); err != nil {
		fmt.Fprintln(os.Stderr, "arcadeum-play:", err)
		return 1
	}
	return 0
}

func playMatch(c *cli.Context) error {
	logx.SetDefault(logx.New(verbosityToLevel(c.Int("verbosity"))))

	cfg := defaultConfigOr(c.String("config"))
	if cfg == nil {
		return fmt.Errorf("load config: see above")
	}

	owner, err := ethsecp256k1.Generate()
	if err != nil {
		return fmt.Errorf("generate owner key: %w", err)
	}
	p0, err := ethsecp256k1.Generate()
	if err != nil {
		return fmt.Errorf("generate player 0 key: %w", err)
	}
	p1, err := ethsecp256k1.Generate()
	if err != nil {
		return fmt.Errorf("generate player 1 key: %w", err)
	}

	players := [2]cryptoadapter.Address{p0.Address(), p1.Address()}
	var id domain.ID
	copy(id[:], owner.Address().Bytes())

	reg := prometheus.NewRegistry()
	metrics := storemetrics.New(reg)

	root, err := store.OpenRoot[tictactoe.State, tictactoe.Move, tictactoe.Event](
		tictactoe.State{}, owner, id, players, [2]*domain.SecretCell{}, signerFor(owner),
	)
	if err != nil {
		return fmt.Errorf("open root: %w", err)
	}

	var ownerStore, p0Store, p1Store *store.Store[tictactoe.State, tictactoe.Move, tictactoe.Event]

	relay := func(from string) func(store.Diff[tictactoe.Move]) {
		return func(diff store.Diff[tictactoe.Move]) {
			for name, dst := range map[string]*store.Store[tictactoe.State, tictactoe.Move, tictactoe.Event]{
				"owner":    ownerStore,
				"player 0": p0Store,
				"player 1": p1Store,
			} {
				if name == from || dst == nil {
					continue
				}
				if err := dst.Apply(&diff); err != nil {
					logx.Error("relay apply failed", "from", from, "to", name, "error", err)
				}
			}
		}
	}

	newReplica := func(player *domain.Player, adapter cryptoadapter.Signer, from string) (*store.Store[tictactoe.State, tictactoe.Move, tictactoe.Event], error) {
		logger := store.NewLogger[tictactoe.Event](func(tictactoe.Event) {})
		return store.NewStore[tictactoe.State, tictactoe.Move, tictactoe.Event](
			tictactoe.State{}, adapter, logger, player, root, [2]*domain.SecretCell{},
			signerFor(adapter), relay(from), cryptoRandomSource{},
		)
	}

	player0, player1 := domain.Player0, domain.Player1

	ownerStore, err = newReplica(nil, owner, "owner")
	if err != nil {
		return fmt.Errorf("new owner store: %w", err)
	}
	p0Store, err = newReplica(&player0, p0, "player 0")
	if err != nil {
		return fmt.Errorf("new player 0 store: %w", err)
	}
	p1Store, err = newReplica(&player1, p1, "player 1")
	if err != nil {
		return fmt.Errorf("new player 1 store: %w", err)
	}

	// NewStore never auto-flushes; each replica's own starting phase (if
	// any) is carried forward explicitly, once every replica exists so the
	// relay above has somewhere to send what Flush produces.
	for name, replica := range map[string]*store.Store[tictactoe.State, tictactoe.Move, tictactoe.Event]{
		"owner": ownerStore, "player 0": p0Store, "player 1": p1Store,
	} {
		if err := replica.Flush(); err != nil {
			return fmt.Errorf("flush %s: %w", name, err)
		}
	}

	for i, move := range cfg.Moves {
		actor := p0Store
		if move.Player == 1 {
			actor = p1Store
		}
		action := tictactoe.Move{Mark: markForPlayer(move.Player), Row: uint8(move.Row), Column: uint8(move.Column)}
		err := actor.Dispatch(action)
		metrics.ObserveDiffResult(err)
		if err != nil {
			return fmt.Errorf("move %d: %w", i, err)
		}
		logx.Info("move applied", "index", i, "player", move.Player, "row", move.Row, "column", move.Column)
	}

	final, ok := ownerStore.State().State.Ready()
	if !ok {
		return fmt.Errorf("match did not settle to a ready state")
	}
	printBoard(final)
	if winner := final.Winner(); winner != tictactoe.MarkNone {
		logx.Info("match finished", "winner", winner)
	} else {
		logx.Info("match finished without a winner")
	}

	if !sameHash(ownerStore.Hash(), p0Store.Hash(), p1Store.Hash()) {
		return fmt.Errorf("replicas diverged: owner/player0/player1 proof hashes do not match")
	}

	return nil
}

func defaultConfigOr(path string) *MatchConfig {
	if path == "" {
		return DefaultMatchConfig()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "arcadeum-play: read config:", err)
		return nil
	}
	cfg, err := LoadMatchConfig(data)
	if err != nil {
		fmt.Fprintln(os.Stderr, "arcadeum-play:", err)
		return nil
	}
	return cfg
}

func markForPlayer(player int) tictactoe.Mark {
	if player == 1 {
		return tictactoe.MarkTwo
	}
	return tictactoe.MarkOne
}

func sameHash(a, b, c cryptoadapter.Hash) bool {
	return a == b && b == c
}

func printBoard(st tictactoe.State) {
	symbol := func(m tictactoe.Mark) string {
		switch m {
		case tictactoe.MarkOne:
			return "X"
		case tictactoe.MarkTwo:
			return "O"
		default:
			return "."
		}
	}
	for row := 0; row < 3; row++ {
		fmt.Printf("%s %s %s\n", symbol(st.Board[row][0]), symbol(st.Board[row][1]), symbol(st.Board[row][2]))
	}
}

func verbosityToLevel(v int) slog.Level {
	switch {
	case v <= 0:
		return slog.LevelError
	case v == 1:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// signerFor adapts a cryptoadapter.Signer (which signs an already-computed
// Hash) into the proof.Signer shape Store expects (which hashes and signs a
// raw message), closing over the concrete adapter's own Hash implementation
// so every signature is taken over the same hash function the adapter
// verifies with.
func signerFor(signer cryptoadapter.Signer) func(message []byte) (cryptoadapter.Signature, error) {
	return func(message []byte) (cryptoadapter.Signature, error) {
		return signer.Sign(signer.Hash(message))
	}
}

// cryptoRandomSource implements store.RandomSource using the operating
// system's CSPRNG. Unused by tic-tac-toe itself (it never suspends for
// randomness) but required by store.NewStore's signature, since any game
// this replica might later be pointed at could need it.
type cryptoRandomSource struct{}

func (cryptoRandomSource) Seed() [16]byte {
	var seed [16]byte
	if _, err := rand.Read(seed[:]); err != nil {
		// crypto/rand.Read only fails if the OS entropy source is
		// unavailable, which no host can recover from.
		panic(fmt.Sprintf("arcadeum-play: read random seed: %v", err))
	}
	return seed
}
