package domain

// Nonce is a monotonically increasing, per-ProofState counter: default-
// constructible, totally ordered, with a Next() successor. A uint64 is
// more than any example domain (tic-tac-toe's move counter, Coin's round
// counter) ever needs.
type Nonce uint64

// Next returns the successor nonce.
func (n Nonce) Next() Nonce { return n + 1 }

// Less reports whether n sorts before other.
func (n Nonce) Less(other Nonce) bool { return n < other }
