// Package proof implements the verifiable action log engine: ProofState
// (one signed transition), RootProof (the opening position the match
// owner signs), Proof (the full log plus reconstruction/diff logic), and
// Diff (an incremental append a replica submits to a peer or an on-chain
// dispute resolver).
package proof

import "fmt"

// HardError rejects an action or a diff without any publishable evidence:
// malformed bytes, an outer signature that does not recover, a diff that
// does not extend the current hash, a structurally inconsistent proof. Local state never mutates when a HardError is
// returned, and there is nothing to dispute on-chain — the submitter
// simply gets nothing, as if they had sent nothing at all.
type HardError struct {
	Reason string
}

func (e *HardError) Error() string { return fmt.Sprintf("proof: %s", e.Reason) }

// NewHardError constructs a HardError with a formatted reason.
func NewHardError(format string, args ...any) *HardError {
	return &HardError{Reason: fmt.Sprintf(format, args...)}
}

// SlashableError rejects an action the domain transition itself refused
// (ApplyAction returned an error, a reveal failed verification, a
// commitment hash didn't match its reveal), or a well-formed diff whose
// author is not recognized, whose actions name a different player than its
// author, or whose proof signature does not match. Evidence is the exact
// rejected Diff bytes, publishable as-is to an on-chain dispute resolver
// that can independently replay the rejection.
type SlashableError struct {
	Reason   string
	Evidence []byte
}

func (e *SlashableError) Error() string {
	return fmt.Sprintf("proof: slashable: %s", e.Reason)
}

// NewSlashableError constructs a SlashableError carrying evidence.
func NewSlashableError(evidence []byte, format string, args ...any) *SlashableError {
	return &SlashableError{Reason: fmt.Sprintf(format, args...), Evidence: evidence}
}
