package timegrid

import "fmt"

// Interaction phases of a pointer-driven resize or move. No state mutation
// happens while an interaction is uncommitted; persistence is attempted
// exactly once, on the Committing edge.
type Phase int

const (
	Idle Phase = iota
	Proposing
	Committing
	RolledBack
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Proposing:
		return "proposing"
	case Committing:
		return "committing"
	case RolledBack:
		return "rolled_back"
	}
	return "unknown"
}

// Interaction tracks one in-flight pointer interaction on the grid
type Interaction struct {
	phase     Phase
	candidate Window
}

// NewInteraction starts in Idle.
func NewInteraction() *Interaction {
	return &Interaction{phase: Idle}
}

// Phase returns the current phase.
func (i *Interaction) Phase() Phase { return i.phase }

// Candidate returns the currently proposed window. Only meaningful while
// Proposing or Committing.
func (i *Interaction) Candidate() Window { return i.candidate }

// Propose records a new candidate window. Valid from Idle (interaction
// begins) or Proposing (pointer keeps moving).
func (i *Interaction) Propose(w Window) error {
	if i.phase != Idle && i.phase != Proposing {
		return fmt.Errorf("cannot propose while %s", i.phase)
	}
	i.phase = Proposing
	i.candidate = w
	return nil
}

// BeginCommit marks the pointer release; the candidate is sent for
// transactional validation.
func (i *Interaction) BeginCommit() (Window, error) {
	if i.phase != Proposing {
		return Window{}, fmt.Errorf("cannot commit while %s", i.phase)
	}
	i.phase = Committing
	return i.candidate, nil
}

// Complete ends a successful commit and returns to Idle.
func (i *Interaction) Complete() error {
	if i.phase != Committing {
		return fmt.Errorf("cannot complete while %s", i.phase)
	}
	i.phase = Idle
	i.candidate = Window{}
	return nil
}

// Reject records a commit refused by conflict re-validation. The caller
// must roll the visual state back to the last committed one and surface
// the conflict rather than retry.
func (i *Interaction) Reject() error {
	if i.phase != Committing {
		return fmt.Errorf("cannot reject while %s", i.phase)
	}
	i.phase = RolledBack
	return nil
}

// Acknowledge clears a rolled-back interaction.
func (i *Interaction) Acknowledge() error {
	if i.phase != RolledBack {
		return fmt.Errorf("cannot acknowledge while %s", i.phase)
	}
	i.phase = Idle
	i.candidate = Window{}
	return nil
}
