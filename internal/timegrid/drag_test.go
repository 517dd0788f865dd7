package timegrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInteractionHappyPath(t *testing.T) {
	i := NewInteraction()
	assert.Equal(t, Idle, i.Phase())

	require.NoError(t, i.Propose(Window{Start: 1140, End: 1230}))
	require.NoError(t, i.Propose(Window{Start: 1155, End: 1245})) // pointer keeps moving
	assert.Equal(t, Proposing, i.Phase())

	w, err := i.BeginCommit()
	require.NoError(t, err)
	assert.Equal(t, Window{Start: 1155, End: 1245}, w)
	assert.Equal(t, Committing, i.Phase())

	require.NoError(t, i.Complete())
	assert.Equal(t, Idle, i.Phase())
}

func TestInteractionRollback(t *testing.T) {
	i := NewInteraction()
	require.NoError(t, i.Propose(Window{Start: 1140, End: 1230}))
	_, err := i.BeginCommit()
	require.NoError(t, err)

	// Commit refused by conflict re-validation
	require.NoError(t, i.Reject())
	assert.Equal(t, RolledBack, i.Phase())

	// Nothing but acknowledging the rollback is valid now
	assert.Error(t, i.Propose(Window{Start: 0, End: 15}))
	assert.Error(t, i.Complete())

	require.NoError(t, i.Acknowledge())
	assert.Equal(t, Idle, i.Phase())
}

func TestInteractionInvalidEdges(t *testing.T) {
	i := NewInteraction()

	_, err := i.BeginCommit()
	assert.Error(t, err, "commit without a proposal")
	assert.Error(t, i.Reject())
	assert.Error(t, i.Acknowledge())
	assert.Error(t, i.Complete())
}

func TestSequencerLatestWins(t *testing.T) {
	var s PreviewSequencer

	s1 := s.Next()
	s2 := s.Next()
	s3 := s.Next()

	// Fast server answers the oldest request last; only the newest applies
	assert.False(t, s.Accept(s2))
	assert.True(t, s.Accept(s3))
	assert.False(t, s.Accept(s1))
	assert.False(t, s.Accept(s3), "a response is applied at most once")

	s4 := s.Next()
	assert.True(t, s.Accept(s4))
}
