package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ashpad/internal/ash"
	"github.com/roach88/ashpad/internal/field"
	"github.com/roach88/ashpad/internal/session"
)

func TestStateRecorder_GroupsByRun(t *testing.T) {
	rec := NewStateRecorder()
	s, err := session.New(session.Options{Tracer: rec, IDs: NewFixedIDGenerator("")})
	require.NoError(t, err)

	require.True(t, s.TriggerRecompile().OK())
	require.NoError(t, s.SetTarget(ash.TargetTasm))
	require.NoError(t, s.SetField(field.KindCurve25519))
	s.TriggerRecompile()

	assert.Equal(t, 2, rec.Runs())
	assert.Equal(t, []session.State{
		session.StateIdle,
		session.StateConfiguring,
		session.StateCompiling,
		session.StateBuildingWitness,
		session.StateVerifying,
		session.StateDone,
	}, rec.States(1))
	assert.Equal(t, []session.State{session.StateIdle, session.StateFailed}, rec.States(2))
	assert.Empty(t, rec.States(3))
}

func TestStateRecorder_StatesIsACopy(t *testing.T) {
	rec := NewStateRecorder()
	rec.Enter(1, session.StateIdle)

	got := rec.States(1)
	got[0] = session.StateDone
	assert.Equal(t, []session.State{session.StateIdle}, rec.States(1))
}
