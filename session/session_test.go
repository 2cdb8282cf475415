package session_test

import (
	"testing"

	"github.com/ACRMGroup/profit/session"
	"github.com/ACRMGroup/profit/zone"
	"github.com/stretchr/testify/assert"
)

func TestNewSessionDefaults(t *testing.T) {
	s := session.New()
	assert.Equal(t, zone.RESNUM, s.NumberMode)
	assert.Equal(t, 10, s.GapOpen)
	assert.Equal(t, 2, s.GapExt)
	assert.InDelta(t, 9.0, s.MaxEquivDistSq, 1e-9)
	assert.InDelta(t, 0.01, s.IterStop, 1e-9)
	assert.Equal(t, 1000, s.MaxIter)
}

func TestEffectiveRMSSelectorFallsBackToAtomSelector(t *testing.T) {
	s := session.New()
	s.AtomSelector = "CA"
	assert.Equal(t, "CA", s.EffectiveRMSSelector())

	s.RMSAtomSelector = "N"
	assert.Equal(t, "N", s.EffectiveRMSSelector())
}

func TestStructureInvalidateClearsFitState(t *testing.T) {
	st := &session.Structure{Fitted: true, NumFittedCoords: 42}
	st.Invalidate()
	assert.False(t, st.Fitted)
	assert.Equal(t, 0, st.NumFittedCoords)
}

func TestStructureEffectiveRMSZonesFallsBack(t *testing.T) {
	fit := []zone.Zone{{Mode: zone.SEQUENTIAL, Start1Seq: 1, Stop1Seq: 5}}
	st := &session.Structure{FitZones: fit}
	assert.Equal(t, fit, st.EffectiveRMSZones())
}

func TestCurrentStatusCountsMobiles(t *testing.T) {
	s := session.New()
	s.Mobiles = []*session.Structure{
		{FitZones: []zone.Zone{{}}},
		{FitZones: []zone.Zone{{}, {}}},
	}
	status := s.CurrentStatus()
	assert.Equal(t, 2, status.NumMobiles)
	assert.Equal(t, []int{1, 2}, status.FitZoneCounts)
}
