package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndApply(t *testing.T) {
	s := NewSet()

	applied := 0.0
	s.Register(Descriptor{
		Name:        "magnet.strength",
		Category:    "magnet",
		Description: "default pull strength",
		Min:         0,
		Max:         100,
	}, 10, func(v float64) { applied = v })

	v, ok := s.Get("magnet.strength")
	require.True(t, ok)
	assert.Equal(t, 10.0, v)

	require.NoError(t, s.Apply("magnet.strength", 25))
	assert.Equal(t, 25.0, applied)

	v, _ = s.Get("magnet.strength")
	assert.Equal(t, 25.0, v)
}

func TestApplyClampsToBounds(t *testing.T) {
	s := NewSet()
	applied := 0.0
	s.Register(Descriptor{Name: "sim.max_force", Category: "sim", Min: 1, Max: 50}, 10, func(v float64) { applied = v })

	require.NoError(t, s.Apply("sim.max_force", 500))
	assert.Equal(t, 50.0, applied)

	require.NoError(t, s.Apply("sim.max_force", -3))
	assert.Equal(t, 1.0, applied)
}

func TestApplyUnknownParameter(t *testing.T) {
	s := NewSet()
	assert.Error(t, s.Apply("nope", 1))

	_, ok := s.Get("nope")
	assert.False(t, ok)
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	s := NewSet()
	s.Register(Descriptor{Name: "a"}, 0, nil)
	assert.Panics(t, func() { s.Register(Descriptor{Name: "a"}, 0, nil) })
}

func TestSnapshotOrderedByCategoryThenName(t *testing.T) {
	s := NewSet()
	s.Register(Descriptor{Name: "nav.scale_threshold", Category: "nav"}, 1, nil)
	s.Register(Descriptor{Name: "magnet.radius", Category: "magnet"}, 20, nil)
	s.Register(Descriptor{Name: "magnet.strength", Category: "magnet"}, 10, nil)

	snap := s.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "magnet.radius", snap[0].Name)
	assert.Equal(t, "magnet.strength", snap[1].Name)
	assert.Equal(t, "nav.scale_threshold", snap[2].Name)
	assert.Equal(t, 20.0, snap[0].Current)
}
