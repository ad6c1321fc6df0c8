package nav

import (
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/orbitdeck/orbitdeck/pkg/vec"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeSpace is an in-test spatial provider.
type fakeSpace struct {
	positions map[string]vec.V3
	scales    map[string]float64
	order     []string
}

func (f *fakeSpace) Position(id string) (vec.V3, bool) {
	p, ok := f.positions[id]
	return p, ok
}

func (f *fakeSpace) Scale(id string) (float64, bool) {
	s, ok := f.scales[id]
	return s, ok
}

func (f *fakeSpace) ItemIDs() []string { return f.order }

func (f *fakeSpace) add(id string, x, z, scale float64) {
	f.positions[id] = vec.V3{X: x, Z: z}
	f.scales[id] = scale
	f.order = append(f.order, id)
}

func newFakeSpace() *fakeSpace {
	return &fakeSpace{
		positions: map[string]vec.V3{},
		scales:    map[string]float64{},
	}
}

func TestParseDirection(t *testing.T) {
	for _, valid := range []string{"north", "south", "east", "west"} {
		d, ok := ParseDirection(valid)
		assert.True(t, ok)
		assert.Equal(t, Direction(valid), d)
	}
	_, ok := ParseDirection("up")
	assert.False(t, ok)
	_, ok = ParseDirection("")
	assert.False(t, ok)
}

func TestFreeFormPieSlice(t *testing.T) {
	space := newFakeSpace()
	space.add("center", 0, 0, 1)
	space.add("north", 0, 5, 1)
	space.add("east", 5, 0, 1)
	space.add("south", 0, -5, 1)

	n := New(space, space, 1.0, newTestLogger())

	// North must pick the item straight ahead, never the side-axis items.
	assert.Equal(t, "north", n.NextFreeForm("center", North, 0, 0))
	assert.Equal(t, "east", n.NextFreeForm("center", East, 0, 0))
	assert.Equal(t, "south", n.NextFreeForm("center", South, 0, 0))
	assert.Equal(t, "", n.NextFreeForm("center", West, 0, 0))
}

func TestFreeFormHalfDiagonalBoundary(t *testing.T) {
	space := newFakeSpace()
	space.add("center", 0, 0, 1)
	// Forward magnitude exceeds side magnitude: qualifies as north.
	space.add("ahead", 2, 3, 1)
	// Side magnitude exceeds forward magnitude: east, not north.
	space.add("aside", 3, 2, 1)

	n := New(space, space, 1.0, newTestLogger())
	assert.Equal(t, "ahead", n.NextFreeForm("center", North, 0, 0))
	assert.Equal(t, "aside", n.NextFreeForm("center", East, 0, 0))
}

func TestFreeFormNearestWins(t *testing.T) {
	space := newFakeSpace()
	space.add("center", 0, 0, 1)
	space.add("far", 0, 10, 1)
	space.add("near", 0, 3, 1)

	n := New(space, space, 1.0, newTestLogger())
	assert.Equal(t, "near", n.NextFreeForm("center", North, 0, 0))
}

func TestFreeFormPrefersBigItems(t *testing.T) {
	space := newFakeSpace()
	space.add("center", 0, 0, 1)
	space.add("small-near", 0, 2, 0.2)
	space.add("big-far", 0, 8, 2.0)

	n := New(space, space, 1.0, newTestLogger())

	// A big item beats a closer small one.
	assert.Equal(t, "big-far", n.NextFreeForm("center", North, 0, 0))

	// With no big item in the slice, the small one is accepted.
	space.scales["big-far"] = 0.1
	assert.Equal(t, "small-near", n.NextFreeForm("center", North, 0, 0))
}

func TestFreeFormDragBias(t *testing.T) {
	space := newFakeSpace()
	space.add("center", 0, 0, 1)
	// Two candidates in the north slice at the same distance, one leaning
	// west-of-north, one east-of-north.
	space.add("north-west", -2, 5, 1)
	space.add("north-east", 2, 5, 1)

	n := New(space, space, 1.0, newTestLogger())

	// A drag pointing east-of-north selects the aligned candidate.
	assert.Equal(t, "north-east", n.NextFreeForm("center", North, 2, 5))
	assert.Equal(t, "north-west", n.NextFreeForm("center", North, -2, 5))
}

func TestFreeFormDragBiasDistanceDominates(t *testing.T) {
	space := newFakeSpace()
	space.add("center", 0, 0, 1)
	space.add("near-misaligned", -1, 2, 1)
	space.add("far-aligned", 3, 30, 1)

	n := New(space, space, 1.0, newTestLogger())

	// Even a perfectly aligned drag cannot overcome a 10x distance gap:
	// the multiplier is bounded in [0.5, 1.5].
	assert.Equal(t, "near-misaligned", n.NextFreeForm("center", North, 3, 30))
}

func TestFreeFormSkipsCoincidentAndMissingItems(t *testing.T) {
	space := newFakeSpace()
	space.add("center", 0, 0, 1)
	space.add("stacked", 0, 0, 1) // zero offset, must be skipped
	space.order = append(space.order, "ghost")

	n := New(space, space, 1.0, newTestLogger())
	assert.Equal(t, "", n.NextFreeForm("center", North, 0, 0))
}

func TestFreeFormUnknownCurrentItem(t *testing.T) {
	space := newFakeSpace()
	space.add("a", 0, 0, 1)

	n := New(space, space, 1.0, newTestLogger())
	assert.Equal(t, "", n.NextFreeForm("missing", North, 0, 0))
}

func gridSpace(count int) *fakeSpace {
	space := newFakeSpace()
	for i := 0; i < count; i++ {
		space.add(fmt.Sprintf("i%d", i), 0, 0, 1)
	}
	return space
}

func TestGridThreeByThree(t *testing.T) {
	// 9 items: 3x3 grid. Index 4 is the center (row 1, col 1).
	space := gridSpace(9)
	n := New(space, space, 1.0, newTestLogger())

	// Grid rows grow southward, so north is one row up.
	assert.Equal(t, "i1", n.NextGrid("i4", North))
	assert.Equal(t, "i7", n.NextGrid("i4", South))
	assert.Equal(t, "i5", n.NextGrid("i4", East))
	assert.Equal(t, "i3", n.NextGrid("i4", West))

	// Moving north again from the top row: no move, no wraparound.
	assert.Equal(t, "", n.NextGrid("i1", North))
	assert.Equal(t, "", n.NextGrid("i0", West))
	assert.Equal(t, "", n.NextGrid("i8", East))
	assert.Equal(t, "", n.NextGrid("i8", South))
}

func TestGridShortLastRow(t *testing.T) {
	// 7 items: columns=ceil(sqrt(7))=3, rows=3, last row holds only i6.
	space := gridSpace(7)
	n := New(space, space, 1.0, newTestLogger())

	// Moving south from i4 (row 1, col 1) would land on flat index 7 >= 7.
	assert.Equal(t, "", n.NextGrid("i4", South))
	assert.Equal(t, "i6", n.NextGrid("i3", South))
}

func TestGridDegenerateInputs(t *testing.T) {
	n := New(newFakeSpace(), gridSpace(0), 1.0, newTestLogger())
	assert.Equal(t, "", n.NextGrid("i0", North))

	space := gridSpace(4)
	n = New(space, space, 1.0, newTestLogger())
	assert.Equal(t, "", n.NextGrid("unknown", North))
}

func TestGridSingleItem(t *testing.T) {
	space := gridSpace(1)
	n := New(space, space, 1.0, newTestLogger())
	for _, d := range []Direction{North, South, East, West} {
		assert.Equal(t, "", n.NextGrid("i0", d))
	}
}
