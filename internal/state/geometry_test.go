package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundingBoxOf_Empty(t *testing.T) {
	_, err := BoundingBoxOf(nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = BoundingBoxOf([]Point{})
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestBoundingBoxOf_SinglePoint(t *testing.T) {
	box, err := BoundingBoxOf([]Point{{X: 5, Y: 5}})
	require.NoError(t, err)
	assert.Equal(t, BoundingBox{MinX: 4, MaxX: 6, MinY: 4, MaxY: 6}, box)
	assert.True(t, box.Contains(Point{X: 5, Y: 5}))
}

func TestBoundingBoxOf_Tight(t *testing.T) {
	box, err := BoundingBoxOf([]Point{{X: 20, Y: 20}, {X: 22, Y: 21}})
	require.NoError(t, err)
	assert.Equal(t, BoundingBox{MinX: 20, MaxX: 22, MinY: 20, MaxY: 21}, box)

	box, err = BoundingBoxOf([]Point{{X: 10, Y: 3}, {X: -2, Y: 8}, {X: 4, Y: -1}})
	require.NoError(t, err)
	assert.Equal(t, BoundingBox{MinX: -2, MaxX: 10, MinY: -1, MaxY: 8}, box)
}

func TestBoundingBoxOf_AlwaysValid(t *testing.T) {
	paths := [][]Point{
		{{X: 0, Y: 0}},
		{{X: 3, Y: 3}, {X: 3, Y: 3}},
		{{X: 9, Y: 1}, {X: 1, Y: 9}},
		{{X: 100, Y: 50}, {X: 0, Y: 0}, {X: 50, Y: 100}, {X: 25, Y: 25}},
	}
	for _, path := range paths {
		box, err := BoundingBoxOf(path)
		require.NoError(t, err)
		assert.True(t, box.Valid(), "box %+v for %v", box, path)
		for _, p := range path {
			assert.True(t, box.Contains(p))
		}
	}
}

func TestBoundingBox_ContainsInclusive(t *testing.T) {
	box := BoundingBox{MinX: 0, MaxX: 10, MinY: 0, MaxY: 10}

	assert.True(t, box.Contains(Point{X: 0, Y: 0}))
	assert.True(t, box.Contains(Point{X: 10, Y: 10}))
	assert.True(t, box.Contains(Point{X: 10, Y: 0}))
	assert.False(t, box.Contains(Point{X: 10.01, Y: 5}))
	assert.False(t, box.Contains(Point{X: 5, Y: -0.01}))
}

func TestBoundingBox_TouchesIsPointBased(t *testing.T) {
	box := BoundingBox{MinX: 4, MaxX: 6, MinY: 4, MaxY: 6}

	// segment crosses the box but no vertex lands inside
	crossing := []Point{{X: 0, Y: 5}, {X: 10, Y: 5}}
	assert.False(t, box.Touches(crossing))

	withVertex := []Point{{X: 0, Y: 5}, {X: 5, Y: 5}, {X: 10, Y: 5}}
	assert.True(t, box.Touches(withVertex))

	assert.False(t, box.Touches(nil))
}
