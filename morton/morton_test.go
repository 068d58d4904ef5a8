package morton

import (
	"sort"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/rand"

	"github.com/phil-mansfield/swarm/geom"
)

func TestEncode(t *testing.T) {
	table := []struct {
		x, y uint16
		code uint32
	}{
		{0, 0, 0},
		{1, 0, 1},
		{0, 1, 2},
		{1, 1, 3},
		{2, 0, 4},
		{3, 5, 0x27},
		{0xffff, 0, 0x55555555},
		{0, 0xffff, 0xaaaaaaaa},
		{0xffff, 0xffff, 0xffffffff},
	}

	for i, line := range table {
		if code := Encode(line.x, line.y); code != line.code {
			t.Errorf("%d) Encode(%d, %d) = %x, expected %x.",
				i, line.x, line.y, code, line.code)
		}
		x, y := Decode(line.code)
		if x != line.x || y != line.y {
			t.Errorf("%d) Decode(%x) = (%d, %d), expected (%d, %d).",
				i, line.code, x, y, line.x, line.y)
		}
	}
}

func TestKeyClamps(t *testing.T) {
	sq := geom.AABB{Min: mgl32.Vec2{0, 0}, Max: mgl32.Vec2{1, 1}}
	assert.Equal(t, uint32(0), Key(mgl32.Vec2{-1, -1}, &sq))
	assert.Equal(t, uint32(0xffffffff), Key(mgl32.Vec2{2, 2}, &sq))
	assert.Equal(t, uint32(0xffffffff), Key(mgl32.Vec2{1, 1}, &sq))
}

func TestKeysLocality(t *testing.T) {
	// Quadrants of the domain occupy contiguous key ranges in Z order:
	// lower-left, lower-right, upper-left, upper-right.
	pos := []mgl32.Vec2{{0.9, 0.9}, {0.1, 0.9}, {0.9, 0.1}, {0.1, 0.1}}
	bounds := geom.AABB{Min: mgl32.Vec2{0, 0}, Max: mgl32.Vec2{1, 1}}
	codes, indices := make([]uint32, 4), make([]uint32, 4)

	Keys(pos, bounds, codes, indices)
	DefaultSorter{}.Sort(codes, indices)

	assert.Equal(t, []uint32{3, 2, 1, 0}, indices)
	assert.True(t, sort.SliceIsSorted(codes, func(i, j int) bool {
		return codes[i] < codes[j]
	}))
}

func TestSortTiesByID(t *testing.T) {
	codes := []uint32{5, 1, 5, 1, 5, 0}
	indices := []uint32{0, 1, 2, 3, 4, 5}

	DefaultSorter{}.Sort(codes, indices)

	assert.Equal(t, []uint32{0, 1, 1, 5, 5, 5}, codes)
	assert.Equal(t, []uint32{5, 1, 3, 0, 2, 4}, indices)
}

func TestSortDeterministic(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	n := 2000
	pos := make([]mgl32.Vec2, n)
	for i := range pos {
		// Coarse positions so that many bodies share a key.
		pos[i] = mgl32.Vec2{float32(rnd.Intn(8)), float32(rnd.Intn(8))}
	}
	bounds := geom.AABB{Min: mgl32.Vec2{0, 0}, Max: mgl32.Vec2{7, 7}}

	run := func() ([]uint32, []uint32) {
		codes, indices := make([]uint32, n), make([]uint32, n)
		Keys(pos, bounds, codes, indices)
		DefaultSorter{}.Sort(codes, indices)
		return codes, indices
	}

	c1, i1 := run()
	c2, i2 := run()
	assert.Equal(t, c1, c2)
	assert.Equal(t, i1, i2)

	for k := 1; k < n; k++ {
		if c1[k-1] == c1[k] && i1[k-1] >= i1[k] {
			t.Fatalf("Tie at %d not ordered by id: %d, %d.", k, i1[k-1], i1[k])
		}
	}
}

func BenchmarkKeys(b *testing.B) {
	rnd := rand.New(rand.NewSource(1))
	n := 1 << 14
	pos := make([]mgl32.Vec2, n)
	for i := range pos {
		pos[i] = mgl32.Vec2{float32(rnd.Float64()), float32(rnd.Float64())}
	}
	bounds := geom.AABB{Min: mgl32.Vec2{0, 0}, Max: mgl32.Vec2{1, 1}}
	codes, indices := make([]uint32, n), make([]uint32, n)

	b.ResetTimer()
	for i := 0; i < b.N; i++ { Keys(pos, bounds, codes, indices) }
}
