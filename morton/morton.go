/*package morton computes Z-order keys for body positions and sorts bodies
by them.

Keys are 32 bits wide: each axis of the bounding square is quantized to 16
bits and the two axes are interleaved with x in the even bits and y in the
odd bits. At 16 bits per axis, two bodies get distinct keys once they are
separated by more than 1/65536 of the domain width. Bodies closer than that
share a key and are ordered by id.
*/
package morton

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/phil-mansfield/swarm/dispatch"
	"github.com/phil-mansfield/swarm/geom"
)

const (
	// AxisBits is the number of bits each coordinate is quantized to.
	AxisBits = 16
	axisMax  = 1<<AxisBits - 1
)

// Encode interleaves the bits of x and y.
func Encode(x, y uint16) uint32 {
	return part1By1(uint32(x)) | part1By1(uint32(y))<<1
}

// Decode is the inverse of Encode.
func Decode(code uint32) (x, y uint16) {
	return uint16(compact1By1(code)), uint16(compact1By1(code >> 1))
}

// part1By1 spreads the low 16 bits of x out into the even bits.
func part1By1(x uint32) uint32 {
	x &= 0x0000ffff
	x = (x | x<<8) & 0x00ff00ff
	x = (x | x<<4) & 0x0f0f0f0f
	x = (x | x<<2) & 0x33333333
	x = (x | x<<1) & 0x55555555
	return x
}

func compact1By1(x uint32) uint32 {
	x &= 0x55555555
	x = (x | x>>1) & 0x33333333
	x = (x | x>>2) & 0x0f0f0f0f
	x = (x | x>>4) & 0x00ff00ff
	x = (x | x>>8) & 0x0000ffff
	return x
}

// quantize maps x in [low, low + width] onto [0, axisMax].
func quantize(x, low, width float32) uint16 {
	f := (x - low) / width * axisMax
	if !(f > 0) { return 0 }
	if f >= axisMax { return axisMax }
	return uint16(f)
}

// Key returns the Morton key of p inside the square domain sq.
func Key(p mgl32.Vec2, sq *geom.AABB) uint32 {
	w := sq.MaxExtent()
	return Encode(quantize(p[0], sq.Min[0], w), quantize(p[1], sq.Min[1], w))
}

// Keys writes the key of every position into codes and the identity
// permutation into indices. The domain is the bounding square of bounds.
func Keys(pos []mgl32.Vec2, bounds geom.AABB, codes, indices []uint32) {
	sq := bounds.Square()
	dispatch.For(len(pos), func(i int) {
		codes[i] = Key(pos[i], &sq)
		indices[i] = uint32(i)
	})
}

// Sorter orders (key, id) pairs ascending by key with ties broken by id.
// Both slices are permuted together.
type Sorter interface {
	Sort(codes, indices []uint32)
}

// DefaultSorter is a comparison sort over the paired slices.
type DefaultSorter struct{}

func (DefaultSorter) Sort(codes, indices []uint32) {
	sort.Sort(&keyed{codes, indices})
}

// keyed allows the code and index arrays to be sorted simultaneously.
type keyed struct {
	codes, indices []uint32
}

func (k *keyed) Len() int { return len(k.codes) }
func (k *keyed) Less(i, j int) bool {
	if k.codes[i] != k.codes[j] { return k.codes[i] < k.codes[j] }
	return k.indices[i] < k.indices[j]
}
func (k *keyed) Swap(i, j int) {
	k.codes[i], k.codes[j] = k.codes[j], k.codes[i]
	k.indices[i], k.indices[j] = k.indices[j], k.indices[i]
}
