/*package dispatch runs data-parallel passes over bodies and tree nodes.

Every function in this package returns only after all of its workers have
retired, so consecutive calls are separated by a full barrier. Workers within
a single call have no ordering guarantees.
*/
package dispatch

import (
	"runtime"

	"github.com/dgravesa/go-parallel/parallel"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/phil-mansfield/swarm/geom"
)

// NumCores is the number of goroutines used by each dispatch. It defaults to
// the number of logical cores and can be changed between steps.
var NumCores = runtime.NumCPU()

func workers() int {
	if NumCores < 1 { return 1 }
	return NumCores
}

// For calls body(i) once for every i in [0, n) and returns when every call
// has finished.
func For(n int, body func(i int)) {
	if n <= 0 { return }
	w := workers()
	if w > n { w = n }
	if w == 1 {
		for i := 0; i < n; i++ { body(i) }
		return
	}
	parallel.WithNumGoroutines(w).For(n, func(i, _ int) { body(i) })
}

// Bounds returns the bounding box of a set of points. Each worker reduces a
// strided subset into its own partial box and the partials are merged once
// every worker has reported in.
func Bounds(pos []mgl32.Vec2) geom.AABB {
	w := workers()
	if w > len(pos) { w = len(pos) }
	if w == 0 { return geom.Empty() }

	parts := make([]geom.AABB, w)
	out := make(chan int, w)
	for id := 0; id < w-1; id++ {
		go chanBounds(id, w, pos, parts, out)
	}
	chanBounds(w-1, w, pos, parts, out)

	b := geom.Empty()
	for i := 0; i < w; i++ {
		id := <-out
		b = geom.Union(b, parts[id])
	}
	return b
}

func chanBounds(
	id, w int, pos []mgl32.Vec2, parts []geom.AABB, out chan<- int,
) {
	b := geom.Empty()
	for i := id; i < len(pos); i += w { b.Extend(pos[i]) }
	parts[id] = b
	out <- id
}
