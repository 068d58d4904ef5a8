package io

import (
	"bufio"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/phil-mansfield/table"

	"github.com/phil-mansfield/swarm/scenario"
)

// Column layout of body files.
const (
	MassColumn = iota
	XColumn
	YColumn
	VXColumn
	VYColumn
)

// ReadBodyTable reads initial conditions from a whitespace-separated text
// file with one body per line. Lines starting with '#' are comments.
func ReadBodyTable(file string) (*scenario.State, error) {
	colIdxs := []int{MassColumn, XColumn, YColumn, VXColumn, VYColumn}
	cols, err := table.ReadTable(file, colIdxs, nil)
	if err != nil { return nil, err }

	ms, xs, ys, vxs, vys := cols[0], cols[1], cols[2], cols[3], cols[4]
	s := scenario.New(len(ms))
	for i := range ms {
		s.Mass[i] = float32(ms[i])
		s.Pos[i] = mgl32.Vec2{float32(xs[i]), float32(ys[i])}
		s.Vel[i] = mgl32.Vec2{float32(vxs[i]), float32(vys[i])}
	}

	if err := s.CheckInit(); err != nil {
		return nil, fmt.Errorf("Body file %s: %s", file, err.Error())
	}
	return s, nil
}

// WriteBodyTable writes bodies to file in the format read by ReadBodyTable.
func WriteBodyTable(
	file string, mass []float32, pos, vel []mgl32.Vec2,
) error {
	f, err := os.Create(file)
	if err != nil { return err }
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "# %d bodies\n# mass x y vx vy\n", len(mass))
	for i := range mass {
		fmt.Fprintf(
			w, "%.9g %.9g %.9g %.9g %.9g\n",
			mass[i], pos[i][0], pos[i][1], vel[i][0], vel[i][1],
		)
	}
	if err := w.Flush(); err != nil { return err }
	return f.Close()
}
