package main

import (
	"log"
	"math"
	"path"

	"github.com/go-gl/mathgl/mgl32"
	plt "github.com/phil-mansfield/pyplot"

	"github.com/phil-mansfield/swarm/diag"
)

// history records the conserved quantities at every logged step.
type history struct {
	steps, energy, px, py []float64
}

func (h *history) add(step int, sum *diag.Summary) {
	h.steps = append(h.steps, float64(step))
	h.energy = append(h.energy, sum.Energy())
	h.px = append(h.px, sum.Momentum[0])
	h.py = append(h.py, sum.Momentum[1])
}

// relativeError returns |x - x0| / |x0| for every element of xs, or the
// absolute error if x0 is zero.
func relativeError(xs []float64) []float64 {
	out := make([]float64, len(xs))
	if len(xs) == 0 { return out }

	norm := math.Abs(xs[0])
	if norm == 0 { norm = 1 }
	for i := range xs { out[i] = math.Abs(xs[i]-xs[0]) / norm }
	return out
}

func plotHistory(h *history, dir string) {
	if len(h.steps) < 2 {
		log.Println("Not enough logged steps to plot a history.")
		return
	}

	plt.Figure()
	plt.Plot(h.steps, relativeError(h.energy), "k", plt.LW(2))
	plt.Title("Energy conservation")
	plt.XLabel("Step", plt.FontSize(16))
	plt.YLabel(`$|E - E_0|/|E_0|$`, plt.FontSize(16))
	plt.SaveFig(path.Join(dir, "energy.png"))

	plt.Figure()
	plt.Plot(h.steps, h.px, "r", plt.LW(2))
	plt.Plot(h.steps, h.py, "b", plt.LW(2))
	plt.Title("Total momentum")
	plt.XLabel("Step", plt.FontSize(16))
	plt.YLabel(`$p_x$ (red), $p_y$ (blue)`, plt.FontSize(16))
	plt.SaveFig(path.Join(dir, "momentum.png"))
}

func plotPositions(pos []mgl32.Vec2, dir string) {
	xs, ys := make([]float64, len(pos)), make([]float64, len(pos))
	rMax := 0.0
	for i := range pos {
		xs[i], ys[i] = float64(pos[i][0]), float64(pos[i][1])
		rMax = math.Max(rMax, math.Max(math.Abs(xs[i]), math.Abs(ys[i])))
	}
	if rMax == 0 { rMax = 1 }

	plt.Figure(plt.FigSize(8, 8))
	plt.Plot(xs, ys, ",k")
	plt.Title("Final positions")
	plt.XLabel(`$X$`, plt.FontSize(16))
	plt.YLabel(`$Y$`, plt.FontSize(16))
	plt.XLim(-rMax, +rMax)
	plt.YLim(-rMax, +rMax)
	plt.SaveFig(path.Join(dir, "positions.png"))
}

// plotExecute runs every queued plotting command.
func plotExecute() {
	log.Println("Writing plots.")
	plt.Execute()
}
