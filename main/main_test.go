package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phil-mansfield/swarm"
	"github.com/phil-mansfield/swarm/io"
)

func TestGetModeName(t *testing.T) {
	a, b := "", ""
	vars := map[string]*string{"Simulate": &a, "ExampleConfig": &b}

	_, err := getModeName(vars)
	assert.Error(t, err)

	a = "sim.ini"
	name, err := getModeName(vars)
	assert.NoError(t, err)
	assert.Equal(t, "Simulate", name)

	b = "Simulation"
	_, err = getModeName(vars)
	assert.Error(t, err)
}

func TestRelativeError(t *testing.T) {
	table := []struct {
		xs, exp []float64
	}{
		{[]float64{}, []float64{}},
		{[]float64{-2, -2, -1, -4}, []float64{0, 0, 0.5, 1}},
		{[]float64{0, 0.5, -0.25}, []float64{0, 0.5, 0.25}},
	}
	for _, test := range table {
		assert.Equal(t, test.exp, relativeError(test.xs))
	}
}

func TestEngineParams(t *testing.T) {
	con := io.DefaultSimulationWrapper().Simulation
	md, col := engineParams(&con)

	assert.NoError(t, md.CheckInit())
	assert.Equal(t, float32(0.01), md.DeltaTime)
	assert.Equal(t, float32(0.1), col.Radius)

	_, err := swarm.NewEngine(md, col, nil)
	assert.NoError(t, err)
}
