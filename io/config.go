package io

import (
	"fmt"

	"gopkg.in/gcfg.v1"

	"github.com/phil-mansfield/swarm/scenario"
)

const ExampleSimulationFile = `[Simulation]

#######################
# Required Parameters #
#######################

# Initial conditions. Scenario can be one of
# [ uniform | galaxy | binary | head-on ]
# NumBodies is ignored by binary and head-on. If Input is set, initial
# conditions are instead read from a whitespace-separated text file with the
# columns (mass x y vx vy), one body per line, and Scenario, NumBodies, and
# Seed are ignored.
Scenario = galaxy
NumBodies = 10000
# Input = path/to/bodies.txt

# Number of steps to run.
Steps = 1000

#######################
# Optional Parameters #
#######################

# Seed for the random scenarios. Default is 0.
# Seed = 0

# Physical parameters. Defaults are shown.
# GravConstant = 1
# DeltaTime = 0.01

# Opening angle for the Barnes-Hut approximation. Set to 0 to compute every
# pairwise force directly.
# BHTheta = 0.5

# Every body is a disk with radius Radius. Setting Radius to 0 turns
# collisions off. The softening length used for gravity is
# EpsilonMultiplier * Radius.
# Radius = 0.1
# EpsilonMultiplier = 1

# Collision response. Restitution must be in [0, 1], where 1 is perfectly
# elastic. Correction is the fraction of the overlap between colliding bodies
# which is removed in a single step.
# Restitution = 0.5
# Correction = 0.2

# Energy and momentum are logged every LogInterval steps. Set to 0 to turn
# off.
# LogInterval = 100

# If set, the final state is written here in the same format as Input.
# Output = path/to/final.txt

# If set, energy history and a scatter plot of final positions are written to
# this directory as PNG files.
# PlotDir = path/to/plots

# Output files which are useful for profiling and debugging. Generally, there
# isn't a reason to use these unless something goes wrong.
# ProfileFile = prof.out
# LogFile = log.out`

type SimulationConfig struct {
	// Required
	Scenario  string
	NumBodies int
	Steps     int

	// Optional
	Input, Output, PlotDir string
	LogFile, ProfileFile   string
	Seed                   int64
	LogInterval            int

	GravConstant, DeltaTime, BHTheta float64
	Radius, EpsilonMultiplier        float64
	Restitution, Correction          float64
}

type SimulationWrapper struct {
	Simulation SimulationConfig
}

func DefaultSimulationWrapper() *SimulationWrapper {
	con := SimulationConfig{}
	con.Scenario = scenario.Galaxy
	con.NumBodies = 10000
	con.Steps = 1000
	con.LogInterval = 100

	con.GravConstant = 1
	con.DeltaTime = 0.01
	con.BHTheta = 0.5
	con.Radius = 0.1
	con.EpsilonMultiplier = 1
	con.Restitution = 0.5
	con.Correction = 0.2
	return &SimulationWrapper{con}
}

// ReadSimulationConfig reads a [Simulation] file on top of the defaults and
// checks the result.
func ReadSimulationConfig(fname string) (*SimulationConfig, error) {
	wrap := DefaultSimulationWrapper()
	if err := gcfg.ReadFileInto(wrap, fname); err != nil {
		return nil, err
	}
	con := &wrap.Simulation
	if err := con.CheckInit(); err != nil { return nil, err }
	return con, nil
}

func (con *SimulationConfig) ValidScenario() bool {
	for _, name := range scenario.Names {
		if con.Scenario == name { return true }
	}
	return false
}
func (con *SimulationConfig) ValidNumBodies() bool {
	return con.NumBodies >= 0
}
func (con *SimulationConfig) ValidSteps() bool {
	return con.Steps >= 0
}
func (con *SimulationConfig) ValidInput() bool {
	return con.Input != ""
}
func (con *SimulationConfig) ValidOutput() bool {
	return con.Output != ""
}
func (con *SimulationConfig) ValidPlotDir() bool {
	return con.PlotDir != ""
}
func (con *SimulationConfig) ValidLogFile() bool {
	return con.LogFile != ""
}
func (con *SimulationConfig) ValidProfileFile() bool {
	return con.ProfileFile != ""
}
func (con *SimulationConfig) ValidLogInterval() bool {
	return con.LogInterval > 0
}
func (con *SimulationConfig) ValidDeltaTime() bool {
	return con.DeltaTime > 0
}
func (con *SimulationConfig) ValidGravConstant() bool {
	return con.GravConstant >= 0
}
func (con *SimulationConfig) ValidBHTheta() bool {
	return con.BHTheta >= 0
}
func (con *SimulationConfig) ValidRadius() bool {
	return con.Radius >= 0
}
func (con *SimulationConfig) ValidEpsilonMultiplier() bool {
	return con.EpsilonMultiplier >= 0
}
func (con *SimulationConfig) ValidRestitution() bool {
	return con.Restitution >= 0 && con.Restitution <= 1
}
func (con *SimulationConfig) ValidCorrection() bool {
	return con.Correction >= 0 && con.Correction <= 1
}

// CheckInit returns an error describing the first invalid value in con.
// Optional values which are unset are not errors.
func (con *SimulationConfig) CheckInit() error {
	if !con.ValidInput() {
		if !con.ValidScenario() {
			return fmt.Errorf(
				"Invalid 'Scenario' value, '%s'. Must be one of %v.",
				con.Scenario, scenario.Names,
			)
		} else if !con.ValidNumBodies() {
			return fmt.Errorf("Invalid 'NumBodies' value, %d.", con.NumBodies)
		}
	}

	switch {
	case !con.ValidSteps():
		return fmt.Errorf("Invalid 'Steps' value, %d.", con.Steps)
	case !con.ValidDeltaTime():
		return fmt.Errorf("Need to specify a positive 'DeltaTime'.")
	case !con.ValidGravConstant():
		return fmt.Errorf("'GravConstant' cannot be negative.")
	case !con.ValidBHTheta():
		return fmt.Errorf("'BHTheta' cannot be negative.")
	case !con.ValidRadius():
		return fmt.Errorf("'Radius' cannot be negative.")
	case !con.ValidEpsilonMultiplier():
		return fmt.Errorf("'EpsilonMultiplier' cannot be negative.")
	case !con.ValidRestitution():
		return fmt.Errorf(
			"'Restitution' must be in the range [0, 1], but is %g.",
			con.Restitution,
		)
	case !con.ValidCorrection():
		return fmt.Errorf(
			"'Correction' must be in the range [0, 1], but is %g.",
			con.Correction,
		)
	case con.LogInterval < 0:
		return fmt.Errorf("'LogInterval' cannot be negative.")
	}
	return nil
}
