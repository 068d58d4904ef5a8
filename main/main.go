package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/phil-mansfield/swarm"
	"github.com/phil-mansfield/swarm/diag"
	"github.com/phil-mansfield/swarm/dispatch"
	"github.com/phil-mansfield/swarm/io"
	"github.com/phil-mansfield/swarm/scenario"
)

// FileGroup contains utility files for logging and writing profiles to.
type FileGroup struct {
	log, prof *os.File
}

// Close closes the files inside FileGroup.
func (fg *FileGroup) Close() {
	if fg.log != nil {
		err := fg.log.Close()
		if err != nil { log.Fatal(err.Error()) }
	}

	if fg.prof != nil {
		pprof.StopCPUProfile()
		err := fg.prof.Close()
		if err != nil { log.Fatal(err.Error()) }
	}
}

func main() {
	var simulate, exampleConfig string
	vars := map[string]*string{
		"Simulate":      &simulate,
		"ExampleConfig": &exampleConfig,
	}

	flag.IntVar(
		&dispatch.NumCores, "Threads", runtime.NumCPU(),
		"Number of threads used. Default is the number of logical cores.",
	)
	flag.StringVar(
		&simulate, "Simulate", "",
		"Configuration file for [Simulation] mode.",
	)
	flag.StringVar(
		&exampleConfig,
		"ExampleConfig", "", "Prints an example configuration file of the "+
			"specified type to stdout. The only accepted argument is "+
			"'Simulation'.",
	)

	flag.Parse()

	modeName, err := getModeName(vars)
	if err != nil { log.Fatal(err.Error()) }

	switch modeName {
	case "Simulate":
		con, err := io.ReadSimulationConfig(simulate)
		if err != nil { log.Fatal(err.Error()) }
		simulateMain(con)

	case "ExampleConfig":
		switch exampleConfig {
		case "Simulation":
			fmt.Println(io.ExampleSimulationFile)
		default:
			log.Fatal(
				"Unrecognized 'ExampleConfig' argument. The only " +
					"recognized argument is 'Simulation'.",
			)
		}
	default:
		panic("Impossible")
	}
}

// getModeName returns the name of the mode and fails with a descriptive error
// if the user provided less or more than one mode flag.
func getModeName(vars map[string]*string) (string, error) {
	setNames := []string{}

	for name, varPtr := range vars {
		if *varPtr != "" { setNames = append(setNames, name) }
	}

	if len(setNames) == 0 {
		return "", fmt.Errorf("No flags have been set.")
	}

	if len(setNames) > 1 {
		return "", fmt.Errorf(
			"The following flags were set: %s, but swarm only accepts "+
				"one flag at a time.",
			strings.Join(setNames, ", "),
		)
	}

	return setNames[0], nil
}

func simulateMain(con *io.SimulationConfig) {
	fg := setupIO(con)
	defer fg.Close()

	state := initialState(con)
	md, col := engineParams(con)

	e, err := swarm.NewEngine(md, col, nil)
	if err != nil { log.Fatal(err.Error()) }
	e.Log(true)
	if err := e.Reseed(state); err != nil { log.Fatal(err.Error()) }

	g, eps := md.GravConstant, md.EpsilonMultiplier*col.Radius
	hist := &history{}
	var vel []mgl32.Vec2
	record := func(step, active int) {
		vel = e.SyncedVelocities(active, vel)
		sum := diag.Summarize(e.Masses(), e.Positions(active), vel, g, eps)
		hist.add(step, &sum)
		log.Printf(
			"Step %6d: E = %.6g, p = (%.3g, %.3g), contacts = %d",
			step, sum.Energy(), sum.Momentum[0], sum.Momentum[1],
			e.Stats().Contacts,
		)
	}

	start := time.Now()
	active := 0
	record(0, active)
	for step := 1; step <= con.Steps; step++ {
		active = e.Step(active)
		if con.ValidLogInterval() && step%con.LogInterval == 0 {
			record(step, active)
		}
	}

	elapsed := time.Since(start)
	log.Printf(
		"Ran %d steps of %d bodies in %s (%.3g body-steps/s).",
		con.Steps, e.Bodies(), elapsed,
		float64(e.Bodies()*con.Steps)/elapsed.Seconds(),
	)

	if con.ValidOutput() {
		log.Printf("Writing to %s", con.Output)
		vel = e.SyncedVelocities(active, vel)
		err := io.WriteBodyTable(con.Output, e.Masses(), e.Positions(active), vel)
		if err != nil { log.Fatal(err.Error()) }
	}

	if con.ValidPlotDir() {
		plotHistory(hist, con.PlotDir)
		plotPositions(e.Positions(active), con.PlotDir)
		plotExecute()
	}
}

func setupIO(con *io.SimulationConfig) *FileGroup {
	fg := &FileGroup{}
	var err error

	if con.ValidLogFile() {
		fg.log, err = os.Create(con.LogFile)
		if err != nil { log.Fatal(err.Error()) }
		log.SetOutput(fg.log)
	}

	log.Println("Running Simulation main.")

	if con.ValidProfileFile() {
		fg.prof, err = os.Create(con.ProfileFile)
		if err != nil { log.Fatal(err.Error()) }
		err = pprof.StartCPUProfile(fg.prof)
		if err != nil { log.Fatal(err.Error()) }
	}

	return fg
}

func initialState(con *io.SimulationConfig) *scenario.State {
	if con.ValidInput() {
		log.Printf("Reading initial conditions from %s", con.Input)
		s, err := io.ReadBodyTable(con.Input)
		if err != nil { log.Fatal(err.Error()) }
		return s
	}

	s, err := scenario.Generate(
		con.Scenario, con.NumBodies, uint64(con.Seed),
		float32(con.GravConstant),
	)
	if err != nil { log.Fatal(err.Error()) }
	return s
}

func engineParams(
	con *io.SimulationConfig,
) (swarm.Metadata, swarm.CollisionParams) {
	md := swarm.Metadata{
		GravConstant:      float32(con.GravConstant),
		DeltaTime:         float32(con.DeltaTime),
		EpsilonMultiplier: float32(con.EpsilonMultiplier),
		BHTheta:           float32(con.BHTheta),
	}
	col := swarm.CollisionParams{
		Radius:      float32(con.Radius),
		Restitution: float32(con.Restitution),
		Correction:  float32(con.Correction),
	}
	return md, col
}
