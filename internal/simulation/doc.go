// Package simulation drives a set of independent 2D lattice random walkers
// and records their trajectories.
//
// A Simulation owns its walkers and a PositionTable sized up front from the
// configuration. Run advances every walker once per time index, records the
// positions, and hands snapshots to a Renderer. The package performs no I/O;
// writing images, databases or terminal output is the renderer's job.
//
// Usage:
//
//	sim, err := simulation.New(simulation.DefaultConfig(), renderer,
//	    simulation.WithSeed(42),
//	)
//	if err != nil {
//	    return err
//	}
//	if err := sim.Run(); err != nil {
//	    return err
//	}
//	stats := simulation.ComputeDistanceStats(sim.Table())
package simulation
