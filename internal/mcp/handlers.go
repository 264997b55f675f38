package mcp

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nvandessel/latwalk/internal/constants"
	"github.com/nvandessel/latwalk/internal/pathutil"
	"github.com/nvandessel/latwalk/internal/ratelimit"
	"github.com/nvandessel/latwalk/internal/render"
	"github.com/nvandessel/latwalk/internal/sanitize"
	"github.com/nvandessel/latwalk/internal/simulation"
	"github.com/nvandessel/latwalk/internal/store"
)

// seriesSamples bounds the number of points in RunStats.Series.
const seriesSamples = 50

const recentRunsURI = "latwalk://runs/recent"

// registerTools registers all latwalk MCP tools with the server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "walk_simulate",
		Description: "Run a 2D lattice random walk and report mean distance from the origin against sqrt(t)",
	}, s.handleWalkSimulate)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "walk_history",
		Description: "List saved runs, newest first",
	}, s.handleWalkHistory)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "walk_stats",
		Description: "Recompute distance statistics for a saved run and check its table for consistency",
	}, s.handleWalkStats)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "walk_export",
		Description: "Write a saved run's trajectory and distance series as Arrow IPC files under the project root",
	}, s.handleWalkExport)
}

// registerResources registers MCP resources for auto-loading into context.
func (s *Server) registerResources() {
	s.server.AddResource(&sdk.Resource{
		URI:         recentRunsURI,
		Name:        "latwalk-recent-runs",
		Description: "The most recent saved random walk runs with their final mean distance.",
		MIMEType:    "text/markdown",
	}, s.handleRecentRunsResource)
}

// handleRecentRunsResource lists recent runs as a markdown table.
func (s *Server) handleRecentRunsResource(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	runs, err := s.store.ListRuns(ctx, constants.DefaultHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("# Recent runs\n\n")
	if len(runs) == 0 {
		sb.WriteString("No saved runs yet. Use `walk_simulate` with `save: true`.\n")
	} else {
		sb.WriteString("| id | walkers | steps | seed | final mean | sqrt(steps) |\n")
		sb.WriteString("|---|---|---|---|---|---|\n")
		for _, r := range runs {
			fmt.Fprintf(&sb, "| %d | %d | %d | %d | %.3f | %.3f |\n",
				r.ID, r.Walkers, r.Steps, r.Seed, r.FinalMean, sqrtInt(r.Steps))
		}
	}

	return &sdk.ReadResourceResult{
		Contents: []*sdk.ResourceContents{
			{
				URI:      recentRunsURI,
				MIMEType: "text/markdown",
				Text:     sb.String(),
			},
		},
	}, nil
}

// handleWalkSimulate implements the walk_simulate tool.
func (s *Server) handleWalkSimulate(ctx context.Context, req *sdk.CallToolRequest, args WalkSimulateInput) (_ *sdk.CallToolResult, _ WalkSimulateOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("walk_simulate", start, retErr, sanitizeToolParams(map[string]interface{}{
			"walkers":        args.Walkers,
			"steps":          args.Steps,
			"frame_interval": args.FrameInterval,
			"seed":           args.Seed,
			"record_origin":  args.RecordOrigin,
			"save":           args.Save,
			"label":          args.Label,
		}))
	}()

	cfg := simulation.DefaultConfig()
	cfg.ExportFrames = false
	cfg.ExportTrajectory = false
	cfg.ExportDistance = false
	cfg.RecordOrigin = args.RecordOrigin
	if args.Walkers != 0 {
		cfg.Walkers = args.Walkers
	}
	if args.Steps != 0 {
		cfg.Steps = args.Steps
	}
	if args.FrameInterval != 0 {
		cfg.FrameInterval = args.FrameInterval
	}
	if err := cfg.Validate(); err != nil {
		return nil, WalkSimulateOutput{}, err
	}

	if err := s.limits.Check("walk_simulate", ratelimit.SimulationCost(cfg.Walkers, cfg.Steps)); err != nil {
		return nil, WalkSimulateOutput{}, err
	}

	sim, err := simulation.New(cfg, nil, simulation.WithSeed(args.Seed), simulation.WithLogger(s.logger))
	if err != nil {
		return nil, WalkSimulateOutput{}, err
	}
	if err := sim.Run(); err != nil {
		return nil, WalkSimulateOutput{}, fmt.Errorf("simulation failed: %w", err)
	}

	out := WalkSimulateOutput{
		Stats: buildRunStats(sim.Seed(), cfg, sim.Table()),
	}

	if args.Save {
		run := &store.Run{
			Label:  sanitize.Label(args.Label),
			Seed:   sim.Seed(),
			Config: cfg,
			Table:  sim.Table(),
		}
		id, err := s.store.SaveRun(ctx, run)
		if err != nil {
			return nil, WalkSimulateOutput{}, fmt.Errorf("failed to save run: %w", err)
		}
		out.RunID = id
	}

	return nil, out, nil
}

// handleWalkHistory implements the walk_history tool.
func (s *Server) handleWalkHistory(ctx context.Context, req *sdk.CallToolRequest, args WalkHistoryInput) (_ *sdk.CallToolResult, _ WalkHistoryOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("walk_history", start, retErr, sanitizeToolParams(map[string]interface{}{
			"limit": args.Limit,
		}))
	}()

	if err := s.limits.Check("walk_history", 1); err != nil {
		return nil, WalkHistoryOutput{}, err
	}

	limit := args.Limit
	if limit <= 0 {
		limit = constants.DefaultHistoryLimit
	}
	runs, err := s.store.ListRuns(ctx, limit)
	if err != nil {
		return nil, WalkHistoryOutput{}, fmt.Errorf("failed to list runs: %w", err)
	}
	if runs == nil {
		runs = []store.RunSummary{}
	}

	return nil, WalkHistoryOutput{Runs: runs, Count: len(runs)}, nil
}

// handleWalkStats implements the walk_stats tool.
func (s *Server) handleWalkStats(ctx context.Context, req *sdk.CallToolRequest, args WalkStatsInput) (_ *sdk.CallToolResult, _ WalkStatsOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("walk_stats", start, retErr, sanitizeToolParams(map[string]interface{}{
			"run_id": args.RunID,
		}))
	}()

	if err := s.limits.Check("walk_stats", 1); err != nil {
		return nil, WalkStatsOutput{}, err
	}

	run, err := s.store.GetRun(ctx, args.RunID)
	if err != nil {
		return nil, WalkStatsOutput{}, err
	}

	out := WalkStatsOutput{
		RunID: run.ID,
		Label: run.Label,
		Stats: buildRunStats(run.Seed, run.Config, run.Table),
	}
	for _, issue := range store.ValidateRun(run) {
		out.Issues = append(out.Issues, issue.String())
	}
	return nil, out, nil
}

// handleWalkExport implements the walk_export tool.
func (s *Server) handleWalkExport(ctx context.Context, req *sdk.CallToolRequest, args WalkExportInput) (_ *sdk.CallToolResult, _ WalkExportOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("walk_export", start, retErr, sanitizeToolParams(map[string]interface{}{
			"run_id": args.RunID,
			"dir":    args.Dir,
		}))
	}()

	if err := s.limits.Check("walk_export", 1); err != nil {
		return nil, WalkExportOutput{}, err
	}

	dir, err := pathutil.ResolveExportDir(s.root, args.Dir)
	if err != nil {
		return nil, WalkExportOutput{}, err
	}

	run, err := s.store.GetRun(ctx, args.RunID)
	if err != nil {
		return nil, WalkExportOutput{}, err
	}

	r := render.NewArrowRenderer(dir)
	traj := simulation.Trajectory{Paths: run.Table.Paths(run.Config.Steps), MaxStep: run.Config.Steps}
	if err := r.OnFinalTrajectory(traj); err != nil {
		return nil, WalkExportOutput{}, fmt.Errorf("export trajectory: %w", err)
	}
	if err := r.OnDistanceStats(simulation.ComputeDistanceStats(run.Table)); err != nil {
		return nil, WalkExportOutput{}, fmt.Errorf("export distance: %w", err)
	}

	return nil, WalkExportOutput{
		Dir: dir,
		Files: []string{
			filepath.Join(dir, render.TrajectoryArrowFile),
			filepath.Join(dir, render.DistanceArrowFile),
		},
	}, nil
}

// buildRunStats computes the statistics block shared by walk_simulate and walk_stats.
func buildRunStats(seed uint64, cfg simulation.Config, table *simulation.PositionTable) RunStats {
	stats := simulation.ComputeDistanceStats(table)
	last := len(stats.Mean) - 1

	rs := RunStats{
		Seed:         seed,
		Walkers:      cfg.Walkers,
		Steps:        cfg.Steps,
		FinalMean:    stats.Mean[last],
		FinalTheory:  stats.Theory[last],
		MaxDeviation: stats.MaxDeviation(),
	}
	for _, t := range sampleSteps(last, seriesSamples) {
		rs.Series = append(rs.Series, SeriesPoint{Step: t, Mean: stats.Mean[t], Theory: stats.Theory[t]})
	}
	return rs
}

// sampleSteps returns up to n evenly spaced indices in [0, last], always
// including both ends.
func sampleSteps(last, n int) []int {
	if last+1 <= n {
		out := make([]int, last+1)
		for i := range out {
			out[i] = i
		}
		return out
	}
	out := make([]int, n)
	for i := range out {
		out[i] = i * last / (n - 1)
	}
	return out
}

func sqrtInt(n int) float64 {
	return math.Sqrt(float64(n))
}
