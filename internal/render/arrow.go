package render

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/nvandessel/latwalk/internal/simulation"
)

// Arrow output file names.
const (
	TrajectoryArrowFile = "trajectory.arrow"
	DistanceArrowFile   = "distance.arrow"
)

// Schema metadata keys carried by trajectory files.
const (
	metaWalkers = "latwalk.walkers"
	metaMaxStep = "latwalk.max_step"
)

var distanceSchema = arrow.NewSchema([]arrow.Field{
	{Name: "step", Type: arrow.PrimitiveTypes.Int32},
	{Name: "mean", Type: arrow.PrimitiveTypes.Float64},
	{Name: "theory", Type: arrow.PrimitiveTypes.Float64},
}, nil)

func trajectorySchema(walkers, maxStep int) *arrow.Schema {
	md := arrow.NewMetadata(
		[]string{metaWalkers, metaMaxStep},
		[]string{strconv.Itoa(walkers), strconv.Itoa(maxStep)},
	)
	return arrow.NewSchema([]arrow.Field{
		{Name: "step", Type: arrow.PrimitiveTypes.Int32},
		{Name: "walker", Type: arrow.PrimitiveTypes.Int32},
		{Name: "x", Type: arrow.PrimitiveTypes.Int32},
		{Name: "y", Type: arrow.PrimitiveTypes.Int32},
	}, &md)
}

// ArrowRenderer writes the trajectory and distance series as Arrow IPC files
// for analysis in dataframe tools. Frames are not written.
type ArrowRenderer struct {
	dir string
}

// NewArrowRenderer creates a renderer writing under dir.
func NewArrowRenderer(dir string) *ArrowRenderer {
	return &ArrowRenderer{dir: dir}
}

func (r *ArrowRenderer) OnFrame(simulation.Frame) error { return nil }

func (r *ArrowRenderer) OnFinalTrajectory(t simulation.Trajectory) error {
	return r.writeFile(TrajectoryArrowFile, func(w io.WriteSeeker) error {
		return WriteTrajectoryArrow(w, t)
	})
}

func (r *ArrowRenderer) OnDistanceStats(s simulation.DistanceStats) error {
	return r.writeFile(DistanceArrowFile, func(w io.WriteSeeker) error {
		return WriteDistanceArrow(w, s)
	})
}

func (r *ArrowRenderer) writeFile(name string, write func(io.WriteSeeker) error) error {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(r.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return f.Close()
}

// WriteTrajectoryArrow writes one record with a row per (step, walker),
// step-major. The IPC file footer needs a seekable destination.
func WriteTrajectoryArrow(w io.WriteSeeker, t simulation.Trajectory) error {
	walkers := len(t.Paths)
	rows := 0
	if walkers > 0 {
		rows = len(t.Paths[0])
	}
	schema := trajectorySchema(walkers, t.MaxStep)

	b := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer b.Release()

	steps := b.Field(0).(*array.Int32Builder)
	ids := b.Field(1).(*array.Int32Builder)
	xs := b.Field(2).(*array.Int32Builder)
	ys := b.Field(3).(*array.Int32Builder)
	for _, fb := range []*array.Int32Builder{steps, ids, xs, ys} {
		fb.Reserve(rows * walkers)
	}

	for step := 0; step < rows; step++ {
		for i, path := range t.Paths {
			steps.Append(int32(step))
			ids.Append(int32(i))
			xs.Append(int32(path[step].X))
			ys.Append(int32(path[step].Y))
		}
	}

	rec := b.NewRecord()
	defer rec.Release()
	return writeRecord(w, schema, rec)
}

// WriteDistanceArrow writes the mean and theory series.
func WriteDistanceArrow(w io.WriteSeeker, s simulation.DistanceStats) error {
	b := array.NewRecordBuilder(memory.DefaultAllocator, distanceSchema)
	defer b.Release()

	steps := make([]int32, len(s.Time))
	for i, t := range s.Time {
		steps[i] = int32(t)
	}
	b.Field(0).(*array.Int32Builder).AppendValues(steps, nil)
	b.Field(1).(*array.Float64Builder).AppendValues(s.Mean, nil)
	b.Field(2).(*array.Float64Builder).AppendValues(s.Theory, nil)

	rec := b.NewRecord()
	defer rec.Release()
	return writeRecord(w, distanceSchema, rec)
}

func writeRecord(w io.WriteSeeker, schema *arrow.Schema, rec arrow.Record) error {
	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		return fmt.Errorf("creating arrow writer: %w", err)
	}
	if err := fw.Write(rec); err != nil {
		fw.Close()
		return fmt.Errorf("writing record: %w", err)
	}
	return fw.Close()
}

// ReadTrajectoryArrow rebuilds a position table from a file written by
// WriteTrajectoryArrow. The shape in the metadata must match the rows
// actually present, and every (step, walker) cell must appear exactly once.
func ReadTrajectoryArrow(r ipc.ReadAtSeeker) (*simulation.PositionTable, error) {
	fr, err := ipc.NewFileReader(r, ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		return nil, fmt.Errorf("opening arrow file: %w", err)
	}
	defer fr.Close()

	if n := fr.Schema().NumFields(); n != 4 {
		return nil, fmt.Errorf("arrow file has %d columns, want 4", n)
	}
	md := fr.Schema().Metadata()
	walkers, err := metadataInt(md, metaWalkers)
	if err != nil {
		return nil, err
	}
	maxStep, err := metadataInt(md, metaMaxStep)
	if err != nil {
		return nil, err
	}
	if walkers < 1 || walkers > math.MaxInt32 {
		return nil, fmt.Errorf("arrow metadata %s = %d out of range", metaWalkers, walkers)
	}
	if maxStep < 0 || maxStep >= math.MaxInt32 {
		return nil, fmt.Errorf("arrow metadata %s = %d out of range", metaMaxStep, maxStep)
	}

	// Check the row count before allocating so the metadata can't ask for
	// more memory than the file backs.
	want := int64(maxStep+1) * int64(walkers)
	var rows int64
	for i := 0; i < fr.NumRecords(); i++ {
		rec, err := fr.Record(i)
		if err != nil {
			return nil, fmt.Errorf("reading record %d: %w", i, err)
		}
		rows += rec.NumRows()
	}
	if rows != want {
		return nil, fmt.Errorf("arrow file has %d positions, want %d", rows, want)
	}

	table := simulation.NewPositionTable(maxStep+1, walkers)
	filled := make([]bool, want)
	for i := 0; i < fr.NumRecords(); i++ {
		rec, err := fr.Record(i)
		if err != nil {
			return nil, fmt.Errorf("reading record %d: %w", i, err)
		}
		steps, ok1 := rec.Column(0).(*array.Int32)
		ids, ok2 := rec.Column(1).(*array.Int32)
		xs, ok3 := rec.Column(2).(*array.Int32)
		ys, ok4 := rec.Column(3).(*array.Int32)
		if !ok1 || !ok2 || !ok3 || !ok4 {
			return nil, fmt.Errorf("record %d: unexpected column types", i)
		}
		for j := 0; j < int(rec.NumRows()); j++ {
			step, w := int(steps.Value(j)), int(ids.Value(j))
			if step < 0 || step > maxStep || w < 0 || w >= walkers {
				return nil, fmt.Errorf("record %d row %d: (step %d, walker %d) outside table", i, j, step, w)
			}
			cell := step*walkers + w
			if filled[cell] {
				return nil, fmt.Errorf("record %d row %d: duplicate (step %d, walker %d)", i, j, step, w)
			}
			filled[cell] = true
			table.X[step][w] = int(xs.Value(j))
			table.Y[step][w] = int(ys.Value(j))
		}
	}
	return table, nil
}

func metadataInt(md arrow.Metadata, key string) (int, error) {
	idx := md.FindKey(key)
	if idx < 0 {
		return 0, fmt.Errorf("arrow file missing %s metadata", key)
	}
	v, err := strconv.Atoi(md.Values()[idx])
	if err != nil {
		return 0, fmt.Errorf("arrow metadata %s: %w", key, err)
	}
	return v, nil
}
