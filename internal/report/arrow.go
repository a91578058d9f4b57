package report

import (
	"fmt"
	"os"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/nvandessel/structsim/internal/models"
	"github.com/nvandessel/structsim/internal/performance"
)

// TrialSchema is the Arrow schema of the per-trial export.
var TrialSchema = arrow.NewSchema([]arrow.Field{
	{Name: "system", Type: arrow.BinaryTypes.String},
	{Name: "index", Type: arrow.PrimitiveTypes.Int64},
	{Name: "freedom", Type: arrow.PrimitiveTypes.Float64},
	{Name: "cost", Type: arrow.PrimitiveTypes.Float64},
	{Name: "latent", Type: arrow.PrimitiveTypes.Float64},
	{Name: "outcome", Type: arrow.PrimitiveTypes.Float64},
	{Name: "catastrophic", Type: arrow.FixedWidthTypes.Boolean},
}, nil)

// TrialRow is one row of the trial export.
type TrialRow struct {
	System string
	Index  int64
	models.Trial
}

// WriteTrialsArrow writes every trial of res to path as an Arrow IPC file,
// one record batch per architecture. It returns the file size in bytes.
func WriteTrialsArrow(path string, res *performance.Result) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("creating arrow file: %w", err)
	}
	defer f.Close()

	mem := memory.NewGoAllocator()
	w, err := ipc.NewFileWriter(f, ipc.WithSchema(TrialSchema), ipc.WithAllocator(mem))
	if err != nil {
		return 0, fmt.Errorf("opening arrow writer: %w", err)
	}

	for _, s := range res.Systems {
		rec := buildTrialRecord(mem, s.Arch.String(), s.Trials)
		err := w.Write(rec)
		rec.Release()
		if err != nil {
			w.Close()
			return 0, fmt.Errorf("writing %s batch: %w", s.Arch, err)
		}
	}

	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("closing arrow writer: %w", err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("closing arrow file: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat arrow file: %w", err)
	}
	return info.Size(), nil
}

func buildTrialRecord(mem memory.Allocator, system string, trials []models.Trial) arrow.Record {
	b := array.NewRecordBuilder(mem, TrialSchema)
	defer b.Release()

	systems := b.Field(0).(*array.StringBuilder)
	index := b.Field(1).(*array.Int64Builder)
	freedom := b.Field(2).(*array.Float64Builder)
	cost := b.Field(3).(*array.Float64Builder)
	latent := b.Field(4).(*array.Float64Builder)
	outcome := b.Field(5).(*array.Float64Builder)
	catastrophic := b.Field(6).(*array.BooleanBuilder)

	for i, tr := range trials {
		systems.Append(system)
		index.Append(int64(i))
		freedom.Append(tr.Freedom)
		cost.Append(tr.Cost)
		latent.Append(tr.Latent)
		outcome.Append(tr.Outcome)
		catastrophic.Append(tr.Catastrophic)
	}
	return b.NewRecord()
}

// ReadTrialsArrow reads a file written by WriteTrialsArrow.
func ReadTrialsArrow(path string) ([]TrialRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening arrow file: %w", err)
	}
	defer f.Close()

	mem := memory.NewGoAllocator()
	r, err := ipc.NewFileReader(f, ipc.WithAllocator(mem))
	if err != nil {
		return nil, fmt.Errorf("opening arrow reader: %w", err)
	}
	defer r.Close()

	if !r.Schema().Equal(TrialSchema) {
		return nil, fmt.Errorf("unexpected arrow schema: %s", r.Schema())
	}

	var rows []TrialRow
	for i := 0; i < r.NumRecords(); i++ {
		rec, err := r.Record(i)
		if err != nil {
			return nil, fmt.Errorf("reading batch %d: %w", i, err)
		}

		systems := rec.Column(0).(*array.String)
		index := rec.Column(1).(*array.Int64)
		freedom := rec.Column(2).(*array.Float64)
		cost := rec.Column(3).(*array.Float64)
		latent := rec.Column(4).(*array.Float64)
		outcome := rec.Column(5).(*array.Float64)
		catastrophic := rec.Column(6).(*array.Boolean)

		for j := 0; j < int(rec.NumRows()); j++ {
			rows = append(rows, TrialRow{
				System: systems.Value(j),
				Index:  index.Value(j),
				Trial: models.Trial{
					Freedom:      freedom.Value(j),
					Cost:         cost.Value(j),
					Latent:       latent.Value(j),
					Outcome:      outcome.Value(j),
					Catastrophic: catastrophic.Value(j),
				},
			})
		}
	}
	return rows, nil
}
