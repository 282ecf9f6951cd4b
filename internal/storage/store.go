// Package storage persists a solved OCP trajectory to disk: one run
// directory per Save call holding a JSON metadata file and a CSV
// trajectory, mirroring the teacher's internal/storage layout but for
// SplitSolution stage arrays (q,v,a,u,f) instead of dynamo.Result
// state/control samples.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/hocp/internal/config"
	"github.com/san-kum/hocp/internal/kkt"
	"github.com/san-kum/hocp/internal/stats"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata records one solve's options and outcome; written as
// metadata.json alongside trajectory.csv and iterations.csv.
type RunMetadata struct {
	ID            string    `json:"id"`
	Model         string    `json:"model"`
	Timestamp     time.Time `json:"timestamp"`
	N             int       `json:"n"`
	T             float64   `json:"t"`
	ExitReason    string    `json:"exit_reason"`
	Feasible      bool      `json:"feasible"`
	NumIterations int       `json:"num_iterations"`
	FinalKKTError float64   `json:"final_kkt_error"`
}

// Save writes one run's metadata, solved trajectory, and per-iteration
// Newton log under a fresh directory keyed by model name and timestamp,
// returning that directory's run ID.
func (s *Store) Save(model string, opts *config.Options, times []float64, solution []*kkt.SplitSolution, result *stats.SolverStatistics) (string, error) {
	runID := fmt.Sprintf("%s_%d", model, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:            runID,
		Model:         model,
		Timestamp:     time.Now(),
		N:             opts.N,
		T:             opts.T,
		ExitReason:    string(result.ExitReason),
		Feasible:      result.Feasible,
		NumIterations: result.NumIter(),
		FinalKKTError: result.FinalKKTError(),
	}
	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeTrajectory(filepath.Join(runDir, "trajectory.csv"), times, solution); err != nil {
		return "", err
	}
	if err := writeIterations(filepath.Join(runDir, "iterations.csv"), result.Iterations); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeTrajectory lays out one row per stage: t, q..., v..., a..., u...,
// f... The force-stack width varies by stage (a quiet consequence of
// contact switching), so the header uses the widest row's column count
// and short rows are padded with empty cells.
func writeTrajectory(path string, times []float64, solution []*kkt.SplitSolution) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()

	if len(solution) == 0 {
		return nil
	}

	maxF := 0
	for _, sol := range solution {
		if len(sol.F) > maxF {
			maxF = len(sol.F)
		}
	}

	header := []string{"t"}
	header = append(header, namedColumns("q", len(solution[0].Q))...)
	header = append(header, namedColumns("v", len(solution[0].V))...)
	header = append(header, namedColumns("a", len(solution[0].A))...)
	header = append(header, namedColumns("u", len(solution[0].U))...)
	header = append(header, namedColumns("f", maxF)...)
	if err := w.Write(header); err != nil {
		return err
	}

	for i, sol := range solution {
		row := []string{formatFloat(times[i])}
		row = appendFloats(row, sol.Q)
		row = appendFloats(row, sol.V)
		row = appendFloats(row, sol.A)
		row = appendFloats(row, sol.U)
		row = appendFloats(row, sol.F)
		for len(row) < len(header) {
			row = append(row, "")
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func writeIterations(path string, log []stats.IterationLog) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"iter", "kkt_error", "cost", "violation", "barrier", "alpha", "alpha_dual"}); err != nil {
		return err
	}
	for _, it := range log {
		row := []string{
			strconv.Itoa(it.Iter),
			formatFloat(it.KKTError),
			formatFloat(it.Cost),
			formatFloat(it.ConstraintViolation),
			formatFloat(it.Barrier),
			formatFloat(it.Alpha),
			formatFloat(it.AlphaDual),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func namedColumns(prefix string, n int) []string {
	cols := make([]string, n)
	for i := range cols {
		cols[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return cols
}

func appendFloats(row []string, v []float64) []string {
	for _, x := range v {
		row = append(row, formatFloat(x))
	}
	return row
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}

// List returns the metadata of every run under baseDir, most recent
// first is not guaranteed — callers sort by Timestamp if order matters.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	return runs, nil
}

// Load reads back one run's metadata.
func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadTrajectory reads back one run's trajectory.csv as a time vector
// plus a row-per-stage matrix of the remaining columns (blank cells read
// as 0); no cmd/hocp command calls it.
func (s *Store) LoadTrajectory(runID string) (times []float64, rows [][]float64, err error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "trajectory.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return []float64{}, [][]float64{}, nil
	}

	for _, record := range records[1:] {
		if len(record) == 0 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		times = append(times, t)

		row := make([]float64, 0, len(record)-1)
		for _, cell := range record[1:] {
			if cell == "" {
				row = append(row, 0)
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				v = 0
			}
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	return times, rows, nil
}
