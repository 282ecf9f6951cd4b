// hocp is the command-line front end for the hybrid multiple-shooting
// OCP solver: run named scenarios, inspect past runs, and tune a
// switching time. Grounded on the teacher's cmd/dynsim/main.go cobra
// command tree.
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/hocp/internal/kkt"
	"github.com/san-kum/hocp/internal/scenario"
	"github.com/san-kum/hocp/internal/stats"
	"github.com/san-kum/hocp/internal/storage"
	"github.com/san-kum/hocp/internal/tuning"
)

var (
	dataDir string
	fps     int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hocp",
		Short: "hybrid direct-multiple-shooting OCP solver for contact-switching robots",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".hocp", "data directory")

	solveCmd := &cobra.Command{
		Use:   "solve [scenario]",
		Short: "solve one registered scenario and save its trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  runSolve,
	}

	demoCmd := &cobra.Command{
		Use:   "demo [scenario]",
		Short: "solve a scenario and print a summary, without saving it",
		Args:  cobra.ExactArgs(1),
		RunE:  runDemo,
	}

	listScenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "list registered scenarios",
		RunE:  runListScenarios,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  runList,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print a saved run's metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runExport,
	}

	benchCmd := &cobra.Command{
		Use:   "bench [scenario]",
		Short: "time one scenario's solve, without saving it",
		Args:  cobra.ExactArgs(1),
		RunE:  runBench,
	}

	liveCmd := &cobra.Command{
		Use:   "live [scenario]",
		Short: "solve a scenario and replay its Newton-iteration log interactively",
		Args:  cobra.ExactArgs(1),
		RunE:  runLiveCmd,
	}

	sketchCmd := &cobra.Command{
		Use:   "sketch [scenario]",
		Short: "solve a scenario and sketch its solved configuration trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  runSketch,
	}
	sketchCmd.Flags().IntVar(&fps, "fps", 10, "playback frame rate")

	tuneCmd := &cobra.Command{
		Use:   "tune [scenario]",
		Short: "grid-search the first contact event's switching time, §8 S4",
		Args:  cobra.ExactArgs(1),
		RunE:  runTune,
	}

	rootCmd.AddCommand(solveCmd, demoCmd, listScenariosCmd, listCmd, exportCmd, benchCmd, liveCmd, sketchCmd, tuneCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildAndSolve(name string) (*scenario.Scenario, *stats.SolverStatistics, []float64, []*kkt.SplitSolution, error) {
	r := scenario.NewRegistry()
	sc, err := r.Get(name)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	s, disc, _, _, err := sc.Build()
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("build: %w", err)
	}

	q0, v0 := sc.InitState()
	s.InitInteriorPoint()
	result := s.Solve(q0, v0)

	times := make([]float64, s.N())
	solution := make([]*kkt.SplitSolution, s.N())
	for i := 0; i < s.N(); i++ {
		times[i] = disc.Grid(i).T
		solution[i] = s.GetSolution(i)
	}
	return sc, result, times, solution, nil
}

func runSolve(cmd *cobra.Command, args []string) error {
	name := args[0]
	sc, result, times, solution, err := buildAndSolve(name)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(sc.Options.Model, sc.Options, times, solution, result)
	if err != nil {
		return err
	}

	printResultSummary(name, result, times, solution)
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func runDemo(cmd *cobra.Command, args []string) error {
	name := args[0]
	_, result, times, solution, err := buildAndSolve(name)
	if err != nil {
		return err
	}
	printResultSummary(name, result, times, solution)
	return nil
}

func printResultSummary(name string, result *stats.SolverStatistics, times []float64, solution []*kkt.SplitSolution) {
	fmt.Printf("scenario: %s\n", name)
	fmt.Printf("exit reason: %s\n", result.ExitReason)
	fmt.Printf("feasible: %v\n", result.Feasible)
	fmt.Printf("converged: %v\n", result.Converged())
	fmt.Printf("iterations: %d\n", result.NumIter())
	fmt.Printf("final kkt error: %.6e\n", result.FinalKKTError())

	if chatter, ok := torqueChatter(times, solution); ok {
		fmt.Printf("torque chatter: dominant freq %.2f Hz, high-freq energy ratio %.4f\n",
			chatter.DominantFreqHz, chatter.HighFreqRatio)
	}
}

// torqueChatter extracts the first actuated control channel across every
// non-terminal stage and runs it through stats.AnalyzeTorqueChatter,
// flagging a solve whose control trajectory chatters between samples
// rather than settling — a symptom worth surfacing at the CLI alongside
// the KKT/feasibility summary. ok is false when the trajectory is too
// short or has no control channel at all (e.g. the terminal-only stage
// of a degenerate horizon).
func torqueChatter(times []float64, solution []*kkt.SplitSolution) (stats.TorqueChatter, bool) {
	var u []float64
	for _, sol := range solution {
		if len(sol.U) == 0 {
			continue
		}
		u = append(u, sol.U[0])
	}
	if len(u) < 2 || len(times) < 2 {
		return stats.TorqueChatter{}, false
	}
	dt := times[1] - times[0]
	if dt <= 0 {
		return stats.TorqueChatter{}, false
	}
	return stats.AnalyzeTorqueChatter(u, dt, 0.5), true
}

func runListScenarios(cmd *cobra.Command, args []string) error {
	r := scenario.NewRegistry()
	names := r.Names()
	sort.Strings(names)
	for _, name := range names {
		sc, err := r.Get(name)
		if err != nil {
			continue
		}
		fmt.Printf("%-28s %s\n", name, sc.Description)
	}
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tEXIT\tFEASIBLE\tITER\tKKT_ERROR")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%v\t%d\t%.3e\n",
			run.ID, run.Model, run.Timestamp.Format("2006-01-02 15:04:05"),
			run.ExitReason, run.Feasible, run.NumIterations, run.FinalKKTError)
	}
	return w.Flush()
}

func runExport(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	fmt.Printf("%+v\n", *meta)
	return nil
}

func runBench(cmd *cobra.Command, args []string) error {
	name := args[0]
	start := time.Now()
	_, result, _, _, err := buildAndSolve(name)
	elapsed := time.Since(start)
	if err != nil {
		return err
	}
	fmt.Printf("scenario: %s\n", name)
	fmt.Printf("elapsed: %v\n", elapsed)
	fmt.Printf("iterations: %d\n", result.NumIter())
	if result.NumIter() > 0 {
		fmt.Printf("avg iteration time: %v\n", elapsed/time.Duration(result.NumIter()))
	}
	fmt.Printf("exit reason: %s\n", result.ExitReason)
	return nil
}

func runLiveCmd(cmd *cobra.Command, args []string) error {
	name := args[0]
	_, result, _, _, err := buildAndSolve(name)
	if err != nil {
		return err
	}
	return runLive(name, result)
}

func runSketch(cmd *cobra.Command, args []string) error {
	name := args[0]
	sc, _, times, solution, err := buildAndSolve(name)
	if err != nil {
		return err
	}
	sketchTrajectory(sc.Options.Model, times, solution, fps)
	return nil
}

func runTune(cmd *cobra.Command, args []string) error {
	name := args[0]
	r := scenario.NewRegistry()
	base := func() *scenario.Scenario {
		sc, err := r.Get(name)
		if err != nil {
			return nil
		}
		return sc
	}
	if base() == nil {
		return fmt.Errorf("tune: unknown scenario %q", name)
	}
	if len(base().Events) == 0 {
		return fmt.Errorf("tune: scenario %q has no contact event to refine", name)
	}

	candidates := make([]float64, 0, 10)
	t0, t1 := base().Events[0].Time*0.2, base().Events[0].Time*1.8
	if t0 <= 0 {
		t0 = 0.05
	}
	for i := 0; i < 10; i++ {
		candidates = append(candidates, t0+float64(i)*(t1-t0)/9)
	}

	g := tuning.NewGridSearch([]string{"t_e"}, [][]float64{candidates})
	best, score, err := g.Search(context.Background(), tuning.SwitchingTimeEvaluator(base))
	if err != nil {
		return err
	}

	fmt.Printf("best t_e: %.4f\n", best["t_e"])
	fmt.Printf("iterations to converge: %.0f\n", score)
	return nil
}
