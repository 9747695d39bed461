package gameday

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// ErrNotPassed возвращается, если хотя бы один сценарий не прошёл.
var ErrNotPassed = errors.New("game day: not all scenarios passed")

// RunnerFunc создаёт Runner с учётом глобальных флагов.
type RunnerFunc func(out *Output) *Runner

// NewCommands создаёт команды сценариев. outputPath указывает на значение
// флага --output: если он задан, отчёт записывается в файл.
func NewCommands(runnerFn RunnerFunc, outputFn func() *Output, outputPath *string) []*cobra.Command {
	finish := func(out *Output, results []Result) error {
		report := NewReport(results, time.Now())
		out.Report(report)

		if *outputPath != "" {
			if err := report.WriteFile(*outputPath); err != nil {
				return err
			}
			out.Success(fmt.Sprintf("Results written to: %s", *outputPath))
		}

		if !report.AllPassed() {
			return ErrNotPassed
		}
		return nil
	}

	run := func(fn func(ctx context.Context, r *Runner) []Result) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			out := outputFn()
			results := fn(cmd.Context(), runnerFn(out))
			return finish(out, results)
		}
	}

	return []*cobra.Command{
		newLoadTestCmd(run),
		{
			Use:   "health-sweep",
			Short: "Verify all services are healthy",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, r *Runner) []Result {
				return []Result{r.HealthSweep(ctx)}
			}),
		},
		newTraceVerifyCmd(run),
		{
			Use:   "slo-check",
			Short: "Validate SLO metrics are being captured",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, r *Runner) []Result {
				return []Result{r.SLOCheck(ctx)}
			}),
		},
		newAllCmd(run),
	}
}

type runFunc func(fn func(ctx context.Context, r *Runner) []Result) func(*cobra.Command, []string) error

func newLoadTestCmd(run runFunc) *cobra.Command {
	opts := DefaultLoadTestOptions()

	cmd := &cobra.Command{
		Use:   "load-test",
		Short: "Generate realistic traffic against the API",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, r *Runner) []Result {
			return []Result{r.LoadTest(ctx, opts)}
		}),
	}

	cmd.Flags().IntVar(&opts.Requests, "requests", opts.Requests, "Number of requests")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", opts.Concurrency, "Maximum requests in flight")
	cmd.Flags().StringVar(&opts.URL, "target", "", "Override sync URL")
	cmd.Flags().DurationVar(&opts.MinJitter, "min-jitter", opts.MinJitter, "Minimum pause after each request")
	cmd.Flags().DurationVar(&opts.MaxJitter, "max-jitter", opts.MaxJitter, "Maximum pause after each request")

	return cmd
}

func newTraceVerifyCmd(run runFunc) *cobra.Command {
	wait := DefaultTraceWait

	cmd := &cobra.Command{
		Use:   "trace-verify",
		Short: "Validate distributed tracing connectivity",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, r *Runner) []Result {
			return []Result{r.TraceVerify(ctx, wait)}
		}),
	}

	cmd.Flags().DurationVar(&wait, "wait", wait, "Time to wait for trace propagation")

	return cmd
}

func newAllCmd(run runFunc) *cobra.Command {
	opts := DefaultSuiteOptions()

	cmd := &cobra.Command{
		Use:   "all",
		Short: "Run health-sweep, slo-check, trace-verify and load-test",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, r *Runner) []Result {
			return r.RunAll(ctx, opts)
		}),
	}

	cmd.Flags().IntVar(&opts.LoadTest.Requests, "requests", opts.LoadTest.Requests, "Number of load-test requests")
	cmd.Flags().DurationVar(&opts.TraceWait, "wait", opts.TraceWait, "Time to wait for trace propagation")

	return cmd
}
