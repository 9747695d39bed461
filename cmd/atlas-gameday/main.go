// Atlas Game Day — инструмент для учений по наблюдаемости и отказоустойчивости
// платформы Atlas.
//
// Использование:
//
//	atlas-gameday [--external] [--api-url URL] [--json] [--output FILE] <scenario> [flags]
//
// Сценарии:
//
//	load-test     Нагрузка на POST /manuscript/sync
//	health-sweep  Проверка health всех сервисов
//	trace-verify  Проверка распределённой трассировки
//	slo-check     Проверка SLO метрик controller
//	all           Все сценарии подряд
//
// Код выхода 0 только если все сценарии прошли.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/atlas/internal/gameday"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	// Ctrl-C прерывает сценарий, но отчёт всё равно пишется
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var jsonOutput bool
	rootCmd := newRootCmd(&jsonOutput)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, gameday.ErrNotPassed) {
			gameday.NewOutput(jsonOutput).Error(err.Error())
		}
		cancel()
		os.Exit(1)
	}
}

func newRootCmd(jsonOutput *bool) *cobra.Command {
	var (
		external      bool
		apiURL        string
		controllerURL string
		outputPath    string
		timeout       time.Duration
	)

	rootCmd := &cobra.Command{
		Use:           "atlas-gameday",
		Short:         "Atlas Platform Game Day toolkit",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&external, "external", false, "Use host endpoints instead of the Atlas network")
	flags.StringVar(&apiURL, "api-url", "", "Override API base URL")
	flags.StringVar(&controllerURL, "controller-url", "", "Override controller base URL")
	flags.BoolVar(jsonOutput, "json", false, "Output report in JSON format")
	flags.StringVar(&outputPath, "output", "", "Write JSON report to file")
	flags.DurationVar(&timeout, "timeout", gameday.DefaultTimeout, "Per-request timeout")

	outputFn := func() *gameday.Output { return gameday.NewOutput(*jsonOutput) }
	runnerFn := func(out *gameday.Output) *gameday.Runner {
		endpoints := gameday.InternalEndpoints()
		if external {
			endpoints = gameday.ExternalEndpoints()
		}
		if apiURL != "" {
			endpoints.API = apiURL
		}
		if controllerURL != "" {
			endpoints.Controller = controllerURL
		}

		return gameday.NewRunner(gameday.RunnerConfig{
			Client:    gameday.NewClient(timeout),
			Endpoints: endpoints,
			Progress:  out.Progress(),
		})
	}

	rootCmd.AddCommand(gameday.NewCommands(runnerFn, outputFn, &outputPath)...)
	return rootCmd
}
