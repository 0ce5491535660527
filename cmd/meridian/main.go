package main

import (
	"log"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/meridianchess/meridian/pkg/engine"
	"github.com/meridianchess/meridian/pkg/eval"
	"github.com/meridianchess/meridian/pkg/tb"
	"github.com/meridianchess/meridian/pkg/uci"
)

const (
	engineName    = "Meridian"
	engineAuthor  = "Meridian authors"
	engineVersion = "1.0.0"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "meridian [command ...]",
		Short: engineName + " is a UCI chess engine",
		Long: engineName + " is a UCI chess engine. Started without arguments it reads\n" +
			"protocol commands from standard input; trailing arguments are executed\n" +
			"as a single command instead, for example: meridian bench",
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		Run: func(cmd *cobra.Command, args []string) {
			run(args)
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(args []string) {
	var logger = log.New(os.Stderr, "", log.LstdFlags)
	logger.Printf("%v %v %v %v/%v",
		engineName, engineVersion, runtime.Version(), runtime.GOOS, runtime.GOARCH)

	var evaluator = eval.NewEvaluationService()
	var eng = engine.NewEngine(evaluator)
	var tables = tb.NewRegistry()
	var options = []uci.Option{
		&uci.IntOption{Name: "Hash", Min: 1, Max: 65536, Value: &eng.Hash},
		&uci.IntOption{Name: "Threads", Min: 1, Max: runtime.NumCPU(), Value: &eng.Threads},
		&uci.IntOption{Name: "Move Overhead", Min: 0, Max: 5000, Value: &eng.MoveOverhead},
		&uci.ButtonOption{Name: "Clear Hash", OnChange: eng.Clear},
	}
	var protocol = uci.New(engineName, engineAuthor, engineVersion,
		eng, evaluator, tables, options)
	protocol.Run(args)
}
