package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jcorbin/gotrig/internal/engine"
	"github.com/jcorbin/gotrig/internal/logger"
)

type config struct {
	verbose   bool
	noColor   bool
	trace     bool
	stepLimit uint
	timeout   time.Duration

	log *log.Logger
}

func (cfg *config) addFlags(flags *pflag.FlagSet) {
	flags.BoolVarP(&cfg.verbose, "verbose", "v", false, "log compiler decisions")
	flags.BoolVar(&cfg.noColor, "no-color", false, "disable colored logging")
	flags.BoolVar(&cfg.trace, "trace", false, "log every executed instruction")
	flags.UintVar(&cfg.stepLimit, "step-limit", engine.DefaultStepLimit, "limit executed instructions per program, 0 for none")
	flags.DurationVar(&cfg.timeout, "timeout", 0, "time limit per program")
}

func newRootCmd() *cobra.Command {
	var cfg config
	root := &cobra.Command{
		Use:           "gotrig",
		Short:         "Compile and run function pointer programs for a trigger runtime",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg.log = logger.New(cmd.ErrOrStderr(), cfg.verbose || cfg.trace, cfg.noColor)
		},
	}
	cfg.addFlags(root.PersistentFlags())
	root.AddCommand(
		newRunCmd(&cfg),
		newDumpCmd(&cfg),
		newListCmd(),
	)
	return root
}

func main() {
	root := newRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %+v\n", err)
		os.Exit(1)
	}
}
