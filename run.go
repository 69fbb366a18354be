package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jcorbin/gotrig/internal/engine"
	"github.com/jcorbin/gotrig/internal/flushio"
	"github.com/jcorbin/gotrig/internal/fptr"
	"github.com/jcorbin/gotrig/internal/logger"
	"github.com/jcorbin/gotrig/internal/mem"
	"github.com/jcorbin/gotrig/internal/trig"
)

// report is the outcome of running one demo.
type report struct {
	name   string
	steps  uint
	checks []check
	have   [][]mem.Word
}

func (r report) failed() int {
	n := 0
	for i, c := range r.checks {
		if !slices.Equal(c.want, r.have[i]) {
			n++
		}
	}
	return n
}

func (r report) writeTo(w io.Writer) {
	fmt.Fprintf(w, "%v: %v steps\n", r.name, r.steps)
	for i, c := range r.checks {
		mark := "ok"
		if !slices.Equal(c.want, r.have[i]) {
			mark = fmt.Sprintf("FAIL want %v", c.want)
		}
		fmt.Fprintf(w, "  %v = %v %v\n", c.label, r.have[i], mark)
	}
}

// compile builds d in a new session, and links it.
func (cfg *config) compile(d *demo) (*trig.Image, []check, error) {
	l := cfg.log.With("demo", d.name)
	as := trig.NewAssembler(trig.WithLogf(logger.Logf(l.With("stage", "asm"))))
	s := fptr.NewSession(as, fptr.WithLogf(logger.Logf(l.With("stage", "fptr"))))

	var checks []check
	if err := s.Compile(d.name, func() { checks = d.build(s) }); err != nil {
		return nil, nil, err
	}
	img, err := s.Link()
	if err != nil {
		return nil, nil, err
	}
	l.Debug("linked", "instructions", len(img.Instrs()), "cells", len(img.Words))
	return img, checks, nil
}

// runContext returns ctx limited by the configured timeout, if any.
func (cfg *config) runContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if cfg.timeout > 0 {
		return context.WithTimeout(ctx, cfg.timeout)
	}
	return context.WithCancel(ctx)
}

// exec loads img into a new engine and runs it within the configured limits.
func (cfg *config) exec(ctx context.Context, d *demo, img *trig.Image) (*engine.Engine, error) {
	opts := []engine.Option{engine.WithStepLimit(cfg.stepLimit)}
	if cfg.trace {
		opts = append(opts, engine.WithLogf(logger.Logf(cfg.log.With("demo", d.name, "stage", "exec"))))
	}
	e := engine.New(opts...)
	if err := e.Load(img); err != nil {
		return nil, err
	}

	ctx, cancel := cfg.runContext(ctx)
	defer cancel()
	if err := e.Run(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

func (cfg *config) run(ctx context.Context, d *demo) (report, error) {
	img, checks, err := cfg.compile(d)
	if err != nil {
		return report{}, fmt.Errorf("%v: %w", d.name, err)
	}
	e, err := cfg.exec(ctx, d, img)
	if err != nil {
		return report{}, fmt.Errorf("%v: %w", d.name, err)
	}

	r := report{name: d.name, steps: e.Steps(), checks: checks, have: make([][]mem.Word, len(checks))}
	for i, c := range checks {
		if r.have[i], err = e.Values(c.vars...); err != nil {
			return report{}, fmt.Errorf("%v: %v: %w", d.name, c.label, err)
		}
	}
	return r, nil
}

func newRunCmd(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "run [demo...]",
		Short: "Compile and run demos, all of them by default",
		RunE: func(cmd *cobra.Command, args []string) error {
			sel := demos
			if len(args) > 0 {
				sel = make([]*demo, len(args))
				for i, name := range args {
					d, err := findDemo(name)
					if err != nil {
						return err
					}
					sel[i] = d
				}
			}

			reports := make([]report, len(sel))
			eg, ctx := errgroup.WithContext(cmd.Context())
			for i, d := range sel {
				i, d := i, d
				eg.Go(func() (err error) {
					reports[i], err = cfg.run(ctx, d)
					return err
				})
			}
			if err := eg.Wait(); err != nil {
				return err
			}

			out := flushio.New(cmd.OutOrStdout())
			failed := 0
			for _, r := range reports {
				r.writeTo(out)
				failed += r.failed()
			}
			if err := out.Flush(); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%v checks failed", failed)
			}
			cfg.log.Info("all checks passed", "demos", len(reports))
			return nil
		},
	}
}

func newDumpCmd(cfg *config) *cobra.Command {
	var after bool
	cmd := &cobra.Command{
		Use:   "dump <demo>",
		Short: "Print the linked listing of a demo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := findDemo(args[0])
			if err != nil {
				return err
			}
			img, _, err := cfg.compile(d)
			if err != nil {
				return err
			}
			if after {
				e, err := cfg.exec(cmd.Context(), d, img)
				if err != nil {
					return fmt.Errorf("%v: %w", d.name, err)
				}
				if img, err = e.Snapshot(); err != nil {
					return err
				}
			}
			out := flushio.New(cmd.OutOrStdout())
			if err := img.Dump(out); err != nil {
				return err
			}
			return out.Flush()
		},
	}
	cmd.Flags().BoolVar(&after, "after", false, "list memory as left by running the demo")
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the demos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			width := 0
			for _, d := range demos {
				if len(d.name) > width {
					width = len(d.name)
				}
			}
			var sb strings.Builder
			for _, d := range demos {
				fmt.Fprintf(&sb, "%-*v  %v\n", width, d.name, d.about)
			}
			_, err := io.WriteString(cmd.OutOrStdout(), sb.String())
			return err
		},
	}
}
