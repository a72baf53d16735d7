// Command recordgen generates record mappings for tagged Go structs.
//
//	recordgen ./models
//	recordgen --type Person,Order --watch ./models
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/syssam/sqlrecord/internal/gen"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		types   []string
		header  string
		suffix  string
		workers int
		watch   bool
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "recordgen [packages]",
		Short: "Generate record mappings for Go structs",
		Long: `recordgen loads the given packages, finds structs with sqlrecord field
tags (or the structs named with --type) and writes a <name>_record.go file next
to each with its property mapping, table description and record constructor.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			opts := []gen.Option{gen.WithHeader(header), gen.WithSuffix(suffix)}
			if len(args) > 0 {
				opts = append(opts, gen.WithPatterns(args...))
			}
			if len(types) > 0 {
				opts = append(opts, gen.WithTypes(types...))
			}
			if cmd.Flags().Changed("workers") {
				opts = append(opts, gen.WithWorkers(workers))
			}
			cfg, err := gen.NewConfig(opts...)
			if err != nil {
				return err
			}

			generate := func(ctx context.Context) ([]string, error) {
				written, err := gen.Run(ctx, cfg, log)
				if err != nil {
					return nil, err
				}
				for _, path := range written {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
				}
				return written, nil
			}
			written, err := generate(cmd.Context())
			if err != nil || !watch {
				return err
			}

			dirs := uniqueDirs(written)
			if len(dirs) == 0 {
				return errors.New("nothing generated, nothing to watch")
			}
			w := gen.NewWatcher(cfg, dirs, func(ctx context.Context) {
				if _, err := generate(ctx); err != nil {
					log.Error("generation failed", "error", err)
				}
			}, log)
			if err := w.Watch(cmd.Context()); err != nil && cmd.Context().Err() == nil {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&types, "type", "t", nil, "struct names to generate (default: all tagged structs)")
	cmd.Flags().StringVar(&header, "header", gen.DefaultHeader, "header comment of generated files")
	cmd.Flags().StringVar(&suffix, "suffix", gen.DefaultSuffix, "generated file name suffix")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "parallel file writes (default: GOMAXPROCS)")
	cmd.Flags().BoolVar(&watch, "watch", false, "regenerate when sources change")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	return cmd
}

func uniqueDirs(paths []string) []string {
	seen := map[string]bool{}
	var dirs []string
	for _, p := range paths {
		d := filepath.Dir(p)
		if !seen[d] {
			seen[d] = true
			dirs = append(dirs, d)
		}
	}
	return dirs
}
