package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cognicore/deduce/pkg/deduce"
	"github.com/cognicore/deduce/pkg/deduce/config"
	"github.com/cognicore/deduce/pkg/deduce/render"
	"github.com/cognicore/deduce/pkg/deduce/store/sqlite"
)

type cli struct {
	verbose    bool
	systemPath string
	rulesPath  string
	dbPath     string
	maxDepth   int
	htmlPath   string
	system     string
	limit      int

	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "deduce",
		Short: "Forward-chaining theorem prover",
		Long: `deduce searches for derivations of a target fact from a set of axioms
by applying rewrite rules breadth-first until the target appears, the rules
stop producing new facts, or the depth bound is exceeded.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logCfg := zap.NewProductionConfig()
			if c.verbose {
				logCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			c.logger, err = logCfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Log every search round")
	root.PersistentFlags().StringVar(&c.dbPath, "db", "", "SQLite proof ledger (optional)")
	root.PersistentFlags().IntVar(&c.maxDepth, "max-depth", 0,
		"Depth bound (default: the system's own bound, 8 for built-in MIU; else 100)")

	prove := &cobra.Command{
		Use:   "prove TARGET",
		Short: "Search a rewrite system for a derivation of TARGET",
		Long: `Search a rewrite system for a derivation of TARGET.

Without --system the built-in MIU system is searched with a depth bound of 8.
MIU strings double under rule 2, so the work grows exponentially with
--max-depth; raise it with care.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runProve(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}
	prove.Flags().StringVar(&c.systemPath, "system", "", "Rewrite system YAML (default: built-in MIU)")
	prove.Flags().StringVar(&c.htmlPath, "html", "", "Also write an HTML report to this file")

	path := &cobra.Command{
		Use:   "path SUBJECT OBJECT",
		Short: "Find an inference chain between two terms of a knowledge base",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPath(cmd.Context(), cmd.OutOrStdout(), args[0], args[1])
		},
	}
	path.Flags().StringVar(&c.rulesPath, "rules", "", "Facts and clauses file (required)")
	_ = path.MarkFlagRequired("rules")

	history := &cobra.Command{
		Use:   "history",
		Short: "List recorded searches, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runHistory(cmd.Context(), cmd.OutOrStdout())
		},
	}
	history.Flags().StringVar(&c.system, "system", "", "Only show this system")
	history.Flags().IntVar(&c.limit, "limit", 20, "Maximum records to show")

	root.AddCommand(prove, path, history)
	return root
}

func (c *cli) open(ctx context.Context) (*deduce.Deduce, error) {
	opts := deduce.Options{Logger: c.logger}
	if c.dbPath != "" {
		st, err := sqlite.OpenSQLite(ctx, c.dbPath)
		if err != nil {
			return nil, fmt.Errorf("open ledger: %w", err)
		}
		opts.Store = st
	}
	return deduce.New(opts), nil
}

func (c *cli) load() (*config.Components, error) {
	loader := config.Loader{
		SystemPath: c.systemPath,
		RulesPath:  c.rulesPath,
		DBPath:     c.dbPath,
		MaxDepth:   c.maxDepth,
		Logger:     c.logger,
	}
	return loader.Load()
}

func (c *cli) runProve(ctx context.Context, w io.Writer, target string) error {
	comp, err := c.load()
	if err != nil {
		return err
	}
	d, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	out, err := d.Prove(ctx, comp.System, target, comp.MaxDepth)
	if err != nil {
		return err
	}

	if err := render.Text(w, out.Prover, target, out.Result); err != nil {
		return err
	}

	if c.htmlPath != "" {
		title := fmt.Sprintf("%s: %s", comp.System.Name, target)
		if err := writeHTML(c.htmlPath, title, out); err != nil {
			return err
		}
	}
	return nil
}

func writeHTML(path, title string, out deduce.Outcome) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render.HTML(f, title, out.Prover, out.Record.Target, out.Result); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (c *cli) runPath(ctx context.Context, w io.Writer, subject, object string) error {
	comp, err := c.load()
	if err != nil {
		return err
	}
	d, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	steps, rec, err := d.FindPath(ctx, comp.Inference, "kb", subject, object, comp.KBMaxDepth)
	if err != nil {
		return err
	}

	if len(steps) == 0 {
		fmt.Fprintf(w, "No path from %s to %s (%s)\n", subject, object, rec.Status)
		return nil
	}

	fmt.Fprintf(w, "Path from %s to %s:\n", subject, object)
	for i, s := range steps {
		if s.Rule == "" {
			fmt.Fprintf(w, "  %d. %s(%s, %s)  (known)\n", i+1, s.Relation, s.From, s.To)
			continue
		}
		fmt.Fprintf(w, "  %d. %s(%s, %s)  (by %s)\n", i+1, s.Relation, s.From, s.To, s.Rule)
	}
	return nil
}

func (c *cli) runHistory(ctx context.Context, w io.Writer) error {
	if c.dbPath == "" {
		return fmt.Errorf("--db required")
	}
	d, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	records, err := d.History(ctx, c.system, c.limit)
	if err != nil {
		return err
	}
	for _, r := range records {
		fmt.Fprintf(w, "%s  %-6s %-16s %-14s steps=%d rounds=%d\n",
			r.ID, r.System, r.Target, r.Status, len(r.Rules), r.Rounds)
	}
	return nil
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
