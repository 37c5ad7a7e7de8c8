package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/callscope/internal/analyzer"
	"github.com/ziadkadry99/callscope/internal/client"
	"github.com/ziadkadry99/callscope/internal/config"
	"github.com/ziadkadry99/callscope/internal/graph"
	"github.com/ziadkadry99/callscope/internal/progress"
	"github.com/ziadkadry99/callscope/internal/snapshots"
	"github.com/ziadkadry99/callscope/internal/state"
	"github.com/ziadkadry99/callscope/internal/termview"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <dir>",
	Short: "Extract the call graph of a Java or Go source tree",
	Long: `Analyzes the source tree at <dir> and prints a summary of its most connected
functions. Go modules are analyzed with SSA and type information; any other tree
is scanned for Java sources. Use --out to write the full graph document, and
--server to run the analysis on a callscope server, which saves the snapshot.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("blacklist", "", "file of method names to exclude, one per line")
	analyzeCmd.Flags().StringP("out", "o", "", "write the graph JSON to this file (- for stdout)")
	analyzeCmd.Flags().Bool("save", false, "store the graph as a snapshot in the database")
	analyzeCmd.Flags().Bool("all-classes", false, "record calls from every Java class, not only *Action classes")
	analyzeCmd.Flags().Bool("external", false, "keep Go calls into packages outside the module")
	analyzeCmd.Flags().String("server", "", "run the analysis on a callscope server instead of locally")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	dir := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var (
		res    *analyzer.Result
		snapID string
	)
	st := state.Apply(state.New(), state.LoadStarted{})
	if serverURL, _ := cmd.Flags().GetString("server"); serverURL != "" {
		res, snapID, err = client.New(serverURL).Analyze(ctx, dir)
	} else {
		res, err = analyzeLocal(ctx, cmd, cfg, dir)
	}
	if err != nil {
		st = state.Apply(st, state.LoadFailed{Context: "Error analyzing path", Err: err})
		return errors.New(st.Banner)
	}
	st = state.Apply(st, state.GraphLoaded{Graph: res.Graph(), Source: dir, Delimiter: res.Delimiter})
	g := st.Graph

	out, _ := cmd.Flags().GetString("out")
	if out != "" {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding graph: %w", err)
		}
		if out == "-" {
			if _, err := os.Stdout.Write(append(data, '\n')); err != nil {
				return err
			}
		} else {
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			fmt.Fprintf(os.Stderr, "Graph written to %s\n", out)
		}
	}

	if save, _ := cmd.Flags().GetBool("save"); save && snapID == "" {
		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()
		snap, err := snapshots.NewStore(database).Save(ctx, dir, g, snapshots.Meta{
			Language:  res.Language,
			Delimiter: res.Delimiter,
		})
		if err != nil {
			return err
		}
		snapID = snap.ID
	}
	if snapID != "" {
		fmt.Fprintf(os.Stderr, "Snapshot %s saved\n", snapID)
	}

	// Keep stdout clean when it carries the graph document.
	w := os.Stdout
	if out == "-" {
		w = os.Stderr
	}
	v := termview.New(w)
	fmt.Fprintln(w, v.Summary(dir, g.Stats(), st.TotalCalls()))
	fmt.Fprint(w, v.Ranking(graph.TopK(st.Degrees, 10)))
	return nil
}

// analyzeLocal runs the analyzer in-process with the command's flags.
func analyzeLocal(ctx context.Context, cmd *cobra.Command, cfg *config.Config, dir string) (*analyzer.Result, error) {
	blacklistFile, _ := cmd.Flags().GetString("blacklist")
	opts, err := analysisOptions(cfg, blacklistFile)
	if err != nil {
		return nil, err
	}
	if all, _ := cmd.Flags().GetBool("all-classes"); all {
		opts.ActionsOnly = false
	}
	if ext, _ := cmd.Flags().GetBool("external"); ext {
		opts.IncludeExternal = true
	}
	opts.Reporter = progress.NewReporter("Analyzing")
	return analyzer.Analyze(ctx, dir, opts)
}
