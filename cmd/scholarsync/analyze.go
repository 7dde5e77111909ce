package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"scholarsync/internal/app"
	"scholarsync/internal/models"
	"scholarsync/internal/pipeline"
	"scholarsync/internal/report"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze FILE.pdf",
	Short: "Run the full analysis on a PDF and print the report",
	Long: `Analyze extracts text from the PDF, then metadata, a structured summary,
related work and a faithfulness evaluation. Progress goes to stderr and the
report goes to stdout or --out.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringP("format", "f", "json", "report format: json, yaml or docx")
	analyzeCmd.Flags().StringP("out", "o", "", "write the report to this file instead of stdout")
	analyzeCmd.Flags().String("user", "", "user id recorded in the activity log")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(mustString(cmd, "format"))
	if err != nil {
		return err
	}
	out := mustString(cmd, "out")
	if format == report.FormatDOCX && out == "" {
		return fmt.Errorf("docx reports need --out")
	}

	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	user := models.Anonymous
	if id := mustString(cmd, "user"); id != "" {
		user = models.User{ID: id, Username: id}
	}
	run := a.Orchestrator().Submit(ctx, pipeline.Document{
		Name:      filepath.Base(args[0]),
		Path:      args[0],
		Submitter: user,
	})

	st, err := followRun(ctx, run, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if st.Stage != pipeline.StageCompleted || st.Result == nil {
		return fmt.Errorf("%s", st.Error)
	}
	return writeReport(cmd.OutOrStdout(), out, format, st)
}

// followRun prints each new progress label until the run ends.
func followRun(ctx context.Context, run *pipeline.Run, w io.Writer) (pipeline.State, error) {
	events, stop := run.Subscribe()
	defer stop()
	last := ""
	for ev := range events {
		if ev.State.Progress != "" && ev.State.Progress != last {
			last = ev.State.Progress
			fmt.Fprintln(w, last)
		}
	}
	st, err := run.Wait(ctx)
	if err != nil && st.Stage != pipeline.StageError {
		return st, err
	}
	return st, nil
}

func writeReport(stdout io.Writer, out string, format report.Format, st pipeline.State) error {
	if format == report.FormatDOCX {
		if err := report.SaveDOCX(out, *st.Result); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Report written to %s\n", out)
		return nil
	}
	w := stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		defer f.Close()
		w = f
	}
	return report.Encode(w, format, *st.Result)
}

func mustString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}
