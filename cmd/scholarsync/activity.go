package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"scholarsync/internal/storage"
)

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Inspect or clear the activity log",
}

var activityListCmd = &cobra.Command{
	Use:   "list",
	Short: "List completed analyses, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log, closer, err := storage.OpenActivityLog(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closer.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		entries, err := log.List(cmd.Context(), limit)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TIME\tUSER\tACTION\tTITLE")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Time().Format("2006-01-02 15:04:05"), e.Username, e.ActionType, e.PaperTitle)
		}
		return tw.Flush()
	},
}

var activityClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every activity log entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log, closer, err := storage.OpenActivityLog(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closer.Close()
		if err := log.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "Activity log cleared.")
		return nil
	},
}

func init() {
	activityListCmd.Flags().Int("limit", 20, "maximum entries to show (0 for all)")
	activityCmd.AddCommand(activityListCmd, activityClearCmd)
	rootCmd.AddCommand(activityCmd)
}
