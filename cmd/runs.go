/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/aclarador/internal/orchestrator"
)

var (
	runsLimit  int
	runsFormat string
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect past refinement runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(app.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		runs, err := db.ListRuns(cmd.Context(), runsLimit)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tWHEN\tSOURCE\tMODE\tLANG\tPASSES\tOUTCOME\tQUALITY")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\t%.2f → %.2f\n",
				r.ID, r.Timestamp.Format("2006-01-02 15:04"), r.Source, r.Mode, r.Language,
				r.Passes, r.Outcome, r.InitialQuality, r.FinalQuality)
		}
		return w.Flush()
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the full report of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(app.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		run, err := db.GetRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		var report orchestrator.Report
		if err := json.Unmarshal(run.Report, &report); err != nil {
			return fmt.Errorf("failed to decode stored report: %w", err)
		}
		return writeOutput("", func(w io.Writer) error {
			return writeEncoded(w, report, runsFormat)
		})
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)

	runsListCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "Number of runs to list (0 for all)")
	runsShowCmd.Flags().StringVarP(&runsFormat, "format", "f", "json", "Output format: json or yaml")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
}
