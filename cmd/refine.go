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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/valpere/aclarador/internal"
	"github.com/valpere/aclarador/internal/detector"
	"github.com/valpere/aclarador/internal/document"
	"github.com/valpere/aclarador/internal/orchestrator"
	"github.com/valpere/aclarador/internal/pipeline"
	"github.com/valpere/aclarador/internal/store"
	"github.com/valpere/aclarador/internal/validator"
)

var (
	inputFile    string
	outputFile   string
	reportFile   string
	reportFormat string
	useLLM       bool
	passTimeout  time.Duration
)

var refineCmd = &cobra.Command{
	Use:   "refine",
	Short: "Refine a document until it is clear enough",
	Long: `Refine a plain text, Markdown or HTML document pass after pass.

Each pass runs the selected capabilities over the output of the previous one.
Refinement stops when quality reaches the threshold, when a pass changes
nothing, when the quality gain of a pass falls below the convergence
threshold, or when the pass budget is used up.

Modes: conservative, balanced (default), aggressive

Examples:
  aclarador refine -i draft.md -o clear.md
  aclarador refine -i page.html --mode aggressive --report report.yaml --format yaml
  aclarador refine -i notes.txt --llm --llm-provider anthropic`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if inputFile == "" {
			return fmt.Errorf("--input is required")
		}
		if outputFile != "" && inputFile == outputFile {
			return fmt.Errorf("input file and output file cannot be the same")
		}
		if useLLM {
			app.Capabilities = append(app.Capabilities, "llm")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		db, err := openStore(app.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		r := newRefinement(db)
		report, err := r.run(ctx, inputFile)
		if err != nil {
			return err
		}
		if err := writeOutput(outputFile, func(w io.Writer) error {
			_, err := io.WriteString(w, report.FinalText)
			return err
		}); err != nil {
			return err
		}
		if reportFile != "" {
			if err := writeOutput(reportFile, func(w io.Writer) error {
				return writeEncoded(w, report, reportFormat)
			}); err != nil {
				return err
			}
		}
		printSummary(report)
		return nil
	},
}

// refinement holds what a refine run needs beyond the document. The
// detector and validator are expensive to build and are shared by every run
// of a watch session.
type refinement struct {
	db        *store.Store
	detector  *detector.Detector
	validator *validator.Validator
	// memory, when set, fronts the sqlite pass cache.
	memory *pipeline.MemoryCache
	// front is the memory layer of the latest run.
	front *pipeline.Cached
}

func newRefinement(db *store.Store) *refinement {
	det := detector.New()
	return &refinement{db: db, detector: det, validator: validator.New(det)}
}

func (r *refinement) run(ctx context.Context, path string) (*orchestrator.Report, error) {
	doc, err := document.Load(path)
	if err != nil {
		return nil, err
	}

	p, err := buildPipeline(r.db, app, r.validator)
	if err != nil {
		return nil, err
	}
	if r.memory != nil && !app.NoCache {
		r.front = pipeline.NewCached(p, r.memory, app.CacheTTL).WithLogger(logger)
		p = r.front
	}
	lang := resolveLanguage(r.detector, app.Language, doc.Text)

	logger.Info("refining", "input", path, "format", doc.Format, "language", lang, "mode", app.Mode)

	o := orchestrator.New(p,
		orchestrator.WithLogger(logger),
		orchestrator.WithCapabilities(app.Capabilities...),
		orchestrator.WithLanguage(lang),
		orchestrator.WithWeb(doc.Web()),
		orchestrator.WithPassTimeout(passTimeout),
	)
	report, err := o.Run(ctx, doc.Text, app.Run)
	if err != nil {
		return nil, err
	}

	if err := r.save(ctx, path, lang, report); err != nil {
		logger.Warn("failed to store run", "error", err)
	}
	return report, nil
}

func (r *refinement) save(ctx context.Context, source, lang string, report *orchestrator.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return r.db.SaveRun(ctx, internal.RunRecord{
		ID:             uuid.NewString(),
		Source:         source,
		Mode:           app.Mode,
		Language:       lang,
		OriginalText:   report.OriginalText,
		FinalText:      report.FinalText,
		Passes:         report.OverallMetrics.TotalPasses,
		Outcome:        string(report.Outcome),
		StopReason:     report.StopReason,
		InitialQuality: report.OverallMetrics.InitialQuality,
		FinalQuality:   report.OverallMetrics.FinalQuality,
		Report:         data,
		Timestamp:      time.Now(),
	})
}

func printSummary(report *orchestrator.Report) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	m := report.OverallMetrics
	outcome := yellow(report.Outcome)
	if m.ConvergenceAchieved {
		outcome = green(report.Outcome)
	}

	fmt.Fprintf(os.Stderr, "%s %s (%s)\n", cyan("Outcome:"), outcome, report.StopReason)
	fmt.Fprintf(os.Stderr, "%s %d in %s\n", cyan("Passes:"), m.TotalPasses, time.Duration(m.TotalTime).Round(time.Millisecond))
	fmt.Fprintf(os.Stderr, "%s %.2f → %.2f (%+.2f)\n", cyan("Quality:"), m.InitialQuality, m.FinalQuality, m.QualityImprovement)
	fmt.Fprintf(os.Stderr, "%s %d\n", cyan("Improvements:"), m.TotalImprovements)
	for _, rec := range report.Recommendations {
		fmt.Fprintf(os.Stderr, "  • %s\n", rec)
	}
}

func init() {
	rootCmd.AddCommand(refineCmd)

	refineCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input file (.txt, .md, .html)")
	refineCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default stdout)")
	refineCmd.Flags().StringVarP(&reportFile, "report", "r", "", "Write the refinement report to this file")
	refineCmd.Flags().StringVarP(&reportFormat, "format", "f", "json", "Report format: json or yaml")
	refineCmd.Flags().BoolVar(&useLLM, "llm", false, "Add the llm capability")
	refineCmd.Flags().DurationVar(&passTimeout, "pass-timeout", 0, "Time limit for a single pass (0 for none)")

	_ = refineCmd.MarkFlagRequired("input")
}
