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
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/valpere/aclarador/internal/detector"
	"github.com/valpere/aclarador/internal/document"
	"github.com/valpere/aclarador/internal/quality"
)

var (
	assessFormat string
	assessOutput string
	assessJobs   int
)

type assessment struct {
	File       string          `json:"file" yaml:"file"`
	Language   string          `json:"language" yaml:"language"`
	Confidence float64         `json:"language_confidence" yaml:"language_confidence"`
	Words      int             `json:"words" yaml:"words"`
	Metrics    quality.Metrics `json:"metrics" yaml:"metrics"`
}

var assessCmd = &cobra.Command{
	Use:   "assess FILE...",
	Short: "Score documents without changing them",
	Long: `Compute the quality metrics of one or more documents.

Files are assessed concurrently. Results keep the order of the arguments.

Example:
  aclarador assess docs/*.md --format yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		det := detector.New()
		results := make([]assessment, len(args))

		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(max(1, assessJobs))
		for i, path := range args {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				doc, err := document.Load(path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				lang := resolveLanguage(det, app.Language, doc.Text)
				model := quality.New(quality.ProfileFor(lang))
				results[i] = assessment{
					File:       path,
					Language:   lang,
					Confidence: det.Confidence(doc.Text, lang),
					Words:      len(quality.Words(doc.Text)),
					Metrics:    model.Assess(doc.Text, nil),
				}
				logger.Debug("assessed", "file", path, "overall", results[i].Metrics.OverallQuality)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		return writeOutput(assessOutput, func(w io.Writer) error {
			return writeEncoded(w, results, assessFormat)
		})
	},
}

func init() {
	rootCmd.AddCommand(assessCmd)

	assessCmd.Flags().StringVarP(&assessFormat, "format", "f", "json", "Output format: json or yaml")
	assessCmd.Flags().StringVarP(&assessOutput, "output", "o", "", "Output file (default stdout)")
	assessCmd.Flags().IntVarP(&assessJobs, "jobs", "j", runtime.NumCPU(), "Files assessed in parallel")
}
