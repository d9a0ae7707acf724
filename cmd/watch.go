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
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/valpere/aclarador/internal/pipeline"
)

const watchDebounce = 500 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Refine a document every time it is saved",
	Long: `Watch the input file and re-run refine whenever it changes.

The output file is rewritten after every run. Stop with Ctrl+C.

Example:
  aclarador watch -i draft.md -o clear.md --mode conservative`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if inputFile == "" || outputFile == "" {
			return fmt.Errorf("--input and --output are required")
		}
		if inputFile == outputFile {
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

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}
		defer watcher.Close()

		// Editors often replace the file instead of writing it, so the
		// directory is watched and events are filtered by name.
		target, err := filepath.Abs(inputFile)
		if err != nil {
			return err
		}
		if err := watcher.Add(filepath.Dir(target)); err != nil {
			return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
		}

		r := newRefinement(db)
		r.memory = pipeline.NewMemoryCache(pipeline.DefaultMemoryCacheSize)
		refresh := func() {
			report, err := r.run(ctx, inputFile)
			if err != nil {
				color.New(color.FgRed).Fprintf(os.Stderr, "refine failed: %v\n", err)
				return
			}
			if err := writeOutput(outputFile, func(w io.Writer) error {
				_, err := io.WriteString(w, report.FinalText)
				return err
			}); err != nil {
				color.New(color.FgRed).Fprintf(os.Stderr, "write failed: %v\n", err)
				return
			}
			printSummary(report)
			st := r.memory.Stats()
			attrs := []any{"size", st.Size, "hit_rate", st.HitRate}
			if r.front != nil {
				attrs = append(attrs, "run_hits", r.front.Hits(), "run_misses", r.front.Misses())
			}
			logger.Debug("memory cache", attrs...)
		}

		refresh()
		color.New(color.FgHiBlack).Fprintf(os.Stderr, "watching %s\n", inputFile)
		return watch(ctx, watcher, target, refresh)
	},
}

// watch calls refresh once per burst of write or create events on target.
func watch(ctx context.Context, w *fsnotify.Watcher, target string, refresh func()) error {
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || name != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				pending = time.After(watchDebounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		case <-pending:
			pending = nil
			refresh()
		}
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input file (.txt, .md, .html)")
	watchCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file")
	watchCmd.Flags().BoolVar(&useLLM, "llm", false, "Add the llm capability")
	watchCmd.Flags().DurationVar(&passTimeout, "pass-timeout", 0, "Time limit for a single pass (0 for none)")
}
