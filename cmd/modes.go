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

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/valpere/aclarador/internal/config"
)

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "List the refinement presets",
	Run: func(cmd *cobra.Command, args []string) {
		bold := color.New(color.Bold).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		for _, m := range config.Modes() {
			name := m.Name
			if name == config.DefaultMode {
				name += " (default)"
			}
			fmt.Printf("%s\n  %s\n", bold(name), m.Description)
			fmt.Printf("  %s\n", gray(fmt.Sprintf("max_passes=%d convergence_threshold=%.2f min_quality_threshold=%.2f",
				m.Run.MaxPasses, m.Run.ConvergenceThreshold, m.Run.MinQualityThreshold)))
		}
	},
}

func init() {
	rootCmd.AddCommand(modesCmd)
}
