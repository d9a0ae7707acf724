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
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var glossaryCmd = &cobra.Command{
	Use:   "glossary",
	Short: "Manage the plain-language glossary",
	Long: `Add, list, and delete plain-language glossary entries.

The glossary capability replaces every whole-word occurrence of a term with
its plainer equivalent. Useful for jargon, bureaucratic phrasing and
in-house abbreviations.`,
}

var glossaryListLang string

var glossaryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all glossary entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(app.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		entries, err := db.ListGlossaryTerms(cmd.Context(), glossaryListLang)
		if err != nil {
			return fmt.Errorf("failed to list glossary: %w", err)
		}

		if len(entries) == 0 {
			fmt.Println("Glossary is empty.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tLANG\tTERM\tREPLACEMENT")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.ID, e.Lang, e.Term, e.Replacement)
		}
		return w.Flush()
	},
}

var glossaryAddLang string

var glossaryAddCmd = &cobra.Command{
	Use:   "add <term> <replacement>",
	Short: "Add or update a glossary entry",
	Long: `Add a glossary entry mapping a term to its plain-language replacement.

Example:
  aclarador glossary add "a efectos de" "para" --lang es`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if glossaryAddLang == "" {
			return fmt.Errorf("--lang flag is required")
		}

		db, err := openStore(app.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.AddGlossaryTerm(cmd.Context(), glossaryAddLang, args[0], args[1]); err != nil {
			return fmt.Errorf("failed to add glossary entry: %w", err)
		}
		fmt.Printf("Added: [%s] %q → %q\n", glossaryAddLang, args[0], args[1])
		return nil
	},
}

var glossaryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a glossary entry by ID",
	Long: `Delete a glossary entry by its ID (shown in "aclarador glossary list").`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(app.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.DeleteGlossaryTerm(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to delete glossary entry: %w", err)
		}
		fmt.Printf("Deleted glossary entry: %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(glossaryCmd)

	glossaryListCmd.Flags().StringVar(&glossaryListLang, "lang", "", "Filter by language code (e.g. es)")
	glossaryAddCmd.Flags().StringVar(&glossaryAddLang, "lang", "", "Language code of the term (e.g. es)")

	glossaryCmd.AddCommand(glossaryListCmd)
	glossaryCmd.AddCommand(glossaryAddCmd)
	glossaryCmd.AddCommand(glossaryDeleteCmd)
}
