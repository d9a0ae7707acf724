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

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the pass cache",
	Long: `List, inspect, and clear the SQLite pass cache.

Every pipeline pass is cached under a hash of the normalized input text, the
capabilities, the language and the web flag. Repeated runs over unchanged
text are served from the cache.`,
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all pass cache entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(app.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		entries, err := db.ListCache(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list entries: %w", err)
		}

		if len(entries) == 0 {
			fmt.Println("Pass cache is empty.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tSIZE\tHITS\tLAST USED\tEXPIRES\tINVALID")
		for _, e := range entries {
			expires := "never"
			if e.ExpiresAt != nil {
				expires = e.ExpiresAt.Format("2006-01-02 15:04")
			}
			fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\t%v\n",
				e.Key[:min(16, len(e.Key))], e.Size, e.Hits,
				e.LastUsed.Format("2006-01-02 15:04"), expires, e.Invalidated)
		}
		return w.Flush()
	},
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show pass cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(app.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get stats: %w", err)
		}

		fmt.Printf("Total entries:   %d\n", stats.TotalEntries)
		fmt.Printf("Active entries:  %d\n", stats.ActiveEntries)
		fmt.Printf("Expired entries: %d\n", stats.ExpiredEntries)
		fmt.Printf("Invalid entries: %d\n", stats.InvalidEntries)
		fmt.Printf("Total hits:      %d\n", stats.TotalHits)
		return nil
	},
}

var cacheInvalidateCmd = &cobra.Command{
	Use:   "invalidate <key-prefix>",
	Short: "Stop serving a cache entry without deleting it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(app.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		key, err := db.InvalidateCache(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to invalidate entry: %w", err)
		}
		fmt.Printf("Invalidated entry: %s\n", key)
		return nil
	},
}

var cacheDeleteCmd = &cobra.Command{
	Use:   "delete <key-prefix>",
	Short: "Delete a pass cache entry by key or the prefix shown by list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(app.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		key, err := db.DeleteCache(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to delete entry: %w", err)
		}
		fmt.Printf("Deleted entry: %s\n", key)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all entries from the pass cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(app.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := db.ClearCache(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		fmt.Printf("Cleared %d entries from the pass cache.\n", n)
		return nil
	},
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove expired entries from the pass cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(app.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := db.PurgeExpired(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to purge cache: %w", err)
		}
		fmt.Printf("Purged %d expired entries.\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)

	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheInvalidateCmd)
	cacheCmd.AddCommand(cacheDeleteCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cachePurgeCmd)
}
