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
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/valpere/aclarador/internal/config"
)

var version = "0.3.0"

var (
	v          = viper.New()
	configFile string

	app    config.App
	logger = slog.New(slog.DiscardHandler)
)

var rootCmd = &cobra.Command{
	Use:   "aclarador",
	Short: "Iterative plain-language text refinement",
	Long: `A CLI application that improves the clarity of a text pass after pass
and stops on its own: when quality is good enough, when a pass brings no
meaningful gain, when nothing changes any more, or when the pass budget runs out.

Capabilities: grammar, glossary, style, llm, seo, validator

Use "aclarador refine --help" for refinement options.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(v, configFile)
		if err != nil {
			return err
		}
		app = loaded
		logger, err = newLogger(app.LogLevel, app.LogFormat)
		return err
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newLogger(level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q (expected text or json)", format)
	}
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&configFile, "config", "", "Config file (default ./aclarador.yaml when present)")
	f.String("mode", config.DefaultMode, "Preset: "+strings.Join(config.ModeNames(), ", "))
	f.Int("max-passes", 0, "Maximum number of passes (overrides the mode)")
	f.Float64("convergence-threshold", 0, "Minimum quality gain per pass (overrides the mode)")
	f.Float64("min-quality", 0, "Quality at which refinement stops (overrides the mode)")
	f.StringSlice("capabilities", config.DefaultCapabilities, "Pipeline capabilities")
	f.StringP("language", "l", "auto", "Text language (ISO 639-1) or auto")
	f.String("db", "./data/aclarador.db", "Database path")
	f.Bool("no-cache", false, "Bypass the pass cache")
	f.Duration("cache-ttl", 0, "Pass cache entry lifetime (default 168h)")
	f.String("llm-provider", "ollama", "LLM backend: ollama or anthropic")
	f.String("llm-model", "", "LLM model name")
	f.String("llm-url", "", "Ollama base URL")
	f.Float64("llm-rps", 0, "LLM requests per second")
	f.String("log-level", "info", "Log level: debug, info, warn, error")
	f.String("log-format", "text", "Log format: text or json")

	for key, flag := range map[string]string{
		"mode":                  "mode",
		"max_passes":            "max-passes",
		"convergence_threshold": "convergence-threshold",
		"min_quality_threshold": "min-quality",
		"capabilities":          "capabilities",
		"language":              "language",
		"db":                    "db",
		"no_cache":              "no-cache",
		"cache_ttl":             "cache-ttl",
		"llm.provider":          "llm-provider",
		"llm.model":             "llm-model",
		"llm.url":               "llm-url",
		"llm.rps":               "llm-rps",
		"log_level":             "log-level",
		"log_format":            "log-format",
	} {
		if err := v.BindPFlag(key, f.Lookup(flag)); err != nil {
			panic(err)
		}
	}
}
