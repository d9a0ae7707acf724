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
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/valpere/aclarador/internal/config"
	"github.com/valpere/aclarador/internal/detector"
	"github.com/valpere/aclarador/internal/pipeline"
	"github.com/valpere/aclarador/internal/refiner"
	"github.com/valpere/aclarador/internal/store"
	"github.com/valpere/aclarador/internal/validator"
)

// openStore opens the sqlite database, creating its directory if needed.
func openStore(path string) (*store.Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// buildRefiner constructs the LLM backend named in the configuration.
func buildRefiner(cfg config.LLM) (refiner.Refiner, error) {
	switch cfg.Provider {
	case "ollama":
		return refiner.NewOllamaRefiner(cfg.Model, cfg.URL), nil
	case "anthropic":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: anthropic provider needs llm.api_key or ANTHROPIC_API_KEY", config.ErrInvalidConfiguration)
		}
		return refiner.NewAnthropicRefiner(cfg.APIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("%w: unknown llm provider %q", config.ErrInvalidConfiguration, cfg.Provider)
	}
}

// buildPipeline wires the default pipeline for the configured capabilities.
// The llm stage is only built when requested. Unless caching is disabled the
// pipeline is wrapped with the sqlite pass cache.
func buildPipeline(db *store.Store, cfg config.App, val *validator.Validator) (pipeline.Pipeline, error) {
	opts := []pipeline.Option{
		pipeline.WithGlossary(db),
		pipeline.WithValidator(val),
		pipeline.WithLogger(logger),
	}
	if slices.Contains(cfg.Capabilities, pipeline.LLM) {
		r, err := buildRefiner(cfg.LLM)
		if err != nil {
			return nil, err
		}
		opts = append(opts, pipeline.WithRefiner(pipeline.NewLLMStage(r, cfg.LLM.RPS, pipeline.DefaultChunkSize)))
	}

	var p pipeline.Pipeline = pipeline.New(opts...)
	if !cfg.NoCache {
		p = pipeline.NewCached(p, db, cfg.CacheTTL).WithLogger(logger)
	}
	return p, nil
}

// resolveLanguage returns the configured language, or the detected one when
// it is "auto". An empty result lets the pipeline decide.
func resolveLanguage(det *detector.Detector, configured, text string) string {
	if configured != "" && configured != "auto" {
		return configured
	}
	if lang, ok := det.DetectISO(text); ok {
		return lang
	}
	return ""
}

func writeEncoded(w io.Writer, v any, format string) error {
	switch strings.ToLower(format) {
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (expected json or yaml)", format)
	}
}

// writeOutput writes data to path, or to stdout when path is empty or "-".
func writeOutput(path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(os.Stdout)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
