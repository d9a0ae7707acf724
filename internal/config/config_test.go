package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreset(t *testing.T) {
	tests := []struct {
		name string
		want RunConfig
	}{
		{"conservative", RunConfig{MaxPasses: 2, ConvergenceThreshold: 0.10, MinQualityThreshold: 0.75}},
		{"balanced", RunConfig{MaxPasses: 3, ConvergenceThreshold: 0.05, MinQualityThreshold: 0.85}},
		{"Aggressive", RunConfig{MaxPasses: 5, ConvergenceThreshold: 0.02, MinQualityThreshold: 0.95}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Preset(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, got.Validate())
		})
	}

	_, err := Preset("reckless")
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestModes_Ordered(t *testing.T) {
	assert.Equal(t, []string{"conservative", "balanced", "aggressive"}, ModeNames())
	for _, m := range Modes() {
		assert.NotEmpty(t, m.Description, m.Name)
	}
}

func TestRunConfig_Validate(t *testing.T) {
	valid := RunConfig{MaxPasses: 3, ConvergenceThreshold: 0.05, MinQualityThreshold: 0.85}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(c *RunConfig)
	}{
		{"zero passes", func(c *RunConfig) { c.MaxPasses = 0 }},
		{"negative passes", func(c *RunConfig) { c.MaxPasses = -1 }},
		{"zero convergence", func(c *RunConfig) { c.ConvergenceThreshold = 0 }},
		{"negative convergence", func(c *RunConfig) { c.ConvergenceThreshold = -0.1 }},
		{"convergence one", func(c *RunConfig) { c.ConvergenceThreshold = 1 }},
		{"zero quality", func(c *RunConfig) { c.MinQualityThreshold = 0 }},
		{"quality above one", func(c *RunConfig) { c.MinQualityThreshold = 1.2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			assert.ErrorIs(t, c.Validate(), ErrInvalidConfiguration)
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	app, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "balanced", app.Mode)
	assert.Equal(t, RunConfig{MaxPasses: 3, ConvergenceThreshold: 0.05, MinQualityThreshold: 0.85}, app.Run)
	assert.Equal(t, DefaultCapabilities, app.Capabilities)
	assert.Equal(t, "auto", app.Language)
	assert.Equal(t, 7*24*time.Hour, app.CacheTTL)
	assert.Equal(t, "ollama", app.LLM.Provider)
	assert.InDelta(t, 1.0, app.LLM.RPS, 1e-9)
}

func TestLoad_FileOverridesPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aclarador.yaml")
	content := `mode: conservative
max_passes: 4
capabilities: [grammar, llm]
cache_ttl: 1h
llm:
  provider: Anthropic
  model: claude-sonnet-4-5
  api_key: from-file
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	app, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "conservative", app.Mode)
	assert.Equal(t, 4, app.Run.MaxPasses)
	assert.InDelta(t, 0.10, app.Run.ConvergenceThreshold, 1e-9)
	assert.InDelta(t, 0.75, app.Run.MinQualityThreshold, 1e-9)
	assert.Equal(t, []string{"grammar", "llm"}, app.Capabilities)
	assert.Equal(t, time.Hour, app.CacheTTL)
	assert.Equal(t, "anthropic", app.LLM.Provider)
	assert.Equal(t, "from-file", app.LLM.APIKey)
}

func TestLoad_Environment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ACLARADOR_MODE", "aggressive")
	t.Setenv("ACLARADOR_MIN_QUALITY_THRESHOLD", "0.9")
	t.Setenv("ACLARADOR_CAPABILITIES", "grammar,style")
	t.Setenv("ACLARADOR_LLM_PROVIDER", "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	app, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, 5, app.Run.MaxPasses)
	assert.InDelta(t, 0.9, app.Run.MinQualityThreshold, 1e-9)
	assert.Equal(t, []string{"grammar", "style"}, app.Capabilities)
	assert.Equal(t, "sk-test", app.LLM.APIKey)
}

func TestLoad_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Run("unknown mode", func(t *testing.T) {
		v := viper.New()
		v.Set("mode", "turbo")
		_, err := Load(v, "")
		assert.ErrorIs(t, err, ErrInvalidConfiguration)
	})

	t.Run("threshold out of range", func(t *testing.T) {
		v := viper.New()
		v.Set("convergence_threshold", 0.0)
		_, err := Load(v, "")
		assert.ErrorIs(t, err, ErrInvalidConfiguration)
	})

	t.Run("missing explicit file", func(t *testing.T) {
		_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidConfiguration)
	})
}
