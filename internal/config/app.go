package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "ACLARADOR"

// LLM configures the optional language-model editing capability.
type LLM struct {
	Provider string  `mapstructure:"provider"`
	// Model is empty for the backend's default model.
	Model    string  `mapstructure:"model"`
	URL      string  `mapstructure:"url"`
	APIKey   string  `mapstructure:"api_key"`
	RPS      float64 `mapstructure:"rps"`
}

// App is the resolved application configuration.
type App struct {
	Mode         string
	Run          RunConfig
	DBPath       string
	NoCache      bool
	CacheTTL     time.Duration
	Language     string
	Capabilities []string
	LLM          LLM
	LogLevel     string
	LogFormat    string
}

// DefaultCapabilities is the pipeline capability set used when none is
// configured. The llm capability is opt-in.
var DefaultCapabilities = []string{"grammar", "style", "seo", "glossary", "validator"}

// SetDefaults registers the defaults for every key that has one. The run
// parameters have none: they come from the selected mode unless set
// explicitly.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("mode", DefaultMode)
	v.SetDefault("db", "./data/aclarador.db")
	v.SetDefault("no_cache", false)
	v.SetDefault("cache_ttl", 7*24*time.Hour)
	v.SetDefault("language", "auto")
	v.SetDefault("capabilities", DefaultCapabilities)
	v.SetDefault("llm.provider", "ollama")
	v.SetDefault("llm.url", "http://localhost:11434")
	v.SetDefault("llm.rps", 1.0)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
}

// Load reads configFile (or ./aclarador.yaml when empty and present), the
// ACLARADOR_* environment and whatever flags were bound to v, then resolves
// the run parameters: the selected mode's preset with any explicitly set
// max_passes, convergence_threshold or min_quality_threshold on top.
func Load(v *viper.Viper, configFile string) (App, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("aclarador")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return App{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	app := App{
		Mode:         v.GetString("mode"),
		DBPath:       v.GetString("db"),
		NoCache:      v.GetBool("no_cache"),
		CacheTTL:     v.GetDuration("cache_ttl"),
		Language:     strings.ToLower(v.GetString("language")),
		Capabilities: splitList(v.GetStringSlice("capabilities")),
		LLM: LLM{
			Provider: strings.ToLower(v.GetString("llm.provider")),
			Model:    v.GetString("llm.model"),
			URL:      v.GetString("llm.url"),
			APIKey:   v.GetString("llm.api_key"),
			RPS:      v.GetFloat64("llm.rps"),
		},
		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
	}
	if app.LLM.Provider == "anthropic" && app.LLM.APIKey == "" {
		app.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	run, err := Preset(app.Mode)
	if err != nil {
		return App{}, err
	}
	if v.IsSet("max_passes") {
		run.MaxPasses = v.GetInt("max_passes")
	}
	if v.IsSet("convergence_threshold") {
		run.ConvergenceThreshold = v.GetFloat64("convergence_threshold")
	}
	if v.IsSet("min_quality_threshold") {
		run.MinQualityThreshold = v.GetFloat64("min_quality_threshold")
	}
	if err := run.Validate(); err != nil {
		return App{}, err
	}
	app.Run = run

	return app, nil
}

// splitList flattens comma-separated entries, which is how list values
// arrive from the environment.
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, strings.ToLower(part))
			}
		}
	}
	return out
}
