package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/erain9/chunkbook/pkg/backend/chunked"
	"github.com/erain9/chunkbook/pkg/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. CHUNKBOOK_MAX_CHUNK_SIZE
const EnvPrefix = "CHUNKBOOK"

// Config represents the application configuration
type Config struct {
	Book struct {
		MaxChunkSize int `yaml:"max_chunk_size"`
	} `yaml:"book"`

	Input struct {
		// Path of the event file, empty reads stdin
		Path   string `yaml:"path"`
		Silent bool   `yaml:"silent"`
		Color  bool   `yaml:"color"`
		Verify bool   `yaml:"verify"`
	} `yaml:"input"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	Telemetry struct {
		Metrics bool `yaml:"metrics"`
		Tracing bool `yaml:"tracing"`
	} `yaml:"telemetry"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	cfg := &Config{}
	cfg.Book.MaxChunkSize = chunked.DefaultMaxChunkSize
	cfg.Log.Level = "warn"
	cfg.Log.Format = logging.FormatConsole
	return cfg
}

type flagValues struct {
	configFile   string
	input        string
	silent       bool
	maxChunkSize int
	logLevel     string
	logFormat    string
	color        bool
	verify       bool
	metrics      bool
	tracing      bool
}

func newFlagSet(v *flagValues) *flag.FlagSet {
	fs := flag.NewFlagSet("chunkbook", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&v.configFile, "config", "", "Path to config file (YAML)")
	fs.StringVar(&v.input, "input", "", "Event file to replay (default stdin)")
	fs.StringVar(&v.input, "i", "", "Shorthand for --input")
	fs.BoolVar(&v.silent, "silent", false, "Do not print book dumps")
	fs.BoolVar(&v.silent, "s", false, "Shorthand for --silent")
	fs.IntVar(&v.maxChunkSize, "max-chunk-size", chunked.DefaultMaxChunkSize, "Maximum number of orders per chunk")
	fs.StringVar(&v.logLevel, "log-level", "warn", "Log level: trace, debug, info, warn, error")
	fs.StringVar(&v.logFormat, "log-format", logging.FormatConsole, "Log format: json, console")
	fs.BoolVar(&v.color, "color", false, "Colour the Bids/Asks headers")
	fs.BoolVar(&v.verify, "verify", false, "Check index invariants after every mutation")
	fs.BoolVar(&v.metrics, "metrics", false, "Export metrics to stderr")
	fs.BoolVar(&v.tracing, "tracing", false, "Export trace spans to stderr")

	return fs
}

// Usage returns the flag documentation
func Usage() string {
	var sb strings.Builder
	fs := newFlagSet(&flagValues{})
	fs.SetOutput(&sb)
	sb.WriteString("Usage: chunkbook [flags]\n")
	fs.PrintDefaults()
	return sb.String()
}

// Load builds the configuration from args (without the program name).
// Sources apply in order: defaults, config file, CHUNKBOOK_* environment
// variables, then flags given explicitly on the command line.
func Load(args []string) (*Config, error) {
	var v flagValues
	fs := newFlagSet(&v)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	cfg := Default()

	if v.configFile != "" {
		if err := cfg.loadFile(v.configFile); err != nil {
			return nil, err
		}
	}

	cfg.loadEnv()

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input", "i":
			cfg.Input.Path = v.input
		case "silent", "s":
			cfg.Input.Silent = v.silent
		case "max-chunk-size":
			cfg.Book.MaxChunkSize = v.maxChunkSize
		case "log-level":
			cfg.Log.Level = v.logLevel
		case "log-format":
			cfg.Log.Format = v.logFormat
		case "color":
			cfg.Input.Color = v.color
		case "verify":
			cfg.Input.Verify = v.verify
		case "metrics":
			cfg.Telemetry.Metrics = v.metrics
		case "tracing":
			cfg.Telemetry.Tracing = v.tracing
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(yamlFile, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

func (c *Config) loadEnv() {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if v.IsSet("INPUT") {
		c.Input.Path = v.GetString("INPUT")
	}
	if v.IsSet("SILENT") {
		c.Input.Silent = v.GetBool("SILENT")
	}
	if v.IsSet("COLOR") {
		c.Input.Color = v.GetBool("COLOR")
	}
	if v.IsSet("VERIFY") {
		c.Input.Verify = v.GetBool("VERIFY")
	}
	if v.IsSet("MAX_CHUNK_SIZE") {
		c.Book.MaxChunkSize = v.GetInt("MAX_CHUNK_SIZE")
	}
	if v.IsSet("LOG_LEVEL") {
		c.Log.Level = v.GetString("LOG_LEVEL")
	}
	if v.IsSet("LOG_FORMAT") {
		c.Log.Format = v.GetString("LOG_FORMAT")
	}
	if v.IsSet("METRICS") {
		c.Telemetry.Metrics = v.GetBool("METRICS")
	}
	if v.IsSet("TRACING") {
		c.Telemetry.Tracing = v.GetBool("TRACING")
	}
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	if c.Book.MaxChunkSize < 1 || c.Book.MaxChunkSize > chunked.MaxChunkSizeLimit {
		return fmt.Errorf("max chunk size must be between 1 and %d, got %d", chunked.MaxChunkSizeLimit, c.Book.MaxChunkSize)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil || c.Log.Level == "" {
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		return err
	}
	return nil
}

// IsHelp reports whether err is the result of -h or --help
func IsHelp(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
