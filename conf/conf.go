package conf

import (
	"fmt"

	"github.com/squareup/rowcodec/errors"
)

const (
	DefaultSpace       = 1
	DefaultOutput      = OutputText
	DefaultHistoryFile = ".rowtool.history"

	OutputText = "text"
	OutputJSON = "json"
)

// Config is the configuration shared by every rowtool command. It is read from flags and from the
// HCL file given with --config.
type Config struct {
	SchemaDir   string `help:"Directory of *.ddl files declaring the tag and edge schemas" json:"schema_dir,omitempty"`
	Space       int32  `help:"Graph space the schemas are registered in" default:"1" json:"space,omitempty"`
	Output      string `help:"Format decoded rows are printed in" enum:"text,json" default:"text" json:"output,omitempty"`
	Timestamp   int64  `help:"Write timestamp in microseconds for encoded rows, 0 for the current time" json:"timestamp,omitempty"`
	HistoryFile string `help:"Shell history file, relative to the home directory" default:".rowtool.history" json:"history_file,omitempty"`
}

func (c *Config) Validate() error {
	if c.SchemaDir == "" {
		return errors.NewInvalidConfigurationError("SchemaDir must be specified")
	}
	if c.Space < 1 {
		return errors.NewInvalidConfigurationError("Space must be >= 1")
	}
	if c.Output != OutputText && c.Output != OutputJSON {
		return errors.NewInvalidConfigurationError(fmt.Sprintf("Output must be %s or %s", OutputText, OutputJSON))
	}
	if c.Timestamp < 0 {
		return errors.NewInvalidConfigurationError("Timestamp must be >= 0")
	}
	return nil
}

func NewDefaultConfig() *Config {
	return &Config{
		Space:       DefaultSpace,
		Output:      DefaultOutput,
		HistoryFile: DefaultHistoryFile,
	}
}

func NewTestConfig(schemaDir string) *Config {
	cfg := NewDefaultConfig()
	cfg.SchemaDir = schemaDir
	cfg.Timestamp = 1
	return cfg
}
