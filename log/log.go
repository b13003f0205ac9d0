package log

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/squareup/rowcodec/errors"
)

// Config contains the configuration for the global logger.
type Config struct {
	Format string `help:"Format to write log lines in" enum:"text,json" default:"text"`
	Level  string `help:"Lowest log level that will be emitted" enum:"trace,debug,info,warn,error" default:"warn"`
	File   string `help:"File to append logs to. If left blank, or '-', logs will go to stderr" default:"-"`
}

// Configure the global logger. Row output goes to stdout, so logs default to stderr. The returned
// closer is the log file, if one was opened.
func (cfg *Config) Configure() (io.Closer, error) {
	var closer io.Closer
	if cfg.File != "" && cfg.File != "-" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		log.SetOutput(f)
		closer = f
	} else {
		log.SetOutput(os.Stderr)
	}
	if cfg.Level != "" {
		level, err := log.ParseLevel(cfg.Level)
		if err != nil {
			return closer, errors.NewInvalidConfigurationError(err.Error())
		}
		log.SetLevel(level)
	}
	switch cfg.Format {
	case "", "text":
		log.SetFormatter(&log.TextFormatter{})
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		return closer, errors.NewInvalidConfigurationError("log format must be either text or json")
	}
	return closer, nil
}
