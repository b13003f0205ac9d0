package log

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/squareup/rowcodec/errors"
	"github.com/stretchr/testify/require"
)

func resetLogger() {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{})
	log.SetLevel(log.InfoLevel)
}

func TestConfigureJSONFile(t *testing.T) {
	defer resetLogger()
	file := filepath.Join(t.TempDir(), "rowtool.log")
	cfg := Config{Format: "json", Level: "debug", File: file}
	closer, err := cfg.Configure()
	require.NoError(t, err)
	require.NotNil(t, closer)

	log.Debugf("decoded %d rows", 3)
	log.Tracef("not emitted")
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &line))
	require.Equal(t, "decoded 3 rows", line["msg"])
	require.Equal(t, "debug", line["level"])
}

func TestConfigureDefaults(t *testing.T) {
	defer resetLogger()
	cfg := Config{Format: "text", Level: "warn", File: "-"}
	closer, err := cfg.Configure()
	require.NoError(t, err)
	require.Nil(t, closer)
	require.Equal(t, log.WarnLevel, log.GetLevel())
}

func TestConfigureInvalid(t *testing.T) {
	defer resetLogger()
	_, err := (&Config{Format: "xml"}).Configure()
	require.True(t, errors.HasCode(err, errors.InvalidConfiguration))
	_, err = (&Config{Level: "loud"}).Configure()
	require.True(t, errors.HasCode(err, errors.InvalidConfiguration))
}
