package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/agentic-research/xbrlgraph/internal/graph"
	"github.com/agentic-research/xbrlgraph/internal/xbrl"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "label", cfg.Labels.DefaultRole)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xbrlgraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logging:
  level: warn
labels:
  default_role: terseLabel
presentation:
  suppress_empty_rows: true
company:
  extended: true
  name: Apple Inc.
  number: "0000320193"
  sic_code: "3571"
  sic_description: Electronic Computers
  trading_symbol: AAPL
filing:
  form: 10-Q
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "terseLabel", cfg.Labels.DefaultRole)
	assert.True(t, cfg.Presentation.SuppressEmptyRows)
	assert.True(t, cfg.Company.Extended)
	assert.Equal(t, "Apple Inc.", cfg.Company.Name)
	assert.Equal(t, "320193", xbrl.FolderName(cfg.Company.StaticCompany))
	assert.Equal(t, "3571 Electronic Computers", xbrl.SIC(cfg.Company.StaticCompany))
	assert.Equal(t, "10-Q", cfg.Filing.Form)
	assert.Equal(t, 5000, cfg.Export.BatchSize)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvSuppressEmpty, "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Presentation.SuppressEmptyRows)

	logger, err := cfg.Logger(false)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("logging: [unclosed"), 0o644))
	_, err := Load(bad)
	assert.ErrorContains(t, err, "parse config")

	level := filepath.Join(dir, "level.yaml")
	require.NoError(t, os.WriteFile(level, []byte("logging:\n  level: loud\n"), 0o644))
	_, err = Load(level)
	assert.ErrorContains(t, err, "logging.level")

	t.Setenv(EnvSuppressEmpty, "perhaps")
	_, err = Load("")
	assert.ErrorContains(t, err, EnvSuppressEmpty)
}

func TestSaveToFile_RoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Company.Extended = true
	cfg.Company.Symbol = "AAPL"
	cfg.Export.BatchSize = 10

	path := filepath.Join(t.TempDir(), "nested", "xbrlgraph.yaml")
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLogger_VerboseForcesDebug(t *testing.T) {
	cfg := DefaultConfig()
	logger, err := cfg.Logger(false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = cfg.Logger(true)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestDocumentOptions(t *testing.T) {
	newDoc := func(opts []xbrl.Option) *xbrl.Document {
		g := graph.New()
		root := graph.NewNode(graph.KindDocument, 0, 0)
		require.NoError(t, g.Append(nil, root))
		return xbrl.New(g, opts...)
	}

	cfg := DefaultConfig()
	doc := newDoc(cfg.DocumentOptions("10-K", "aapl.xml"))
	assert.Equal(t, xbrl.Filing{Form: "10-K", FileName: "aapl.xml"}, doc.Filing())
	assert.False(t, doc.ExtendedCompanyInformation())

	cfg.Filing.Form = "10-K/A"
	cfg.Company.Extended = true
	cfg.Company.Name = "Apple Inc."
	cfg.Labels.DefaultRole = "terseLabel"
	doc = newDoc(cfg.DocumentOptions("10-K", "aapl.xml"))
	assert.Equal(t, "10-K/A", doc.Filing().Form)
	assert.True(t, doc.ExtendedCompanyInformation())
	assert.Equal(t, "Apple Inc.", doc.Company().CompanyName())
	assert.Equal(t, "terseLabel", doc.Labels().DefaultRole())
}
