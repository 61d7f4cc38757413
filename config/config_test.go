package config

import (
	"os"
	"path/filepath"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "devtools.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultsMatchScripts(t *testing.T) {
	cfg := Default()
	assert.Equal(t, cfg.Database.DBType, "sqlite")
	assert.Equal(t, cfg.Database.File, "tenantrating_v2.db")
	assert.Equal(t, cfg.Inspect.Limit, 5)
	assert.Equal(t, cfg.Splice.Marker, "<!-- CODE APPENDICES - FULL PAGE EXAMPLES -->")
	assert.Equal(t, cfg.Splice.FallbackLine, 1036)
	assert.Equal(t, cfg.Splice.DestinationPath(), cfg.Splice.Source)
}

func TestLoadConfig_MissingDefaultFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("")
	assert.NilError(t, err)
	assert.DeepEqual(t, cfg, Default())
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoadConfig_Overrides(t *testing.T) {
	path := writeConfig(t, `
database:
  type: sqlite
  file: other.db
inspect:
  limit: 3
  format: json
splice:
  source: book.html
  draft: draft.html
  destination: out.html
  fallback_line: 12
  strict: true
`)

	cfg, err := LoadConfig(path)
	assert.NilError(t, err)
	assert.Equal(t, cfg.Database.File, "other.db")
	assert.Equal(t, cfg.Inspect.Limit, 3)
	assert.Equal(t, cfg.Inspect.Format, "json")
	assert.Equal(t, cfg.Splice.DestinationPath(), "out.html")
	assert.Equal(t, cfg.Splice.FallbackLine, 12)
	assert.Check(t, cfg.Splice.Strict)
	// untouched keys keep their defaults
	assert.Equal(t, cfg.Splice.Marker, DefaultMarker)
	assert.Equal(t, cfg.Logging.Level, "info")
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"db type":  "database:\n  type: oracle\n",
		"format":   "inspect:\n  format: xml\n",
		"limit":    "inspect:\n  limit: -1\n",
		"fallback": "splice:\n  fallback_line: 0\n",
		"marker":   "splice:\n  marker: \"\"\n",
		"yaml":     "database: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, body))
			assert.Check(t, err != nil, "expected error for %s", name)
		})
	}
}

func TestGetConnectionString(t *testing.T) {
	d := DatabaseConfig{DBType: "sqlite"}
	conn, err := d.GetConnectionString()
	assert.NilError(t, err)
	assert.Equal(t, conn, DefaultDatabaseFile)

	d = DatabaseConfig{DBType: "mysql"}
	_, err = d.GetConnectionString()
	assert.Check(t, is.ErrorContains(err, "Connection string is required for mysql"))

	d = DatabaseConfig{DBType: "postgres", ConnectionString: "postgres://localhost/db"}
	conn, err = d.GetConnectionString()
	assert.NilError(t, err)
	assert.Equal(t, conn, "postgres://localhost/db")
}
