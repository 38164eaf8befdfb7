package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// clearEnv unsets every override so the host environment cannot leak into a
// test, and unsets them again afterwards since godotenv writes with
// os.Setenv.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{EnvStoreDriver, EnvStorePath, EnvPostgresDSN, EnvLogLevel, EnvMaxDeps}
	for _, k := range keys {
		if old, ok := os.LookupEnv(k); ok {
			t.Cleanup(func() { os.Setenv(k, old) })
		}
		os.Unsetenv(k)
	}
	t.Cleanup(func() {
		for _, k := range keys {
			os.Unsetenv(k)
		}
	})
}

// Helper function to create a temporary config file
func writeConfig(t *testing.T, dir string, content Config) {
	t.Helper()
	data, err := yaml.Marshal(&content)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), data, 0644))
}

func TestLoadConfig_DefaultOnly(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	expected := GetDefaultConfig()
	expected.Store.Path = filepath.Join(dir, DefaultProjectsFile)
	assert.Equal(t, expected, cfg)
}

func TestLoadConfig_FileOverride(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	override := GetDefaultConfig()
	override.Store = StoreConfig{Driver: StoreDriverMemory}
	override.Limits.MaxDependencies = 12
	override.Log.Format = "json"
	writeConfig(t, dir, override)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, StoreDriverMemory, cfg.Store.Driver)
	assert.Empty(t, cfg.Store.Path)
	assert.Equal(t, 12, cfg.Limits.MaxDependencies)
	assert.Equal(t, DefaultMaxMilestones, cfg.Limits.MaxMilestones)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte("log:\n  level: debug\n"), 0644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, DefaultCacheProjects, cfg.Cache.Projects)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte("store: [unclosed"), 0644))

	_, err := LoadConfig(dir)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "parse", cfgErr.ErrorType)
	assert.Contains(t, cfgErr.DetailedError(), "Suggestions")
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	t.Setenv(EnvPostgresDSN, "postgres://localhost/milestones")
	t.Setenv(EnvMaxDeps, "7")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, StoreDriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/milestones", cfg.Store.DSN)
	assert.Equal(t, 7, cfg.Limits.MaxDependencies)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("MILESTONES_LOG_LEVEL=warn\nMILESTONES_STORE=memory\n"), 0644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, StoreDriverMemory, cfg.Store.Driver)
}

func TestLoadConfig_BadEnvInteger(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvMaxDeps, "lots")

	_, err := LoadConfig(t.TempDir())
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "env", cfgErr.ErrorType)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		fields []string
	}{
		{
			name:   "defaults with path are valid",
			mutate: func(c *Config) { c.Store.Path = "/tmp/p.yaml" },
		},
		{
			name:   "file driver needs a path",
			mutate: func(c *Config) {},
			fields: []string{"store.path"},
		},
		{
			name:   "postgres needs a dsn",
			mutate: func(c *Config) { c.Store.Driver = StoreDriverPostgres },
			fields: []string{"store.dsn"},
		},
		{
			name:   "unknown driver",
			mutate: func(c *Config) { c.Store.Driver = "sqlite" },
			fields: []string{"store.driver"},
		},
		{
			name: "several errors at once",
			mutate: func(c *Config) {
				c.Store.Driver = StoreDriverMemory
				c.Limits.MaxDependencies = -1
				c.Log.Level = "loud"
				c.Log.Format = "xml"
			},
			fields: []string{"limits.maxDependencies", "log.level", "log.format"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := GetDefaultConfig()
			tt.mutate(&c)
			errs := Validate(c)

			var fields []string
			for _, e := range errs {
				fields = append(fields, e.Field)
			}
			assert.Equal(t, tt.fields, fields)
		})
	}
}

func TestValidationError_IncludesValue(t *testing.T) {
	c := GetDefaultConfig()
	c.Store.Driver = "sqlite"
	c.Log.Level = "loud"

	errs := Validate(c)
	require.True(t, errs.HasErrors())
	assert.Contains(t, errs.Error(), "field 'store.driver': must be one of file, memory, postgres (got sqlite)")
	assert.Contains(t, errs.Error(), "(got loud)")

	assert.Equal(t, "field 'store.path': is required for the file driver", ValidationError{Field: "store.path", Message: "is required for the file driver"}.Error())
}
