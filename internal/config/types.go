package config

// Config is the top-level configuration structure for milestones.
type Config struct {
	Store  StoreConfig  `yaml:"store"`
	Limits LimitsConfig `yaml:"limits"`
	Cache  CacheConfig  `yaml:"cache"`
	Log    LogConfig    `yaml:"log"`
}

// StoreDriver selects the persistence backend for milestone rows.
type StoreDriver string

const (
	// StoreDriverFile keeps projects in a YAML file.
	StoreDriverFile StoreDriver = "file"
	// StoreDriverMemory keeps projects in process memory only.
	StoreDriverMemory StoreDriver = "memory"
	// StoreDriverPostgres keeps projects in PostgreSQL.
	StoreDriverPostgres StoreDriver = "postgres"
)

// StoreConfig defines where milestone rows are read from and written to.
type StoreConfig struct {
	Driver StoreDriver `yaml:"driver,omitempty"` // Backend to use (default: file)
	Path   string      `yaml:"path,omitempty"`   // Projects file for the file driver
	DSN    string      `yaml:"dsn,omitempty"`    // Connection string for the postgres driver
}

// LimitsConfig bounds the size of the graphs the engine is asked to walk.
// Zero disables a limit.
type LimitsConfig struct {
	MaxDependencies int `yaml:"maxDependencies,omitempty"` // Per milestone
	MaxMilestones   int `yaml:"maxMilestones,omitempty"`   // Per project
}

// CacheConfig sizes the read cache of project graphs.
type CacheConfig struct {
	Projects int `yaml:"projects,omitempty"` // Projects whose graph snapshot is kept for reads (0 disables)
}

// LogConfig controls pkg/logging.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error
	Format string `yaml:"format,omitempty"` // text or json
}
