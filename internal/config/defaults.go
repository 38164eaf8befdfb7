package config

const (
	// DefaultMaxDependencies caps the dependency set of a single milestone.
	DefaultMaxDependencies = 200

	// DefaultMaxMilestones caps the number of milestones in one project.
	DefaultMaxMilestones = 5000

	// DefaultCacheProjects is the number of projects whose graph snapshot
	// is cached for reads.
	DefaultCacheProjects = 256

	// DefaultProjectsFile is the file store's file name inside the config
	// directory.
	DefaultProjectsFile = "projects.yaml"
)

// GetDefaultConfig returns the default configuration for milestones.
func GetDefaultConfig() Config {
	return Config{
		Store: StoreConfig{
			Driver: StoreDriverFile,
		},
		Limits: LimitsConfig{
			MaxDependencies: DefaultMaxDependencies,
			MaxMilestones:   DefaultMaxMilestones,
		},
		Cache: CacheConfig{
			Projects: DefaultCacheProjects,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
