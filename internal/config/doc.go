// Package config loads the milestones configuration.
//
// Configuration lives in a single directory (default ~/.config/milestones):
//
//	config.yaml   main settings, all optional
//	.env          environment overrides, optional
//	projects.yaml data file used by the default file store
//
// Example config.yaml:
//
//	store:
//	  driver: postgres
//	  dsn: postgres://milestones@localhost:5432/milestones
//	limits:
//	  maxDependencies: 100
//	  maxMilestones: 2000
//	cache:
//	  projects: 512
//	log:
//	  level: debug
//	  format: json
//
// Environment variables MILESTONES_STORE, MILESTONES_STORE_PATH,
// MILESTONES_PG_DSN, MILESTONES_LOG_LEVEL and MILESTONES_MAX_DEPENDENCIES
// override the file. Setting MILESTONES_PG_DSN alone switches the driver to
// postgres.
package config
