// Package config provides configuration management for the catalog.
//
// It utilizes Viper for loading configuration from environment variables, an
// optional config file (config.yaml / config.toml next to the .env file) and
// a .env file loaded through godotenv.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Catalog: reconciliation settings (lock directory, parallelism, empty-scan guard, scan interval)
//   - Database: SQLite file or MySQL connection details
//   - Storage: S3/MinIO credentials for object storage backed libraries
//   - Log: Logging level and format
//
// Defaults come from `default` struct tags. The SQLite file and the lock directory
// default to per-user XDG locations.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Database.Driver)
package config
