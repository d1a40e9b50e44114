// Package config provides configuration management for zipadeedoodah.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - Overrides from ZIPPY_* environment variables and an optional .env file
//
// Sources are applied in this order, later ones winning:
//
//	defaults < JSON file < environment < command-line flags
//
// # Loading
//
//	settings, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := settings.ApplyEnv(".env"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Saving Settings
//
//	settings.Engine = "otto"
//	err := settings.Save(config.DefaultPath())
package config
