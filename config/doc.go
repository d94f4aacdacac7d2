// Package config loads iterkit configuration.
//
// LoadConfig reads a YAML file and a .env file, both optional, then applies
// ITERKIT_* environment overrides and decodes the result with Viper.
//
// # Usage
//
//	var cfg config.Config
//	if err := config.LoadConfig("ingest", &cfg); err != nil {
//	    return err
//	}
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config
