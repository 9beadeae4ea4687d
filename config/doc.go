// Package config loads modelgate configuration.
//
// Values come from a YAML file (config.yml), an optional .env file and
// MODELGATE_* environment variables, in that order of precedence from low
// to high. Viper does the merging; godotenv reads the .env file.
//
//	var cfg bootstrap.Config
//	err := config.Load("modelgate", &cfg, config.WithConfigFile("config.yml"))
package config
