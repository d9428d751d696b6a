// Package config loads typed configuration from environment variables.
//
// Structs describe their variables with `env` and `envDefault` tags understood
// by github.com/caarlos0/env. Load parses a struct type once and caches it,
// so packages can ask for their configuration independently without paying
// for repeated parsing. A .env file in the working directory is honoured via
// github.com/joho/godotenv.
//
//	var cfg mongo.Config
//	config.MustLoad(&cfg)
//
// LoadEnv reads additional dotenv files; ResetCache clears cached values
// between tests.
package config
