package main

import (
	"github.com/dmitrymomot/docstate/pkg/httpserver"
	"github.com/dmitrymomot/docstate/pkg/logger"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Config is the service configuration read from the environment.
type Config struct {
	Log  logger.Config
	HTTP httpserver.Config

	StoreDriver    string `env:"STORE_DRIVER" envDefault:"memory"`
	Collection     string `env:"ARTICLES_COLLECTION" envDefault:"articles"`
	DefinitionPath string `env:"ARTICLES_DEFINITION"` // overrides the embedded definition when set
	MetricsPath    string `env:"METRICS_PATH" envDefault:"/metrics"`
}
