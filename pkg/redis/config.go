package redis

import "time"

type Config struct {
	ConnectionURL  string        `env:"REDIS_URL,required" envDefault:"redis://localhost:6379/0"` // ConnectionURL is in the format "redis://:password@localhost:6379/0".
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`                      // RetryAttempts is the number of connection attempts.
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`                     // RetryInterval is the pause between connection attempts.
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`                   // ConnectTimeout bounds all connection attempts together.

	KeyPrefix     string        `env:"REDIS_KEY_PREFIX" envDefault:"docstate"` // KeyPrefix namespaces document keys as prefix:id.
	TTL           time.Duration `env:"REDIS_DOCUMENT_TTL" envDefault:"0s"`     // TTL expires documents after the last save. Zero keeps them forever.
	ScanBatchSize int           `env:"REDIS_SCAN_BATCH_SIZE" envDefault:"1000"`
}
