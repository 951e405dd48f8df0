// internal/workers/application/calculate-fit-score/config.go
package calculatefitscore

import "time"

type Config struct {
	CacheTTL time.Duration
	Timeout  time.Duration
}

func LoadConfig() *Config {
	return &Config{
		CacheTTL: 15 * time.Minute,
		Timeout:  10 * time.Second,
	}
}
