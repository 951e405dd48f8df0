// internal/workers/job/evaluate-job-posting/config.go
package evaluatejobposting

import "time"

type Config struct {
	CacheTTL time.Duration
	Timeout  time.Duration
}

func LoadConfig() *Config {
	return &Config{
		CacheTTL: 10 * time.Minute,
		Timeout:  10 * time.Second,
	}
}
