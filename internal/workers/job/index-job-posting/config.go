// internal/workers/job/index-job-posting/config.go
package indexjobposting

import "time"

type Config struct {
	IndexName string
	Timeout   time.Duration
}

func LoadConfig() *Config {
	return &Config{
		IndexName: "job-postings",
		Timeout:   10 * time.Second,
	}
}
