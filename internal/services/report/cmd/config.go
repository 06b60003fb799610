package main

import (
	"os"
	"strconv"
	"time"
)

type config struct {
	Port string

	PersistenceURL string
	SoilPath       string
	VegetationPath string
	TimeoutMs      int

	CBFailures int
	CBOpenMs   int

	MetricsEnabled bool
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func loadConfig() config {
	return config{
		Port: getenv("PORT", "5009"),

		PersistenceURL: getenv("PERSISTENCE_URL", "http://persistence:8080"),
		SoilPath:       getenv("SOIL_PATH", "/data/soil/latest"),
		VegetationPath: getenv("VEGETATION_PATH", "/data/vegetation/latest"),
		TimeoutMs:      getenvInt("TIMEOUT_MS", 3000),

		CBFailures: getenvInt("CB_FAILURES", 3),
		CBOpenMs:   getenvInt("CB_OPEN_MS", 10000),

		MetricsEnabled: getenv("METRICS_ENABLED", "true") == "true",
	}
}

func (c config) timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

func (c config) breakerOpenFor() time.Duration {
	return time.Duration(c.CBOpenMs) * time.Millisecond
}
