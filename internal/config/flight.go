package config

import "time"

type FlightConfig struct {
	AccessKey     string        `yaml:"access_key"`
	LookupTimeout time.Duration `yaml:"lookup_timeout"`
}

func loadFlightConfig() *FlightConfig {
	return &FlightConfig{
		AccessKey:     getEnv("FLIGHT_API_ACCESS_KEY", ""),
		LookupTimeout: getEnvAsDuration("FLIGHT_LOOKUP_TIMEOUT", 30*time.Second),
	}
}
