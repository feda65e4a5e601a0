package config

import (
	"os"
	"time"
)

// ClientConfig configures the tracker command line client.
type ClientConfig struct {
	APIURL       string
	Token        string
	DemoUser     string
	LogLevel     string
	LogFile      string
	PollInterval time.Duration
	SettleWindow time.Duration
	Retries      int
	RetryDelay   time.Duration
}

func NewClient() *ClientConfig {
	return &ClientConfig{
		APIURL:       getOr("TRACKERAPIURL", "http://localhost:8080"),
		Token:        os.Getenv("TRACKERTOKEN"),
		DemoUser:     os.Getenv("TRACKERDEMOUSER"),
		LogLevel:     os.Getenv("LOGLEVEL"),
		LogFile:      getOr("TRACKERLOG", "tracker.log"),
		PollInterval: getDuration("TRACKERPOLLINTERVAL", 10*time.Second),
		SettleWindow: getDuration("TRACKERSETTLEWINDOW", 15*time.Second),
		Retries:      getInt("TRACKERRETRIES", 3),
		RetryDelay:   getDuration("TRACKERRETRYDELAY", time.Second),
	}
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
