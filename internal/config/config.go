package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr          string // RELAY_HTTP_ADDR (default ":8080")
	NATSURL           string // RELAY_NATS_URL (optional, empty = bus disabled)
	AuthToken         string // RELAY_AUTH_TOKEN (optional, empty = auth disabled)
	SubscriptionsFile string // RELAY_SUBSCRIPTIONS_FILE (optional TOML seed file)

	// Event log settings
	EventLogCapacity int // RELAY_EVENTLOG_CAPACITY (default 10000; 0 = unbounded)

	// Delivery settings
	WebhookTimeout  time.Duration // RELAY_WEBHOOK_TIMEOUT (default 5s)
	ActionTimeout   time.Duration // RELAY_ACTION_TIMEOUT (default 10s)
	MaxCascadeDepth int           // RELAY_MAX_CASCADE_DEPTH (default 5)

	// Audit settings
	ComplianceDefault bool // RELAY_COMPLIANCE_DEFAULT (default true)

	// External collaborator endpoints (optional; empty = action logged and skipped)
	CRMURL          string // RELAY_CRM_URL
	TasksURL        string // RELAY_TASKS_URL
	ComplianceURL   string // RELAY_COMPLIANCE_URL
	SlackWebhookURL string // RELAY_SLACK_WEBHOOK_URL
	TeamsWebhookURL string // RELAY_TEAMS_WEBHOOK_URL
}

func Load() (*Config, error) {
	c := &Config{
		HTTPAddr:          envOrDefault("RELAY_HTTP_ADDR", ":8080"),
		NATSURL:           os.Getenv("RELAY_NATS_URL"),
		AuthToken:         os.Getenv("RELAY_AUTH_TOKEN"),
		SubscriptionsFile: os.Getenv("RELAY_SUBSCRIPTIONS_FILE"),
		CRMURL:            os.Getenv("RELAY_CRM_URL"),
		TasksURL:          os.Getenv("RELAY_TASKS_URL"),
		ComplianceURL:     os.Getenv("RELAY_COMPLIANCE_URL"),
		SlackWebhookURL:   os.Getenv("RELAY_SLACK_WEBHOOK_URL"),
		TeamsWebhookURL:   os.Getenv("RELAY_TEAMS_WEBHOOK_URL"),
	}

	var err error
	if c.EventLogCapacity, err = envInt("RELAY_EVENTLOG_CAPACITY", 10000); err != nil {
		return nil, err
	}
	if c.MaxCascadeDepth, err = envInt("RELAY_MAX_CASCADE_DEPTH", 5); err != nil {
		return nil, err
	}
	if c.WebhookTimeout, err = envDuration("RELAY_WEBHOOK_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if c.ActionTimeout, err = envDuration("RELAY_ACTION_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if c.ComplianceDefault, err = envBool("RELAY_COMPLIANCE_DEFAULT", true); err != nil {
		return nil, err
	}

	return c, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
