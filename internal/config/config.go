// Package config defines the runtime configuration for recordmap and loads it
// from layered sources with koanf.
//
// Precedence, lowest first:
//
//  1. Built-in defaults (Defaults).
//  2. An optional JSON file passed on the command line (--config).
//  3. Environment variables prefixed with RECORDMAP_, optionally read from a
//     .env file in the working directory.
//
// Environment keys map onto the config tree by turning the first underscore
// after the prefix into a dot, so RECORDMAP_STORAGE_DSN sets storage.dsn and
// RECORDMAP_METRICS_PUSHGATEWAY_URL sets metrics.pushgateway_url.
//
// Example file:
//
//	{
//	  "storage": { "kind": "sqlite", "dsn": "file:users.db" },
//	  "log":     { "level": "debug", "pretty": true },
//	  "json":    { "path": "people.json", "rule_width": 80 }
//	}
package config

import (
	"fmt"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload" // loads .env into the process env
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "RECORDMAP_"

// Config is the root configuration object.
type Config struct {
	Storage Storage `koanf:"storage" json:"storage"`
	Log     Log     `koanf:"log" json:"log"`
	Metrics Metrics `koanf:"metrics" json:"metrics"`
	JSON    JSON    `koanf:"json" json:"json"`
}

// Storage selects the backend and the data source the session opens.
type Storage struct {
	// Kind is a registered storage kind: sqlite, postgres, mysql or mssql.
	Kind string `koanf:"kind" json:"kind" validate:"required"`

	// DSN is passed to the driver verbatim, e.g. "file:users.db" or
	// "postgres://user@localhost/app".
	DSN string `koanf:"dsn" json:"dsn" validate:"required"`

	// PingTimeout bounds the connectivity check when the session opens.
	PingTimeout time.Duration `koanf:"ping_timeout" json:"ping_timeout" validate:"gte=0"`

	// AutoCreateTable makes user commands create the table before running.
	AutoCreateTable bool `koanf:"auto_create_table" json:"auto_create_table"`
}

// Log controls the zerolog logger.
type Log struct {
	Level  string `koanf:"level" json:"level" validate:"oneof=trace debug info warn error"`
	Pretty bool   `koanf:"pretty" json:"pretty"`
}

// Metrics selects an optional metrics backend.
type Metrics struct {
	// Backend is "none", "prompush" or "datadog".
	Backend string `koanf:"backend" json:"backend" validate:"oneof=none prompush datadog"`

	// Job is the Pushgateway grouping job.
	Job string `koanf:"job" json:"job"`

	// PushgatewayURL is required for the prompush backend.
	PushgatewayURL string `koanf:"pushgateway_url" json:"pushgateway_url" validate:"omitempty,url"`

	// DatadogAddr is the DogStatsD address, required for the datadog backend.
	DatadogAddr string `koanf:"datadog_addr" json:"datadog_addr"`

	// Namespace prefixes Datadog metric names.
	Namespace string `koanf:"namespace" json:"namespace"`

	// Tags are global Datadog tags in "key:value" form.
	Tags []string `koanf:"tags" json:"tags"`
}

// JSON configures the JSON table utility.
type JSON struct {
	// Path is read when the jsontable command gets no argument.
	Path string `koanf:"path" json:"path" validate:"required"`

	// RuleWidth is the number of underscores printed before each row.
	RuleWidth int `koanf:"rule_width" json:"rule_width" validate:"gte=1"`
}

// Defaults returns the built-in configuration values in koanf's flat form.
func Defaults() map[string]any {
	return map[string]any{
		"storage.kind":              "sqlite",
		"storage.dsn":               "recordmap.db",
		"storage.ping_timeout":      "5s",
		"storage.auto_create_table": true,
		"log.level":                 "info",
		"log.pretty":                false,
		"metrics.backend":           "none",
		"metrics.job":               "recordmap",
		"json.path":                 "data.json",
		"json.rule_width":           120,
	}
}

// Load builds a Config from defaults, the optional JSON file at path and the
// environment. An empty path skips the file layer. Load does not validate;
// call Validate on the result.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return Config{}, fmt.Errorf("config: load defaults: %w", err)
	}

	if strings.TrimSpace(path) != "" {
		if err := k.Load(file.Provider(path), json.Parser()); err != nil {
			return Config{}, fmt.Errorf("config: load %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("config: load env: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}

// envKey maps RECORDMAP_STORAGE_PING_TIMEOUT to storage.ping_timeout.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(s, "_", ".", 1)
}
