// Package config loads node configuration in layers: built-in defaults, an
// optional YAML file, then UNITRIGGER_ environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/unijord/unitrigger/pkg/policy"
)

// EnvPrefix marks environment overrides. A double underscore separates
// levels: UNITRIGGER_NODE__DATA_DIR sets node.data_dir.
const EnvPrefix = "UNITRIGGER_"

type Config struct {
	Node     NodeConfig     `koanf:"node"`
	GRPC     GRPCConfig     `koanf:"grpc"`
	Triggers TriggersConfig `koanf:"triggers"`
	Sweeper  SweeperConfig  `koanf:"sweeper"`
	Log      LogConfig      `koanf:"log"`
	OTel     OTelConfig     `koanf:"otel"`
	Engine   EngineConfig   `koanf:"engine"`
}

type NodeConfig struct {
	ID        string `koanf:"id"`
	DataDir   string `koanf:"data_dir"`
	RaftAddr  string `koanf:"raft_addr"`
	Bootstrap bool   `koanf:"bootstrap"`
	// Peers are "id=raft_addr[=grpc_addr]" entries.
	Peers        []string      `koanf:"peers"`
	ApplyTimeout time.Duration `koanf:"apply_timeout"`
}

type GRPCConfig struct {
	Addr string `koanf:"addr"`
}

type TriggersConfig struct {
	Enabled        bool          `koanf:"enabled"`
	SystemDatabase string        `koanf:"system_database"`
	AsyncWorkers   int           `koanf:"async_workers"`
	ExecTimeout    time.Duration `koanf:"exec_timeout"`
	// Databases are started for dispatch at boot.
	Databases []string `koanf:"databases"`
}

type SweeperConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Interval time.Duration `koanf:"interval"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type OTelConfig struct {
	// Endpoint is an OTLP/HTTP URL; empty disables tracing.
	Endpoint    string `koanf:"endpoint"`
	ServiceName string `koanf:"service_name"`
}

type EngineConfig struct {
	Latency time.Duration `koanf:"latency"`
	// Procedures extends the built-in catalog with "name=MODE" entries.
	Procedures []string `koanf:"procedures"`
}

func defaults() map[string]any {
	return map[string]any{
		"node.id":                  "node-1",
		"node.data_dir":            "data",
		"node.raft_addr":           "127.0.0.1:7000",
		"node.bootstrap":           true,
		"node.peers":               []string{},
		"node.apply_timeout":       "5s",
		"grpc.addr":                "127.0.0.1:7100",
		"triggers.enabled":         true,
		"triggers.system_database": "system",
		"triggers.async_workers":   4,
		"triggers.exec_timeout":    "30s",
		"triggers.databases":       []string{},
		"sweeper.enabled":          false,
		"sweeper.interval":         "1m",
		"log.level":                "info",
		"log.format":               "text",
		"otel.endpoint":            "",
		"otel.service_name":        "unitrigger",
		"engine.latency":           "0s",
		"engine.procedures":        []string{},
	}
}

// Load reads defaults, then path when it is non-empty, then the
// environment.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Node.ID) == "" {
		errs = append(errs, errors.New("node.id must not be empty"))
	}
	if strings.TrimSpace(c.Node.DataDir) == "" {
		errs = append(errs, errors.New("node.data_dir must not be empty"))
	}
	if c.Node.ApplyTimeout <= 0 {
		errs = append(errs, errors.New("node.apply_timeout must be positive"))
	}
	if strings.TrimSpace(c.Triggers.SystemDatabase) == "" {
		errs = append(errs, errors.New("triggers.system_database must not be empty"))
	}
	if c.Triggers.AsyncWorkers <= 0 {
		errs = append(errs, errors.New("triggers.async_workers must be positive"))
	}
	for _, db := range c.Triggers.Databases {
		if db == c.Triggers.SystemDatabase {
			errs = append(errs, fmt.Errorf("triggers.databases must not contain the system database %q", db))
		}
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not text or json", c.Log.Format))
	}
	if _, err := c.Engine.ProcedureModes(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ProcedureModes parses the configured procedures.
func (e EngineConfig) ProcedureModes() (map[string]policy.Mode, error) {
	out := make(map[string]policy.Mode, len(e.Procedures))
	for _, entry := range e.Procedures {
		name, mode, ok := strings.Cut(entry, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("engine.procedures: %q is not name=MODE", entry)
		}
		m := policy.Mode(strings.ToUpper(strings.TrimSpace(mode)))
		switch m {
		case policy.ModeRead, policy.ModeWrite, policy.ModeDefault, policy.ModeSchema, policy.ModeDBMS:
			out[name] = m
		default:
			return nil, fmt.Errorf("engine.procedures: unknown mode %q for %s", mode, name)
		}
	}
	return out, nil
}
