package config

import (
	"bytes"
	"os"
	"reflect"
	"strings"

	"github.com/arthur-debert/stackops/pkg/errors"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	gotoml "github.com/pelletier/go-toml/v2"
)

// SystemConfigPath is read when no explicit config file is given
const SystemConfigPath = "/etc/stackops/stackops.toml"

// EnvPrefix marks environment variables that override configuration keys.
// STACKOPS_EXEC_SHELL sets exec.shell.
const EnvPrefix = "STACKOPS_"

// LoadOptions selects the configuration sources
type LoadOptions struct {
	// File is an explicit config file; it must exist
	File string

	// SystemFile is read when present and File is empty. Empty means
	// SystemConfigPath.
	SystemFile string

	// Overrides are flat keys (e.g. "exec.shell") set from command line flags
	Overrides map[string]interface{}
}

// Load resolves the configuration from defaults, the config file, the
// environment and overrides, in that order
func Load(opts LoadOptions) (*Config, error) {
	k, err := load(opts)
	if err != nil {
		return nil, err
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				stringToArgsHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	return &cfg, nil
}

func load(opts LoadOptions) (*koanf.Koanf, error) {
	k := koanf.New(".")

	// 1. Built-in defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	// 2. Config file
	path := opts.File
	if path == "" {
		path = opts.SystemFile
		if path == "" {
			path = SystemConfigPath
		}
		if _, err := os.Stat(path); err != nil {
			path = ""
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config from %s", path).
				WithDetail("path", path)
		}
	}

	// 3. Environment
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
	}

	// 4. Command line overrides
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	return k, nil
}

// stringToArgsHookFunc splits a string into a command line on whitespace so
// STACKOPS_EXEC_ESCALATION="sudo -E" yields two arguments
func stringToArgsHookFunc() mapstructure.DecodeHookFuncKind {
	return func(from, to reflect.Kind, data interface{}) (interface{}, error) {
		if from != reflect.String || to != reflect.Slice {
			return data, nil
		}
		return strings.Fields(data.(string)), nil
	}
}

// Marshal renders cfg as TOML
func Marshal(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := gotoml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode configuration")
	}
	return buf.Bytes(), nil
}
