package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/goccy/go-yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/xhit/go-str2duration/v2"
)

// EnvPrefix starts every environment variable read by Load.
const EnvPrefix = "CHARTBRIDGE_"

var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrReadFile      = errors.New("failed to read config file")
)

// Option configures Load.
type Option func(*loader) error

// WithFile layers a YAML file over the defaults. An empty path is ignored.
func WithFile(path string) Option {
	return func(l *loader) error {
		l.path = path
		return nil
	}
}

// WithEnviron replaces os.Environ as the source of environment variables.
func WithEnviron(environ func() []string) Option {
	return func(l *loader) error {
		if environ == nil {
			return fmt.Errorf("environ cannot be nil")
		}
		l.environ = environ
		return nil
	}
}

type loader struct {
	koanf    *koanf.Koanf
	validate *validator.Validate
	path     string
	environ  func() []string
}

// Load builds a Config from defaults, the YAML file and the environment, then validates it.
func Load(opts ...Option) (*Config, error) {
	l := &loader{
		koanf:    koanf.New("."),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		environ:  os.Environ,
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, fmt.Errorf("error applying option: %w", err)
		}
	}

	if err := l.koanf.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if err := l.loadFile(); err != nil {
		return nil, err
	}
	if err := l.loadEnvironment(); err != nil {
		return nil, err
	}
	return l.unmarshalAndValidate()
}

func (l *loader) loadFile() error {
	if l.path == "" {
		return nil
	}
	raw, err := os.ReadFile(l.path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadFile, err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, l.path, err)
	}
	// Set key by key so a file only overrides what it names.
	for key, value := range flattenMap("", doc) {
		if err := l.koanf.Set(key, value); err != nil {
			return fmt.Errorf("failed to set key %s: %w", key, err)
		}
	}
	return nil
}

func (l *loader) loadEnvironment() error {
	err := l.koanf.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: transformEnvKey,
		EnvironFunc:   l.environ,
	}), nil)
	if err != nil {
		return fmt.Errorf("failed to load environment variables: %w", err)
	}
	return nil
}

// transformEnvKey maps CHARTBRIDGE_LIMITS_MAX_STEPS to limits.max_steps. Top-level keys
// containing an underscore (json_helper) are matched before splitting.
func transformEnvKey(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if key == "json_helper" {
		return key, value
	}
	section, rest, found := strings.Cut(key, "_")
	if !found {
		return key, value
	}
	return section + "." + rest, value
}

func flattenMap(prefix string, m map[string]any) map[string]any {
	result := make(map[string]any)
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			for fk, fv := range flattenMap(key, nested) {
				result[fk] = fv
			}
			continue
		}
		result[key] = v
	}
	return result
}

// durationHook accepts day and week units ("1d", "2w") as well as time.ParseDuration syntax.
func durationHook(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeFor[time.Duration]() || from.Kind() != reflect.String {
		return data, nil
	}
	return str2duration.ParseDuration(data.(string))
}

func (l *loader) unmarshalAndValidate() (*Config, error) {
	var cfg Config
	err := l.koanf.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &cfg,
			TagName:          "koanf",
			DecodeHook:       mapstructure.ComposeDecodeHookFunc(durationHook),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := l.validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return &cfg, nil
}
