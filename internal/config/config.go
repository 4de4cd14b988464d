package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the host application looks for the config file.
const DefaultPath = "./resources/config.toml"

const maxPort = 65535

var (
	ErrFs              = errors.New("config file unreadable")
	ErrDeserialization = errors.New("config file malformed")
)

type Config struct {
	Network  NetworkConfig `toml:"network" yaml:"network"`
	Keybinds KeybindConfig `toml:"keybinds" yaml:"keybinds"`
}

// NetworkConfig is parsed and checked structurally but nothing in the
// simulation consumes it.
type NetworkConfig struct {
	Host        bool    `toml:"host" yaml:"host"`
	HostAddress *string `toml:"host_address" yaml:"host_address"`
	Port        uint    `toml:"port" yaml:"port"`
}

// KeybindConfig holds raw key names. They are resolved by the keybind package.
type KeybindConfig struct {
	Forward  string `toml:"forward" yaml:"forward"`
	Backward string `toml:"backward" yaml:"backward"`
	Left     string `toml:"left" yaml:"left"`
	Right    string `toml:"right" yaml:"right"`
	Jump     string `toml:"jump" yaml:"jump"`
}

func Default() Config {
	return Config{
		Network:  DefaultNetwork(),
		Keybinds: DefaultKeybinds(),
	}
}

func DefaultNetwork() NetworkConfig {
	return NetworkConfig{
		Host: true,
		Port: 8080,
	}
}

func DefaultKeybinds() KeybindConfig {
	return KeybindConfig{
		Forward:  "w",
		Backward: "s",
		Left:     "a",
		Right:    "d",
		Jump:     " ",
	}
}

// Load reads the file at path and overlays it onto Default. Files ending in
// .yaml or .yml are decoded as YAML, everything else as TOML.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrFs, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return Parse(data)
	}
}

// LoadOrDefault never fails: when Load does, the defaults are returned
// together with the error so the caller can report it.
func LoadOrDefault(path string) (Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return Default(), err
	}
	return cfg, nil
}

// invalid UTF-8 is replaced rather than rejected
var replacementChar = []byte("\uFFFD")

// Parse decodes a TOML document onto Default. Absent fields keep their
// default value.
func Parse(data []byte) (Config, error) {
	data = bytes.ToValidUTF8(data, replacementChar)
	cfg := Default()
	if err := toml.NewDecoder(bytes.NewReader(data)).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrDeserialization, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseYAML is the YAML counterpart of Parse.
func ParseYAML(data []byte) (Config, error) {
	data = bytes.ToValidUTF8(data, replacementChar)
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrDeserialization, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Network.Port > maxPort {
		return fmt.Errorf("%w: network.port %d out of range", ErrDeserialization, c.Network.Port)
	}
	return nil
}
