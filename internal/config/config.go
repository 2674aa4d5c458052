package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "agenda.db"
	DefaultTick           = "1s"
	ConfigEnv             = "AGENDA_CONFIG"
)

type Keymap struct {
	Quit         string `toml:"quit"`
	Add          string `toml:"add"`
	Up           string `toml:"up"`
	Down         string `toml:"down"`
	Toggle       string `toml:"toggle"`
	Delete       string `toml:"delete"`
	Detail       string `toml:"detail"`
	Confirm      string `toml:"confirm"`
	Cancel       string `toml:"cancel"`
	Edit         string `toml:"edit"`
	Assistant    string `toml:"assistant"`
	PriorityUp   string `toml:"priority_up"`
	PriorityDown string `toml:"priority_down"`
	DueForward   string `toml:"due_forward"`
	DueBack      string `toml:"due_back"`
	Focus        string `toml:"focus"`
	Clear        string `toml:"clear"`
}

type Assistant struct {
	Model     string `toml:"model"`
	BaseURL   string `toml:"base_url"`
	APIKeyEnv string `toml:"api_key_env"`
	Timeout   string `toml:"timeout"`
}

type Config struct {
	DBPath    string    `toml:"db_path"`
	Tick      string    `toml:"tick"`
	Keys      Keymap    `toml:"keys"`
	Assistant Assistant `toml:"assistant"`
}

// TickInterval is the parsed refresh period of the task view.
func (c Config) TickInterval() time.Duration {
	d, err := time.ParseDuration(c.Tick)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}

// AssistantTimeout bounds one assistant request.
func (c Config) AssistantTimeout() time.Duration {
	d, err := time.ParseDuration(c.Assistant.Timeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// ResolveConfigPath returns $AGENDA_CONFIG if set, otherwise config.toml in
// the user config directory.
func ResolveConfigPath() string {
	if p := os.Getenv(ConfigEnv); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, "agenda", DefaultConfigFileName)
}

func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	cfg.DBPath = filepath.Join(filepath.Dir(path), DefaultDBName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(filepath.Dir(path), DefaultDBName)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if d, err := time.ParseDuration(c.Tick); err != nil || d <= 0 {
		return fmt.Errorf("tick %q is not a positive duration", c.Tick)
	}
	if c.Assistant.Timeout != "" {
		if d, err := time.ParseDuration(c.Assistant.Timeout); err != nil || d <= 0 {
			return fmt.Errorf("assistant timeout %q is not a positive duration", c.Assistant.Timeout)
		}
	}
	return nil
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() Config {
	return Config{
		DBPath: DefaultDBName,
		Tick:   DefaultTick,
		Keys: Keymap{
			Quit:         "q",
			Add:          "a",
			Up:           "k",
			Down:         "j",
			Toggle:       " ",
			Delete:       "d",
			Detail:       "enter",
			Confirm:      "enter",
			Cancel:       "esc",
			Edit:         "e",
			Assistant:    "i",
			PriorityUp:   "+",
			PriorityDown: "-",
			DueForward:   "]",
			DueBack:      "[",
			Focus:        "tab",
			Clear:        "C",
		},
		Assistant: Assistant{
			Model:     "gpt-4o-mini",
			APIKeyEnv: "OPENAI_API_KEY",
			Timeout:   "60s",
		},
	}
}
