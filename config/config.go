package config

import (
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config defines the app configuration.
type Config struct {
	Data struct {
		Dir string `yaml:"dir" env:"TOSHO_DATA_DIR" env-default:"data"`
	} `yaml:"data"`
	Loan struct {
		TermDays int `yaml:"term_days" env:"TOSHO_LOAN_TERM_DAYS" env-default:"14"`
	} `yaml:"loan"`
	Logging struct {
		Level string `yaml:"level" env:"TOSHO_LOG_LEVEL" env-default:"info"`
	} `yaml:"logging"`
}

// DefaultPath is the config file read when TOSHO_CONFIG is not set.
const DefaultPath = "tosho.yaml"

// Load reads the configuration from the config file, overridden by
// environment variables. A missing config file is not an error; the
// configuration then comes from the environment and defaults alone.
func Load() (Config, error) {
	var cfg Config
	path := os.Getenv("TOSHO_CONFIG")
	if path == "" {
		path = DefaultPath
	}
	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, err
		}
		return cfg, nil
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
