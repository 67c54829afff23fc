package config

import (
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string `yaml:"env" env-default:"local"`
	HTTPServer `yaml:"http_server"`
	SMTP       `yaml:"smtp"`
	Admin      `yaml:"admin"`
	Data       `yaml:"data"`
	Sessions   `yaml:"sessions"`
	Tokens     `yaml:"tokens"`

	// BaseURL, when set, overrides the request-host derived verify links.
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"PORT_ADDRESS" env-default:":3000"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// SMTP carries the two required mail secrets. Startup must refuse to
// proceed when either is missing.
type SMTP struct {
	Host     string `yaml:"host" env-default:"smtp.gmail.com"`
	Port     int    `yaml:"port" env-default:"587"`
	Username string `yaml:"username" env:"SMTP_USER" env-required:"true"`
	Password string `yaml:"password" env:"SMTP_PASS" env-required:"true"`
}

type Admin struct {
	Username string `yaml:"username" env:"ADMIN_DEFAULT_USER" env-default:"admin"`
	Email    string `yaml:"email" env:"ADMIN_DEFAULT_EMAIL" env-default:"admin@local"`
	Password string `yaml:"password" env:"ADMIN_DEFAULT_PASS" env-default:"admin123"`
}

type Data struct {
	MembersFile string `yaml:"members_file" env-default:"members.json"`
	AdminsFile  string `yaml:"admins_file" env-default:"admins.json"`
	UploadsDir  string `yaml:"uploads_dir" env-default:"uploads"`
	UploadsDB   string `yaml:"uploads_db" env-default:"uploads.db"`
}

type Sessions struct {
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"30m"`
}

type Tokens struct {
	VerificationTokenTTL time.Duration `yaml:"verification_token_ttl" env-default:"30m"`
}

// Load reads yaml config with env overrides. The config file is optional;
// the required SMTP secrets are not.
func Load(configPath string) (*Config, error) {
	var cfg Config

	if _, err := os.Stat(configPath); err == nil {
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
