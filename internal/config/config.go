package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type AppCfg struct {
	Env          string        `yaml:"env"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	JWT          struct {
		Secret               string `yaml:"secret"`
		AccessTTLMinutes     int    `yaml:"accessTTLMinutes"`
		RefreshTTLDays       int    `yaml:"refreshTTLDays"`
		VerificationTTLHours int    `yaml:"verificationTTLHours"`
	} `yaml:"jwt"`
}

type MongoCfg struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type MailCfg struct {
	APIKey    string `yaml:"apiKey"`
	FromEmail string `yaml:"fromEmail"`
	FromName  string `yaml:"fromName"`
	VerifyURL string `yaml:"verifyURL"`
}

type GameCfg struct {
	BudgetMax            float64 `yaml:"budgetMax"`
	PeriodMaxMinutes     int     `yaml:"periodMaxMinutes"`
	DefaultPeriodMinutes int     `yaml:"defaultPeriodMinutes"`
}

type SecurityCfg struct {
	PasswordHashCost int `yaml:"passwordHashCost"`
}

type Config struct {
	App      AppCfg      `yaml:"app"`
	Mongo    MongoCfg    `yaml:"mongo"`
	Mail     MailCfg     `yaml:"mail"`
	Game     GameCfg     `yaml:"game"`
	Security SecurityCfg `yaml:"security"`
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	override := func(env string, apply func(string)) {
		if v := os.Getenv(env); v != "" {
			apply(v)
		}
	}
	overrideInt := func(env string, apply func(int)) {
		if v := os.Getenv(env); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				apply(n)
			}
		}
	}

	override("APP_ENV", func(v string) { cfg.App.Env = v })
	overrideInt("APP_PORT", func(n int) { cfg.App.Port = n })
	override("JWT_SECRET_KEY", func(v string) { cfg.App.JWT.Secret = v })
	overrideInt("JWT_ACCESS_TTL_MINUTES", func(n int) { cfg.App.JWT.AccessTTLMinutes = n })
	overrideInt("JWT_REFRESH_TTL_DAYS", func(n int) { cfg.App.JWT.RefreshTTLDays = n })
	overrideInt("JWT_VERIFICATION_TTL_HOURS", func(n int) { cfg.App.JWT.VerificationTTLHours = n })
	override("MONGO_URI", func(v string) { cfg.Mongo.URI = v })
	override("MONGO_DB", func(v string) { cfg.Mongo.Database = v })
	override("MAIL_API_KEY", func(v string) { cfg.Mail.APIKey = v })
	override("MAIL_FROM_EMAIL", func(v string) { cfg.Mail.FromEmail = v })
	override("MAIL_FROM_NAME", func(v string) { cfg.Mail.FromName = v })
	override("WEBSITE", func(v string) { cfg.Mail.VerifyURL = v })
	override("BUDGET_MAX", func(v string) {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Game.BudgetMax = f
		}
	})
	overrideInt("PERIOD_MAX_MINUTES", func(n int) { cfg.Game.PeriodMaxMinutes = n })
	overrideInt("DEFAULT_PERIOD_MINUTES", func(n int) { cfg.Game.DefaultPeriodMinutes = n })
	overrideInt("PASSWORD_HASH_COST", func(n int) { cfg.Security.PasswordHashCost = n })

	if cfg.App.JWT.AccessTTLMinutes == 0 {
		cfg.App.JWT.AccessTTLMinutes = 1
	}
	if cfg.App.JWT.RefreshTTLDays == 0 {
		cfg.App.JWT.RefreshTTLDays = 30
	}
	if cfg.App.JWT.VerificationTTLHours == 0 {
		cfg.App.JWT.VerificationTTLHours = 24
	}
	if cfg.Game.DefaultPeriodMinutes == 0 {
		cfg.Game.DefaultPeriodMinutes = 30 * 24 * 60
	}

	if cfg.App.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET_KEY is required (set in .env or config.yaml)")
	}
	if cfg.Mongo.URI == "" {
		return nil, errors.New("MONGO_URI is required")
	}
	if cfg.Game.BudgetMax <= 0 {
		return nil, errors.New("game.budgetMax must be positive")
	}
	if cfg.Game.PeriodMaxMinutes <= 0 {
		return nil, errors.New("game.periodMaxMinutes must be positive")
	}
	if cfg.Game.DefaultPeriodMinutes > cfg.Game.PeriodMaxMinutes {
		return nil, errors.New("game.defaultPeriodMinutes exceeds game.periodMaxMinutes")
	}

	return cfg, nil
}
