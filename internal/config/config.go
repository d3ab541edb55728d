package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/you/phoneauthsvc/domain"
)

type AppConfig struct {
	Port    int    `yaml:"port"`
	GinMode string `yaml:"gin_mode"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	Secret     string `yaml:"secret"`
	Issuer     string `yaml:"issuer"`
	AccessTTL  string `yaml:"access_ttl"`
	RefreshTTL string `yaml:"refresh_ttl"`
}

type OTPConfig struct {
	TTL    string `yaml:"ttl"`
	Length int    `yaml:"length"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
}

type IdentityPlatformConfig struct {
	BaseURL     string `yaml:"base_url"`
	ServiceKey  string `yaml:"service_key"`
	AnonKey     string `yaml:"anon_key"`
	AliasDomain string `yaml:"alias_domain"`
	ListPerPage int    `yaml:"list_per_page"`
}

type RegistrationConfig struct {
	TicketTTL string `yaml:"ticket_ttl"`
}

type CasbinConfig struct {
	ModelPath string `yaml:"model_path"`
}

type ConfigFile struct {
	App          AppConfig              `yaml:"app"`
	Database     DatabaseConfig         `yaml:"database"`
	Redis        RedisConfig            `yaml:"redis"`
	JWT          JWTConfig              `yaml:"jwt"`
	OTP          OTPConfig              `yaml:"otp"`
	Twilio       TwilioConfig           `yaml:"twilio"`
	Identity     IdentityPlatformConfig `yaml:"identity_platform"`
	Registration RegistrationConfig     `yaml:"registration"`
	Casbin       CasbinConfig           `yaml:"casbin"`
}

type Config struct {
	Port                string
	GinMode             string
	DSN                 string
	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	JWTSecret           string
	JWTIssuer           string
	AccessTTL           time.Duration
	RefreshTTL          time.Duration
	OTP_TTL             time.Duration
	OTP_Length          int
	TwilioSID           string
	TwilioToken         string
	TwilioFrom          string
	IdentityBaseURL     string
	IdentityServiceKey  string
	IdentityAnonKey     string
	AliasDomain         string
	IdentityListPerPage int
	TicketTTL           time.Duration
	CasbinModelPath     string
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func Load() (*Config, error) {
	return LoadFrom(env("CONFIG_PATH", "config/config.yml"))
}

func LoadFrom(path string) (*Config, error) {
	configFile, err := loadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	accTTL, err := time.ParseDuration(configFile.JWT.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT access TTL: %w", err)
	}

	refTTL, err := time.ParseDuration(configFile.JWT.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT refresh TTL: %w", err)
	}

	otpTTL, err := time.ParseDuration(configFile.OTP.TTL)
	if err != nil {
		return nil, fmt.Errorf("invalid OTP TTL: %w", err)
	}

	ticketTTL, err := time.ParseDuration(configFile.Registration.TicketTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid registration ticket TTL: %w", err)
	}

	cfg := &Config{
		Port:                fmt.Sprintf("%d", configFile.App.Port),
		GinMode:             configFile.App.GinMode,
		DSN:                 configFile.Database.DSN,
		RedisAddr:           configFile.Redis.Addr,
		RedisPassword:       configFile.Redis.Password,
		RedisDB:             configFile.Redis.DB,
		JWTSecret:           configFile.JWT.Secret,
		JWTIssuer:           configFile.JWT.Issuer,
		AccessTTL:           accTTL,
		RefreshTTL:          refTTL,
		OTP_TTL:             otpTTL,
		OTP_Length:          configFile.OTP.Length,
		TwilioSID:           configFile.Twilio.AccountSID,
		TwilioToken:         configFile.Twilio.AuthToken,
		TwilioFrom:          configFile.Twilio.FromNumber,
		IdentityBaseURL:     env("IDENTITY_BASE_URL", configFile.Identity.BaseURL),
		IdentityServiceKey:  env("IDENTITY_SERVICE_KEY", configFile.Identity.ServiceKey),
		IdentityAnonKey:     env("IDENTITY_ANON_KEY", configFile.Identity.AnonKey),
		AliasDomain:         configFile.Identity.AliasDomain,
		IdentityListPerPage: configFile.Identity.ListPerPage,
		TicketTTL:           ticketTTL,
		CasbinModelPath:     configFile.Casbin.ModelPath,
	}

	if cfg.IdentityListPerPage <= 0 {
		cfg.IdentityListPerPage = 200
	}
	if cfg.OTP_Length <= 0 {
		cfg.OTP_Length = 6
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service must not start with. A missing
// privileged platform credential is fatal, not something to degrade around.
func (c *Config) Validate() error {
	if c.IdentityServiceKey == "" {
		return domain.ErrPrivilegedCredentialMissing
	}
	if c.IdentityBaseURL == "" {
		return fmt.Errorf("identity platform base URL is required")
	}
	if c.AliasDomain == "" {
		return fmt.Errorf("alias domain is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt secret is required")
	}
	return nil
}

func loadConfigFile(path string) (*ConfigFile, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}

	return &config, nil
}
