package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Store     StoreConfig
	JWT       JWTConfig
	Auth      AuthConfig
	USSD      USSDConfig
	Payment   PaymentConfig
	Advisor   AdvisorConfig
	Draw      DrawConfig
	SMS       SMSConfig
	Bootstrap BootstrapConfig
	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=json text"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port           string `validate:"required"`
	AllowedHosts   []string
	RequestTimeout time.Duration
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// StoreConfig selects the ledger store backend
type StoreConfig struct {
	Driver string `validate:"oneof=mongodb memory"`
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string
	ExpiresIn int `validate:"gt=0"` // seconds
}

// AuthConfig lists the operators allowed to exchange an API key for a token.
// Operators maps an operator name to the bcrypt hash of its API key.
type AuthConfig struct {
	Operators map[string]string
}

// USSDConfig holds the dial menu settings
type USSDConfig struct {
	ServiceName      string  `validate:"required"`
	Currency         string  `validate:"required"`
	Shortcode        string  `validate:"required"`
	StakeAmount      float64 `validate:"gt=0"`
	SessionTTL       time.Duration
	SessionIDAliases []string `validate:"min=1"`
	PhoneAliases     []string `validate:"min=1"`
	UserIDAliases    []string
	TextAliases      []string `validate:"min=1"`
}

// PaymentConfig holds mobile money gateway configuration
type PaymentConfig struct {
	BaseURL             string
	APIKey              string
	APISecret           string
	MockAPI             bool
	MockSuccessRate     float64 `validate:"gte=0,lte=1"`
	MockLatency         time.Duration
	CollectionTimeout   time.Duration `validate:"gt=0"`
	DisbursementTimeout time.Duration `validate:"gt=0"`
}

// AdvisorConfig holds the narration and fraud advisor configuration
type AdvisorConfig struct {
	GeminiAPIKey         string
	Model                string
	Timeout              time.Duration `validate:"gt=0"`
	FallbackAnnouncement string        `validate:"required"`
	StationName          string
}

// DrawConfig holds settlement engine parameters
type DrawConfig struct {
	WinProbability float64       `validate:"gt=0,lte=1"`
	JackpotFloor   float64       `validate:"gte=0"`
	PollInterval   time.Duration `validate:"gt=0"`
	Concurrency    int           `validate:"gt=0"`
	LockTTL        time.Duration `validate:"gt=0"`
	SettleTimeout  time.Duration `validate:"gt=0"`
	SchedulerOn    bool
}

// SMSConfig holds SMS gateway-specific configuration
type SMSConfig struct {
	Enabled  bool
	BaseURL  string
	APIKey   string
	SenderID string
	MockSMS  bool
}

// BootstrapConfig holds the SystemConfig values written on first start
type BootstrapConfig struct {
	PayoutPercentage  float64 `validate:"gt=0,lte=1"`
	FixedPayoutAmount float64 `validate:"gte=0"`
	MinStake          float64 `validate:"gt=0"`
	MaxStake          float64 `validate:"gtefield=MinStake"`
	DrawIntervalHours int     `validate:"gt=0"`
	CurrentJackpot    float64 `validate:"gte=0"`
}

// Load loads configuration from an optional .env file, environment variables
// and config files
func Load() (*Config, error) {
	loadDotEnv()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the struct tags and the cross-field rules
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Store.Driver == "mongodb" && (c.MongoDB.URI == "" || c.MongoDB.Database == "") {
		return errors.New("invalid configuration: MongoDB.URI and MongoDB.Database are required for the mongodb store")
	}
	if c.USSD.StakeAmount < c.Bootstrap.MinStake || c.USSD.StakeAmount > c.Bootstrap.MaxStake {
		return fmt.Errorf("invalid configuration: USSD.StakeAmount %.2f outside stake bounds", c.USSD.StakeAmount)
	}
	return nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("Server.Port", "4000")
	v.SetDefault("Server.AllowedHosts", []string{"localhost:3000"})
	v.SetDefault("Server.RequestTimeout", 15*time.Second)
	v.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	v.SetDefault("MongoDB.Database", "homeradio-cashout")
	v.SetDefault("Store.Driver", "mongodb")
	v.SetDefault("JWT.ExpiresIn", 24*60*60) // 24 hours
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFormat", "json")

	v.SetDefault("USSD.ServiceName", "Home Radio Cash Out")
	v.SetDefault("USSD.Currency", "GHS")
	v.SetDefault("USSD.Shortcode", "*789#")
	v.SetDefault("USSD.StakeAmount", 5.0)
	v.SetDefault("USSD.SessionTTL", 5*time.Minute)
	v.SetDefault("USSD.SessionIDAliases", []string{"sessionID", "SESSIONID", "sessionId", "session_id", "SessionId"})
	v.SetDefault("USSD.PhoneAliases", []string{"msisdn", "MSISDN", "phoneNumber", "phone"})
	v.SetDefault("USSD.UserIDAliases", []string{"UserID", "USERID", "userID", "userId", "userid"})
	v.SetDefault("USSD.TextAliases", []string{"userData", "USERDATA", "text", "input", "ussdString", "message", "INPUT"})

	v.SetDefault("Payment.MockAPI", true)
	v.SetDefault("Payment.MockSuccessRate", 0.95)
	v.SetDefault("Payment.MockLatency", 1500*time.Millisecond)
	v.SetDefault("Payment.CollectionTimeout", 20*time.Second)
	v.SetDefault("Payment.DisbursementTimeout", 30*time.Second)

	v.SetDefault("Advisor.Model", "gemini-1.5-flash")
	v.SetDefault("Advisor.Timeout", 10*time.Second)
	v.SetDefault("Advisor.FallbackAnnouncement", "Congratulations to our lucky winners on Home Radio Cash Out! Your MoMo is waiting!")
	v.SetDefault("Advisor.StationName", "Home Radio 99.7")

	v.SetDefault("Draw.WinProbability", 0.05)
	v.SetDefault("Draw.JackpotFloor", 5000.0)
	v.SetDefault("Draw.PollInterval", time.Minute)
	v.SetDefault("Draw.Concurrency", 16)
	v.SetDefault("Draw.LockTTL", 10*time.Minute)
	v.SetDefault("Draw.SettleTimeout", 30*time.Minute)
	v.SetDefault("Draw.SchedulerOn", true)

	v.SetDefault("SMS.Enabled", true)
	v.SetDefault("SMS.MockSMS", true)
	v.SetDefault("SMS.SenderID", "HomeRadio")

	v.SetDefault("Bootstrap.PayoutPercentage", 0.7)
	v.SetDefault("Bootstrap.FixedPayoutAmount", 0.0)
	v.SetDefault("Bootstrap.MinStake", 1.0)
	v.SetDefault("Bootstrap.MaxStake", 10.0)
	v.SetDefault("Bootstrap.DrawIntervalHours", 6)
	v.SetDefault("Bootstrap.CurrentJackpot", 5000.0)
}
