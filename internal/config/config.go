package config

import (
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env         string            `yaml:"env" env:"ENV" env-default:"local"`
	DSN         string            `yaml:"dsn" env:"DSN" env-required:"true"`
	PublicURL   string            `yaml:"public_url" env:"PUBLIC_URL" env-default:"http://localhost:3000"`
	HTTP        HTTPConfig        `yaml:"http"`
	Token       TokenConfig       `yaml:"token"`
	Session     SessionConfig     `yaml:"session"`
	OTP         OTPConfig         `yaml:"otp"`
	Redis       RedisConf         `yaml:"redis"`
	Cloudinary  CloudinaryConfig  `yaml:"cloudinary"`
	FileStorage FileStorageConfig `yaml:"file_storage"`
	Twilio      TwilioConfig      `yaml:"twilio"`
	Messaging   MessagingConfig   `yaml:"messaging"`
	Admin       AdminConfig       `yaml:"admin"`
	Gallery     GalleryConfig     `yaml:"gallery"`
	Booking     BookingConfig     `yaml:"booking"`
}

type HTTPConfig struct {
	Host         string        `yaml:"host"`
	Port         string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	CORSOrigins  []string      `yaml:"cors_origins" env:"HTTP_CORS_ORIGINS" env-separator:","`
	ReadTimeout  time.Duration `yaml:"read_timeout" env-default:"15s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env-default:"60s"`
}

type TokenConfig struct {
	Secret     string        `yaml:"secret" env:"TOKEN_SECRET" env-required:"true"`
	AdminTTL   time.Duration `yaml:"admin_ttl" env-default:"24h"`
	GalleryTTL time.Duration `yaml:"gallery_ttl" env-default:"24h"`
}

type SessionConfig struct {
	Secret string `yaml:"secret" env:"SESSION_SECRET" env-required:"true"`
}

type OTPConfig struct {
	TTL          time.Duration `yaml:"ttl" env-default:"10m"`
	Store        string        `yaml:"store" env:"OTP_STORE" env-default:"memory"`
	EchoCode     bool          `yaml:"echo_code" env:"OTP_ECHO_CODE"`
	MaxAttempts  int           `yaml:"max_attempts" env-default:"5"`
	SendPerMin   float64       `yaml:"send_per_minute" env-default:"3"`
	SendBurst    int           `yaml:"send_burst" env-default:"3"`
	CleanupEvery time.Duration `yaml:"cleanup_every" env-default:"5m"`
}

type RedisConf struct {
	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string `yaml:"redispassword" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"REDIS_DB"`
}

type CloudinaryConfig struct {
	CloudName string `yaml:"cloud_name" env:"CLOUDINARY_CLOUD_NAME"`
	APIKey    string `yaml:"api_key" env:"CLOUDINARY_API_KEY"`
	APISecret string `yaml:"api_secret" env:"CLOUDINARY_API_SECRET"`
	Folder    string `yaml:"folder" env-default:"galleries"`
}

func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

type FileStorageConfig struct {
	BaseDir string `yaml:"base_dir" env-default:"./uploads"`
	BaseURL string `yaml:"base_url" env-default:"http://localhost:8080/uploads"`
	MaxSize int64  `yaml:"max_size"`
}

type TwilioConfig struct {
	AccountSID   string `yaml:"account_sid" env:"TWILIO_ACCOUNT_SID"`
	AuthToken    string `yaml:"auth_token" env:"TWILIO_AUTH_TOKEN"`
	SMSFrom      string `yaml:"sms_from" env:"TWILIO_SMS_FROM"`
	WhatsAppFrom string `yaml:"whatsapp_from" env:"TWILIO_WHATSAPP_FROM"`
}

func (c TwilioConfig) Enabled() bool {
	return c.AccountSID != "" && c.AuthToken != ""
}

type MessagingConfig struct {
	DefaultCountryCode string `yaml:"default_country_code" env-default:"+228"`
	StudioPhone        string `yaml:"studio_phone" env:"STUDIO_PHONE"`
	StudioName         string `yaml:"studio_name" env-default:"Studio"`
}

type AdminConfig struct {
	// LegacyFallback enables the historical admin/admin123 credential pair.
	LegacyFallback bool `yaml:"legacy_fallback" env:"ADMIN_LEGACY_FALLBACK"`
}

type GalleryConfig struct {
	DefaultDownloadLimit int    `yaml:"default_download_limit" env-default:"50"`
	DefaultExpiryDays    int    `yaml:"default_expiry_days" env-default:"30"`
	WatermarkText        string `yaml:"watermark_text" env-default:"PREVIEW"`
	WatermarkFontSize    int    `yaml:"watermark_font_size" env-default:"60"`
	WatermarkOpacity     int    `yaml:"watermark_opacity" env-default:"40"`
}

type BookingConfig struct {
	Currency string `yaml:"currency" env-default:"XOF"`
}

func MustLoad(path string) *Config {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		panic("config path is empty")
	}

	return MustLoadPath(path)
}

func MustLoadPath(configPath string) *Config {
	cfg, err := LoadPath(configPath)
	if err != nil {
		panic(err)
	}

	return cfg
}

func LoadPath(configPath string) (*Config, error) {
	// .env is optional; values already in the environment win
	_ = godotenv.Load()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, &os.PathError{Op: "config", Path: configPath, Err: err}
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
