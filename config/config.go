package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppPort string
	AppMode string
	LogMode string

	DBDriver     string
	DBHost       string
	DBUser       string
	DBPassword   string
	DBName       string
	DBPort       string
	DBSQLitePath string

	JWTSecret string
	JWTIssuer string

	RedisEnabled  bool
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	SessionCookie string
	SessionTTL    time.Duration

	S3Region     string
	S3Bucket     string
	S3AccessKey  string
	S3SecretKey  string
	S3Endpoint   string
	S3PublicBase string
	S3PresignTTL time.Duration

	AttachmentMaxBytes int64

	RateLimitMessagesPerMin int
	RateLimitUploadsPerMin  int
}

var defaults = map[string]interface{}{
	"APP_PORT":             "8080",
	"APP_MODE":             "debug",
	"LOG_MODE":             "development",
	"DB_DRIVER":            "postgres",
	"DB_HOST":              "localhost",
	"DB_USER":              "postgres",
	"DB_PASSWORD":          "postgres",
	"DB_NAME":              "telemed_chat",
	"DB_PORT":              "5432",
	"DB_SQLITE_PATH":       "telemed_chat.db",
	"JWT_SECRET":           "change-me",
	"JWT_ISSUER":           "telemed",
	"REDIS_ENABLED":        true,
	"REDIS_HOST":           "localhost",
	"REDIS_PORT":           "6379",
	"REDIS_PASSWORD":       "",
	"REDIS_DB":             0,
	"SESSION_COOKIE":       "CHATSESSION",
	"SESSION_TTL_MIN":      30,
	"S3_REGION":            "",
	"S3_BUCKET":            "",
	"S3_ACCESS_KEY":        "",
	"S3_SECRET_KEY":        "",
	"S3_ENDPOINT":          "",
	"S3_PUBLIC_BASE":       "",
	"S3_PRESIGN_TTL_MIN":   15,
	"ATTACHMENT_MAX_BYTES": 10 << 20,
	"RATE_LIMIT_MESSAGES":  60,
	"RATE_LIMIT_UPLOADS":   10,
}

// LoadConfig reads .env (if present), then an optional config.yaml, then the
// process environment. Environment variables win.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("Failed to read config file, falling back to environment: %v", err)
		}
	}

	return &Config{
		AppPort: v.GetString("APP_PORT"),
		AppMode: v.GetString("APP_MODE"),
		LogMode: v.GetString("LOG_MODE"),

		DBDriver:     strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:       v.GetString("DB_HOST"),
		DBUser:       v.GetString("DB_USER"),
		DBPassword:   v.GetString("DB_PASSWORD"),
		DBName:       v.GetString("DB_NAME"),
		DBPort:       v.GetString("DB_PORT"),
		DBSQLitePath: v.GetString("DB_SQLITE_PATH"),

		JWTSecret: v.GetString("JWT_SECRET"),
		JWTIssuer: v.GetString("JWT_ISSUER"),

		RedisEnabled:  v.GetBool("REDIS_ENABLED"),
		RedisHost:     v.GetString("REDIS_HOST"),
		RedisPort:     v.GetString("REDIS_PORT"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),

		SessionCookie: v.GetString("SESSION_COOKIE"),
		SessionTTL:    time.Duration(v.GetInt("SESSION_TTL_MIN")) * time.Minute,

		S3Region:     v.GetString("S3_REGION"),
		S3Bucket:     v.GetString("S3_BUCKET"),
		S3AccessKey:  v.GetString("S3_ACCESS_KEY"),
		S3SecretKey:  v.GetString("S3_SECRET_KEY"),
		S3Endpoint:   v.GetString("S3_ENDPOINT"),
		S3PublicBase: v.GetString("S3_PUBLIC_BASE"),
		S3PresignTTL: time.Duration(v.GetInt("S3_PRESIGN_TTL_MIN")) * time.Minute,

		AttachmentMaxBytes: v.GetInt64("ATTACHMENT_MAX_BYTES"),

		RateLimitMessagesPerMin: v.GetInt("RATE_LIMIT_MESSAGES"),
		RateLimitUploadsPerMin:  v.GetInt("RATE_LIMIT_UPLOADS"),
	}
}

// PostgresDSN builds the connection string for the postgres driver.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

func (c *Config) S3Enabled() bool {
	return c.S3Region != "" && c.S3Bucket != ""
}
