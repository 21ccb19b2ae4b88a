package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	databaseDSN       = "DATABASE_DSN"
	encryptionKeyENV  = "ENCRYPTION_KEY"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
)

// Config ...
type Config struct {
	DB      string `yaml:"db_dsn"`
	Service struct {
		Host       string `yaml:"host"`
		PublicPort int    `yaml:"public_port"`
		AdminPort  int    `yaml:"admin_port"`
	} `yaml:"service"`

	Jaeger struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"jaeger"`

	// Ключ для шифрования брокерских API-ключей в БД.
	EncryptionKey string `yaml:"encryption_key"`

	// Необязательное зеркало уведомлений в Telegram.
	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`

	// Задержки симуляции жизненного цикла ордера.
	// pending -> executed после ExecuteAfter, executed -> closed ещё через CloseAfter.
	ExecuteAfter time.Duration `yaml:"execute_after"`
	CloseAfter   time.Duration `yaml:"close_after"`

	AllowedOrigins []string `yaml:"allowed_origins"`
}

func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	config := Config{
		ExecuteAfter: durationFromEnv("ORDER_EXECUTE_AFTER", "5s"),
		CloseAfter:   durationFromEnv("ORDER_CLOSE_AFTER", "10s"),
	}
	config.Service.Host = getenvDefault("SERVICE_HOST", "0.0.0.0")
	config.Service.PublicPort = intFromEnv("PUBLIC_PORT", 8000)
	config.Service.AdminPort = intFromEnv("ADMIN_PORT", 8080)

	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	if file, err := os.Open("configs/" + configFileName); err == nil {
		decoder := yaml.NewDecoder(file)
		if dErr := decoder.Decode(&config); dErr != nil {
			log.Fatalf("Failed to decode config file: %v", dErr)
		}
		_ = file.Close()
	}

	if dsn := os.Getenv(databaseDSN); dsn != "" {
		config.DB = dsn
	}
	if key := os.Getenv(encryptionKeyENV); key != "" {
		config.EncryptionKey = key
	}
	if token := os.Getenv(tokenTelegramENV); token != "" {
		config.Telegram.Token = token
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Telegram.ChatID = id
		}
	}

	return &config, nil
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationFromEnv(key, def string) time.Duration {
	val := getenvDefault(key, def)
	d, err := time.ParseDuration(val)
	if err != nil {
		d, _ = time.ParseDuration(def)
	}
	return d
}
