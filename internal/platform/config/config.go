package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort string
	JWTKey  []byte
	JWTExp  time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SandboxURL            string
	SandboxAuthToken      string
	SandboxTimeoutSeconds int

	DailyRotationHourUTC   int
	DailyLockKey           string
	DailyLockTTLSeconds    int
	ProgressLockTTLSeconds int
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		APIPort:       getEnv("API_PORT", "8080"),
		JWTKey:        []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp:        time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 72)) * time.Hour,
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "user"),
		DBPassword:    getEnv("DB_PASSWORD", "password"),
		DBName:        getEnv("DB_NAME", "codecampus_db"),
		DBSslMode:     getEnv("DB_SSLMODE", "disable"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		SandboxURL:            getEnv("SANDBOX_URL", "http://localhost:2358"),
		SandboxAuthToken:      getEnv("SANDBOX_AUTH_TOKEN", ""),
		SandboxTimeoutSeconds: getEnvAsInt("SANDBOX_TIMEOUT_SECONDS", 30),

		DailyRotationHourUTC:   getEnvAsInt("DAILY_ROTATION_HOUR_UTC", 0),
		DailyLockKey:           getEnv("DAILY_LOCK_KEY", "daily_question_lock"),
		DailyLockTTLSeconds:    getEnvAsInt("DAILY_LOCK_TTL_SECONDS", 60),
		ProgressLockTTLSeconds: getEnvAsInt("PROGRESS_LOCK_TTL_SECONDS", 10),
	}

	AppConfig.DBConnStr = "host=" + AppConfig.DBHost +
		" port=" + AppConfig.DBPort +
		" user=" + AppConfig.DBUser +
		" password=" + AppConfig.DBPassword +
		" dbname=" + AppConfig.DBName +
		" sslmode=" + AppConfig.DBSslMode
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
