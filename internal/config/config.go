// Package config загружает настройки процесса из окружения (и .env файла,
// если он есть). Все переменные опциональны и имеют рабочие умолчания.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/ranihwanifactory/stairpang/pkg/logger"
)

// Config - настройки сервера, собранные из окружения.
type Config struct {
	Port string // HTTP/WS порт
	Goal int    // целевой этаж по умолчанию для новых комнат
}

// Load читает .env (если есть) и собирает конфиг.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		logger.Log.Debug(".env file not found, relying on process environment")
	}

	return Config{
		Port: getEnv("STAIRPANG_PORT", "8080"),
		Goal: getEnvAsInt("STAIRPANG_GOAL", 30),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.Log.Warnf("Environment variable %s is not an integer, using default %d", key, fallback)
		return fallback
	}
	return n
}
