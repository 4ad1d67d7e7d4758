package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log - глобальный логгер приложения.
var Log *logrus.Logger

// Init настраивает глобальный логгер. Вызывается один раз из main.
func Init() {
	Log = logrus.New()

	// Уровень берем из окружения, по умолчанию info.
	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)

	// json - для сбора логов в проде, text - для локальной разработки.
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	}

	Log.SetOutput(os.Stdout)
}
