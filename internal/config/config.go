// Package config loads the client configuration from defaults, an optional
// YAML file, a .env file and the environment.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"financemonkey/fm-cli/internal/fileutils"
)

var once sync.Once

// LoadEnv loads environment variables from a .env file in the working
// directory or its parent. Variables already set in the environment win.
func LoadEnv() {
	once.Do(func() {
		for _, envFile := range []string{".env", filepath.Join("..", ".env")} {
			if fileutils.FileExists(envFile) {
				_ = godotenv.Load(envFile)
				return
			}
		}
	})
}

// ConfigureLogLevel sets the global logrus level from LOG_LEVEL before any
// configuration is read, so early warnings respect it.
func ConfigureLogLevel() logrus.Level {
	level, err := logrus.ParseLevel(strings.ToLower(GetEnv("LOG_LEVEL", "info")))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	return level
}

// GetEnv retrieves an environment variable with a fallback value if not set
func GetEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	return value
}
