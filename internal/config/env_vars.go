package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	appNameVar     = "APP_NAME"
	folderEnvVar   = "FOLDER"
	apiBaseURLVar  = "API_BASE_URL"
	runtimeEnvVar  = "RUNTIME"
	httpTimeoutVar = "HTTP_TIMEOUT"
)

// Runtime names accepted by RUNTIME.
const (
	RuntimeAuto    = "auto"
	RuntimeNative  = "native"
	RuntimeBrowser = "browser"
)

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetAPIBaseURL() string
	GetDataFolder() string
	GetRuntime() string
	GetHTTPTimeout() time.Duration
	GetUsername() string
	GetPassword() string
}

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Festival Companion")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

// GetAPIBaseURL returns the backend base URL including the API prefix (e.g., "https://api.example.com/api")
func (EnvVars) GetAPIBaseURL() string {
	return strings.TrimRight(GetEnv(apiBaseURLVar, "http://localhost:8000/api"), "/")
}

func (EnvVars) GetDataFolder() string {
	return GetEnv(folderEnvVar, "./data")
}

// GetRuntime returns "native", "browser" or "auto" (detect at startup)
func (EnvVars) GetRuntime() string {
	switch r := strings.ToLower(GetEnv(runtimeEnvVar, RuntimeAuto)); r {
	case RuntimeNative, RuntimeBrowser:
		return r
	default:
		return RuntimeAuto
	}
}

func (EnvVars) GetHTTPTimeout() time.Duration {
	return GetDuration(httpTimeoutVar, 15*time.Second)
}

// GetUsername and GetPassword are only used to log in when no stored session exists
func (EnvVars) GetUsername() string {
	return GetEnv("COMPANION_USERNAME", "")
}

func (EnvVars) GetPassword() string {
	return GetEnv("COMPANION_PASSWORD", "")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetDuration(envVar string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(envVar))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func GetFloat(envVar string, defaultValue float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(envVar), 64)
	if err != nil || f <= 0 {
		return defaultValue
	}
	return f
}

func GetInt(envVar string, defaultValue int) int {
	i, err := strconv.Atoi(os.Getenv(envVar))
	if err != nil || i < 0 {
		return defaultValue
	}
	return i
}
