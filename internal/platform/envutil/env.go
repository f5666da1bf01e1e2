package envutil

import (
	"os"
	"strconv"
	"strings"

	"github.com/campstack/evalboard-backend/internal/platform/logger"
)

func GetEnv(key, defaultVal string, log *logger.Logger) string {
	if log != nil {
		log = log.With("env_var", key)
	}
	val, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(val) == "" {
		if log != nil {
			log.Debug("Environment variable not found, using default", "default", defaultVal)
		}
		return defaultVal
	}
	return val
}

func GetEnvAsInt(key string, defaultVal int, log *logger.Logger) int {
	raw := GetEnv(key, "", log)
	if raw == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		if log != nil {
			log.Warn("Environment variable is not an integer, using default", "env_var", key, "value", raw, "default", defaultVal)
		}
		return defaultVal
	}
	return n
}

func GetEnvAsBool(key string, defaultVal bool, log *logger.Logger) bool {
	raw := strings.TrimSpace(strings.ToLower(GetEnv(key, "", log)))
	switch raw {
	case "":
		return defaultVal
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		if log != nil {
			log.Warn("Environment variable is not a boolean, using default", "env_var", key, "value", raw, "default", defaultVal)
		}
		return defaultVal
	}
}
