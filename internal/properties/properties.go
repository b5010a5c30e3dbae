package properties

import (
	"os"
	"path/filepath"
	"strconv"
)

func RootPath() string {
	if root := os.Getenv("ROOT_PATH"); root != "" {
		return root
	}
	return "."
}

func InputDir() string {
	return filepath.Join(RootPath(), "data", "input")
}

func ExtractDir() string {
	return filepath.Join(RootPath(), "data", "extract")
}

func OutputDir() string {
	return filepath.Join(RootPath(), "data", "output")
}

func CacheDir() string {
	return filepath.Join(RootPath(), "data", "cache")
}

// Workers is the number of bands corrected at once. Zero lets the
// orchestrator pick.
func Workers() int {
	return intEnv("ATCOR_WORKERS", 0)
}

func TileWorkers() int {
	return intEnv("ATCOR_TILE_WORKERS", 2)
}

// DarkObject names the dark-object policy: "min" or "p<N>".
func DarkObject() string {
	if v := os.Getenv("ATCOR_DARK_OBJECT"); v != "" {
		return v
	}
	return "min"
}

func LogLevel() string {
	return os.Getenv("LOG_LEVEL")
}

func LogFormat() string {
	return os.Getenv("LOG_FORMAT")
}

func DiscordErrorNotificationUrl() string {
	return os.Getenv("DISCORD_ERROR_NOTIFICATION_URL")
}
func DiscordSuccessNotificationUrl() string {
	return os.Getenv("DISCORD_SUCCESS_NOTIFICATION_URL")
}

func intEnv(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
