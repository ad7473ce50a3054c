package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Environment overrides. They win over the config file; CLI flags win over
// them.
const (
	EnvURL     = "AREAD_URL"
	EnvToken   = "AREAD_TOKEN"
	EnvDriver  = "AREAD_DRIVER"
	EnvCDPURL  = "AREAD_CDP_URL"
	EnvKeyring = "AREAD_KEYRING"
)

// DotEnvPaths returns the .env files read at startup, highest priority first.
func DotEnvPaths() []string {
	var paths []string
	if dir, err := DefaultDir(); err == nil {
		paths = append(paths, filepath.Join(dir, ".env"))
	}
	return append(paths, ".env")
}

// LoadDotEnv loads each existing file into the environment. Variables that
// are already set are left alone, so earlier files and the real environment
// take precedence.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return err
		}
	}
	return nil
}

// KeyringFromEnv reports whether AREAD_KEYRING asks for keychain storage.
func KeyringFromEnv() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(EnvKeyring))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// overrideService applies AREAD_URL and AREAD_TOKEN to a service section map.
func overrideService(data map[string]any) map[string]any {
	if data == nil {
		data = make(map[string]any)
	}
	if v := NormalizeServiceURL(os.Getenv(EnvURL)); v != "" {
		data[KeyURL] = v
	}
	if v := os.Getenv(EnvToken); v != "" {
		data[KeyToken] = v
	}
	return data
}
