package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/organforge/pipework/importer"
)

// Config stores the settings of the command line tools.
type Config struct {
	LogLevel      string
	LogFile       string // empty logs to stderr only
	LogMaxSize    int    // megabytes
	LogMaxBackups int

	RecoveryDir   string
	ConventionDir string // user naming conventions
	Convention    string // convention used when none is given

	AttackPrefix        string
	ReleasePrefix       string
	TremulantPrefix     string
	LoadOnlyOneAttack   bool
	LoadRelease         bool
	ExtractKeyPressTime bool
	Matcher             string
	Extensions          []string
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvList splits a comma separated variable.
func getEnvList(key string, fallback []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	var ret []string
	for _, s := range strings.Split(value, ",") {
		if s = strings.TrimSpace(s); s != "" {
			ret = append(ret, s)
		}
	}
	return ret
}

// Load reads the environment after loading the given .env files, or .env in
// the working directory when none are given. Missing files are ignored and
// variables already set win over the files.
func Load(files ...string) *Config {
	_ = godotenv.Load(files...)

	defaults := importer.DefaultOptions()
	stateDir := filepath.Join(os.TempDir(), "pipework")
	if dir, err := os.UserConfigDir(); err == nil {
		stateDir = filepath.Join(dir, "pipework")
	}

	return &Config{
		LogLevel:      getEnv("PIPEWORK_LOG_LEVEL", "info"),
		LogFile:       getEnv("PIPEWORK_LOG_FILE", ""),
		LogMaxSize:    getEnvInt("PIPEWORK_LOG_MAX_SIZE", 10),
		LogMaxBackups: getEnvInt("PIPEWORK_LOG_MAX_BACKUPS", 3),

		RecoveryDir:   getEnv("PIPEWORK_RECOVERY_DIR", filepath.Join(stateDir, "recovery")),
		ConventionDir: getEnv("PIPEWORK_CONVENTION_DIR", importer.UserConventionDir()),
		Convention:    getEnv("PIPEWORK_CONVENTION", ""),

		AttackPrefix:        getEnv("PIPEWORK_ATTACK_PREFIX", defaults.AttackPrefix),
		ReleasePrefix:       getEnv("PIPEWORK_RELEASE_PREFIX", defaults.ReleasePrefix),
		TremulantPrefix:     getEnv("PIPEWORK_TREMULANT_PREFIX", defaults.TremulantPrefix),
		LoadOnlyOneAttack:   getEnvBool("PIPEWORK_LOAD_ONLY_ONE_ATTACK", defaults.LoadOnlyOneAttack),
		LoadRelease:         getEnvBool("PIPEWORK_LOAD_RELEASE", defaults.LoadRelease),
		ExtractKeyPressTime: getEnvBool("PIPEWORK_EXTRACT_KEY_PRESS_TIME", defaults.ExtractKeyPressTime),
		Matcher:             getEnv("PIPEWORK_MATCHER", defaults.Matcher.Name()),
		Extensions:          getEnvList("PIPEWORK_EXTENSIONS", defaults.Extensions),
	}
}

// ImportOptions returns the importer options the configuration describes.
// A named convention replaces the individual settings.
func (c *Config) ImportOptions() (importer.Options, error) {
	if c.Convention != "" {
		conv, ok := importer.LoadConventions(c.ConventionDir).Find(c.Convention)
		if !ok {
			return importer.Options{}, fmt.Errorf("unknown naming convention %q", c.Convention)
		}
		return conv.Options()
	}
	m, err := importer.MatcherByName(c.Matcher)
	if err != nil {
		return importer.Options{}, err
	}
	return importer.Options{
		AttackPrefix:        c.AttackPrefix,
		ReleasePrefix:       c.ReleasePrefix,
		TremulantPrefix:     c.TremulantPrefix,
		LoadOnlyOneAttack:   c.LoadOnlyOneAttack,
		LoadRelease:         c.LoadRelease,
		ExtractKeyPressTime: c.ExtractKeyPressTime,
		Matcher:             m,
		Extensions:          c.Extensions,
	}, nil
}
