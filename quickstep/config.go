package quickstep

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

const (
	// DefaultConfigFile is looked up in the working directory when no path is given.
	DefaultConfigFile = ".qs_profile"

	KeyStoragePath  = "storage_path"
	KeyInitializeDB = "initialize_db"

	defaultStoragePath = "/tmp/qstor"
)

// ConfigMap holds engine command line options keyed by flag name.
// It is built once per session and treated as read-only afterwards.
type ConfigMap map[string]string

// DefaultConfig returns the options used when no profile is available.
func DefaultConfig() ConfigMap {
	return ConfigMap{KeyStoragePath: defaultStoragePath}
}

// ResolveConfig parses profile text of the form:
//
//	KEY1 VALUE1
//	# comment
//	KEY2 VALUE2
//
// Empty text resolves to DefaultConfig. If any line does not split into exactly
// two fields, the whole text is rejected: the default config is returned
// together with a *ConfigParseError naming the offending line.
func ResolveConfig(text string) (ConfigMap, error) {
	if text == "" {
		return DefaultConfig(), nil
	}

	cfg := make(ConfigMap)
	for i, line := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" || strings.HasPrefix(stripped, "#") {
			continue
		}

		kv := strings.Fields(stripped)
		if len(kv) != 2 {
			return DefaultConfig(), &ConfigParseError{LineNo: i + 1, Line: line}
		}
		cfg[kv[0]] = kv[1]
	}

	return cfg, nil
}

// LoadConfig reads the profile at path and resolves it. A missing file
// resolves to the default config without an error.
func LoadConfig(path string) (ConfigMap, error) {
	if path == "" {
		path = DefaultConfigFile
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return DefaultConfig(), fmt.Errorf("os.ReadFile: %w", err)
	}

	return ResolveConfig(string(b))
}

// FlagTokens renders the config as "-key=value" arguments, sorted by key.
func FlagTokens(cfg ConfigMap) []string {
	keys := make([]string, 0, len(cfg))
	for k := range cfg {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tokens := make([]string, 0, len(keys))
	for _, k := range keys {
		tokens = append(tokens, "-"+k+"="+cfg[k])
	}
	return tokens
}

// NeedsBootstrap reports whether the storage directory named by the config
// has to be created by an initializing engine run before the first query.
func NeedsBootstrap(cfg ConfigMap) bool {
	storage, ok := cfg[KeyStoragePath]
	if !ok {
		return false
	}
	if _, ok := cfg[KeyInitializeDB]; ok {
		return false
	}

	info, err := os.Stat(storage)
	if err != nil {
		return true
	}
	return !info.IsDir()
}
