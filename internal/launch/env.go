package launch

import (
	"fmt"
	"os"
	"sort"

	"github.com/joho/godotenv"
)

// Builds the container environment from layered sources.
//
// Recipe defaults form the base, entries from the env file override
// them, and explicit overrides win over both. The result is sorted for
// stable container specs.
func assembleEnv(defaults map[string]string, envFile string, overrides map[string]string) ([]string, error) {
	merged := map[string]string{}
	for k, v := range defaults {
		merged[k] = v
	}

	if envFile != "" {
		fileEnv, err := godotenv.Read(envFile)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrEnvFile, envFile, err)
		}
		for k, v := range fileEnv {
			merged[k] = v
		}
	}

	for k, v := range overrides {
		merged[k] = v
	}

	entries := make([]string, 0, len(merged))
	for k, v := range merged {
		entries = append(entries, k+"="+v)
	}
	sort.Strings(entries)
	return entries, nil
}

// Returns the env file path to load.
//
// An explicit path is required to exist. With no explicit path, a .env
// in the current directory is picked up when present, matching how the
// service reads its own configuration.
func resolveEnvFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("%w: %w", ErrEnvFile, err)
		}
		return explicit, nil
	}

	if _, err := os.Stat(".env"); err == nil {
		return ".env", nil
	}
	return "", nil
}
