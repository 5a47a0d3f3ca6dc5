package config

import (
	"os"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/snowbow/internal/foundation/errors"
)

// LoadEnvFiles loads KEY=VALUE files into the process environment. Missing
// files are skipped. Variables already set in the environment win.
// It returns the files that were loaded.
func LoadEnvFiles(paths ...string) ([]string, error) {
	var loaded []string
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return loaded, errors.WrapError(err, errors.CategoryConfig, "env file not accessible").WithContext("file", p).Build()
		}
		if err := godotenv.Load(p); err != nil {
			return loaded, errors.WrapError(err, errors.CategoryConfig, "env file not parseable").WithContext("file", p).Build()
		}
		loaded = append(loaded, p)
	}
	return loaded, nil
}
