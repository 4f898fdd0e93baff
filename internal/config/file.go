package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// ProjectConfigName is picked up from the working directory when no
// explicit --config path is given.
const ProjectConfigName = "polysplit.toml"

// LoadFile decodes a TOML config file over cfg. An empty path falls back to
// ./polysplit.toml when it exists. It returns the path that was read, or ""
// when no file was used. An explicit path that does not exist is an error.
func LoadFile(path string, cfg *Config) (string, error) {
	explicit := path != ""
	if !explicit {
		path = ProjectConfigName
	}
	resolved, err := ExpandPath(path)
	if err != nil {
		return "", err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return "", nil
		}
		return "", fmt.Errorf("%w: open config: %v", ErrInvalid, err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		return "", fmt.Errorf("%w: parse config %s: %v", ErrInvalid, resolved, err)
	}
	return resolved, nil
}
