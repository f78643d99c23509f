package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/repograde/repograde/internal/domain"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in a directory.
const FileName = ".repograde.yaml"

// YAMLLoader implements domain.ConfigLoader by reading .repograde.yaml.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads the config at path. A directory is searched for .repograde.yaml.
// Returns DefaultConfig if the file does not exist.
func (l *YAMLLoader) Load(path string) (domain.Config, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, FileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.DefaultConfig(), nil
		}
		return domain.Config{}, err
	}
	name := filepath.Base(path)

	// Validate the raw input first so typos are reported against what the user wrote.
	var raw domain.Config
	if err := decode(data, &raw); err != nil {
		return domain.Config{}, fmt.Errorf("parsing %s: %w", name, err)
	}
	if err := raw.Validate(); err != nil {
		return domain.Config{}, fmt.Errorf("invalid %s: %w", name, err)
	}

	// Decoding over the defaults keeps every value the file leaves out.
	cfg := domain.DefaultConfig()
	if err := decode(data, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("parsing %s: %w", name, err)
	}
	if err := cfg.Validate(); err != nil {
		return domain.Config{}, fmt.Errorf("invalid %s: %w", name, err)
	}
	return cfg, nil
}

func decode(data []byte, into *domain.Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(into); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
