package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

const defaultPrompt = "esox> "

// sessionConfig is what an esoxi config file can set. Anything left unset
// keeps its default.
type sessionConfig struct {
	// Prompt is the text shown before each line of input.
	Prompt string `toml:"prompt"`

	// History is the path of the readline history file. Empty means no
	// history is kept across sessions.
	History string `toml:"history"`
}

type configFile struct {
	Session sessionConfig `toml:"session"`
}

// loadConfig reads the config file at path and merges it over the defaults.
// An empty path returns the defaults untouched.
func loadConfig(path string) (sessionConfig, error) {
	cfg := sessionConfig{
		Prompt: defaultPrompt,
	}

	if path == "" {
		return cfg, nil
	}

	fileData, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("%q: reading from disk: %w", path, err)
	}

	var parsed configFile
	if tomlErr := toml.Unmarshal(fileData, &parsed); tomlErr != nil {
		return cfg, fmt.Errorf("%q: %w", path, tomlErr)
	}

	if parsed.Session.Prompt != "" {
		cfg.Prompt = parsed.Session.Prompt
	}
	if parsed.Session.History != "" {
		cfg.History = parsed.Session.History
	}

	return cfg, nil
}
