package config

import (
	"os"
	"path/filepath"
)

const defaultBaseDir = ".advisor"

// Paths holds resolved filesystem paths for advisor data.
type Paths struct {
	Base          string // ~/.advisor
	Config        string // ~/.advisor/config.yaml
	Conversations string // ~/.advisor/conversations
	Data          string // ~/.advisor/data
	Exports       string // ~/.advisor/exports
	Logs          string // ~/.advisor/logs
}

// ResolvePaths computes all standard paths from the home directory.
// If ADVISOR_HOME is set, it overrides the default base directory.
func ResolvePaths() (Paths, error) {
	base := os.Getenv("ADVISOR_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, err
		}
		base = filepath.Join(home, defaultBaseDir)
	}

	return Paths{
		Base:          base,
		Config:        filepath.Join(base, "config.yaml"),
		Conversations: filepath.Join(base, "conversations"),
		Data:          filepath.Join(base, "data"),
		Exports:       filepath.Join(base, "exports"),
		Logs:          filepath.Join(base, "logs"),
	}, nil
}

// EnsureDirs creates all standard directories if they don't exist.
func (p Paths) EnsureDirs() error {
	for _, d := range []string{p.Base, p.Conversations, p.Data, p.Exports, p.Logs} {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return err
		}
	}
	return nil
}
