package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// LoadSettings decodes settings.toml over the defaults, writing the
// commented template first if the file doesn't exist yet.
func LoadSettings() (*Settings, error) {
	cfg := DefaultSettings()
	settingsPath := GetSettingsFilePath()

	if !FileExists(settingsPath) {
		if err := CreateDefaultSettings(); err != nil {
			return nil, fmt.Errorf("failed to create settings: %w", err)
		}
		return cfg, nil
	}

	return decodeSettingsFile(settingsPath, cfg)
}

// LoadSettingsFromPath loads settings from a specific file path on top of
// the defaults. A missing file is an error.
func LoadSettingsFromPath(path string) (*Settings, error) {
	return decodeSettingsFile(path, DefaultSettings())
}

func decodeSettingsFile(path string, cfg *Settings) (*Settings, error) {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 && DebugLog != nil {
		DebugLog.Printf("[Config] Ignoring unknown settings keys: %v", undecoded)
	}

	return cfg, nil
}

func SaveSettings(cfg *Settings) error {
	if err := EnsureDir(GetConfigDir()); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(GetSettingsFilePath(), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create settings file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	return nil
}

func CreateDefaultSettings() error {
	if err := EnsureDir(GetConfigDir()); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	settingsPath := GetSettingsFilePath()
	if FileExists(settingsPath) {
		return nil
	}

	if err := os.WriteFile(settingsPath, []byte(GenerateSettingsTemplate()), 0600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}

	return nil
}
