package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed editor.default.yaml
var defaultEditorYAML []byte

// EditorConfig is the TinyMCE init surface. It is cosmetic: nothing in the
// save/fetch flow depends on it.
type EditorConfig struct {
	ScriptSrc    string   `yaml:"script_src" json:"-"`
	Height       int      `yaml:"height" json:"height"`
	Menubar      bool     `yaml:"menubar" json:"menubar"`
	Plugins      []string `yaml:"plugins" json:"plugins"`
	Toolbar      string   `yaml:"toolbar" json:"toolbar"`
	ContentStyle string   `yaml:"content_style" json:"content_style"`
}

// DefaultEditorConfig returns the embedded widget configuration.
func DefaultEditorConfig() EditorConfig {
	var cfg EditorConfig
	if err := yaml.Unmarshal(defaultEditorYAML, &cfg); err != nil {
		panic(fmt.Sprintf("embedded editor config is invalid: %v", err))
	}
	return cfg
}

// LoadEditorConfig reads a YAML widget configuration from path, layered over
// the embedded defaults. An empty path returns the defaults.
func LoadEditorConfig(path string) (EditorConfig, error) {
	cfg := DefaultEditorConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read editor config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse editor config %s: %w", path, err)
	}
	return cfg, nil
}
