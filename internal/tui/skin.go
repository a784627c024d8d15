package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// Skin is a keypad color palette. Colors are anything lipgloss.Color
// accepts: hex ("#FF9500") or ANSI 256 numbers ("214").
type Skin struct {
	Name       string `yaml:"name"`
	Background string `yaml:"background"`
	Text       string `yaml:"text"`
	Digit      string `yaml:"digit"`
	Operator   string `yaml:"operator"`
	Function   string `yaml:"function"`
	Focus      string `yaml:"focus"`
	Error      string `yaml:"error"`
	Dim        string `yaml:"dim"`
}

var builtinSkins = map[string]Skin{
	"default": {
		Name:       "default",
		Background: "#000000",
		Text:       "#FFFFFF",
		Digit:      "#FF9500",
		Operator:   "#30B0C7",
		Function:   "#A5A5A5",
		Focus:      "#FFD60A",
		Error:      "#FF453A",
		Dim:        "240",
	},
	"mono": {
		Name:       "mono",
		Background: "0",
		Text:       "15",
		Digit:      "238",
		Operator:   "244",
		Function:   "250",
		Focus:      "15",
		Error:      "15",
		Dim:        "242",
	},
}

var activeSkin = builtinSkins["default"]

// InitializeSkin selects the named skin. Built-in skins are tried first,
// then configDir/skins/<name>.yml. On error the default skin stays active.
func InitializeSkin(name, configDir string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "default"
	}
	if s, ok := builtinSkins[name]; ok {
		activeSkin = s
		return nil
	}
	if configDir == "" {
		return fmt.Errorf("skin %q not found", name)
	}

	s, err := LoadSkinFile(filepath.Join(configDir, "skins", name+".yml"))
	if err != nil {
		return err
	}
	if s.Name == "" {
		s.Name = name
	}
	activeSkin = s
	return nil
}

// LoadSkinFile reads a YAML skin. Colors left out of the file fall back
// to the default skin.
func LoadSkinFile(path string) (Skin, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Skin{}, fmt.Errorf("skin file %s not found", path)
		}
		return Skin{}, fmt.Errorf("reading skin: %w", err)
	}

	s := builtinSkins["default"]
	s.Name = ""
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Skin{}, fmt.Errorf("parsing skin %s: %w", path, err)
	}
	return s, nil
}

// ActiveSkin returns the palette currently used for rendering.
func ActiveSkin() Skin { return activeSkin }

func (s Skin) color(c string) lipgloss.Color { return lipgloss.Color(c) }
