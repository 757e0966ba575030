// Package styles defines the visual styling for stackops terminal output.
//
// All styles use semantic names and adaptive colors that adjust to light
// and dark terminal themes. The built-in theme is embedded from
// styles.yaml; LoadStyles overlays an operator theme on top of it.
package styles

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

//go:embed styles.yaml
var defaultStyles []byte

// ColorDef represents an adaptive color definition in YAML
type ColorDef struct {
	Light string `yaml:"light"`
	Dark  string `yaml:"dark"`
}

// StyleDef represents a style definition in YAML
type StyleDef struct {
	Bold             bool   `yaml:"bold,omitempty"`
	Italic           bool   `yaml:"italic,omitempty"`
	Underline        bool   `yaml:"underline,omitempty"`
	Foreground       string `yaml:"foreground,omitempty"`
	Background       string `yaml:"background,omitempty"`
	Border           string `yaml:"border,omitempty"`
	BorderForeground string `yaml:"borderForeground,omitempty"`
	Width            int    `yaml:"width,omitempty"`
	Align            string `yaml:"align,omitempty"`
	MarginLeft       int    `yaml:"marginLeft,omitempty"`
	MarginBottom     int    `yaml:"marginBottom,omitempty"`
	MarginTop        int    `yaml:"marginTop,omitempty"`
	PaddingLeft      int    `yaml:"paddingLeft,omitempty"`
	PaddingRight     int    `yaml:"paddingRight,omitempty"`
}

// Config represents the complete styles configuration
type Config struct {
	Colors map[string]ColorDef `yaml:"colors"`
	Styles map[string]StyleDef `yaml:"styles"`
}

// StyleRegistry maps semantic names to lipgloss styles
var StyleRegistry map[string]lipgloss.Style

// Adaptive colors loaded from YAML
var colors map[string]lipgloss.AdaptiveColor

func init() {
	if err := Parse(defaultStyles); err != nil {
		panic(fmt.Sprintf("failed to load styles: %v", err))
	}
}

// DefaultContent returns the embedded theme
func DefaultContent() []byte {
	return defaultStyles
}

// LoadStyles overlays the theme in path on the built-in one. Colors and
// styles it names replace the built-in definitions; the rest are kept.
func LoadStyles(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read styles file %s: %w", path, err)
	}

	base, err := decode(defaultStyles)
	if err != nil {
		return err
	}
	overlay, err := decode(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	for name, def := range overlay.Colors {
		base.Colors[name] = def
	}
	for name, def := range overlay.Styles {
		base.Styles[name] = def
	}
	apply(base)
	return nil
}

// Parse replaces the registry with the styles defined in data
func Parse(data []byte) error {
	config, err := decode(data)
	if err != nil {
		return err
	}
	apply(config)
	return nil
}

func decode(data []byte) (Config, error) {
	config := Config{
		Colors: map[string]ColorDef{},
		Styles: map[string]StyleDef{},
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("failed to parse styles: %w", err)
	}
	if config.Colors == nil {
		config.Colors = map[string]ColorDef{}
	}
	if config.Styles == nil {
		config.Styles = map[string]StyleDef{}
	}
	return config, nil
}

func apply(config Config) {
	colors = make(map[string]lipgloss.AdaptiveColor)
	for name, def := range config.Colors {
		colors[name] = lipgloss.AdaptiveColor{
			Light: def.Light,
			Dark:  def.Dark,
		}
	}

	StyleRegistry = make(map[string]lipgloss.Style)
	for name, def := range config.Styles {
		StyleRegistry[name] = buildStyle(def)
	}
}

// buildStyle constructs a lipgloss style from a style definition
func buildStyle(def StyleDef) lipgloss.Style {
	style := lipgloss.NewStyle()

	// Apply text formatting
	if def.Bold {
		style = style.Bold(true)
	}
	if def.Italic {
		style = style.Italic(true)
	}
	if def.Underline {
		style = style.Underline(true)
	}

	// Apply colors
	if color, ok := colors[def.Foreground]; ok {
		style = style.Foreground(color)
	}
	if color, ok := colors[def.Background]; ok {
		style = style.Background(color)
	}

	switch def.Border {
	case "rounded":
		style = style.Border(lipgloss.RoundedBorder())
	case "normal":
		style = style.Border(lipgloss.NormalBorder())
	case "double":
		style = style.Border(lipgloss.DoubleBorder())
	}
	if color, ok := colors[def.BorderForeground]; ok {
		style = style.BorderForeground(color)
	}

	// Apply layout
	if def.Width > 0 {
		style = style.Width(def.Width)
	}
	switch def.Align {
	case "left":
		style = style.Align(lipgloss.Left)
	case "center":
		style = style.Align(lipgloss.Center)
	case "right":
		style = style.Align(lipgloss.Right)
	}

	// Apply spacing
	if def.MarginLeft > 0 {
		style = style.MarginLeft(def.MarginLeft)
	}
	if def.MarginBottom > 0 {
		style = style.MarginBottom(def.MarginBottom)
	}
	if def.MarginTop > 0 {
		style = style.MarginTop(def.MarginTop)
	}
	if def.PaddingLeft > 0 || def.PaddingRight > 0 {
		style = style.Padding(0, def.PaddingRight, 0, def.PaddingLeft)
	}

	return style
}

// GetStyle safely retrieves a style from the registry
func GetStyle(name string) lipgloss.Style {
	if style, ok := StyleRegistry[name]; ok {
		return style
	}
	// Return a default style if not found
	return lipgloss.NewStyle()
}

// MergeStyles combines multiple styles
func MergeStyles(styles ...string) lipgloss.Style {
	result := lipgloss.NewStyle()
	for _, name := range styles {
		result = result.Inherit(GetStyle(name))
	}
	return result
}
