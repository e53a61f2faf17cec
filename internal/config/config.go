// Package config persists tool settings between runs: the last used
// directories and the mask color and tolerance. Settings live in a small
// JSON file in the user's home directory and are passed around explicitly
// as values; there is no process-wide state.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/color-match-tools/internal/colormatch"
)

// FileName is the settings file name inside the user's home directory.
const FileName = ".color-match.json"

// Settings holds the persisted tool configuration.
type Settings struct {
	LastRefDir    string `json:"last_ref_dir"`
	LastTargetDir string `json:"last_tgt_dir"`
	LastOutDir    string `json:"last_out_dir"`

	// MaskColor is a "#RRGGBB" hex color or a "r,g,b" / "r,g,b,a"
	// component list. Empty disables masking.
	MaskColor string `json:"mask_color"`

	// MaskTolerance widens mask matching: 0 excludes exact matches only.
	MaskTolerance int `json:"mask_tolerance"`
}

// Default returns the settings used when no file exists: mask pure black,
// exact matches only.
func Default() Settings {
	return Settings{MaskColor: "#000000"}
}

// DefaultPath returns the settings file location in the user's home
// directory.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, FileName), nil
}

// Load reads settings from path. A missing file is not an error: the
// defaults are returned. Unknown keys in the file are ignored.
func Load(path string) (Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("failed to read settings: %w", err)
	}

	if err := json.Unmarshal(data, &s); err != nil {
		return Default(), fmt.Errorf("failed to parse settings: %w", err)
	}
	return s, nil
}

// Save writes the settings to path as indented JSON.
func (s Settings) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// Mask builds the colormatch mask described by the settings. An empty
// MaskColor yields a nil mask (masking disabled).
func (s Settings) Mask() (*colormatch.Mask, error) {
	return ParseMaskColor(s.MaskColor, s.MaskTolerance)
}

// ParseMaskColor parses a mask color specification into a mask.
//
// Accepted forms:
//   - "" or "none": masking disabled, returns (nil, nil)
//   - "#RRGGBB" hex (case-insensitive)
//   - "r,g,b" or "r,g,b,a" with components in [0, 255]
func ParseMaskColor(spec string, tolerance int) (*colormatch.Mask, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" || strings.EqualFold(spec, "none") {
		return nil, nil
	}

	if strings.HasPrefix(spec, "#") {
		c, err := colorful.Hex(spec)
		if err != nil {
			return nil, fmt.Errorf("invalid mask color %q: %w", spec, err)
		}
		r, g, b := c.RGB255()
		return colormatch.NewMask([]int{int(r), int(g), int(b)}, tolerance)
	}

	parts := strings.Split(spec, ",")
	components := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid mask color %q: component %q is not an integer", spec, p)
		}
		components = append(components, v)
	}
	return colormatch.NewMask(components, tolerance)
}
