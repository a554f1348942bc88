package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gekko3d/galaxy"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var ErrUnsupportedPreset = errors.New("unsupported preset format")

type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Preset mirrors GenerationParameters on disk. Absent keys keep the base value.
type Preset struct {
	Count           *int     `toml:"count" yaml:"count"`
	Size            *float32 `toml:"size" yaml:"size"`
	Radius          *float32 `toml:"radius" yaml:"radius"`
	Branches        *int     `toml:"branches" yaml:"branches"`
	Spin            *float32 `toml:"spin" yaml:"spin"`
	Randomness      *float32 `toml:"randomness" yaml:"randomness"`
	RandomnessPower *float32 `toml:"randomness_power" yaml:"randomness_power"`
	InsideColor     *string  `toml:"inside_color" yaml:"inside_color"`
	OutsideColor    *string  `toml:"outside_color" yaml:"outside_color"`
}

func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedPreset, path)
}

func LoadPreset(path string, base galaxy.GenerationParameters) (galaxy.GenerationParameters, error) {
	format, err := FormatOf(path)
	if err != nil {
		return base, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read preset: %w", err)
	}
	params, err := DecodePreset(data, format, base)
	if err != nil {
		return base, fmt.Errorf("preset %s: %w", path, err)
	}
	return params, nil
}

func DecodePreset(data []byte, format Format, base galaxy.GenerationParameters) (galaxy.GenerationParameters, error) {
	var preset Preset
	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &preset)
	case FormatYAML:
		err = yaml.Unmarshal(data, &preset)
	default:
		return base, fmt.Errorf("%w: %s", ErrUnsupportedPreset, format)
	}
	if err != nil {
		return base, fmt.Errorf("decode %s: %w", format, err)
	}
	return preset.Apply(base)
}

func (p Preset) Apply(base galaxy.GenerationParameters) (galaxy.GenerationParameters, error) {
	out := base
	if p.Count != nil {
		out.Count = *p.Count
	}
	if p.Size != nil {
		out.Size = *p.Size
	}
	if p.Radius != nil {
		out.Radius = *p.Radius
	}
	if p.Branches != nil {
		out.Branches = *p.Branches
	}
	if p.Spin != nil {
		out.Spin = *p.Spin
	}
	if p.Randomness != nil {
		out.Randomness = *p.Randomness
	}
	if p.RandomnessPower != nil {
		out.RandomnessPower = *p.RandomnessPower
	}
	if p.InsideColor != nil {
		c, err := galaxy.ParseColor(*p.InsideColor)
		if err != nil {
			return base, fmt.Errorf("inside_color: %w", err)
		}
		out.InsideColor = c
	}
	if p.OutsideColor != nil {
		c, err := galaxy.ParseColor(*p.OutsideColor)
		if err != nil {
			return base, fmt.Errorf("outside_color: %w", err)
		}
		out.OutsideColor = c
	}
	return out, nil
}
