package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/gekko3d/galaxy"
	"github.com/joho/godotenv"
)

const envPrefix = "GALAXY_"

// DefaultEnvFile is read when present; a missing file is not an error.
const DefaultEnvFile = ".env"

type WindowConfig struct {
	Width  int
	Height int
	Title  string
}

type Config struct {
	Window     WindowConfig
	Debug      bool
	Seed       int64
	Seeded     bool
	PresetPath string
	Params     galaxy.GenerationParameters
}

func Default() Config {
	return Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "Twirl Galaxy",
		},
		Params: galaxy.DefaultParameters(),
	}
}

// Env resolves GALAXY_* variables from the process environment first, then
// from any dotenv files it was built with.
type Env struct {
	dotenv map[string]string
}

// LoadEnv reads the given dotenv files without touching the process
// environment. With no files, DefaultEnvFile is tried.
func LoadEnv(files ...string) (*Env, error) {
	optional := false
	if len(files) == 0 {
		files = []string{DefaultEnvFile}
		optional = true
	}

	env := &Env{dotenv: map[string]string{}}
	for _, f := range files {
		vals, err := godotenv.Read(f)
		if err != nil {
			if optional && errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read env file %s: %w", f, err)
		}
		for k, v := range vals {
			if _, ok := env.dotenv[k]; !ok {
				env.dotenv[k] = v
			}
		}
	}
	return env, nil
}

func (e *Env) Lookup(name string) (string, bool) {
	key := envPrefix + name
	if v, ok := os.LookupEnv(key); ok {
		return v, true
	}
	if e == nil {
		return "", false
	}
	v, ok := e.dotenv[key]
	return v, ok
}

// Load layers built-in defaults, the preset file and GALAXY_* variables, in
// that order. presetPath may be empty; GALAXY_PRESET is used instead.
func Load(presetPath string, envFiles ...string) (Config, error) {
	env, err := LoadEnv(envFiles...)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if presetPath == "" {
		presetPath, _ = env.Lookup("PRESET")
	}
	cfg.PresetPath = presetPath

	if err := env.applyApp(&cfg); err != nil {
		return Config{}, err
	}
	cfg.Params, err = ResolveParams(presetPath, env)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ResolveParams builds generation parameters from defaults, the preset file
// (if any) and environment overrides.
func ResolveParams(presetPath string, env *Env) (galaxy.GenerationParameters, error) {
	params := galaxy.DefaultParameters()
	if presetPath != "" {
		var err error
		params, err = LoadPreset(presetPath, params)
		if err != nil {
			return params, err
		}
	}
	if err := env.applyParams(&params); err != nil {
		return params, err
	}
	return params.Sanitize(), nil
}

func (e *Env) applyApp(cfg *Config) error {
	var errs []error
	errs = append(errs,
		e.intVar("WIDTH", &cfg.Window.Width),
		e.intVar("HEIGHT", &cfg.Window.Height),
		e.boolVar("DEBUG", &cfg.Debug),
	)
	if v, ok := e.Lookup("TITLE"); ok {
		cfg.Window.Title = v
	}
	if v, ok := e.Lookup("SEED"); ok {
		seed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sSEED: %w", envPrefix, err))
		} else {
			cfg.Seed, cfg.Seeded = seed, true
		}
	}
	return errors.Join(errs...)
}

func (e *Env) applyParams(p *galaxy.GenerationParameters) error {
	errs := []error{
		e.intVar("COUNT", &p.Count),
		e.floatVar("SIZE", &p.Size),
		e.floatVar("RADIUS", &p.Radius),
		e.intVar("BRANCHES", &p.Branches),
		e.floatVar("SPIN", &p.Spin),
		e.floatVar("RANDOMNESS", &p.Randomness),
		e.floatVar("RANDOMNESS_POWER", &p.RandomnessPower),
		e.colorVar("INSIDE_COLOR", &p.InsideColor),
		e.colorVar("OUTSIDE_COLOR", &p.OutsideColor),
	}
	return errors.Join(errs...)
}

func (e *Env) intVar(name string, dst *int) error {
	v, ok := e.Lookup(name)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s%s: %w", envPrefix, name, err)
	}
	*dst = n
	return nil
}

func (e *Env) floatVar(name string, dst *float32) error {
	v, ok := e.Lookup(name)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 32)
	if err != nil {
		return fmt.Errorf("%s%s: %w", envPrefix, name, err)
	}
	*dst = float32(f)
	return nil
}

func (e *Env) boolVar(name string, dst *bool) error {
	v, ok := e.Lookup(name)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s%s: %w", envPrefix, name, err)
	}
	*dst = b
	return nil
}

func (e *Env) colorVar(name string, dst *galaxy.Color) error {
	v, ok := e.Lookup(name)
	if !ok {
		return nil
	}
	c, err := galaxy.ParseColor(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s%s: %w", envPrefix, name, err)
	}
	*dst = c
	return nil
}
