package config

import (
	"fmt"
	"strconv"
)

// Environment overrides, applied after the YAML file.
const (
	EnvSpawnRate    = "PHOTONS_SPAWN_RATE"
	EnvTTL          = "PHOTONS_TTL"
	EnvWindowCap    = "PHOTONS_WINDOW_CAP"
	EnvFadeOutSpeed = "PHOTONS_FADE_OUT_SPEED"
	EnvOutputDir    = "PHOTONS_OUTPUT_DIR"
)

// ApplyEnv overrides fields from the variables above. lookup is usually
// os.LookupEnv.
func ApplyEnv(c *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvSpawnRate); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, EnvSpawnRate, v, err)
		}
		c.PhotonSpawnRate = f
	}
	if v, ok := lookup(EnvTTL); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, EnvTTL, v, err)
		}
		c.PhotonTTL = n
	}
	if v, ok := lookup(EnvWindowCap); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, EnvWindowCap, v, err)
		}
		c.WindowCap = n
	}
	if v, ok := lookup(EnvFadeOutSpeed); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, EnvFadeOutSpeed, v, err)
		}
		c.FadeOutSpeed = f
	}
	if v, ok := lookup(EnvOutputDir); ok && v != "" {
		c.OutputDirectory = v
	}
	return nil
}
