package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/photonsim/internal/camera"
	"github.com/san-kum/photonsim/internal/star"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSpawnRate    = 10000.0
	DefaultTTL          = 256
	DefaultWindowCap    = 256
	DefaultFadeOutSpeed = 0.95
	DefaultTimeSpeed    = 1.0
	DefaultHoleSize     = 0.1
	DefaultFocalLength  = 1.0
	DefaultSensorSize   = 2.0
	DefaultCanvasSize   = 512
	DefaultIterations   = 100
	DefaultTheta        = 0.5
	DefaultOutputDir    = "out"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid value")

// Vec3 is a YAML friendly 3-vector.
type Vec3 [3]float64

func (v Vec3) R3() r3.Vec { return r3.Vec{X: v[0], Y: v[1], Z: v[2]} }

type Config struct {
	PhotonSpawnRate float64       `yaml:"photon_spawn_rate"`
	PhotonTTL       int           `yaml:"photon_ttl"`
	WindowCap       int           `yaml:"photon_batch_window_cap"`
	FadeOutSpeed    float64       `yaml:"fade_out_speed"`
	TimeSpeed       float64       `yaml:"time_speed"`
	Camera          CameraConfig  `yaml:"camera"`
	Canvas          CanvasConfig  `yaml:"canvas"`
	Iterations      int           `yaml:"iterations"`
	SnapshotEvery   int           `yaml:"snapshot_every"`
	OutputDirectory string        `yaml:"output_directory"`
	Backend         string        `yaml:"backend"`
	Workers         int           `yaml:"workers"`
	Seed            uint64        `yaml:"seed"`
	Emission        string        `yaml:"emission"`
	Gravity         GravityConfig `yaml:"gravity"`
	Stars           []StarConfig  `yaml:"stars"`
	Galaxy          *GalaxyConfig `yaml:"galaxy,omitempty"`
	LogLevel        string        `yaml:"log_level"`
	GIF             bool          `yaml:"gif"`
}

type CameraConfig struct {
	HoleSize    float64    `yaml:"hole_size"`
	FocalLength float64    `yaml:"focal_length"`
	SensorSize  [2]float64 `yaml:"sensor_size"`
}

type CanvasConfig struct {
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	Gamma  float64 `yaml:"gamma"`
}

type GravityConfig struct {
	Mode      string  `yaml:"mode"`
	Theta     float64 `yaml:"theta"`
	Softening float64 `yaml:"softening"`
}

type StarConfig struct {
	Position   Vec3    `yaml:"position"`
	Velocity   Vec3    `yaml:"velocity"`
	Mass       float64 `yaml:"mass"`
	Luminosity float64 `yaml:"luminosity"`
	Wavelength float64 `yaml:"wavelength"`
}

type GalaxyConfig struct {
	Center     Vec3    `yaml:"center"`
	Top        Vec3    `yaml:"top"`
	Radius     float64 `yaml:"radius"`
	Thickness  float64 `yaml:"thickness"`
	Size       int     `yaml:"size"`
	Mass       float64 `yaml:"mass"`
	Luminosity float64 `yaml:"luminosity"`
	Wavelength float64 `yaml:"wavelength"`
}

// DefaultConfig is a single white star four units in front of the camera.
func DefaultConfig() *Config {
	return &Config{
		PhotonSpawnRate: DefaultSpawnRate,
		PhotonTTL:       DefaultTTL,
		WindowCap:       DefaultWindowCap,
		FadeOutSpeed:    DefaultFadeOutSpeed,
		TimeSpeed:       DefaultTimeSpeed,
		Camera: CameraConfig{
			HoleSize:    DefaultHoleSize,
			FocalLength: DefaultFocalLength,
			SensorSize:  [2]float64{DefaultSensorSize, DefaultSensorSize},
		},
		Canvas: CanvasConfig{
			Width:  DefaultCanvasSize,
			Height: DefaultCanvasSize,
			Gamma:  1.0,
		},
		Iterations:      DefaultIterations,
		OutputDirectory: DefaultOutputDir,
		Backend:         "auto",
		Emission:        "polar",
		Gravity: GravityConfig{
			Mode:  "direct",
			Theta: DefaultTheta,
		},
		Stars: []StarConfig{
			{Position: Vec3{0, 0, -4}, Mass: 1, Luminosity: 1, Wavelength: 550},
		},
		LogLevel: "info",
	}
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := cfg.merge(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Resolve layers defaults, an optional preset, an optional YAML file and the
// process environment, in that order.
func Resolve(preset, path string) (*Config, error) {
	cfg := DefaultConfig()
	if preset != "" {
		p := GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("%w: unknown preset %q", ErrInvalid, preset)
		}
		cfg = p
	}
	if path != "" {
		if err := cfg.merge(path); err != nil {
			return nil, err
		}
	}
	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) merge(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// CameraModel builds the camera described by the config.
func (c *Config) CameraModel() camera.Camera {
	return camera.New(c.Camera.HoleSize, c.Camera.FocalLength,
		r2.Vec{X: c.Camera.SensorSize[0], Y: c.Camera.SensorSize[1]})
}

func (c *Config) Sampling() star.Sampling { return star.ParseSampling(c.Emission) }

// BuildStars returns the explicit stars followed by the galaxy, if any.
func (c *Config) BuildStars(rng star.Source) []star.Star {
	stars := make([]star.Star, 0, len(c.Stars))
	for _, s := range c.Stars {
		stars = append(stars, star.Star{
			Position:   s.Position.R3(),
			Velocity:   s.Velocity.R3(),
			Mass:       s.Mass,
			Luminosity: s.Luminosity,
			Wavelength: s.Wavelength,
		})
	}
	if g := c.Galaxy; g != nil {
		stars = star.Galaxy{
			Center:    g.Center.R3(),
			Top:       g.Top.R3(),
			Radius:    g.Radius,
			Thickness: g.Thickness,
			Size:      g.Size,
			Template: star.Star{
				Mass:       g.Mass,
				Luminosity: g.Luminosity,
				Wavelength: g.Wavelength,
			},
		}.Spawn(rng, stars)
	}
	return stars
}
