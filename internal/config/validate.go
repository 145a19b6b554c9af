package config

import (
	"fmt"
	"slices"
)

var (
	backends  = []string{"auto", "cpu", "opencl"}
	emissions = []string{"polar", "uniform"}
	modes     = []string{"direct", "barneshut"}
	levels    = []string{"debug", "info", "warn", "error"}
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Validate checks every field. The config must not be modified afterwards.
func (c *Config) Validate() error {
	switch {
	case c.PhotonSpawnRate < 0:
		return invalid("photon_spawn_rate must be non-negative, got %v", c.PhotonSpawnRate)
	case c.PhotonTTL <= 0:
		return invalid("photon_ttl must be positive, got %d", c.PhotonTTL)
	case c.WindowCap <= 0:
		return invalid("photon_batch_window_cap must be positive, got %d", c.WindowCap)
	case c.FadeOutSpeed <= 0 || c.FadeOutSpeed >= 1:
		return invalid("fade_out_speed must be in (0, 1), got %v", c.FadeOutSpeed)
	case c.TimeSpeed <= 0:
		return invalid("time_speed must be positive, got %v", c.TimeSpeed)
	case c.Camera.HoleSize <= 0:
		return invalid("camera.hole_size must be positive, got %v", c.Camera.HoleSize)
	case c.Camera.FocalLength <= 0:
		return invalid("camera.focal_length must be positive, got %v", c.Camera.FocalLength)
	case c.Camera.SensorSize[0] <= 0 || c.Camera.SensorSize[1] <= 0:
		return invalid("camera.sensor_size must be positive, got %v", c.Camera.SensorSize)
	case c.Canvas.Width <= 0 || c.Canvas.Height <= 0:
		return invalid("canvas size must be positive, got %dx%d", c.Canvas.Width, c.Canvas.Height)
	case c.Canvas.Gamma <= 0:
		return invalid("canvas.gamma must be positive, got %v", c.Canvas.Gamma)
	case c.Iterations < 0:
		return invalid("iterations must be non-negative, got %d", c.Iterations)
	case c.SnapshotEvery < 0:
		return invalid("snapshot_every must be non-negative, got %d", c.SnapshotEvery)
	case c.OutputDirectory == "":
		return invalid("output_directory is empty")
	case !slices.Contains(backends, c.Backend):
		return invalid("backend %q not one of %v", c.Backend, backends)
	case c.Workers < 0:
		return invalid("workers must be non-negative, got %d", c.Workers)
	case !slices.Contains(emissions, c.Emission):
		return invalid("emission %q not one of %v", c.Emission, emissions)
	case !slices.Contains(modes, c.Gravity.Mode):
		return invalid("gravity.mode %q not one of %v", c.Gravity.Mode, modes)
	case c.Gravity.Theta < 0:
		return invalid("gravity.theta must be non-negative, got %v", c.Gravity.Theta)
	case c.Gravity.Softening < 0:
		return invalid("gravity.softening must be non-negative, got %v", c.Gravity.Softening)
	case !slices.Contains(levels, c.LogLevel):
		return invalid("log_level %q not one of %v", c.LogLevel, levels)
	}

	for i, s := range c.Stars {
		if s.Mass <= 0 {
			return invalid("stars[%d].mass must be positive, got %v", i, s.Mass)
		}
		if s.Luminosity < 0 {
			return invalid("stars[%d].luminosity must be non-negative, got %v", i, s.Luminosity)
		}
	}

	total := len(c.Stars)
	if g := c.Galaxy; g != nil {
		switch {
		case g.Size < 0:
			return invalid("galaxy.size must be non-negative, got %d", g.Size)
		case g.Size > 0 && g.Mass <= 0:
			return invalid("galaxy.mass must be positive, got %v", g.Mass)
		case g.Luminosity < 0:
			return invalid("galaxy.luminosity must be non-negative, got %v", g.Luminosity)
		case g.Radius < 0 || g.Thickness < 0:
			return invalid("galaxy radius and thickness must be non-negative")
		case g.Size > 0 && g.Top == (Vec3{}):
			return invalid("galaxy.top must be non-zero")
		}
		total += g.Size
	}
	if total == 0 {
		return invalid("no stars configured")
	}
	return nil
}
