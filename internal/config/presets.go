package config

import "sort"

// Presets adjust the default config for a named scene.
var Presets = map[string]func(*Config){
	"single": func(c *Config) {},
	"offaxis": func(c *Config) {
		c.Stars = []StarConfig{
			{Position: Vec3{0.6, -0.4, -4}, Mass: 1, Luminosity: 1, Wavelength: 620},
		}
	},
	"binary": func(c *Config) {
		c.Stars = []StarConfig{
			{Position: Vec3{-0.5, 0, -6}, Velocity: Vec3{0, 2e-7, 0}, Mass: 1, Luminosity: 1, Wavelength: 470},
			{Position: Vec3{0.5, 0, -6}, Velocity: Vec3{0, -2e-7, 0}, Mass: 1, Luminosity: 1, Wavelength: 640},
		}
		c.Iterations = 400
	},
	"galaxy": func(c *Config) {
		c.Stars = nil
		c.Galaxy = &GalaxyConfig{
			Center:     Vec3{0, 0, -8},
			Top:        Vec3{0, 1, 0.3},
			Radius:     3,
			Thickness:  0.2,
			Size:       200,
			Mass:       1,
			Luminosity: 0.05,
			Wavelength: 560,
		}
		c.PhotonTTL = 64
		c.WindowCap = 64
		c.Gravity.Mode = "barneshut"
	},
}

// GetPreset returns a fresh config for the named preset, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
