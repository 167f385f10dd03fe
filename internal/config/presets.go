package config

import "sort"

// Preset is a named starting configuration layered over DefaultConfig.
type Preset struct {
	Description string
	Apply       func(*Config)
}

var Presets = map[string]Preset{
	"vertical": {
		Description: "hanging straight down, springs bouncing in line",
		Apply: func(c *Config) {
			c.Physics.Alpha0, c.Physics.Beta0 = Float(0), Float(0)
			c.Physics.K1, c.Physics.K2 = Float(45), Float(45)
		},
	},
	"gentle": {
		Description: "small swing, both springs at k=45",
		Apply: func(c *Config) {
			c.Physics.Alpha0, c.Physics.Beta0 = Float(0.3), Float(0.3)
			c.Physics.K1, c.Physics.K2 = Float(45), Float(45)
			c.Sim.TEnd = 6
		},
	},
	"chaos": {
		Description: "large opposed angles with soft springs",
		Apply: func(c *Config) {
			c.Physics.Alpha0, c.Physics.Beta0 = Float(2.5), Float(-2.0)
			c.Physics.K1, c.Physics.K2 = Float(35), Float(35)
			c.Sim.TEnd = 10
			c.Sim.RTol = 1e-6
		},
	},
	"stiff": {
		Description: "near-rigid links, close to a classic double pendulum",
		Apply: func(c *Config) {
			c.Physics.Alpha0, c.Physics.Beta0 = Float(1.5), Float(1.5)
			c.Physics.K1, c.Physics.K2 = Float(400), Float(400)
			c.Sim.TEnd = 8
			c.Sim.RTol = 1e-6
		},
	},
	"preview": {
		Description: "quick low-resolution render, no trail",
		Apply: func(c *Config) {
			c.Render.Size = 200
			c.Render.DPI = 50
			c.Render.Trace = false
			c.Sim.FPS = 12
		},
	},
}

// GetPreset returns DefaultConfig with the named preset applied, or nil
// for an unknown name.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	p.Apply(cfg)
	return cfg
}

// ApplyPreset layers the named preset over cfg.
func ApplyPreset(cfg *Config, name string) bool {
	p, ok := Presets[name]
	if !ok {
		return false
	}
	p.Apply(cfg)
	return true
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
