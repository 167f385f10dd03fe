package config

import (
	"fmt"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/elastipend/internal/encoder"
	"github.com/san-kum/elastipend/internal/integrators"
	"github.com/san-kum/elastipend/internal/physics"
	"github.com/san-kum/elastipend/internal/render"
)

const (
	DefaultTEnd    = 2.0
	DefaultFPS     = 24.0
	DefaultRTol    = 1e-3
	DefaultATol    = 1e-6
	DefaultSize    = 700
	DefaultDPI     = 100
	DefaultNS      = 50
	DefaultStride  = 4
	DefaultMult    = 3
	DefaultCache   = "_figs"
	DefaultVideos  = "_videos"
	DefaultFFmpeg  = "ffmpeg"
	DefaultNaming  = string(encoder.NamingTimestamp)
	DefaultRetries = 3
)

type Config struct {
	Seed     int64         `yaml:"seed"`
	LogLevel string        `yaml:"log_level"`
	Physics  PhysicsConfig `yaml:"physics"`
	Sim      SimConfig     `yaml:"simulation"`
	Render   RenderConfig  `yaml:"render"`
	Output   OutputConfig  `yaml:"output"`
}

// PhysicsConfig holds the model constants. Alpha0, Beta0, K1 and K2 are
// optional; a nil value is drawn from the run's random source.
type PhysicsConfig struct {
	G      float64  `yaml:"g"`
	L1     float64  `yaml:"l1"`
	L2     float64  `yaml:"l2"`
	M1     float64  `yaml:"m1"`
	M2     float64  `yaml:"m2"`
	K1     *float64 `yaml:"k1,omitempty"`
	K2     *float64 `yaml:"k2,omitempty"`
	Alpha0 *float64 `yaml:"alpha0,omitempty"`
	Beta0  *float64 `yaml:"beta0,omitempty"`
	A0     float64  `yaml:"a0"`
	B0     float64  `yaml:"b0"`
}

type SimConfig struct {
	TEnd   float64 `yaml:"t_end"`
	FPS    float64 `yaml:"fps"`
	Method string  `yaml:"method"`
	RTol   float64 `yaml:"rtol"`
	ATol   float64 `yaml:"atol"`
}

type RenderConfig struct {
	Size          int  `yaml:"size"`
	DPI           int  `yaml:"dpi"`
	Trace         bool `yaml:"trace"`
	Axes          bool `yaml:"axes"`
	Segments      int  `yaml:"segments"`
	Stride        int  `yaml:"stride"`
	Supersample   int  `yaml:"supersample"`
	Workers       int  `yaml:"workers"`
	FrameAttempts int  `yaml:"frame_attempts"`
}

type OutputConfig struct {
	CacheDir       string `yaml:"cache_dir"`
	VideoDir       string `yaml:"video_dir"`
	FFmpeg         string `yaml:"ffmpeg"`
	Naming         string `yaml:"naming"`
	EncodeAttempts int    `yaml:"encode_attempts"`
	Movie          bool   `yaml:"movie"`
}

// Float returns a pointer to v, for the optional physics fields.
func Float(v float64) *float64 { return &v }

func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Physics: PhysicsConfig{
			G:  physics.DefaultGravity,
			L1: physics.DefaultLength,
			L2: physics.DefaultLength,
			M1: physics.DefaultMass,
			M2: physics.DefaultMass,
			A0: physics.DefaultLength,
			B0: physics.DefaultLength,
		},
		Sim: SimConfig{
			TEnd:   DefaultTEnd,
			FPS:    DefaultFPS,
			Method: integrators.DefaultMethod,
			RTol:   DefaultRTol,
			ATol:   DefaultATol,
		},
		Render: RenderConfig{
			Size:          DefaultSize,
			DPI:           DefaultDPI,
			Trace:         true,
			Segments:      DefaultNS,
			Stride:        DefaultStride,
			Supersample:   DefaultMult,
			FrameAttempts: DefaultRetries,
		},
		Output: OutputConfig{
			CacheDir:       DefaultCache,
			VideoDir:       DefaultVideos,
			FFmpeg:         DefaultFFmpeg,
			Naming:         DefaultNaming,
			EncodeAttempts: 1,
			Movie:          true,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the run settings. Physical constants are checked when
// they are resolved into physics.Params.
func (c *Config) Validate() error {
	if !(c.Sim.TEnd > 0) {
		return fmt.Errorf("t_end must be positive, got %g", c.Sim.TEnd)
	}
	if !(c.Sim.FPS > 0) {
		return fmt.Errorf("fps must be positive, got %g", c.Sim.FPS)
	}
	if _, err := integrators.Get(c.Sim.Method); err != nil {
		return err
	}
	switch encoder.Naming(c.Output.Naming) {
	case encoder.NamingParams, encoder.NamingTimestamp:
	default:
		return fmt.Errorf("naming must be %q or %q, got %q", encoder.NamingParams, encoder.NamingTimestamp, c.Output.Naming)
	}
	return c.RenderOptions().Validate()
}

// Resolve turns the physics section into model parameters, drawing every
// unset angle and spring constant from rng. The config is not modified.
func (c *Config) Resolve(rng *rand.Rand) (physics.Params, error) {
	pc := c.Physics
	p := physics.Params{
		G:  pc.G,
		L1: pc.L1, L2: pc.L2,
		M1: pc.M1, M2: pc.M2,
		A0: pc.A0, B0: pc.B0,
	}
	draw := func(v *float64, gen func(*rand.Rand) float64) float64 {
		if v != nil {
			return *v
		}
		return gen(rng)
	}
	p.Alpha0 = draw(pc.Alpha0, physics.RandomAngle)
	p.Beta0 = draw(pc.Beta0, physics.RandomAngle)
	p.K1 = draw(pc.K1, physics.RandomSpring)
	p.K2 = draw(pc.K2, physics.RandomSpring)

	if err := p.Validate(); err != nil {
		return physics.Params{}, err
	}
	return p, nil
}

// NewRand is the run's random source, seeded from Seed.
func (c *Config) NewRand() *rand.Rand {
	return rand.New(rand.NewSource(c.Seed))
}

func (c *Config) SolverOptions() integrators.Options {
	opts := integrators.DefaultOptions()
	opts.Method = c.Sim.Method
	opts.RTol = c.Sim.RTol
	opts.ATol = c.Sim.ATol
	return opts
}

func (c *Config) RenderOptions() render.Options {
	opts := render.DefaultOptions()
	opts.Size = c.Render.Size
	opts.DPI = c.Render.DPI
	opts.Trace = c.Render.Trace
	opts.Axes = c.Render.Axes
	opts.Segments = c.Render.Segments
	opts.Stride = c.Render.Stride
	opts.Supersample = c.Render.Supersample
	if c.Render.Workers > 0 {
		opts.Workers = c.Render.Workers
	}
	if c.Render.FrameAttempts > 0 {
		opts.Attempts = c.Render.FrameAttempts
	}
	return opts
}

func (c *Config) EncoderConfig() encoder.Config {
	ec := encoder.DefaultConfig()
	ec.FPS = c.Sim.FPS
	if c.Output.FFmpeg != "" {
		ec.Binary = c.Output.FFmpeg
	}
	if c.Output.VideoDir != "" {
		ec.OutDir = c.Output.VideoDir
	}
	if c.Output.EncodeAttempts > 0 {
		ec.Attempts = c.Output.EncodeAttempts
	}
	return ec
}
