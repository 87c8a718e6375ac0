package config

import (
	"fmt"
	"os"
	"time"

	"github.com/itohio/gopedal/pkg/adc"
	"github.com/itohio/gopedal/pkg/diag"
	"github.com/itohio/gopedal/pkg/pedal"
	"github.com/itohio/gopedal/pkg/store"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Pedals    []PedalConfig   `yaml:"pedals"`
	Storage   StorageConfig   `yaml:"storage"`
	MIDI      MIDIConfig      `yaml:"midi"`
	Serial    SerialConfig    `yaml:"serial"`
	Monitor   MonitorConfig   `yaml:"monitor"`
	Simulator SimulatorConfig `yaml:"simulator"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// PipelineConfig contains the signal pipeline constants.
type PipelineConfig struct {
	DomainMax  uint16        `yaml:"domain_max"` // Largest raw ADC value
	Alpha      float32       `yaml:"alpha"`      // EMA smoothing factor
	Deadzone   int           `yaml:"deadzone"`   // Raw units trimmed from each end of the range
	Hysteresis float32       `yaml:"hysteresis"` // Minimum change in CC units before sending
	Quiescence time.Duration `yaml:"quiescence"` // Quiet time before calibration is saved
	Tick       time.Duration `yaml:"tick"`       // Polling period
}

// PedalConfig describes one pedal.
type PedalConfig struct {
	Name       string `yaml:"name"`
	Analog     int    `yaml:"analog"`     // Analog input identifier
	Enable     int    `yaml:"enable"`     // Enable switch input identifier
	Controller uint8  `yaml:"controller"` // MIDI CC number
	Channel    uint8  `yaml:"channel"`    // MIDI channel 1-16
	Address    int    `yaml:"address"`    // Calibration record address
}

// StorageConfig contains persistent storage configuration.
type StorageConfig struct {
	Path    string `yaml:"path"`
	Size    int64  `yaml:"size"`
	Version uint8  `yaml:"version"`
}

// MIDIConfig contains MIDI output configuration.
type MIDIConfig struct {
	Port  string `yaml:"port"`  // Host output port name, empty = log only
	Cable uint8  `yaml:"cable"` // USB-MIDI virtual cable
}

// SerialConfig contains the diagnostic serial port configuration.
type SerialConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

// MonitorConfig contains monitor display parameters.
type MonitorConfig struct {
	WindowSeconds float64 `yaml:"window_seconds"`
}

// SimulatorConfig contains simulated pedal parameters.
type SimulatorConfig struct {
	SweepPeriod time.Duration `yaml:"sweep_period"` // Time for one full heel-toe-heel stroke
	Lo          float64       `yaml:"lo"`           // Heel position in raw units
	Hi          float64       `yaml:"hi"`           // Toe position in raw units
	Noise       float64       `yaml:"noise"`        // Peak noise in raw units
	Crosstalk   float64       `yaml:"crosstalk"`    // Residual charge share on input switch
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns a default configuration matching the reference two-pedal board.
func Default() *Config {
	p := pedal.DefaultParams()
	return &Config{
		Pipeline: PipelineConfig{
			DomainMax:  p.DomainMax,
			Alpha:      p.Alpha,
			Deadzone:   p.Deadzone,
			Hysteresis: p.Hysteresis,
			Quiescence: p.Quiescence,
			Tick:       p.Tick,
		},
		Pedals: []PedalConfig{
			{Name: "expression", Analog: 0, Enable: 5, Controller: 11, Channel: 1, Address: 1},
			{Name: "general1", Analog: 2, Enable: 6, Controller: 16, Channel: 1, Address: 5},
		},
		Storage: StorageConfig{
			Path:    "calibration.bin",
			Size:    1024,
			Version: 1,
		},
		MIDI: MIDIConfig{
			Port:  "",
			Cable: 0,
		},
		Serial: SerialConfig{
			Port: "/dev/ttyACM0",
			Baud: 115200,
		},
		Monitor: MonitorConfig{
			WindowSeconds: 10,
		},
		Simulator: SimulatorConfig{
			SweepPeriod: 4 * time.Second,
			Lo:          60,
			Hi:          980,
			Noise:       3,
			Crosstalk:   0.3,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", filename, err)
	}

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks ranges and storage layout.
func (c *Config) Validate() error {
	p := c.Pipeline
	if p.DomainMax == 0 {
		return fmt.Errorf("pipeline.domain_max must be positive")
	}
	if p.Alpha <= 0 || p.Alpha > 1 {
		return fmt.Errorf("pipeline.alpha %v outside (0,1]", p.Alpha)
	}
	if p.Deadzone < 0 || 2*p.Deadzone >= int(p.DomainMax) {
		return fmt.Errorf("pipeline.deadzone %d leaves no usable range", p.Deadzone)
	}
	if p.Hysteresis < 0 {
		return fmt.Errorf("pipeline.hysteresis must not be negative")
	}
	if p.Tick <= 0 {
		return fmt.Errorf("pipeline.tick must be positive")
	}

	if len(c.Pedals) == 0 {
		return fmt.Errorf("no pedals configured")
	}

	used := make(map[int]int) // address -> pedal index
	for i, pc := range c.Pedals {
		if pc.Channel < 1 || pc.Channel > 16 {
			return fmt.Errorf("pedal %d: channel %d outside 1-16", i, pc.Channel)
		}
		if pc.Controller > pedal.MaxValue {
			return fmt.Errorf("pedal %d: controller %d outside 0-127", i, pc.Controller)
		}
		if pc.Address <= store.VersionAddr || int64(pc.Address)+store.RecordSize > c.Storage.Size {
			return fmt.Errorf("pedal %d: address %d outside storage", i, pc.Address)
		}
		for b := pc.Address; b < pc.Address+store.RecordSize; b++ {
			if other, ok := used[b]; ok {
				return fmt.Errorf("pedal %d: calibration record overlaps pedal %d", i, other)
			}
			used[b] = i
		}
	}

	if _, err := diag.ParseLogLevel(c.Logging.Level); err != nil {
		return err
	}

	return nil
}

// Params converts the pipeline section.
func (c *Config) Params() pedal.Params {
	return pedal.Params{
		DomainMax:  c.Pipeline.DomainMax,
		Alpha:      c.Pipeline.Alpha,
		Deadzone:   c.Pipeline.Deadzone,
		Hysteresis: c.Pipeline.Hysteresis,
		Quiescence: c.Pipeline.Quiescence,
		Tick:       c.Pipeline.Tick,
	}
}

// Channels converts the pedals section.
func (c *Config) Channels() []pedal.ChannelConfig {
	out := make([]pedal.ChannelConfig, 0, len(c.Pedals))
	for _, p := range c.Pedals {
		out = append(out, pedal.ChannelConfig{
			Name:        p.Name,
			AnalogInput: p.Analog,
			EnableInput: p.Enable,
			Controller:  p.Controller,
			MIDIChannel: p.Channel,
			Address:     p.Address,
		})
	}
	return out
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Pipeline.DomainMax == 0 {
		c.Pipeline.DomainMax = def.Pipeline.DomainMax
	}
	if c.Pipeline.Alpha == 0 {
		c.Pipeline.Alpha = def.Pipeline.Alpha
	}
	if c.Pipeline.Hysteresis == 0 {
		c.Pipeline.Hysteresis = def.Pipeline.Hysteresis
	}
	if c.Pipeline.Quiescence == 0 {
		c.Pipeline.Quiescence = def.Pipeline.Quiescence
	}
	if c.Pipeline.Tick == 0 {
		c.Pipeline.Tick = def.Pipeline.Tick
	}

	if len(c.Pedals) == 0 {
		c.Pedals = def.Pedals
	}
	for i := range c.Pedals {
		if c.Pedals[i].Channel == 0 {
			c.Pedals[i].Channel = 1
		}
	}

	if c.Storage.Path == "" {
		c.Storage.Path = def.Storage.Path
	}
	if c.Storage.Size == 0 {
		c.Storage.Size = def.Storage.Size
	}
	if c.Storage.Version == 0 {
		c.Storage.Version = def.Storage.Version
	}

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.Baud == 0 {
		c.Serial.Baud = def.Serial.Baud
	}

	if c.Monitor.WindowSeconds == 0 {
		c.Monitor.WindowSeconds = def.Monitor.WindowSeconds
	}

	if c.Simulator.SweepPeriod == 0 {
		c.Simulator.SweepPeriod = def.Simulator.SweepPeriod
	}
	if c.Simulator.Hi == 0 {
		c.Simulator.Lo = def.Simulator.Lo
		c.Simulator.Hi = def.Simulator.Hi
	}

	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
}

// MockConfig converts the simulator section for adc.Mock.
func (c *Config) MockConfig() adc.MockConfig {
	return adc.MockConfig{
		DomainMax: c.Pipeline.DomainMax,
		Crosstalk: c.Simulator.Crosstalk,
		Noise:     c.Simulator.Noise,
	}
}

// Sweeps returns one simulated stroke per pedal. Each pedal runs a little slower
// than the previous one so their values do not move in lockstep.
func (c *Config) Sweeps() []adc.Sweep {
	sweeps := make([]adc.Sweep, 0, len(c.Pedals))
	for i, p := range c.Pedals {
		sweeps = append(sweeps, adc.Sweep{
			Input:  p.Analog,
			Lo:     c.Simulator.Lo,
			Hi:     c.Simulator.Hi,
			Period: c.Simulator.SweepPeriod + time.Duration(i)*c.Simulator.SweepPeriod/2,
		})
	}
	return sweeps
}
