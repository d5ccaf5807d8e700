// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/supermatter/gas"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrThresholdOrder is returned when damage or power thresholds are not monotonic.
var ErrThresholdOrder = errors.New("config: thresholds out of order")

// Config holds all simulation configuration parameters.
type Config struct {
	Sim          SimConfig           `yaml:"sim"`
	Screen       ScreenConfig        `yaml:"screen"`
	Supermatter  SupermatterConfig   `yaml:"supermatter"`
	Thresholds   Thresholds          `yaml:"thresholds"`
	Timing       TimingConfig        `yaml:"timing"`
	Anomalies    AnomalyConfig       `yaml:"anomalies"`
	Delamination DelaminationConfig  `yaml:"delamination"`
	Prototypes   PrototypeConfig     `yaml:"prototypes"`
	Sounds       SoundConfig         `yaml:"sounds"`
	Gases        map[string]gas.Fact `yaml:"gases"` // Per-species overrides of the stock table
	Atmosphere   AtmosphereConfig    `yaml:"atmosphere"`
	Monument     MonumentConfig      `yaml:"monument"`
	Telemetry    TelemetryConfig     `yaml:"telemetry"`
	Monitor      MonitorConfig       `yaml:"monitor"`
	Audio        AudioConfig         `yaml:"audio"`
	Channels     ChannelConfig       `yaml:"channels"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// SimConfig holds the tick model.
type SimConfig struct {
	DT       float64 `yaml:"dt"`       // Seconds of simulated time per tick
	Seed     int64   `yaml:"seed"`     // RNG seed (0 = time based)
	Reactors int     `yaml:"reactors"` // Crystals spawned at start
	Spacing  float64 `yaml:"spacing"`  // Distance between spawned crystals
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// SupermatterConfig holds the crystal's physical constants.
type SupermatterConfig struct {
	Activated                        bool    `yaml:"activated"`
	MatterPowerConversion            float64 `yaml:"matter_power_conversion"`
	GasEfficiency                    float64 `yaml:"gas_efficiency"`
	MoleHeatPenalty                  float64 `yaml:"mole_heat_penalty"`
	ReactionPowerModifier            float64 `yaml:"reaction_power_modifier"`
	ThermalReleaseModifier           float64 `yaml:"thermal_release_modifier"`
	PlasmaReleaseModifier            float64 `yaml:"plasma_release_modifier"`
	OxygenReleaseEfficiencyModifier  float64 `yaml:"oxygen_release_efficiency_modifier"`
	ZapHitCoordinatesChance          float64 `yaml:"zap_hit_coordinates_chance"`
	PowerlossInhibitionGasThreshold  float64 `yaml:"powerloss_inhibition_gas_threshold"`
	PowerlossInhibitionMoleThreshold float64 `yaml:"powerloss_inhibition_mole_threshold"`
	PowerlossInhibitionMoleBoost     float64 `yaml:"powerloss_inhibition_mole_boost_threshold"`
	DamageHardcap                    float64 `yaml:"damage_hardcap"` // Fraction of the delamination point per tick
	DamageIncreaseMultiplier         float64 `yaml:"damage_increase_multiplier"`
	MaxSpaceExposureDamage           float64 `yaml:"max_space_exposure_damage"`
	SliverDamage                     float64 `yaml:"sliver_damage"`        // Damage dealt by extracting a sliver
	ConsumeMatterPower               float64 `yaml:"consume_matter_power"` // Matter power gained per consumed object
}

// Thresholds are the damage, power and heat cutoffs of one crystal.
// They are fixed configuration and must be monotonic (see Validate).
type Thresholds struct {
	DamageWarning        float64 `yaml:"damage_warning" json:"damage_warning"`
	DamageEmergency      float64 `yaml:"damage_emergency" json:"damage_emergency"`
	DamageDelamAlert     float64 `yaml:"damage_delam_alert" json:"damage_delam_alert"`
	DamagePenaltyPoint   float64 `yaml:"damage_penalty_point" json:"damage_penalty_point"`
	DamageDelamination   float64 `yaml:"damage_delamination_point" json:"damage_delamination_point"`
	PowerPenalty         float64 `yaml:"power_penalty" json:"power_penalty"`
	SeverePowerPenalty   float64 `yaml:"severe_power_penalty" json:"severe_power_penalty"`
	CriticalPowerPenalty float64 `yaml:"critical_power_penalty" json:"critical_power_penalty"`
	HeatPenalty          float64 `yaml:"heat_penalty" json:"heat_penalty"` // Kelvin above 0C before heat damage
	MolePenalty          float64 `yaml:"mole_penalty" json:"mole_penalty"`
}

// TimingConfig holds cooldowns in seconds.
type TimingConfig struct {
	YellTimer         float64 `yaml:"yell_timer"`
	DelamTimer        float64 `yaml:"delam_timer"`
	AccentMinCooldown float64 `yaml:"accent_min_cooldown"`
	AccentChance      float64 `yaml:"accent_chance"` // Chance per tick an accent plays once off cooldown
	ZapCooldown       float64 `yaml:"zap_cooldown"`
	CountdownInterval float64 `yaml:"countdown_interval"` // Seconds between countdown announcements
}

// AnomalyConfig holds anomaly spawn parameters.
type AnomalyConfig struct {
	Lifetime            float64 `yaml:"lifetime"`
	SpawnMinRange       float64 `yaml:"spawn_min_range"`
	SpawnMaxRange       float64 `yaml:"spawn_max_range"`
	BluespaceChance     float64 `yaml:"bluespace_chance"`
	GravityChanceSevere float64 `yaml:"gravity_chance_severe"`
	GravityChance       float64 `yaml:"gravity_chance"`
	PyroChanceSevere    float64 `yaml:"pyro_chance_severe"`
	PyroChance          float64 `yaml:"pyro_chance"`
	LightningLifetime   float64 `yaml:"lightning_lifetime"` // Seconds a bolt stays visible
}

// DelaminationConfig controls which delamination kinds are possible.
type DelaminationConfig struct {
	SinguloEnabled       bool    `yaml:"singulo_enabled"`
	SinguloMolesModifier float64 `yaml:"singulo_moles_modifier"` // Scales the mole penalty threshold
	TeslaEnabled         bool    `yaml:"tesla_enabled"`
	TeslaPowerModifier   float64 `yaml:"tesla_power_modifier"` // Scales the power penalty threshold
	ForceCascade         bool    `yaml:"force_cascade"`
}

// PrototypeConfig names the entities the crystal spawns.
type PrototypeConfig struct {
	Sliver           string   `yaml:"sliver"`
	Lightning        []string `yaml:"lightning"`
	Singularity      string   `yaml:"singularity"`
	Tesla            string   `yaml:"tesla"`
	Kudzu            string   `yaml:"kudzu"`
	Explosion        string   `yaml:"explosion"`
	AnomalyBluespace string   `yaml:"anomaly_bluespace"`
	AnomalyGravity   string   `yaml:"anomaly_gravity"`
	AnomalyPyro      string   `yaml:"anomaly_pyro"`
	CollisionResult  string   `yaml:"collision_result"`
}

// SoundConfig names the crystal's sound cues.
type SoundConfig struct {
	Dust            string `yaml:"dust"`
	Distort         string `yaml:"distort"`
	CalmLoop        string `yaml:"calm_loop"`
	DelamLoop       string `yaml:"delam_loop"`
	CalmAccent      string `yaml:"calm_accent"`
	DelamAccent     string `yaml:"delam_accent"`
	StatusWarning   string `yaml:"status_warning"`
	StatusDanger    string `yaml:"status_danger"`
	StatusEmergency string `yaml:"status_emergency"`
	StatusDelam     string `yaml:"status_delam"`
}

// AtmosphereConfig holds the scenario tile and its cooling loop.
type AtmosphereConfig struct {
	Exposed     bool               `yaml:"exposed"`     // Tile open to space
	Temperature float64            `yaml:"temperature"` // Initial tile temperature (K)
	Mix         map[string]float64 `yaml:"mix"`         // Initial tile moles by species
	Feed        FeedConfig         `yaml:"feed"`
}

// FeedConfig describes the cooling loop that pulls the tile toward a feed mix.
type FeedConfig struct {
	Enabled      bool               `yaml:"enabled"`
	Temperature  float64            `yaml:"temperature"`
	Mix          map[string]float64 `yaml:"mix"`
	ExchangeRate float64            `yaml:"exchange_rate"` // Fraction of the tile replaced per second
}

// MonumentConfig holds the monument progress mechanic.
type MonumentConfig struct {
	Enabled          bool    `yaml:"enabled"`
	EntropyPerSecond float64 `yaml:"entropy_per_second"`
	StageEntropy     []int   `yaml:"stage_entropy"` // Cumulative entropy needed to reach each stage
	CrewPerStage     int     `yaml:"crew_per_stage"`
	PrototypesPath   string  `yaml:"prototypes_path"` // Empty = embedded prototypes
	LocalePath       string  `yaml:"locale_path"`     // Empty = embedded locale
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow      float64 `yaml:"stats_window"`       // Seconds per aggregated window
	AlertHistorySize int     `yaml:"alert_history_size"` // Windows kept by the alert detector
}

// MonitorConfig holds the websocket monitor.
type MonitorConfig struct {
	Addr            string `yaml:"addr"` // Empty = disabled
	BroadcastBuffer int    `yaml:"broadcast_buffer"`
	SendBuffer      int    `yaml:"send_buffer"`
}

// AudioConfig holds sound output settings.
type AudioConfig struct {
	Enabled    bool    `yaml:"enabled"`
	SampleRate int     `yaml:"sample_rate"`
	Volume     float64 `yaml:"volume"` // Base-2 volume offset applied to every cue
}

// ChannelConfig names the radio channels announcements go to.
type ChannelConfig struct {
	Engineering string `yaml:"engineering"`
	Global      string `yaml:"global"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT                time.Duration // Sim.DT as a duration
	YellTimer         time.Duration
	DelamTimer        time.Duration
	AccentMinCooldown time.Duration
	ZapCooldown       time.Duration
	CountdownInterval time.Duration
	AnomalyLifetime   time.Duration
	LightningLifetime time.Duration
	StatsWindowTicks  int       // Ticks per telemetry window
	GasTable          gas.Table // Stock table with Gases overrides applied
	AtmosphereMix     gas.Storage
	FeedMix           gas.Storage
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the simulation cannot run with.
func (c *Config) Validate() error {
	if c.Sim.DT <= 0 {
		return fmt.Errorf("config: sim.dt must be positive, got %v", c.Sim.DT)
	}
	if c.Supermatter.GasEfficiency <= 0 || c.Supermatter.GasEfficiency > 1 {
		return fmt.Errorf("config: supermatter.gas_efficiency must be in (0,1], got %v", c.Supermatter.GasEfficiency)
	}
	if c.Anomalies.SpawnMinRange > c.Anomalies.SpawnMaxRange {
		return fmt.Errorf("config: anomalies.spawn_min_range %v exceeds spawn_max_range %v",
			c.Anomalies.SpawnMinRange, c.Anomalies.SpawnMaxRange)
	}
	if len(c.Prototypes.Lightning) == 0 {
		return errors.New("config: prototypes.lightning must name at least one bolt")
	}
	return c.Thresholds.Validate()
}

// Validate checks that the thresholds are monotonic.
func (t Thresholds) Validate() error {
	checks := []struct {
		lo, hi     float64
		loN, hiN   string
		allowEqual bool
	}{
		{t.DamageWarning, t.DamageDelamAlert, "damage_warning", "damage_delam_alert", false},
		{t.DamageDelamAlert, t.DamagePenaltyPoint, "damage_delam_alert", "damage_penalty_point", false},
		{t.DamagePenaltyPoint, t.DamageDelamination, "damage_penalty_point", "damage_delamination_point", false},
		{t.DamageWarning, t.DamageEmergency, "damage_warning", "damage_emergency", false},
		{t.DamageEmergency, t.DamageDelamination, "damage_emergency", "damage_delamination_point", true},
		{t.PowerPenalty, t.SeverePowerPenalty, "power_penalty", "severe_power_penalty", false},
		{t.SeverePowerPenalty, t.CriticalPowerPenalty, "severe_power_penalty", "critical_power_penalty", false},
	}
	for _, c := range checks {
		if c.lo > c.hi || (!c.allowEqual && c.lo == c.hi) {
			return fmt.Errorf("%w: %s (%v) must be below %s (%v)", ErrThresholdOrder, c.loN, c.lo, c.hiN, c.hi)
		}
	}
	if t.DamageWarning < 0 || t.PowerPenalty < 0 {
		return fmt.Errorf("%w: thresholds must be non-negative", ErrThresholdOrder)
	}
	return nil
}

// Clamped returns t with every threshold raised to at least the one below
// it, so an inverted set still yields a usable monotonic ordering.
// The second result reports whether anything changed or t was invalid,
// so equal neighbours still count even though raising leaves them alone.
func (t Thresholds) Clamped() (Thresholds, bool) {
	out := t
	raise := func(v *float64, floor float64) {
		if *v < floor {
			*v = floor
		}
	}
	raise(&out.DamageWarning, 0)
	raise(&out.DamageDelamAlert, out.DamageWarning)
	raise(&out.DamagePenaltyPoint, out.DamageDelamAlert)
	raise(&out.DamageDelamination, out.DamagePenaltyPoint)
	raise(&out.DamageEmergency, out.DamageWarning)
	if out.DamageEmergency > out.DamageDelamination {
		out.DamageEmergency = out.DamageDelamination
	}
	raise(&out.PowerPenalty, 0)
	raise(&out.SeverePowerPenalty, out.PowerPenalty)
	raise(&out.CriticalPowerPenalty, out.SeverePowerPenalty)
	return out, out != t || t.Validate() != nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func parseMix(m map[string]float64) (gas.Storage, error) {
	var st gas.Storage
	for name, moles := range m {
		s, err := gas.ParseSpecies(name)
		if err != nil {
			return st, err
		}
		if moles < 0 {
			return st, fmt.Errorf("negative moles for %s", name)
		}
		st[s] = moles
	}
	return st, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() error {
	c.Derived.DT = seconds(c.Sim.DT)
	c.Derived.YellTimer = seconds(c.Timing.YellTimer)
	c.Derived.DelamTimer = seconds(c.Timing.DelamTimer)
	c.Derived.AccentMinCooldown = seconds(c.Timing.AccentMinCooldown)
	c.Derived.ZapCooldown = seconds(c.Timing.ZapCooldown)
	c.Derived.CountdownInterval = seconds(c.Timing.CountdownInterval)
	c.Derived.AnomalyLifetime = seconds(c.Anomalies.Lifetime)
	c.Derived.LightningLifetime = seconds(c.Anomalies.LightningLifetime)

	c.Derived.StatsWindowTicks = int(c.Telemetry.StatsWindow / c.Sim.DT)
	if c.Derived.StatsWindowTicks < 1 {
		c.Derived.StatsWindowTicks = 1
	}

	overrides := make(map[gas.Species]gas.Fact, len(c.Gases))
	for name, fact := range c.Gases {
		s, err := gas.ParseSpecies(name)
		if err != nil {
			return fmt.Errorf("config: gases: %w", err)
		}
		overrides[s] = fact
	}
	c.Derived.GasTable = gas.DefaultTable().WithOverrides(overrides)

	var err error
	if c.Derived.AtmosphereMix, err = parseMix(c.Atmosphere.Mix); err != nil {
		return fmt.Errorf("config: atmosphere.mix: %w", err)
	}
	if c.Derived.FeedMix, err = parseMix(c.Atmosphere.Feed.Mix); err != nil {
		return fmt.Errorf("config: atmosphere.feed.mix: %w", err)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := c.Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Encode returns the configuration as YAML.
func (c *Config) Encode() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return data, nil
}
