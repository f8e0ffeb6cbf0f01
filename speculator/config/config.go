package config

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/twitter/speculator/speculator/engine"
)

// Prefix of environment variables overriding values read by LoadFile,
// e.g. SPECULATOR_SPECULATOR_FETCHRATEENABLED=true.
const EnvPrefix = "SPECULATOR"

// SpeculatorJSONConfig config structure holding original json configs
type SpeculatorJSONConfig struct {
	Speculator SpeculatorEngineJSONConfig `json:"Speculator"`
	Estimator  EstimatorJSONConfig        `json:"Estimator"`
	Admin      AdminJSONConfig            `json:"Admin"`
}

func (s SpeculatorJSONConfig) String() string {
	return fmt.Sprintf("\n%s\n%s\n%s", s.Speculator, s.Estimator, s.Admin)
}

type EstimatorJSONConfig struct {
	Type string `json:"Type"` // registered estimator name: replay, null
}

func (e EstimatorJSONConfig) String() string {
	return fmt.Sprintf("EstimatorJSONConfig: Type: %s", e.Type)
}

type AdminJSONConfig struct {
	Type string `json:"Type"` // http, none
	Addr string `json:"Addr"` // default to localhost:9091
}

func (a AdminJSONConfig) String() string {
	return fmt.Sprintf("AdminJSONConfig: Type: %s, Addr: %s", a.Type, a.Addr)
}

// Durations are Go duration strings. Zero numbers and empty durations take the engine defaults.
type SpeculatorEngineJSONConfig struct {
	Type                  string  `json:"Type"`                  // pbse, vanilla
	RetryAfterSpeculate   string  `json:"RetryAfterSpeculate"`   // default to 15s
	RetryAfterNoSpeculate string  `json:"RetryAfterNoSpeculate"` // default to 1s
	ProportionRunning     float64 `json:"ProportionRunning"`     // default to 0.1
	ProportionTotal       float64 `json:"ProportionTotal"`       // default to 0.01
	MinimumAllowed        int     `json:"MinimumAllowed"`        // default to 10
	DefaultEnabled        bool    `json:"DefaultEnabled"`

	FetchRateEnabled           bool    `json:"FetchRateEnabled"`
	SmartFetchRateEnabled      bool    `json:"SmartFetchRateEnabled"`
	SmartFetchRateFactor       float64 `json:"SmartFetchRateFactor"` // default to 3.0
	FetchSlowNodeThreshold     float64 `json:"FetchSlowNodeThreshold"`
	FetchSlowProgressThreshold float64 `json:"FetchSlowProgressThreshold"`
	FetchMinSamples            int     `json:"FetchMinSamples"` // default to 3

	SlowWriteEnabled      bool    `json:"SlowWriteEnabled"`
	WriteSlowThreshold    float64 `json:"WriteSlowThreshold"`
	PipelineMinReports    int     `json:"PipelineMinReports"` // default to 3
	WriteDiversityEnabled bool    `json:"WriteDiversityEnabled"`
	SingleReducerEnabled  bool    `json:"SingleReducerEnabled"`

	PathEnabled               bool    `json:"PathEnabled"`
	PathStrategy              string  `json:"PathStrategy"` // aggressive, grouped
	SlowTransferRateThreshold float64 `json:"SlowTransferRateThreshold"`
	SlowTransferRateRatio     float64 `json:"SlowTransferRateRatio"` // default to 0.5
	MapDelayInterval          string  `json:"MapDelayInterval"`      // default to 0s

	MaxTrackedAttempts  int    `json:"MaxTrackedAttempts"`
	SubmitRetries       int    `json:"SubmitRetries"`       // default to 2
	SubmitRetryInterval string `json:"SubmitRetryInterval"` // default to 50ms
	DebugMode           bool   `json:"DebugMode"`           // default to false
}

func (sc SpeculatorEngineJSONConfig) String() string {
	return fmt.Sprintf("SpeculatorEngineJSONConfig: Type: %s, RetryAfterSpeculate: %s, RetryAfterNoSpeculate: %s, "+
		"ProportionRunning: %g, ProportionTotal: %g, MinimumAllowed: %d, DefaultEnabled: %t, FetchRateEnabled: %t, "+
		"SmartFetchRateEnabled: %t, SlowWriteEnabled: %t, WriteDiversityEnabled: %t, SingleReducerEnabled: %t, "+
		"PathEnabled: %t, PathStrategy: %s, MapDelayInterval: %s, DebugMode: %t",
		sc.Type, sc.RetryAfterSpeculate, sc.RetryAfterNoSpeculate, sc.ProportionRunning, sc.ProportionTotal,
		sc.MinimumAllowed, sc.DefaultEnabled, sc.FetchRateEnabled, sc.SmartFetchRateEnabled, sc.SlowWriteEnabled,
		sc.WriteDiversityEnabled, sc.SingleReducerEnabled, sc.PathEnabled, sc.PathStrategy, sc.MapDelayInterval,
		sc.DebugMode)
}

// Names lists the built-in configurations.
func Names() []string {
	keys := make([]string, 0, len(SpeculatorConfigs))
	for k := range SpeculatorConfigs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func GetConfigText(configSelector string) ([]byte, error) {
	configText, ok := SpeculatorConfigs[configSelector]
	if !ok {
		return nil, fmt.Errorf("invalid configuration %s, supported values are %v", configSelector, Names())
	}

	return []byte(configText), nil
}

// CreateEngineConfig converts the json section into an engine.Config, keeping the engine
// defaults for everything left unset.
func (jc *SpeculatorEngineJSONConfig) CreateEngineConfig() (engine.Config, error) {
	c := engine.DefaultConfig()
	var err error
	if c.RetryAfterSpeculate, err = parseDuration("RetryAfterSpeculate", jc.RetryAfterSpeculate, c.RetryAfterSpeculate); err != nil {
		return c, err
	}
	if c.RetryAfterNoSpeculate, err = parseDuration("RetryAfterNoSpeculate", jc.RetryAfterNoSpeculate, c.RetryAfterNoSpeculate); err != nil {
		return c, err
	}
	if c.MapDelayInterval, err = parseDuration("MapDelayInterval", jc.MapDelayInterval, c.MapDelayInterval); err != nil {
		return c, err
	}
	if c.SubmitRetryInterval, err = parseDuration("SubmitRetryInterval", jc.SubmitRetryInterval, c.SubmitRetryInterval); err != nil {
		return c, err
	}
	switch jc.PathStrategy {
	case "":
	case engine.PathStrategyAggressive, engine.PathStrategyGrouped:
		c.PathStrategy = jc.PathStrategy
	default:
		return c, fmt.Errorf("invalid PathStrategy %q, supported values are %v",
			jc.PathStrategy, []string{engine.PathStrategyAggressive, engine.PathStrategyGrouped})
	}

	c.ProportionRunning = orFloat(jc.ProportionRunning, c.ProportionRunning)
	c.ProportionTotal = orFloat(jc.ProportionTotal, c.ProportionTotal)
	c.MinimumAllowed = orInt(jc.MinimumAllowed, c.MinimumAllowed)
	c.DefaultEnabled = jc.DefaultEnabled

	c.FetchRateEnabled = jc.FetchRateEnabled
	c.SmartFetchRateEnabled = jc.SmartFetchRateEnabled
	c.SmartFetchRateFactor = orFloat(jc.SmartFetchRateFactor, c.SmartFetchRateFactor)
	c.FetchSlowNodeThreshold = jc.FetchSlowNodeThreshold
	c.FetchSlowProgressThreshold = jc.FetchSlowProgressThreshold
	c.FetchMinSamples = orInt(jc.FetchMinSamples, c.FetchMinSamples)

	c.SlowWriteEnabled = jc.SlowWriteEnabled
	c.WriteSlowThreshold = jc.WriteSlowThreshold
	c.PipelineMinReports = orInt(jc.PipelineMinReports, c.PipelineMinReports)
	c.WriteDiversityEnabled = jc.WriteDiversityEnabled
	c.SingleReducerEnabled = jc.SingleReducerEnabled

	c.PathEnabled = jc.PathEnabled
	c.SlowTransferRateThreshold = jc.SlowTransferRateThreshold
	c.SlowTransferRateRatio = orFloat(jc.SlowTransferRateRatio, c.SlowTransferRateRatio)

	c.MaxTrackedAttempts = jc.MaxTrackedAttempts
	c.SubmitRetries = orInt(jc.SubmitRetries, c.SubmitRetries)
	c.DebugMode = jc.DebugMode
	return c, nil
}

func parseDuration(field, text string, def time.Duration) (time.Duration, error) {
	if text == "" {
		return def, nil
	}
	d, err := time.ParseDuration(text)
	if err != nil {
		return def, errors.Wrapf(err, "invalid %s", field)
	}
	return d, nil
}

func orFloat(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func orInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

// GetConfig get the config with the given name
func GetConfig(configName string) (*SpeculatorJSONConfig, error) {
	configText, err := GetConfigText(configName)
	if err != nil {
		return nil, err
	}

	config := &SpeculatorJSONConfig{}
	err = json.Unmarshal(configText, config)
	if err != nil {
		return nil, fmt.Errorf("couldn't parse top-level config: %v", err)
	}
	if err := withDefaults(config); err != nil {
		return nil, err
	}
	return config, nil
}

// withDefaults uses the default values for any sections whose type was not set.
func withDefaults(config *SpeculatorJSONConfig) error {
	defaultConfigText, _ := GetConfigText("default")
	defaultConfig := &SpeculatorJSONConfig{}
	err := json.Unmarshal(defaultConfigText, defaultConfig)
	if err != nil {
		return fmt.Errorf("couldn't parse the default config: %v", err)
	}

	if config.Speculator.Type == "" {
		log.Infof("using default Speculator config")
		config.Speculator = defaultConfig.Speculator
	}
	if config.Estimator.Type == "" {
		log.Infof("using default Estimator config")
		config.Estimator = defaultConfig.Estimator
	}
	if config.Admin.Type == "" {
		log.Infof("using default Admin config")
		config.Admin = defaultConfig.Admin
	}
	return nil
}

// LoadFile reads a JSON, YAML or TOML config file. Values are overridden by SPECULATOR_
// prefixed environment variables named after the upper-cased key path joined with
// underscores. Sections the file leaves untyped take the default config.
func LoadFile(path string) (*SpeculatorJSONConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Every key needs a default for AutomaticEnv to see it during Unmarshal.
	v.SetDefault("speculator.type", "")
	v.SetDefault("estimator.type", "")
	v.SetDefault("admin.type", "")
	v.SetDefault("admin.addr", "")
	if err := setDefaults(v, "speculator", SpeculatorEngineJSONConfig{}); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	config := &SpeculatorJSONConfig{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errors.Wrapf(err, "decoding config %s", path)
	}
	if err := withDefaults(config); err != nil {
		return nil, err
	}
	log.Infof("loaded config file %s", v.ConfigFileUsed())
	return config, nil
}

// setDefaults registers every json field of section under prefix.
func setDefaults(v *viper.Viper, prefix string, section interface{}) error {
	data, err := json.Marshal(section)
	if err != nil {
		return errors.Wrapf(err, "encoding %s defaults", prefix)
	}
	fields := map[string]interface{}{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return errors.Wrapf(err, "decoding %s defaults", prefix)
	}
	for k, val := range fields {
		v.SetDefault(prefix+"."+strings.ToLower(k), val)
	}
	return nil
}

// Resolve returns the built-in config called nameOrPath, or else loads it as a file.
func Resolve(nameOrPath string) (*SpeculatorJSONConfig, error) {
	if _, ok := SpeculatorConfigs[nameOrPath]; ok {
		return GetConfig(nameOrPath)
	}
	return LoadFile(nameOrPath)
}
