package config

import (
	"errors"
	"io/ioutil"
	"os"

	logging "github.com/op/go-logging"
	yaml "gopkg.in/yaml.v2"

	"gitlab.x.lan/yunshan/profiling-libs/fitness"
)

var log = logging.MustGetLogger("config")

const (
	DefaultLogFile      = "/var/log/profiling/profiling.log"
	DefaultLogLevel     = "info"
	DefaultInfluxdbAddr = "http://127.0.0.1:8086"
	DefaultBatchSize    = 64
	DefaultContextTopN  = 3
)

type InfluxdbConfig struct {
	Enabled   bool   `yaml:"enabled"`
	HTTPAddr  string `yaml:"http-addr"`
	BatchSize int    `yaml:"batch-size"`
}

type Config struct {
	LogFile      string           `yaml:"log-file"`
	LogLevel     string           `yaml:"log-level"`
	StatsdServer string           `yaml:"statsd-server"`
	Influxdb     InfluxdbConfig   `yaml:"influxdb"`
	Weights      fitness.Weights  `yaml:"fitness-weights"`
	Baseline     fitness.Baseline `yaml:"baseline"`
	ContextTopN  int              `yaml:"context-top-n"`
}

func (c *Config) Validate() error {
	if c.Weights.Throughput < 0 || c.Weights.Latency < 0 ||
		c.Weights.Causal < 0 || c.Weights.OffCpu < 0 {
		return errors.New("fitness-weights must be non-negative")
	}
	if c.Baseline.ThroughputOpsSec <= 0 {
		return errors.New("baseline throughput-ops-sec must be positive")
	}
	if c.Baseline.P99LatencyUs <= 0 {
		return errors.New("baseline p99-latency-us must be positive")
	}
	if c.Baseline.OffCpuRatio < 0 || c.Baseline.OffCpuRatio > 1 {
		return errors.New("baseline off-cpu-ratio must be within [0, 1]")
	}
	if c.ContextTopN <= 0 {
		c.ContextTopN = DefaultContextTopN
	}
	return nil
}

func Load(path string) *Config {
	config := &Config{
		LogFile:  DefaultLogFile,
		LogLevel: DefaultLogLevel,
		Influxdb: InfluxdbConfig{
			HTTPAddr:  DefaultInfluxdbAddr,
			BatchSize: DefaultBatchSize,
		},
		Weights:     fitness.DefaultWeights(),
		Baseline:    *fitness.DefaultBaseline(),
		ContextTopN: DefaultContextTopN,
	}
	configBytes, err := ioutil.ReadFile(path)
	if err != nil {
		log.Warningf("Read config file error: %s", err)
		config.Validate()
		return config
	}
	if err = yaml.Unmarshal(configBytes, config); err != nil {
		log.Error("Unmarshal yaml error:", err)
		os.Exit(1)
	}

	if err = config.Validate(); err != nil {
		log.Error(err)
		os.Exit(1)
	}

	return config
}
