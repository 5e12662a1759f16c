package qshadow

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Strategy selects how the pair sum is executed.
type Strategy string

const (
	Parallel   Strategy = "parallel"
	Sequential Strategy = "sequential"
)

// Config tunes the estimator engine and its worker pool.
type Config struct {
	// Workers is the pool size for the parallel strategy.
	Workers int `yaml:"workers"`

	// BatchSize is the number of pairs per batch. Zero derives it from
	// the pair count, Workers and BatchDivisor.
	BatchSize int `yaml:"batch_size"`

	// BatchDivisor is the number of batches handed to each worker on
	// average when BatchSize is derived.
	BatchDivisor int `yaml:"batch_divisor"`

	// QueueDepth bounds the batches waiting for a worker.
	QueueDepth int `yaml:"queue_depth"`

	Strategy Strategy `yaml:"strategy"`

	// SchedulingTimeout fails a run when no worker frees up in time.
	// Zero waits indefinitely.
	SchedulingTimeout time.Duration `yaml:"scheduling_timeout"`
}

func NewConfig() *Config {
	workers := runtime.NumCPU()
	return &Config{
		Workers:      workers,
		BatchDivisor: 4,
		QueueDepth:   workers * 2,
		Strategy:     Parallel,
	}
}

/*
LoadConfig starts from the defaults, overlays the YAML file at path when
path is not empty, then applies QSHADOW_* environment overrides.
*/
func LoadConfig(path string) (*Config, error) {
	config := NewConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := config.loadEnv(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) loadEnv() error {
	ints := map[string]*int{
		"QSHADOW_WORKERS":       &c.Workers,
		"QSHADOW_BATCH_SIZE":    &c.BatchSize,
		"QSHADOW_BATCH_DIVISOR": &c.BatchDivisor,
		"QSHADOW_QUEUE_DEPTH":   &c.QueueDepth,
	}
	for key, field := range ints {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*field = n
	}

	if v := os.Getenv("QSHADOW_STRATEGY"); v != "" {
		c.Strategy = Strategy(v)
	}
	if v := os.Getenv("QSHADOW_SCHEDULING_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("QSHADOW_SCHEDULING_TIMEOUT: %w", err)
		}
		c.SchedulingTimeout = d
	}
	return nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.BatchSize < 0 {
		return fmt.Errorf("batch_size must not be negative, got %d", c.BatchSize)
	}
	if c.BatchDivisor < 1 {
		return fmt.Errorf("batch_divisor must be at least 1, got %d", c.BatchDivisor)
	}
	if c.QueueDepth < 1 {
		return fmt.Errorf("queue_depth must be at least 1, got %d", c.QueueDepth)
	}
	if c.SchedulingTimeout < 0 {
		return fmt.Errorf("scheduling_timeout must not be negative, got %v", c.SchedulingTimeout)
	}
	switch c.Strategy {
	case Parallel, Sequential:
	default:
		return fmt.Errorf("unknown strategy %q", c.Strategy)
	}
	return nil
}
