// Package config holds the runtime-wide tunables shared by the emission
// pipeline and the procedure-call runtime: register file sizes, the call
// stack depth limit, and the performance-mode flag.
package config

import "fmt"

// Config controls the sizing of the three register files and the call
// runtime's guard rails. Use New to build one with defaults, then apply
// With* options; Config is immutable once built, matching the clone-on-
// mutate pattern used throughout this codebase's builder-style configs.
type Config struct {
	numDataRegisters        int
	numProcRegisters        int
	numFormalParamRegisters int
	callStackMaxDepth       int
	performanceMode         bool
}

// defaultConfig mirrors the fixed register-file sizes and call-depth limit
// named in spec §4.4 (8 formal-parameter registers) and §4.10
// (CALL_STACK_MAX_DEPTH).
var defaultConfig = Config{
	numDataRegisters:        8,
	numProcRegisters:        4,
	numFormalParamRegisters: 8,
	callStackMaxDepth:       256,
	performanceMode:         false,
}

// Option mutates a clone of a Config.
type Option func(*Config)

// New builds a Config from defaults plus the given options.
func New(opts ...Option) *Config {
	c := defaultConfig
	for _, opt := range opts {
		opt(&c)
	}
	return &c
}

// WithNumDataRegisters overrides the number of data registers (DR file).
func WithNumDataRegisters(n int) Option {
	return func(c *Config) { c.numDataRegisters = n }
}

// WithNumProcRegisters overrides the number of procedure registers (PR file).
func WithNumProcRegisters(n int) Option {
	return func(c *Config) { c.numProcRegisters = n }
}

// WithNumFormalParamRegisters overrides the number of formal-parameter
// registers (FPR file). ProcedureMarshallingRule does not read this
// setting: it always clamps arity to [0, 8].
func WithNumFormalParamRegisters(n int) Option {
	return func(c *Config) { c.numFormalParamRegisters = n }
}

// WithCallStackMaxDepth overrides the call-stack overflow threshold.
func WithCallStackMaxDepth(n int) Option {
	return func(c *Config) { c.callStackMaxDepth = n }
}

// WithPerformanceMode toggles the performance-mode flag consulted by the
// procedure-call runtime (spec §4.10).
func WithPerformanceMode(enabled bool) Option {
	return func(c *Config) { c.performanceMode = enabled }
}

func (c *Config) NumDataRegisters() int { return c.numDataRegisters }
func (c *Config) NumProcRegisters() int { return c.numProcRegisters }
func (c *Config) NumFormalParamRegisters() int { return c.numFormalParamRegisters }
func (c *Config) CallStackMaxDepth() int { return c.callStackMaxDepth }
func (c *Config) PerformanceMode() bool { return c.performanceMode }

// DRBase, PRBase, FPRBase return the first register ID of each register
// file under the contiguous-range ID scheme described in spec §6: DR
// starts at 0, PR immediately after the DR file, FPR immediately after the
// PR file.
func (c *Config) DRBase() int { return 0 }
func (c *Config) PRBase() int { return c.numDataRegisters }
func (c *Config) FPRBase() int { return c.numDataRegisters + c.numProcRegisters }

// Validate reports a configuration error if any size is non-positive or
// the formal-parameter file exceeds the 8-register ceiling spec §4.4
// fixes for the arity clamp.
func (c *Config) Validate() error {
	if c.numDataRegisters <= 0 {
		return fmt.Errorf("config: numDataRegisters must be positive, got %d", c.numDataRegisters)
	}
	if c.numProcRegisters <= 0 {
		return fmt.Errorf("config: numProcRegisters must be positive, got %d", c.numProcRegisters)
	}
	if c.numFormalParamRegisters <= 0 || c.numFormalParamRegisters > 8 {
		return fmt.Errorf("config: numFormalParamRegisters must be in [1, 8], got %d", c.numFormalParamRegisters)
	}
	if c.callStackMaxDepth <= 0 {
		return fmt.Errorf("config: callStackMaxDepth must be positive, got %d", c.callStackMaxDepth)
	}
	return nil
}
