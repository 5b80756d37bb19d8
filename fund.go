package fundcalc

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CatchupPolicy controls the GP catch-up tier of the waterfall.
type CatchupPolicy int

const (
	// CatchupNone skips the catch-up tier entirely.
	CatchupNone CatchupPolicy = iota
	// CatchupPartial applies a configured fraction of the full catch-up.
	CatchupPartial
	// CatchupFull brings the GP fully current to the target carry ratio.
	CatchupFull
)

func (p CatchupPolicy) String() string {
	switch p {
	case CatchupNone:
		return "none"
	case CatchupPartial:
		return "partial"
	case CatchupFull:
		return "full"
	default:
		return "unknown"
	}
}

// ParseCatchupPolicy parses a string into a CatchupPolicy.
func ParseCatchupPolicy(s string) (CatchupPolicy, error) {
	switch s {
	case "none":
		return CatchupNone, nil
	case "partial":
		return CatchupPartial, nil
	case "full":
		return CatchupFull, nil
	default:
		return 0, fmt.Errorf("unknown catch-up policy: %q", s)
	}
}

// ClawbackTrigger selects when the clawback test runs. Source practice
// varies between funds, so it is an explicit configuration choice.
type ClawbackTrigger int

const (
	// TriggerTermination tests clawback only at fund wind-down.
	TriggerTermination ClawbackTrigger = iota
	// TriggerInterim tests clawback at every distribution event.
	TriggerInterim
)

func (t ClawbackTrigger) String() string {
	switch t {
	case TriggerTermination:
		return "termination"
	case TriggerInterim:
		return "interim"
	default:
		return "unknown"
	}
}

// ParseClawbackTrigger parses a string into a ClawbackTrigger.
func ParseClawbackTrigger(s string) (ClawbackTrigger, error) {
	switch s {
	case "termination":
		return TriggerTermination, nil
	case "interim":
		return TriggerInterim, nil
	default:
		return 0, fmt.Errorf("unknown clawback trigger: %q", s)
	}
}

// FundConfig holds the economic terms of a fund. It is plain data owned
// by the caller; engines never mutate it.
type FundConfig struct {
	Name    string
	Size    Money // committed capital
	Vintage Date

	FeeBasis  FeeBasis
	FeeRate   Rate
	StepDowns []FeeStep

	Hurdle          Rate
	Carry           Rate
	Catchup         CatchupPolicy
	CatchupFraction Rate // only read when Catchup is partial

	ClawbackEnabled bool
	ClawbackTrigger ClawbackTrigger

	RecyclingCap  Rate // fraction of committed capital, zero disables recycling
	RecyclingTerm int  // quarters from vintage during which recycling is open
}

// Validate rejects structurally invalid configuration. Each failure names
// the offending field so callers can surface it precisely.
func (c *FundConfig) Validate() error {
	if !c.Size.IsPositive() {
		return fmt.Errorf("fund size must be positive, got %s", c.Size)
	}
	if c.Vintage.IsZero() {
		return fmt.Errorf("vintage date is required")
	}
	if c.Carry.IsNegative() || c.Carry.GreaterThan(R(1)) {
		return fmt.Errorf("carry %s out of range, want a fraction in [0,1]", c.Carry.Decimal())
	}
	if c.Hurdle.IsNegative() || c.Hurdle.GreaterThan(R(1)) {
		return fmt.Errorf("hurdle %s out of range, want a fraction in [0,1]", c.Hurdle.Decimal())
	}
	if c.FeeRate.IsNegative() || c.FeeRate.GreaterThan(R(1)) {
		return fmt.Errorf("fee rate %s out of range, want a fraction in [0,1]", c.FeeRate.Decimal())
	}
	for _, s := range c.StepDowns {
		if s.EffectiveYear < 1 {
			return fmt.Errorf("fee step-down effective year %d must be >= 1", s.EffectiveYear)
		}
		if s.Rate.IsNegative() || s.Rate.GreaterThan(R(1)) {
			return fmt.Errorf("fee step-down rate %s out of range, want a fraction in [0,1]", s.Rate.Decimal())
		}
	}
	if c.Catchup == CatchupPartial && (c.CatchupFraction.IsNegative() || c.CatchupFraction.GreaterThan(R(1)) || c.CatchupFraction.IsZero()) {
		return fmt.Errorf("partial catch-up requires a fraction in (0,1], got %s", c.CatchupFraction.Decimal())
	}
	if c.RecyclingCap.IsNegative() || c.RecyclingCap.GreaterThan(R(1)) {
		return fmt.Errorf("recycling cap %s out of range, want a fraction in [0,1]", c.RecyclingCap.Decimal())
	}
	if c.RecyclingTerm < 0 {
		return fmt.Errorf("recycling term %d quarters must not be negative", c.RecyclingTerm)
	}
	return nil
}

// fundYAML is a specialized struct for decoding fund config files.
type fundYAML struct {
	Name     string `yaml:"name"`
	Size     string `yaml:"size"`
	Currency string `yaml:"currency"`
	Vintage  string `yaml:"vintage"`

	Fees struct {
		Basis     string `yaml:"basis"`
		Rate      Rate   `yaml:"rate"`
		StepDowns []struct {
			Year int  `yaml:"year"`
			Rate Rate `yaml:"rate"`
		} `yaml:"step_downs"`
	} `yaml:"fees"`

	Hurdle          Rate   `yaml:"hurdle"`
	Carry           Rate   `yaml:"carry"`
	Catchup         string `yaml:"catchup"`
	CatchupFraction Rate   `yaml:"catchup_fraction"`

	Clawback struct {
		Enabled bool   `yaml:"enabled"`
		Trigger string `yaml:"trigger"`
	} `yaml:"clawback"`

	Recycling struct {
		Cap          Rate `yaml:"cap"`
		TermQuarters int  `yaml:"term_quarters"`
	} `yaml:"recycling"`
}

// LoadFundConfig reads and validates a fund configuration from a YAML file.
func LoadFundConfig(path string) (*FundConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fund config: %w", err)
	}
	return DecodeFundConfig(data)
}

// DecodeFundConfig parses and validates a YAML fund configuration.
func DecodeFundConfig(data []byte) (*FundConfig, error) {
	var y fundYAML
	if err := yaml.Unmarshal(data, &y); err != nil {
		return nil, fmt.Errorf("parse fund config: %w", err)
	}

	cfg := &FundConfig{
		Name:            y.Name,
		Hurdle:          y.Hurdle,
		Carry:           y.Carry,
		CatchupFraction: y.CatchupFraction,
		ClawbackEnabled: y.Clawback.Enabled,
		FeeRate:         y.Fees.Rate,
		RecyclingCap:    y.Recycling.Cap,
		RecyclingTerm:   y.Recycling.TermQuarters,
	}

	currency := y.Currency
	if currency == "" {
		currency = "USD"
	}
	size, err := ParseRawMoney(y.Size, currency)
	if err != nil {
		return nil, fmt.Errorf("fund size: %w", err)
	}
	cfg.Size = size

	if y.Vintage != "" {
		if cfg.Vintage, err = ParseDate(y.Vintage); err != nil {
			return nil, fmt.Errorf("vintage: %w", err)
		}
	}
	if y.Fees.Basis != "" {
		if cfg.FeeBasis, err = ParseFeeBasis(y.Fees.Basis); err != nil {
			return nil, err
		}
	}
	for _, s := range y.Fees.StepDowns {
		cfg.StepDowns = append(cfg.StepDowns, FeeStep{EffectiveYear: s.Year, Rate: s.Rate})
	}
	if y.Catchup != "" {
		if cfg.Catchup, err = ParseCatchupPolicy(y.Catchup); err != nil {
			return nil, err
		}
	}
	if y.Clawback.Trigger != "" {
		if cfg.ClawbackTrigger, err = ParseClawbackTrigger(y.Clawback.Trigger); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
