package broker

import "time"

// Config holds environment-mapped broker settings.
type Config struct {
	MutationDelayMin time.Duration `env:"BROKER_MUTATION_DELAY_MIN" envDefault:"20ms"`  // MutationDelayMin is the lower bound of the simulated Login/Logout latency.
	MutationDelayMax time.Duration `env:"BROKER_MUTATION_DELAY_MAX" envDefault:"120ms"` // MutationDelayMax is the upper bound of the simulated Login/Logout latency.
	ActionDelayMin   time.Duration `env:"BROKER_ACTION_DELAY_MIN" envDefault:"5ms"`     // ActionDelayMin is the lower bound of the simulated RecordAction latency.
	ActionDelayMax   time.Duration `env:"BROKER_ACTION_DELAY_MAX" envDefault:"30ms"`    // ActionDelayMax is the upper bound of the simulated RecordAction latency.
}

// NewFromConfig creates a broker from the provided Config.
// Only valid delay ranges from the config are applied.
func NewFromConfig(cfg Config, opts ...Option) *Broker {
	configOpts := make([]Option, 0, 2+len(opts))

	if cfg.MutationDelayMin >= 0 && cfg.MutationDelayMax >= cfg.MutationDelayMin {
		configOpts = append(configOpts, WithMutationDelay(cfg.MutationDelayMin, cfg.MutationDelayMax))
	}
	if cfg.ActionDelayMin >= 0 && cfg.ActionDelayMax >= cfg.ActionDelayMin {
		configOpts = append(configOpts, WithActionDelay(cfg.ActionDelayMin, cfg.ActionDelayMax))
	}

	configOpts = append(configOpts, opts...)

	return New(configOpts...)
}
