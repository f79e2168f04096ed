package maincmd

import "github.com/caarlos0/env/v6"

// resourceLimits holds the three execution bounds the Resource Model
// section of spec.md calls for ("a production implementation should cap
// [stack depth] with a configurable limit"), read from the environment
// so a deployment can tune them without a rebuild.
type resourceLimits struct {
	MaxSteps          int `env:"MINIC_MAX_STEPS" envDefault:"10000000"`
	MaxStackDepth     int `env:"MINIC_MAX_STACK_DEPTH" envDefault:"4096"`
	MaxCallStackDepth int `env:"MINIC_MAX_CALL_STACK_DEPTH" envDefault:"512"`
}

func loadResourceLimits() (resourceLimits, error) {
	var rl resourceLimits
	if err := env.Parse(&rl); err != nil {
		return resourceLimits{}, err
	}
	return rl, nil
}
