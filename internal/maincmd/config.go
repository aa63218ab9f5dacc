package maincmd

import (
	"os"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"
)

// envConfig holds the environment-variable overrides for flags the user
// did not pass explicitly, read once per invocation.
type envConfig struct {
	OptLevel int  `env:"SIXPASS_OPT_LEVEL" envDefault:"2"`
	Color    bool `env:"SIXPASS_COLOR" envDefault:"true"`
}

func loadEnvConfig() envConfig {
	var c envConfig
	// a malformed env var falls back to the struct tag defaults already
	// populated by env.Parse before it returned the error.
	_ = env.Parse(&c)
	return c
}

// fileConfig is the optional project-local .sixpassrc.yaml, lower
// precedence than an explicit flag but higher than envConfig's defaults.
type fileConfig struct {
	OptLevel   *int   `yaml:"opt_level"`
	RuntimeLib string `yaml:"runtime_lib"`
}

const configFileName = ".sixpassrc.yaml"

func loadFileConfig() fileConfig {
	var c fileConfig
	data, err := os.ReadFile(configFileName)
	if err != nil {
		return c
	}
	_ = yaml.Unmarshal(data, &c)
	return c
}

// resolveOptLevel applies flag > config file > environment > hardcoded
// precedence for -O, since only the flag's presence is tracked by
// mainer's parsed-flags set.
func resolveOptLevel(flagSet bool, flagVal int, fc fileConfig, ec envConfig) int {
	if flagSet {
		return flagVal
	}
	if fc.OptLevel != nil {
		return *fc.OptLevel
	}
	return ec.OptLevel
}
