// Package config holds runtime settings, loaded from flags with
// CROSSGEN_-prefixed environment variable overrides.
package config

import (
	"flag"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	v    *viper.Viper
	args []string
}

func DefaultConfig() *Config {
	v := viper.New()
	v.SetDefault("shell", false)
	v.SetDefault("debug", false)
	v.SetDefault("threads", 1)
	v.SetDefault("time-limit", time.Duration(0))
	v.SetDefault("cell-size", 100)
	v.SetDefault("cell-border", 2)
	v.SetEnvPrefix("crossgen")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return &Config{v: v}
}

// Load parses command-line flags. Only flags actually given on the
// command line override environment and defaults.
func (c *Config) Load(args []string) error {
	fs := flag.NewFlagSet("crossgen", flag.ContinueOnError)
	fs.Bool("shell", false, "start the interactive shell instead of a one-shot solve")
	fs.Bool("debug", false, "enable debug logging")
	fs.Int("threads", 1, "parallel workers for the root of the search; 1 disables parallelism")
	fs.Duration("time-limit", 0, "abort the solve after this long; 0 means no limit")
	fs.Int("cell-size", 100, "cell size in pixels for image output")
	fs.Int("cell-border", 2, "cell border in pixels for image output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		c.v.Set(f.Name, f.Value.String())
	})
	c.args = fs.Args()
	return nil
}

// Args returns the positional arguments left after flag parsing.
func (c *Config) Args() []string { return c.args }

func (c *Config) GetBool(key string) bool              { return c.v.GetBool(key) }
func (c *Config) GetInt(key string) int                { return c.v.GetInt(key) }
func (c *Config) GetString(key string) string          { return c.v.GetString(key) }
func (c *Config) GetDuration(key string) time.Duration { return c.v.GetDuration(key) }

// Set overrides a single setting; the shell's `set` command uses this.
func (c *Config) Set(key string, value any) { c.v.Set(key, value) }
