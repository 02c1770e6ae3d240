package config

import (
	"io"
	"io/ioutil"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/juju/errors"
	log "github.com/sirupsen/logrus"
)

// Defaults for optional settings.
const (
	DefaultLogLevel           = "info"
	DefaultDataExtension      = ".dat"
	DefaultReferenceExtension = ".ref"
)

// Config is a set of options for conversion runs.
type Config struct {
	SkipInvalid        bool   `toml:"skip_invalid"`
	LogLevel           string `toml:"log_level"`
	DataExtension      string `toml:"data_extension"`
	ReferenceExtension string `toml:"reference_extension"`
}

// Level returns parsed log level.
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}

	return level
}

// Default returns a config which is used if no file is given.
func Default() *Config {
	return &Config{
		LogLevel:           DefaultLogLevel,
		DataExtension:      DefaultDataExtension,
		ReferenceExtension: DefaultReferenceExtension,
	}
}

// Parse reads TOML config from the given reader.
func Parse(file io.Reader) (*Config, error) {
	conf := Default()

	buf, err := ioutil.ReadAll(file)
	if err != nil {
		return nil, errors.Annotate(err, "Cannot read config file")
	}

	meta, err := toml.Decode(string(buf), conf)
	if err != nil {
		return nil, errors.Annotate(err, "Cannot parse config file")
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}

		return nil, errors.Errorf("Unknown config keys: %s", strings.Join(keys, ", "))
	}

	if err = validate(conf); err != nil {
		return nil, errors.Annotate(err, "Invalid value")
	}

	return conf, nil
}

func validate(conf *Config) error {
	if _, err := log.ParseLevel(conf.LogLevel); err != nil {
		return errors.Annotatef(err, "Incorrect log level %s", conf.LogLevel)
	}

	for _, ext := range []string{conf.DataExtension, conf.ReferenceExtension} {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return errors.Errorf("Incorrect file extension %q", ext)
		}
	}

	if conf.DataExtension == conf.ReferenceExtension {
		return errors.Errorf("Data and reference extensions are the same: %s", conf.DataExtension)
	}

	return nil
}
