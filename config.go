package main

import (
	"bytes"
	"errors"
	"io"
	"os"

	"braces.dev/errtrace"
	"gopkg.in/yaml.v3"

	"go-errprop/errprop"
)

// Config is the YAML configuration of a run. Command line flags override it.
type Config struct {
	Entry          string            `yaml:"entry"`
	Dispatch       errprop.Dispatch  `yaml:"dispatch"`
	ResultTypes    []errprop.TypeRef `yaml:"result_types"`
	FutureTypes    []errprop.TypeRef `yaml:"future_types"`
	IgnorePackages []string          `yaml:"ignore_packages"`
	Output         OutputConfig      `yaml:"output"`
	Neo4j          Neo4jConfig       `yaml:"neo4j"`
}

// OutputConfig lists the files written after the analysis. Empty paths are skipped.
type OutputConfig struct {
	Dot       string `yaml:"dot"`
	ChainsDot string `yaml:"chains_dot"`
	SQLite    string `yaml:"sqlite"`
}

// Neo4jConfig enables the Neo4j export when URI is set.
type Neo4jConfig struct {
	URI      string `yaml:"uri"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Clean    bool   `yaml:"clean"`
}

func defaultConfig() *Config {
	return &Config{
		Neo4j: Neo4jConfig{User: "neo4j"},
	}
}

// LoadConfig reads the YAML file at path on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	return parseConfig(data)
}

func parseConfig(data []byte) (*Config, error) {
	cfg := defaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errtrace.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Options converts the configuration into analysis options.
func (c *Config) Options() errprop.Options {
	return errprop.Options{
		Entry:    c.Entry,
		Dispatch: c.Dispatch,
		Classifier: errprop.Classifier{
			ResultTypes: c.ResultTypes,
			FutureTypes: c.FutureTypes,
		},
		IgnorePackages: c.IgnorePackages,
	}
}
