// Package script runs YAML routine scripts: an ordered list of set/get/
// command stages executed against a routine session, with every get stage
// sampled into a trace for export and plotting.
package script

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Stage types.
const (
	StageSet     = "set"
	StageGet     = "get"
	StageCommand = "command"
)

type Stage struct {
	Name      string            `yaml:"name"`
	Type      string            `yaml:"type"`
	Arguments map[string]string `yaml:"arguments"`
	Value     any               `yaml:"value"`
}

// Script is an ordered stage list, optionally repeated. Repeat below 1 is
// treated as 1.
type Script struct {
	Name   string  `yaml:"name"`
	Model  string  `yaml:"model"`
	Repeat int     `yaml:"repeat"`
	Stages []Stage `yaml:"stages"`
}

func Load(path string) (*Script, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Script
	if err := yaml.Unmarshal(raw, &sc); err != nil {
		return nil, fmt.Errorf("parse script %s: %w", path, err)
	}
	if err := sc.validate(); err != nil {
		return nil, fmt.Errorf("script %s: %w", path, err)
	}
	return &sc, nil
}

func (sc *Script) validate() error {
	if len(sc.Stages) == 0 {
		return fmt.Errorf("no stages")
	}
	for i, st := range sc.Stages {
		switch st.Type {
		case StageSet:
			if st.Value == nil {
				return fmt.Errorf("stage %d (%s): set stage needs a value", i, st.Name)
			}
		case StageGet, StageCommand:
		default:
			return fmt.Errorf("stage %d (%s): unknown stage type %q", i, st.Name, st.Type)
		}
	}
	return nil
}

// label names a stage in traces and errors: its explicit name, or the
// object it addresses.
func (st *Stage) label(i int) string {
	if st.Name != "" {
		return st.Name
	}
	if n := st.Arguments["object_name"]; n != "" {
		return n
	}
	return fmt.Sprintf("stage%d", i)
}
