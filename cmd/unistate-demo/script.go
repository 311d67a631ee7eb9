package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// script describes a set of counter stores, and the actions to dispatch to
// them, in order.
type script struct {
	Stores []string `yaml:"stores" toml:"stores"`
	Steps  []step   `yaml:"steps"  toml:"steps"`
}

type step struct {
	Store  string `yaml:"store"  toml:"store"`
	Action string `yaml:"action" toml:"action"`
	Amount int    `yaml:"amount" toml:"amount"`
	Repeat int    `yaml:"repeat" toml:"repeat"`
	Shared bool   `yaml:"shared" toml:"shared"`
}

func loadScript(path string) (*script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return parseScript(data, strings.ToLower(filepath.Ext(path)))
}

func parseScript(data []byte, ext string) (*script, error) {
	var s script
	switch ext {
	case `.yaml`, `.yml`:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil {
			return nil, fmt.Errorf("parse script: %w", err)
		}
	case `.toml`:
		md, err := toml.Decode(string(data), &s)
		if err != nil {
			return nil, fmt.Errorf("parse script: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) != 0 {
			return nil, fmt.Errorf("parse script: unknown keys: %v", undecoded)
		}
	default:
		return nil, fmt.Errorf("unsupported script format: %q", ext)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("validate script: %w", err)
	}
	return &s, nil
}

func (s *script) validate() error {
	if len(s.Stores) == 0 {
		return errors.New("no stores")
	}
	names := make(map[string]struct{}, len(s.Stores))
	for _, name := range s.Stores {
		if name == `` {
			return errors.New("empty store name")
		}
		if _, ok := names[name]; ok {
			return fmt.Errorf("duplicate store: %s", name)
		}
		names[name] = struct{}{}
	}
	for i := range s.Steps {
		st := &s.Steps[i]
		if st.Repeat == 0 {
			st.Repeat = 1
		}
		if st.Repeat < 0 {
			return fmt.Errorf("step %d: invalid repeat: %d", i, st.Repeat)
		}
		if _, err := st.counterAction(); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		if st.Shared {
			continue
		}
		if _, ok := names[st.Store]; !ok {
			return fmt.Errorf("step %d: unknown store: %q", i, st.Store)
		}
	}
	return nil
}

// commits returns the number of commits a single run of the script results
// in.
func (s *script) commits() (n uint64) {
	for _, st := range s.Steps {
		per := uint64(1)
		if st.Shared {
			per = uint64(len(s.Stores))
		}
		n += per * uint64(st.Repeat)
	}
	return n
}

func (x step) counterAction() (counterAction, error) {
	switch x.Action {
	case `increment`:
		return counterAction{Delta: max(x.Amount, 1)}, nil
	case `decrement`:
		return counterAction{Delta: -max(x.Amount, 1)}, nil
	case `add`:
		return counterAction{Delta: x.Amount}, nil
	case `reset`:
		return counterAction{Reset: true}, nil
	default:
		return counterAction{}, fmt.Errorf("unknown action: %q", x.Action)
	}
}
