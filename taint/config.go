// Copyright the corestatic authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package taint implements the taint analysis overlay of spec.md §4.9: a
// source/sink/transfer configuration, a TaintManager issuing taint-typed
// heap objects with the empty context, and a taint-flow graph propagating
// them alongside the points-to solver they observe.
package taint

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/nju-sa/corestatic/errtax"
	"gopkg.in/yaml.v3"
)

// Source is `(method, taintType)`: a call to method produces a taint-typed
// abstract object bound to the call's result.
type Source struct {
	Method string `yaml:"method"`
	Type   string `yaml:"type"`
}

// Sink is `(method, argIndex)`: taint arriving at this argument of a call to
// method constitutes a flow.
type Sink struct {
	Method string `yaml:"method"`
	Index  int    `yaml:"index"`
}

// Transfer is `(method, fromLoc, toLoc, taintType)`. FromLoc/ToLoc are one
// of "base", "result", or "arg<N>" (spec.md §6).
type Transfer struct {
	Method string `yaml:"method"`
	From   string `yaml:"from"`
	To     string `yaml:"to"`
	Type   string `yaml:"type"`
}

// Config is the taint-config YAML document of spec.md §6/SPEC_FULL.md §6.
type Config struct {
	Sources   []Source   `yaml:"sources"`
	Sinks     []Sink     `yaml:"sinks"`
	Transfers []Transfer `yaml:"transfers"`
}

var locPattern = regexp.MustCompile(`^(base|result|arg([0-9]+))$`)

// locKind is one of the three location kinds a from/to string can name;
// parseLoc also returns the arg index when the kind is locArg.
type locKind uint8

const (
	locBase locKind = iota
	locResult
	locArg
)

func parseLoc(s string) (locKind, int, error) {
	m := locPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, fmt.Errorf("location %q is not one of base, result, arg<N>", s)
	}
	switch {
	case s == "base":
		return locBase, 0, nil
	case s == "result":
		return locResult, 0, nil
	default:
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return 0, 0, fmt.Errorf("location %q has a malformed argument index", s)
		}
		return locArg, n, nil
	}
}

// LoadConfig reads and validates a taint Config from the YAML document at
// path. Malformed entries are an errtax.ConfigError (spec.md §7), fatal at
// construction.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &errtax.ConfigError{Reason: fmt.Sprintf("reading taint config %s: %v", path, err)}
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, &errtax.ConfigError{Reason: fmt.Sprintf("parsing taint config %s: %v", path, err)}
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	for _, s := range c.Sources {
		if strings.TrimSpace(s.Method) == "" || s.Type == "" {
			return &errtax.ConfigError{Reason: fmt.Sprintf("source entry %+v is missing method or type", s)}
		}
	}
	for _, s := range c.Sinks {
		if strings.TrimSpace(s.Method) == "" || s.Index < 0 {
			return &errtax.ConfigError{Reason: fmt.Sprintf("sink entry %+v has a missing method or negative index", s)}
		}
	}
	for _, t := range c.Transfers {
		if strings.TrimSpace(t.Method) == "" || t.Type == "" {
			return &errtax.ConfigError{Reason: fmt.Sprintf("transfer entry %+v is missing method or type", t)}
		}
		if _, _, err := parseLoc(t.From); err != nil {
			return &errtax.ConfigError{Reason: fmt.Sprintf("transfer entry %+v: from: %v", t, err)}
		}
		if _, _, err := parseLoc(t.To); err != nil {
			return &errtax.ConfigError{Reason: fmt.Sprintf("transfer entry %+v: to: %v", t, err)}
		}
	}
	return nil
}

// methodKey is "Class.subsig", the same string format the YAML's `method`
// field uses, matched against a resolved callee's DeclaringClass().Name()
// and Subsignature().
func methodKey(class, subsig string) string { return class + "." + subsig }
