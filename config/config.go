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

// Package config loads the driver-facing configuration named in spec.md §6:
// which analyses to run, the pta reference id, the log level, and the path
// to the taint configuration document.
package config

import (
	"fmt"
	"os"

	"github.com/nju-sa/corestatic/errtax"
	"github.com/nju-sa/corestatic/internal/salog"
	"gopkg.in/yaml.v3"
)

// Known analysis identifiers (spec.md §6 "Configuration keys").
const (
	IDConstProp      = "constprop"
	IDInterConstProp = "inter-constprop"
	IDDeadCode       = "deadcode"
	IDCHA            = "cha"
	IDPointerCI      = "pta-ci"
	IDPointerCS      = "pta-cs"
	IDTaint          = "taint"
)

var knownIDs = map[string]bool{
	IDConstProp: true, IDInterConstProp: true, IDDeadCode: true,
	IDCHA: true, IDPointerCI: true, IDPointerCS: true, IDTaint: true,
}

// ContextKind selects the context abstraction a pta-cs run uses (spec.md
// §4.6). The depth k is given separately by Config.K.
type ContextKind string

const (
	CtxCallString ContextKind = "call"
	CtxObject     ContextKind = "obj"
	CtxType       ContextKind = "type"
)

// Config is the top-level document consumed by the driver.
type Config struct {
	// Analyses lists the analysis ids to run, in dependency order.
	Analyses []string `yaml:"analyses"`
	// PTA is the id of a completed points-to analysis other analyses (e.g.
	// inter-constprop, taint) read their alias information from.
	PTA string `yaml:"pta"`
	// ContextKind/K select the context-sensitive points-to abstraction.
	ContextKind ContextKind `yaml:"context-kind"`
	K           int         `yaml:"k"`
	// TaintConfigPath, if set, points at the taint source/sink/transfer
	// document (spec.md §6's YAML format).
	TaintConfigPath string `yaml:"taint-config"`
	// LogLevel is one of salog's Level values.
	LogLevel salog.Level `yaml:"log-level"`
}

// Load reads and validates a Config from a YAML file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &errtax.ConfigError{Reason: fmt.Sprintf("reading %s: %v", path, err)}
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, &errtax.ConfigError{Reason: fmt.Sprintf("parsing %s: %v", path, err)}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks analysis ids are known and cross-references (pta) are
// well-formed. Unknown ids and malformed config are always ConfigError,
// per spec.md §7.
func (c *Config) Validate() error {
	if len(c.Analyses) == 0 {
		return &errtax.ConfigError{Reason: "no analyses configured"}
	}
	for _, id := range c.Analyses {
		if !knownIDs[id] {
			return &errtax.ConfigError{Reason: fmt.Sprintf("unknown analysis id %q", id)}
		}
	}
	needsPTA := map[string]bool{IDInterConstProp: true, IDTaint: true}
	for _, id := range c.Analyses {
		if needsPTA[id] && c.PTA == "" {
			return &errtax.ConfigError{Reason: fmt.Sprintf("analysis %q requires a pta reference id", id)}
		}
	}
	if c.ContextKind != "" && c.ContextKind != CtxCallString && c.ContextKind != CtxObject && c.ContextKind != CtxType {
		return &errtax.ConfigError{Reason: fmt.Sprintf("unknown context-kind %q", c.ContextKind)}
	}
	if c.LogLevel == 0 {
		c.LogLevel = salog.InfoLevel
	}
	return nil
}
