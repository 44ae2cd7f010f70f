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

// Package errtax implements the four-way error taxonomy of spec.md §7 as
// typed errors so callers can tell recoverable conditions (UnresolvableCall,
// MissingIR) from conditions that must be surfaced to the driver
// (ConfigError, InternalInvariant) with errors.As.
package errtax

import "fmt"

// UnresolvableCall is raised when dispatch finds no matching method for a
// call site. It contributes no call-graph edges and is logged at debug, not
// returned to the driver.
type UnresolvableCall struct {
	CallSite string
	Subsig   string
}

func (e *UnresolvableCall) Error() string {
	return fmt.Sprintf("unresolvable call at %s: no method matches %s", e.CallSite, e.Subsig)
}

// MissingIR is raised when a reachable method has no IR (native or
// abstract). The method is skipped with no reachability expansion.
type MissingIR struct {
	Method string
}

func (e *MissingIR) Error() string {
	return fmt.Sprintf("missing IR for method %s", e.Method)
}

// ConfigError is raised for a malformed taint configuration or an unknown
// analysis id. It fails analysis construction and is fatal.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s", e.Reason)
}

// InternalInvariant is raised when the implementation observes a state the
// design assumes cannot happen (e.g. the evaluator hitting an unexpected
// expression class, or an Invoke classifying as none of the known CallKinds).
// It always indicates a bug and is fatal.
type InternalInvariant struct {
	Reason string
}

func (e *InternalInvariant) Error() string {
	return fmt.Sprintf("internal invariant violated: %s", e.Reason)
}
