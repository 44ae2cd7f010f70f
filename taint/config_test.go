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

package taint

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nju-sa/corestatic/errtax"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taint.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing fixture config: %v", err)
	}
	return path
}

func TestLoadConfigValid(t *testing.T) {
	path := writeConfig(t, `
sources:
  - method: "Class.src()Ljava/lang/String;"
    type: "taint"
sinks:
  - method: "Class.sink(Ljava/lang/String;)V"
    index: 0
transfers:
  - method: "Class.wrap(Ljava/lang/String;)LClass$Wrapper;"
    from: result
    to: base
    type: "taint"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if len(cfg.Sources) != 1 || len(cfg.Sinks) != 1 || len(cfg.Transfers) != 1 {
		t.Fatalf("cfg = %+v, want one entry in each list", cfg)
	}
	if cfg.Transfers[0].From != "result" || cfg.Transfers[0].To != "base" {
		t.Errorf("transfer = %+v, want from=result to=base", cfg.Transfers[0])
	}
}

func TestLoadConfigMalformedLocation(t *testing.T) {
	path := writeConfig(t, `
transfers:
  - method: "Class.wrap()V"
    from: "argX"
    to: "base"
    type: "taint"
`)
	_, err := LoadConfig(path)
	var cerr *errtax.ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("LoadConfig error = %v, want an errtax.ConfigError", err)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	var cerr *errtax.ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("LoadConfig error = %v, want an errtax.ConfigError", err)
	}
}
