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

import "github.com/nju-sa/corestatic/ir"

// taintClass is the synthetic allocated type of a taint object. It doubles
// as both the ir.Type an *ir.New needs and the hierarchy.Class
// pointer.Obj.declClass asserts a New statement's Type against, the same
// any-boxing pattern ir/testutil.Class uses for real classes — a taint
// object used as a receiver simply dispatches to no declared method and is
// logged as an UnresolvableCall, which is the correct, conservative
// behavior for an abstract source value.
type taintClass struct{ name string }

func (t taintClass) Kind() ir.Kind      { return ir.Other }
func (t taintClass) String() string     { return t.name }
func (t taintClass) Name() string       { return t.name }
func (t taintClass) IsInterface() bool  { return false }
func (t taintClass) IsAbstract() bool   { return false }
