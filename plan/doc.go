// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package plan holds the persona to tool-spec configuration table and the
// planner that turns a classified persona plus query metadata into an ordered,
// weighted execution plan.
//
// The table is loaded from YAML, validated eagerly (a missing default entry
// fails the load, not the first request) and reloaded by atomic pointer swap
// so concurrent requests never see a half-updated table.
package plan
