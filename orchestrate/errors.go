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


package orchestrate

import "errors"

var (
	// ErrProviderRequired is returned when a coordinator is built without an AI provider.
	ErrProviderRequired = errors.New("ai provider required")

	// ErrPlannerRequired is returned when a coordinator is built without a planner.
	ErrPlannerRequired = errors.New("planner required")

	// ErrRouterRequired is returned when a coordinator is built without a router.
	ErrRouterRequired = errors.New("router required")

	// ErrEngineRequired is returned when a coordinator is built without a fusion engine.
	ErrEngineRequired = errors.New("fusion engine required")

	// ErrEmptyQuery is returned when a retrieval request carries no query text.
	ErrEmptyQuery = errors.New("query must not be empty")
)
