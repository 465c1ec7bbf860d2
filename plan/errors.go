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


package plan

import "errors"

var (
	// ErrMissingDefault is returned when a persona table has no "default" entry.
	ErrMissingDefault = errors.New("persona table missing default entry")

	// ErrEmptyTable is returned when a persona table has no entries at all.
	ErrEmptyTable = errors.New("persona table is empty")

	// ErrStoreRequired is returned when a planner is built without a table store.
	ErrStoreRequired = errors.New("table store required")
)
