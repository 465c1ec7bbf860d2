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


package retrieval

import "errors"

var (
	// ErrToolNotFound is returned when a planned tool name has no registration.
	ErrToolNotFound = errors.New("tool not registered")

	// ErrDuplicateTool is returned when a tool name is registered twice.
	ErrDuplicateTool = errors.New("tool already registered")

	// ErrNilTool is returned when registering a nil or unnamed tool.
	ErrNilTool = errors.New("tool must be non-nil and named")

	// ErrBackendRequired is returned when a tool is built without its storage backend.
	ErrBackendRequired = errors.New("storage backend required")

	// ErrEmbedderRequired is returned when a tool is built without an embedder.
	ErrEmbedderRequired = errors.New("embedder required")
)
