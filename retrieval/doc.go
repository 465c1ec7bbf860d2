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


// Package retrieval defines the retrieval tool contract and the name-based
// registry the router dispatches through.
//
// Implementation subpackages:
//
//   - retrieval/docstore: embedded vector index over BadgerDB
//   - retrieval/graphstore: embedded knowledge graph over BadgerDB
//   - retrieval/langchain: adapter for external langchaingo vector stores
package retrieval
