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


// Package route executes execution plans against retrieval tools.
//
// The router fans one call per (tool, query-variant) pair out over a bounded
// worker pool, applies a per-call deadline with a single backoff retry, and
// writes each tool's pooled outcome back into its fixed plan slot. Per-tool
// failures degrade coverage; they never fail the request.
package route
