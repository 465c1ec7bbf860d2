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


// Package fuse merges heterogeneous retrieval results into one ranked,
// deduplicated evidence list. Within-source min-max normalization keeps a
// wide-scoring source from dominating on scale alone; content-hash
// deduplication rewards cross-source agreement without double counting; a
// single batch rerank call produces the final ordering, degrading to source
// scores when the scoring backend is down.
package fuse
