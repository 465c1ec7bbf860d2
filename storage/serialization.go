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


package storage

import (
	"math"
	"sort"
	"time"

	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/retrievit/core"
)

// Serialization uses the MUS format's varint primitives with a fixed field
// order per struct. Maps are written in sorted key order so serialization is
// deterministic.

func sizeString(s string) int {
	return varint.SizeInt(len(s)) + len(s)
}

func marshalString(s string, bs []byte) int {
	n := varint.MarshalInt(len(s), bs)
	n += copy(bs[n:], s)
	return n
}

func unmarshalString(bs []byte) (string, int, error) {
	length, n, err := varint.UnmarshalInt(bs)
	if err != nil {
		return "", n, err
	}
	if length < 0 || n+length > len(bs) {
		return "", n, ErrCorruptValue
	}
	return string(bs[n : n+length]), n + length, nil
}

func sizeVector(v []float32) int {
	size := varint.SizeInt(len(v))
	for _, f := range v {
		size += varint.SizeUint32(math.Float32bits(f))
	}
	return size
}

func marshalVector(v []float32, bs []byte) int {
	n := varint.MarshalInt(len(v), bs)
	for _, f := range v {
		n += varint.MarshalUint32(math.Float32bits(f), bs[n:])
	}
	return n
}

func unmarshalVector(bs []byte) ([]float32, int, error) {
	length, n, err := varint.UnmarshalInt(bs)
	if err != nil {
		return nil, n, err
	}
	if length < 0 {
		return nil, n, ErrCorruptValue
	}
	if length == 0 {
		return nil, n, nil
	}
	v := make([]float32, length)
	for i := 0; i < length; i++ {
		bits, m, err := varint.UnmarshalUint32(bs[n:])
		if err != nil {
			return nil, n, err
		}
		n += m
		v[i] = math.Float32frombits(bits)
	}
	return v, n, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sizeMetadata(m map[string]string) int {
	size := varint.SizeInt(len(m))
	for k, v := range m {
		size += sizeString(k) + sizeString(v)
	}
	return size
}

func marshalMetadata(m map[string]string, bs []byte) int {
	n := varint.MarshalInt(len(m), bs)
	for _, k := range sortedKeys(m) {
		n += marshalString(k, bs[n:])
		n += marshalString(m[k], bs[n:])
	}
	return n
}

func unmarshalMetadata(bs []byte) (map[string]string, int, error) {
	length, n, err := varint.UnmarshalInt(bs)
	if err != nil {
		return nil, n, err
	}
	if length < 0 {
		return nil, n, ErrCorruptValue
	}
	if length == 0 {
		return nil, n, nil
	}
	m := make(map[string]string, length)
	for i := 0; i < length; i++ {
		k, kn, err := unmarshalString(bs[n:])
		if err != nil {
			return nil, n, err
		}
		n += kn
		v, vn, err := unmarshalString(bs[n:])
		if err != nil {
			return nil, n, err
		}
		n += vn
		m[k] = v
	}
	return m, n, nil
}

// MarshalID serializes an ID to bytes. Used for index values that point at
// primary records.
func MarshalID(id core.ID) []byte {
	bs := make([]byte, varint.SizeUint64(uint64(id)))
	varint.MarshalUint64(uint64(id), bs)
	return bs
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(bs []byte) (core.ID, error) {
	id, _, err := varint.UnmarshalUint64(bs)
	return core.ID(id), err
}

// MarshalDocument serializes a Document to bytes.
func MarshalDocument(doc *core.Document) []byte {
	size := varint.SizeUint64(uint64(doc.Id)) +
		sizeString(doc.Text) +
		sizeVector(doc.Vector) +
		sizeMetadata(doc.Metadata) +
		varint.SizeInt64(doc.InsertedAt.UnixMicro())
	bs := make([]byte, size)
	n := varint.MarshalUint64(uint64(doc.Id), bs)
	n += marshalString(doc.Text, bs[n:])
	n += marshalVector(doc.Vector, bs[n:])
	n += marshalMetadata(doc.Metadata, bs[n:])
	varint.MarshalInt64(doc.InsertedAt.UnixMicro(), bs[n:])
	return bs
}

// UnmarshalDocument deserializes a Document from bytes.
func UnmarshalDocument(bs []byte) (*core.Document, error) {
	id, n, err := varint.UnmarshalUint64(bs)
	if err != nil {
		return nil, err
	}
	text, tn, err := unmarshalString(bs[n:])
	if err != nil {
		return nil, err
	}
	n += tn
	vector, vn, err := unmarshalVector(bs[n:])
	if err != nil {
		return nil, err
	}
	n += vn
	metadata, mn, err := unmarshalMetadata(bs[n:])
	if err != nil {
		return nil, err
	}
	n += mn
	micros, _, err := varint.UnmarshalInt64(bs[n:])
	if err != nil {
		return nil, err
	}
	return &core.Document{
		Id:         core.ID(id),
		Text:       text,
		Vector:     vector,
		Metadata:   metadata,
		InsertedAt: time.UnixMicro(micros).UTC(),
	}, nil
}

// MarshalEntity serializes an Entity to bytes.
func MarshalEntity(entity *core.Entity) []byte {
	size := varint.SizeUint64(uint64(entity.Id)) +
		sizeString(entity.Name) +
		sizeString(entity.Type)
	bs := make([]byte, size)
	n := varint.MarshalUint64(uint64(entity.Id), bs)
	n += marshalString(entity.Name, bs[n:])
	marshalString(entity.Type, bs[n:])
	return bs
}

// UnmarshalEntity deserializes an Entity from bytes.
func UnmarshalEntity(bs []byte) (*core.Entity, error) {
	id, n, err := varint.UnmarshalUint64(bs)
	if err != nil {
		return nil, err
	}
	name, nn, err := unmarshalString(bs[n:])
	if err != nil {
		return nil, err
	}
	n += nn
	entityType, _, err := unmarshalString(bs[n:])
	if err != nil {
		return nil, err
	}
	return &core.Entity{Id: core.ID(id), Name: name, Type: entityType}, nil
}

// MarshalTriple serializes a Triple to bytes.
func MarshalTriple(triple *core.Triple) []byte {
	size := varint.SizeUint64(uint64(triple.Subject)) +
		sizeString(triple.Relation) +
		varint.SizeUint64(uint64(triple.Object)) +
		varint.SizeUint64(uint64(triple.Doc))
	bs := make([]byte, size)
	n := varint.MarshalUint64(uint64(triple.Subject), bs)
	n += marshalString(triple.Relation, bs[n:])
	n += varint.MarshalUint64(uint64(triple.Object), bs[n:])
	varint.MarshalUint64(uint64(triple.Doc), bs[n:])
	return bs
}

// UnmarshalTriple deserializes a Triple from bytes.
func UnmarshalTriple(bs []byte) (*core.Triple, error) {
	subject, n, err := varint.UnmarshalUint64(bs)
	if err != nil {
		return nil, err
	}
	relation, rn, err := unmarshalString(bs[n:])
	if err != nil {
		return nil, err
	}
	n += rn
	object, on, err := varint.UnmarshalUint64(bs[n:])
	if err != nil {
		return nil, err
	}
	n += on
	doc, _, err := varint.UnmarshalUint64(bs[n:])
	if err != nil {
		return nil, err
	}
	return &core.Triple{
		Subject:  core.ID(subject),
		Relation: relation,
		Object:   core.ID(object),
		Doc:      core.ID(doc),
	}, nil
}
