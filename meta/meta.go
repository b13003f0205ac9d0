package meta

import (
	"math"
	"sync"

	"github.com/google/btree"
	"github.com/squareup/rowcodec/errors"
)

type SchemaKind int

const (
	KindTag SchemaKind = iota + 1
	KindEdge
)

func (k SchemaKind) String() string {
	switch k {
	case KindTag:
		return "tag"
	case KindEdge:
		return "edge"
	}
	return "unknown"
}

// SchemaManager resolves the schema a row was written with. A negative version means the newest.
type SchemaManager interface {
	GetTagSchema(space int32, tag int32, ver int64) (SchemaProvider, bool)
	GetEdgeSchema(space int32, edge int32, ver int64) (SchemaProvider, bool)
}

type schemaKey struct {
	kind  SchemaKind
	space int32
	id    int32
	ver   int64
}

type schemaItem struct {
	key    schemaKey
	schema SchemaProvider
}

func (i *schemaItem) Less(than btree.Item) bool {
	a, b := i.key, than.(*schemaItem).key
	if a.kind != b.kind {
		return a.kind < b.kind
	}
	if a.space != b.space {
		return a.space < b.space
	}
	if a.id != b.id {
		return a.id < b.id
	}
	return a.ver < b.ver
}

// MemSchemaManager keeps every version of every registered schema in an ordered index, so the
// newest version of a tag or edge is the last entry of its key range.
type MemSchemaManager struct {
	lock  sync.RWMutex
	index *btree.BTree
}

func NewMemSchemaManager() *MemSchemaManager {
	return &MemSchemaManager{index: btree.New(16)}
}

func (m *MemSchemaManager) AddTagSchema(space int32, tag int32, schema SchemaProvider) error {
	return m.add(KindTag, space, tag, schema)
}

func (m *MemSchemaManager) AddEdgeSchema(space int32, edge int32, schema SchemaProvider) error {
	return m.add(KindEdge, space, edge, schema)
}

func (m *MemSchemaManager) add(kind SchemaKind, space int32, id int32, schema SchemaProvider) error {
	if schema.GetVersion() < 0 {
		return errors.NewInvalidSchemaError("schema version must not be negative")
	}
	item := &schemaItem{key: schemaKey{kind: kind, space: space, id: id, ver: schema.GetVersion()}, schema: schema}
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.index.Has(item) {
		return errors.NewRowErrorf(errors.InvalidSchema, "%s %d in space %d already has version %d", kind, id, space,
			schema.GetVersion())
	}
	m.index.ReplaceOrInsert(item)
	return nil
}

func (m *MemSchemaManager) GetTagSchema(space int32, tag int32, ver int64) (SchemaProvider, bool) {
	return m.get(KindTag, space, tag, ver)
}

func (m *MemSchemaManager) GetEdgeSchema(space int32, edge int32, ver int64) (SchemaProvider, bool) {
	return m.get(KindEdge, space, edge, ver)
}

func (m *MemSchemaManager) get(kind SchemaKind, space int32, id int32, ver int64) (SchemaProvider, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	if ver >= 0 {
		item := m.index.Get(&schemaItem{key: schemaKey{kind: kind, space: space, id: id, ver: ver}})
		if item == nil {
			return nil, false
		}
		return item.(*schemaItem).schema, true
	}
	var newest *schemaItem
	pivot := &schemaItem{key: schemaKey{kind: kind, space: space, id: id, ver: math.MaxInt64}}
	m.index.DescendLessOrEqual(pivot, func(i btree.Item) bool {
		si := i.(*schemaItem)
		if si.key.kind == kind && si.key.space == space && si.key.id == id {
			newest = si
		}
		return false
	})
	if newest == nil {
		return nil, false
	}
	return newest.schema, true
}

// GetAllVersionedTagSchema returns every version of the tag, oldest first.
func (m *MemSchemaManager) GetAllVersionedTagSchema(space int32, tag int32) []SchemaProvider {
	return m.all(KindTag, space, tag)
}

// GetAllVersionedEdgeSchema returns every version of the edge, oldest first.
func (m *MemSchemaManager) GetAllVersionedEdgeSchema(space int32, edge int32) []SchemaProvider {
	return m.all(KindEdge, space, edge)
}

func (m *MemSchemaManager) all(kind SchemaKind, space int32, id int32) []SchemaProvider {
	m.lock.RLock()
	defer m.lock.RUnlock()
	var schemas []SchemaProvider
	from := &schemaItem{key: schemaKey{kind: kind, space: space, id: id}}
	m.index.AscendGreaterOrEqual(from, func(i btree.Item) bool {
		si := i.(*schemaItem)
		if si.key.kind != kind || si.key.space != space || si.key.id != id {
			return false
		}
		schemas = append(schemas, si.schema)
		return true
	})
	return schemas
}
