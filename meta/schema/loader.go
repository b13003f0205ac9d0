package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/squareup/rowcodec/errors"
	"github.com/squareup/rowcodec/meta"
	"github.com/squareup/rowcodec/parser"
)

// DDLSuffix marks the files LoadDir picks up.
const DDLSuffix = ".ddl"

type catalogKey struct {
	kind meta.SchemaKind
	name string
}

type idKey struct {
	kind meta.SchemaKind
	id   int32
}

// Loader is a service that loads tag and edge schemas from DDL files on disk and registers them with
// the schema manager. It also keeps the name to id catalog of the space.
type Loader struct {
	lock      sync.RWMutex
	schemaMan *meta.MemSchemaManager
	space     int32
	dir       string
	ids       map[catalogKey]int32
	names     map[idKey]string
	nextID    int32
}

func NewLoader(schemaMan *meta.MemSchemaManager, space int32, dir string) *Loader {
	return &Loader{
		schemaMan: schemaMan,
		space:     space,
		dir:       dir,
		ids:       make(map[catalogKey]int32),
		names:     make(map[idKey]string),
		nextID:    1,
	}
}

// Start loads the configured directory, if any.
func (l *Loader) Start() error {
	if l.dir == "" {
		return nil
	}
	return l.LoadDir(l.dir)
}

func (l *Loader) Stop() error {
	return nil
}

// LoadDir loads every DDL file in dir in file name order.
func (l *Loader) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.WithStack(err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), DDLSuffix) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	for _, f := range files {
		if err := l.LoadFile(f); err != nil {
			return err
		}
	}
	log.Infof("loaded %d schema files from %s", len(files), dir)
	return nil
}

func (l *Loader) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return errors.WithStack(err)
	}
	return l.Load(path, string(b))
}

// Load parses ddl and registers every schema it declares. A statement without a VERSION clause
// becomes the next version of its tag or edge. Statements before a failing one stay registered.
func (l *Loader) Load(filename string, ddl string) error {
	ast, err := parser.Parse(filename, ddl)
	if err != nil {
		return err
	}
	l.lock.Lock()
	defer l.lock.Unlock()
	for _, stmt := range ast.Statements {
		if err := l.apply(stmt.Create); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loader) apply(create *parser.CreateSchema) error {
	kind := create.Kind()
	key := catalogKey{kind: kind, name: create.Name}
	id, known := l.ids[key]
	if create.ID != nil {
		if known && id != *create.ID {
			return errors.NewInvalidSchemaError(fmt.Sprintf("%s %s already has id %d, not %d", kind, create.Name, id, *create.ID))
		}
		if name, taken := l.names[idKey{kind: kind, id: *create.ID}]; taken && name != create.Name {
			return errors.NewInvalidSchemaError(fmt.Sprintf("%s id %d already belongs to %s", kind, *create.ID, name))
		}
		id = *create.ID
	} else if !known {
		id = l.nextFreeID(kind)
	}
	if create.Version == 0 {
		if newest, ok := l.get(kind, id, -1); ok {
			create.Version = newest.GetVersion() + 1
		}
	}
	schema, err := create.ToSchema()
	if err != nil {
		return err
	}
	if kind == meta.KindEdge {
		err = l.schemaMan.AddEdgeSchema(l.space, id, schema)
	} else {
		err = l.schemaMan.AddTagSchema(l.space, id, schema)
	}
	if err != nil {
		return errors.Wrapf(err, "%s %s", kind, create.Name)
	}
	l.ids[key] = id
	l.names[idKey{kind: kind, id: id}] = create.Name
	if id >= l.nextID {
		l.nextID = id + 1
	}
	log.Debugf("registered %s %s id %d version %d in space %d", kind, create.Name, id, schema.GetVersion(), l.space)
	return nil
}

func (l *Loader) nextFreeID(kind meta.SchemaKind) int32 {
	for {
		id := l.nextID
		l.nextID++
		if _, taken := l.names[idKey{kind: kind, id: id}]; !taken {
			return id
		}
	}
}

func (l *Loader) get(kind meta.SchemaKind, id int32, ver int64) (meta.SchemaProvider, bool) {
	if kind == meta.KindEdge {
		return l.schemaMan.GetEdgeSchema(l.space, id, ver)
	}
	return l.schemaMan.GetTagSchema(l.space, id, ver)
}

// ID returns the id a tag or edge was registered under.
func (l *Loader) ID(kind meta.SchemaKind, name string) (int32, bool) {
	l.lock.RLock()
	defer l.lock.RUnlock()
	id, ok := l.ids[catalogKey{kind: kind, name: name}]
	return id, ok
}

// Newest returns the id and newest schema version of a tag or edge.
func (l *Loader) Newest(kind meta.SchemaKind, name string) (int32, meta.SchemaProvider, bool) {
	id, ok := l.ID(kind, name)
	if !ok {
		return 0, nil, false
	}
	schema, ok := l.get(kind, id, -1)
	return id, schema, ok
}

// Names lists the registered tags or edges in name order.
func (l *Loader) Names(kind meta.SchemaKind) []string {
	l.lock.RLock()
	defer l.lock.RUnlock()
	var names []string
	for k := range l.ids {
		if k.kind == kind {
			names = append(names, k.name)
		}
	}
	sort.Strings(names)
	return names
}

func (l *Loader) Space() int32 { return l.space }

func (l *Loader) SchemaManager() *meta.MemSchemaManager { return l.schemaMan }
