package codec

import (
	log "github.com/sirupsen/logrus"
	"github.com/squareup/rowcodec/meta"
	"github.com/squareup/rowcodec/value"
)

// RowReaderWrapper reads rows of either format, picking the reader from the row header. Reuse one
// wrapper across rows with Reset to avoid allocating readers.
type RowReaderWrapper struct {
	readerV1  RowReaderV1
	readerV2  RowReaderV2
	current   RowReader
	readerVer int
}

// GetRowReader returns a reader bound to row, or nil if the row is malformed or was not written
// with schema's version.
func GetRowReader(schema meta.SchemaProvider, row []byte) *RowReaderWrapper {
	schemaVer, readerVer := GetVersions(row)
	if schemaVer != schema.GetVersion() {
		return nil
	}
	w := &RowReaderWrapper{}
	if !w.ResetWithVersion(schema, row, readerVer) {
		return nil
	}
	return w
}

// GetRowReaderFromSchemas picks the schema the row was written with out of every known version.
func GetRowReaderFromSchemas(schemas []meta.SchemaProvider, row []byte) *RowReaderWrapper {
	schemaVer, readerVer := GetVersions(row)
	if schemaVer < 0 {
		return nil
	}
	for i := len(schemas) - 1; i >= 0; i-- {
		if schemas[i].GetVersion() != schemaVer {
			continue
		}
		w := &RowReaderWrapper{}
		if !w.ResetWithVersion(schemas[i], row, readerVer) {
			return nil
		}
		return w
	}
	log.Errorf("no schema with version %d among %d versions", schemaVer, len(schemas))
	return nil
}

// GetTagPropReader returns a reader for a vertex property row of the tag, resolving the schema
// version the row was written with.
func GetTagPropReader(schemaMan meta.SchemaManager, space int32, tag int32, row []byte) *RowReaderWrapper {
	schemaVer, readerVer := GetVersions(row)
	if schemaVer < 0 {
		return nil
	}
	schema, ok := schemaMan.GetTagSchema(space, tag, schemaVer)
	if !ok {
		log.Errorf("no schema for tag %d version %d in space %d", tag, schemaVer, space)
		return nil
	}
	w := &RowReaderWrapper{}
	if !w.ResetWithVersion(schema, row, readerVer) {
		return nil
	}
	return w
}

// GetEdgePropReader is GetTagPropReader for edge property rows.
func GetEdgePropReader(schemaMan meta.SchemaManager, space int32, edge int32, row []byte) *RowReaderWrapper {
	schemaVer, readerVer := GetVersions(row)
	if schemaVer < 0 {
		return nil
	}
	schema, ok := schemaMan.GetEdgeSchema(space, edge, schemaVer)
	if !ok {
		log.Errorf("no schema for edge %d version %d in space %d", edge, schemaVer, space)
		return nil
	}
	w := &RowReaderWrapper{}
	if !w.ResetWithVersion(schema, row, readerVer) {
		return nil
	}
	return w
}

// Reset rebinds the wrapper to another row, detecting the reader version from the header.
func (w *RowReaderWrapper) Reset(schema meta.SchemaProvider, row []byte) bool {
	_, readerVer := GetVersions(row)
	return w.ResetWithVersion(schema, row, readerVer)
}

func (w *RowReaderWrapper) ResetWithVersion(schema meta.SchemaProvider, row []byte, readerVer int) bool {
	w.current = nil
	w.readerVer = readerVer
	switch readerVer {
	case ReaderVersion1:
		if w.readerV1.Reset(schema, row) {
			w.current = &w.readerV1
		}
	case ReaderVersion2:
		if w.readerV2.Reset(schema, row) {
			w.current = &w.readerV2
		}
	default:
		log.Errorf("unsupported reader version %d", readerVer)
	}
	return w.current != nil
}

func (w *RowReaderWrapper) reader() RowReader {
	if w.current == nil {
		panic("row reader is not bound to a row")
	}
	return w.current
}

func (w *RowReaderWrapper) GetValueByName(prop string) value.Value {
	return w.reader().GetValueByName(prop)
}

func (w *RowReaderWrapper) GetValueByIndex(index int) value.Value {
	return w.reader().GetValueByIndex(index)
}

func (w *RowReaderWrapper) GetTimestamp() int64 { return w.reader().GetTimestamp() }

func (w *RowReaderWrapper) ReaderVer() int { return w.reader().ReaderVer() }

func (w *RowReaderWrapper) NumFields() int { return w.reader().NumFields() }

func (w *RowReaderWrapper) SchemaVer() int64 { return w.reader().SchemaVer() }

func (w *RowReaderWrapper) HeaderLen() int { return w.reader().HeaderLen() }

func (w *RowReaderWrapper) Schema() meta.SchemaProvider { return w.reader().Schema() }

func (w *RowReaderWrapper) Iterator() *Iterator { return newIterator(w) }
