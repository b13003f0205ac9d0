package codec

import (
	"sort"

	"github.com/squareup/rowcodec/meta"
	"github.com/squareup/rowcodec/value"
)

// EncodeProps writes a row from named values. Properties missing from props fall back to their
// default or null.
func EncodeProps(schema meta.SchemaProvider, props map[string]value.Value, opts ...WriterOption) ([]byte, error) {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	// deterministic error reporting when several props are bad
	sort.Strings(names)
	w := NewRowWriterV2(schema, opts...)
	for _, name := range names {
		if err := w.SetValueByName(name, props[name]); err != nil {
			return nil, err
		}
	}
	if err := w.Finish(); err != nil {
		return nil, err
	}
	return w.TakeEncoded(), nil
}

// DecodeProps reads every field of a row into a map keyed by field name.
func DecodeProps(reader RowReader) map[string]value.Value {
	props := make(map[string]value.Value, reader.NumFields())
	for it := reader.Iterator(); it.Next(); {
		props[it.Name()] = it.Value()
	}
	return props
}
