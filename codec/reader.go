package codec

import (
	"github.com/squareup/rowcodec/meta"
	"github.com/squareup/rowcodec/value"
)

// RowReader decodes single fields out of an encoded row. Decoding never fails: unreadable data
// comes back as a BadData null and unknown fields as an UnknownProp null.
type RowReader interface {
	GetValueByName(prop string) value.Value
	GetValueByIndex(index int) value.Value
	// GetTimestamp returns the write timestamp in microseconds, or math.MaxInt64 if the row has none.
	GetTimestamp() int64
	ReaderVer() int
	NumFields() int
	SchemaVer() int64
	HeaderLen() int
	Schema() meta.SchemaProvider
	Iterator() *Iterator
}

// Iterator walks the fields of a row in schema order.
//
//	it := reader.Iterator()
//	for it.Next() {
//		fmt.Println(it.Name(), it.Value())
//	}
type Iterator struct {
	reader RowReader
	index  int
	n      int
}

func newIterator(r RowReader) *Iterator {
	return &Iterator{reader: r, index: -1, n: r.NumFields()}
}

func (it *Iterator) Next() bool {
	if it.index < it.n {
		it.index++
	}
	return it.index < it.n
}

func (it *Iterator) Index() int { return it.index }

func (it *Iterator) Name() string { return it.reader.Schema().GetFieldName(it.index) }

func (it *Iterator) Value() value.Value { return it.reader.GetValueByIndex(it.index) }
