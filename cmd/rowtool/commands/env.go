package commands

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
	"github.com/squareup/rowcodec/codec"
	"github.com/squareup/rowcodec/common"
	"github.com/squareup/rowcodec/conf"
	"github.com/squareup/rowcodec/errors"
	"github.com/squareup/rowcodec/meta"
	"github.com/squareup/rowcodec/meta/schema"
)

// Env is what every command runs against: the loaded schemas, the configuration and where output
// goes.
type Env struct {
	Loader *schema.Loader
	Config *conf.Config
	Out    io.Writer
}

func kindOf(edge bool) meta.SchemaKind {
	if edge {
		return meta.KindEdge
	}
	return meta.KindTag
}

func (e *Env) newest(kind meta.SchemaKind, name string) (int32, meta.SchemaProvider, error) {
	id, schema, ok := e.Loader.Newest(kind, name)
	if !ok {
		return 0, nil, errors.NewUnknownSchemaError(fmt.Sprintf("%s %s", kind, name), e.Loader.Space(), id, -1)
	}
	return id, schema, nil
}

// Encode writes props, a JSON object, with the newest schema of the tag or edge and returns the row
// as hex.
func (e *Env) Encode(kind meta.SchemaKind, name string, props string) (string, error) {
	_, schema, err := e.newest(kind, name)
	if err != nil {
		return "", err
	}
	values, err := PropsFromJSON(schema, props)
	if err != nil {
		return "", err
	}
	var opts []codec.WriterOption
	if ts := e.Config.Timestamp; ts > 0 {
		opts = append(opts, codec.WithClock(func() int64 { return ts }))
	}
	row, err := codec.EncodeProps(schema, values, opts...)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(row), nil
}

// Decode prints the properties of a hex row of the tag or edge, read with the schema version the row
// was written with.
func (e *Env) Decode(kind meta.SchemaKind, name string, hexRow string) (err error) {
	row, err := common.DecodeHex(hexRow)
	if err != nil {
		return err
	}
	id, _, err := e.newest(kind, name)
	if err != nil {
		return err
	}
	// readers panic on rows that contradict their schema
	defer common.RecoverInternalError(&err)
	var reader *codec.RowReaderWrapper
	if kind == meta.KindEdge {
		reader = codec.GetEdgePropReader(e.Loader.SchemaManager(), e.Loader.Space(), id, row)
	} else {
		reader = codec.GetTagPropReader(e.Loader.SchemaManager(), e.Loader.Space(), id, row)
	}
	if reader == nil {
		schemaVer, _ := codec.GetVersions(row)
		return errors.NewUnknownSchemaError(fmt.Sprintf("%s %s", kind, name), e.Loader.Space(), id, schemaVer)
	}
	log.Debugf("decoding %s %s row %s", kind, name, common.DumpRow(row))
	return e.printRow(reader)
}

func (e *Env) printRow(reader codec.RowReader) error {
	props := codec.DecodeProps(reader)
	if e.Config.Output == conf.OutputJSON {
		values, err := PropsToJSON(props)
		if err != nil {
			return err
		}
		b, err := json.Marshal(map[string]interface{}{
			"schema_version": reader.SchemaVer(),
			"reader_version": reader.ReaderVer(),
			"timestamp":      reader.GetTimestamp(),
			"props":          values,
		})
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = fmt.Fprintln(e.Out, string(b))
		return errors.WithStack(err)
	}
	fmt.Fprintf(e.Out, "schema version %d, reader version %d, timestamp %d\n", reader.SchemaVer(),
		reader.ReaderVer(), reader.GetTimestamp())
	for it := reader.Iterator(); it.Next(); {
		fmt.Fprintf(e.Out, "%s: %s\n", it.Name(), it.Value())
	}
	return nil
}

// Versions prints the schema and reader version carried by a hex row.
func (e *Env) Versions(hexRow string) error {
	row, err := common.DecodeHex(hexRow)
	if err != nil {
		return err
	}
	schemaVer, readerVer := codec.GetVersions(row)
	if schemaVer < 0 {
		return errors.NewRowErrorf(errors.IncorrectValue, "row header %s is malformed", common.DumpRow(row))
	}
	fmt.Fprintf(e.Out, "schema version %d, reader version %d\n", schemaVer, readerVer)
	return nil
}

// Schemas prints every loaded tag and edge with its versions and newest fields.
func (e *Env) Schemas() error {
	mgr := e.Loader.SchemaManager()
	for _, kind := range []meta.SchemaKind{meta.KindTag, meta.KindEdge} {
		for _, name := range e.Loader.Names(kind) {
			id, _ := e.Loader.ID(kind, name)
			var all []meta.SchemaProvider
			if kind == meta.KindEdge {
				all = mgr.GetAllVersionedEdgeSchema(e.Loader.Space(), id)
			} else {
				all = mgr.GetAllVersionedTagSchema(e.Loader.Space(), id)
			}
			versions := make([]int64, len(all))
			for i, s := range all {
				versions[i] = s.GetVersion()
			}
			fmt.Fprintf(e.Out, "%s %s id %d versions %v\n", kind, name, id, versions)
			newest := all[len(all)-1]
			for i := 0; i < newest.GetNumFields(); i++ {
				fmt.Fprintf(e.Out, "  %s\n", newest.Field(i))
			}
		}
	}
	return nil
}
