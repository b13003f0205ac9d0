package commands

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/squareup/rowcodec/errors"
	"github.com/squareup/rowcodec/geo"
	"github.com/squareup/rowcodec/meta"
	"github.com/squareup/rowcodec/value"
)

// PropsFromJSON converts a JSON object into property values typed after the schema's fields.
// Temporal values are strings in their DDL literal form and geographies are GeoJSON geometries.
func PropsFromJSON(schema meta.SchemaProvider, data string) (map[string]value.Value, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, errors.Wrap(err, "property map must be a JSON object")
	}
	props := make(map[string]value.Value, len(raw))
	for name, msg := range raw {
		index := schema.GetFieldIndex(name)
		if index < 0 {
			return nil, errors.NewUnknownFieldError(name)
		}
		v, err := jsonValue(schema.Field(index).Type(), msg)
		if err != nil {
			return nil, errors.Wrapf(err, "property %s", name)
		}
		props[name] = v
	}
	return props, nil
}

func jsonValue(typ meta.PropertyType, msg json.RawMessage) (value.Value, error) {
	if typ == meta.TypeGeography && !bytes.Equal(bytes.TrimSpace(msg), []byte("null")) {
		g, err := geo.FromGeoJSON(msg)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewGeography(g), nil
	}
	d := json.NewDecoder(bytes.NewReader(msg))
	d.UseNumber()
	var x interface{}
	if err := d.Decode(&x); err != nil {
		return value.Value{}, errors.WithStack(err)
	}
	return toValue(typ, x)
}

func toValue(typ meta.PropertyType, x interface{}) (value.Value, error) {
	if x == nil {
		return value.Null, nil
	}
	if kind, ok := typ.ContainerKind(); ok {
		return toContainer(typ, kind, typ.IsNested(), x)
	}
	switch v := x.(type) {
	case bool:
		if typ == meta.TypeBool {
			return value.NewBool(v), nil
		}
	case json.Number:
		switch typ {
		case meta.TypeInt8, meta.TypeInt16, meta.TypeInt32, meta.TypeInt64, meta.TypeTimestamp, meta.TypeVID:
			i, err := v.Int64()
			if err != nil {
				return value.Value{}, errors.WithStack(err)
			}
			return value.NewInt(i), nil
		case meta.TypeFloat, meta.TypeDouble:
			f, err := v.Float64()
			if err != nil && !math.IsInf(f, 0) {
				return value.Value{}, errors.WithStack(err)
			}
			return value.NewFloat(f), nil
		}
	case string:
		return stringValue(typ, v)
	}
	return value.Value{}, errors.Errorf("%s cannot hold JSON value %v", typ, x)
}

func stringValue(typ meta.PropertyType, s string) (value.Value, error) {
	switch typ {
	case meta.TypeString, meta.TypeFixedString, meta.TypeVID:
		return value.NewString(s), nil
	case meta.TypeDate:
		d, err := value.ParseDate(s)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewDate(d), nil
	case meta.TypeTime:
		t, err := value.ParseTime(s)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewTime(t), nil
	case meta.TypeDateTime:
		dt, err := value.ParseDateTime(s)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewDateTime(dt), nil
	case meta.TypeDuration:
		d, err := value.ParseDuration(s)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewDuration(d), nil
	}
	return value.Value{}, errors.Errorf("%s cannot hold JSON string %q", typ, s)
}

func toContainer(typ meta.PropertyType, kind meta.ElemKind, nested bool, x interface{}) (value.Value, error) {
	arr, ok := x.([]interface{})
	if !ok {
		return value.Value{}, errors.Errorf("%s needs a JSON array, not %v", typ, x)
	}
	vals := make([]value.Value, 0, len(arr))
	for _, e := range arr {
		var (
			v   value.Value
			err error
		)
		if nested {
			v, err = toContainer(typ, kind, false, e)
		} else {
			v, err = toValue(elemType(kind), e)
		}
		if err != nil {
			return value.Value{}, err
		}
		if v.IsNull() {
			return value.Value{}, errors.Errorf("%s cannot hold null elements", typ)
		}
		vals = append(vals, v)
	}
	if typ.IsSet() {
		return value.NewSet(value.NewSetOf(vals...)), nil
	}
	return value.NewList(value.NewListOf(vals...)), nil
}

func elemType(kind meta.ElemKind) meta.PropertyType {
	switch kind {
	case meta.ElemInt:
		return meta.TypeInt64
	case meta.ElemFloat:
		return meta.TypeDouble
	}
	return meta.TypeString
}

// PropsToJSON renders decoded values as JSON-friendly Go values. Plain nulls and empty values become
// null; the other null kinds keep their names so bad data stays visible.
func PropsToJSON(props map[string]value.Value) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(props))
	for name, v := range props {
		x, err := toJSON(v)
		if err != nil {
			return nil, errors.Wrapf(err, "property %s", name)
		}
		out[name] = x
	}
	return out, nil
}

func toJSON(v value.Value) (interface{}, error) {
	switch v.Type() {
	case value.TypeEmpty:
		return nil, nil
	case value.TypeNull:
		if v.NullType() == value.NullValue {
			return nil, nil
		}
		return v.String(), nil
	case value.TypeBool:
		return v.Bool(), nil
	case value.TypeInt:
		return v.Int(), nil
	case value.TypeFloat:
		if math.IsInf(v.Float(), 0) || math.IsNaN(v.Float()) {
			return v.String(), nil
		}
		return v.Float(), nil
	case value.TypeString:
		return v.Str(), nil
	case value.TypeGeography:
		b, err := v.Geography().GeoJSON()
		if err != nil {
			return nil, err
		}
		return json.RawMessage(b), nil
	case value.TypeList:
		return elemsToJSON(v.List().Values)
	case value.TypeSet:
		return elemsToJSON(v.Set().Values)
	}
	return v.String(), nil
}

func elemsToJSON(vals []value.Value) ([]interface{}, error) {
	out := make([]interface{}, len(vals))
	for i, e := range vals {
		x, err := toJSON(e)
		if err != nil {
			return nil, err
		}
		out[i] = x
	}
	return out, nil
}
