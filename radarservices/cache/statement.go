package cache

import (
	"encoding/base64"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/lunagic/radar/radar"
)

// exactTypes are the types a cached value can name. Lists name their element
// type as "slice:<name>" or "array:<name>".
var exactTypes = map[string]reflect.Type{
	"any":     reflect.TypeFor[any](),
	"bool":    reflect.TypeFor[bool](),
	"bytes":   reflect.TypeFor[[]byte](),
	"float32": reflect.TypeFor[float32](),
	"float64": reflect.TypeFor[float64](),
	"int":     reflect.TypeFor[int](),
	"int8":    reflect.TypeFor[int8](),
	"int16":   reflect.TypeFor[int16](),
	"int32":   reflect.TypeFor[int32](),
	"int64":   reflect.TypeFor[int64](),
	"map":     reflect.TypeFor[map[string]any](),
	"string":  reflect.TypeFor[string](),
	"time":    reflect.TypeFor[time.Time](),
	"uint":    reflect.TypeFor[uint](),
	"uint8":   reflect.TypeFor[uint8](),
	"uint16":  reflect.TypeFor[uint16](),
	"uint32":  reflect.TypeFor[uint32](),
	"uint64":  reflect.TypeFor[uint64](),
}

var typeNames = func() map[reflect.Type]string {
	names := map[reflect.Type]string{}
	for name, valueType := range exactTypes {
		names[valueType] = name
	}

	return names
}()

// value encodes a parameter so that decoding it gives back the same type and
// the same value. Anything outside exactTypes cannot be encoded.
type value struct {
	Type  string           `json:"type"`
	Nil   bool             `json:"nil,omitempty"`
	Text  string           `json:"text,omitempty"`
	Items []value          `json:"items,omitempty"`
	Keys  map[string]value `json:"keys,omitempty"`
}

func encodeValue(input any) (value, bool) {
	if input == nil {
		return value{Type: "nil"}, true
	}

	return encodeReflected(reflect.ValueOf(input))
}

func encodeReflected(reflected reflect.Value) (value, bool) {
	name, known := typeNames[reflected.Type()]
	if !known {
		return encodeList(reflected)
	}

	switch name {
	case "any":
		if reflected.IsNil() {
			return value{Type: "nil"}, true
		}

		return encodeReflected(reflected.Elem())
	case "bytes":
		if reflected.IsNil() {
			return value{Type: name, Nil: true}, true
		}

		return value{Type: name, Text: base64.StdEncoding.EncodeToString(reflected.Bytes())}, true
	case "time":
		text, err := reflected.Interface().(time.Time).MarshalText()
		if err != nil {
			return value{}, false
		}

		return value{Type: name, Text: string(text)}, true
	case "map":
		if reflected.IsNil() {
			return value{Type: name, Nil: true}, true
		}

		keys := map[string]value{}
		for iter := reflected.MapRange(); iter.Next(); {
			item, ok := encodeReflected(iter.Value())
			if !ok {
				return value{}, false
			}

			keys[iter.Key().String()] = item
		}

		return value{Type: name, Keys: keys}, true
	}

	return value{Type: name, Text: formatScalar(reflected)}, true
}

func encodeList(reflected reflect.Value) (value, bool) {
	kind := ""
	switch reflected.Kind() {
	case reflect.Slice:
		kind = "slice"
	case reflect.Array:
		kind = "array"
	default:
		return value{}, false
	}

	elementName, known := typeNames[reflected.Type().Elem()]
	if !known {
		return value{}, false
	}

	encoded := value{Type: kind + ":" + elementName}
	if kind == "slice" && reflected.IsNil() {
		encoded.Nil = true
		return encoded, true
	}

	encoded.Items = make([]value, reflected.Len())
	for i := range reflected.Len() {
		item, ok := encodeReflected(reflected.Index(i))
		if !ok {
			return value{}, false
		}

		encoded.Items[i] = item
	}

	return encoded, true
}

func formatScalar(reflected reflect.Value) string {
	switch reflected.Kind() {
	case reflect.Bool:
		return strconv.FormatBool(reflected.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(reflected.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(reflected.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(reflected.Float(), 'g', -1, reflected.Type().Bits())
	}

	return reflected.String()
}

// decode returns the zero Value for an encoded nil.
func (encoded value) decode() (reflect.Value, error) {
	if encoded.Type == "nil" {
		return reflect.Value{}, nil
	}

	if kind, elementName, isList := strings.Cut(encoded.Type, ":"); isList {
		return encoded.decodeList(kind, elementName)
	}

	target, known := exactTypes[encoded.Type]
	if !known {
		return reflect.Value{}, fmt.Errorf("unknown cached type: %s", encoded.Type)
	}

	if encoded.Nil {
		return reflect.Zero(target), nil
	}

	switch encoded.Type {
	case "bytes":
		decoded, err := base64.StdEncoding.DecodeString(encoded.Text)
		if err != nil {
			return reflect.Value{}, err
		}

		return reflect.ValueOf(decoded), nil
	case "time":
		decoded := time.Time{}
		if err := decoded.UnmarshalText([]byte(encoded.Text)); err != nil {
			return reflect.Value{}, err
		}

		return reflect.ValueOf(decoded), nil
	case "map":
		decoded := make(map[string]any, len(encoded.Keys))
		for key, item := range encoded.Keys {
			reflected, err := item.decode()
			if err != nil {
				return reflect.Value{}, err
			}

			decoded[key] = interfaceOf(reflected)
		}

		return reflect.ValueOf(decoded), nil
	}

	return parseScalar(target, encoded.Text)
}

func (encoded value) decodeList(kind string, elementName string) (reflect.Value, error) {
	element, known := exactTypes[elementName]
	if !known {
		return reflect.Value{}, fmt.Errorf("unknown cached element type: %s", elementName)
	}

	var decoded reflect.Value
	switch kind {
	case "slice":
		if encoded.Nil {
			return reflect.Zero(reflect.SliceOf(element)), nil
		}

		decoded = reflect.MakeSlice(reflect.SliceOf(element), len(encoded.Items), len(encoded.Items))
	case "array":
		decoded = reflect.New(reflect.ArrayOf(len(encoded.Items), element)).Elem()
	default:
		return reflect.Value{}, fmt.Errorf("unknown cached list: %s", kind)
	}

	for i, item := range encoded.Items {
		reflected, err := item.decode()
		if err != nil {
			return reflect.Value{}, err
		}

		if reflected.IsValid() {
			decoded.Index(i).Set(reflected)
		}
	}

	return decoded, nil
}

func parseScalar(target reflect.Type, text string) (reflect.Value, error) {
	decoded := reflect.New(target).Elem()

	switch target.Kind() {
	case reflect.Bool:
		parsed, err := strconv.ParseBool(text)
		if err != nil {
			return reflect.Value{}, err
		}
		decoded.SetBool(parsed)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		parsed, err := strconv.ParseInt(text, 10, target.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		decoded.SetInt(parsed)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		parsed, err := strconv.ParseUint(text, 10, target.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		decoded.SetUint(parsed)
	case reflect.Float32, reflect.Float64:
		parsed, err := strconv.ParseFloat(text, target.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		decoded.SetFloat(parsed)
	case reflect.String:
		decoded.SetString(text)
	default:
		return reflect.Value{}, fmt.Errorf("unknown cached type: %s", target)
	}

	return decoded, nil
}

func interfaceOf(reflected reflect.Value) any {
	if !reflected.IsValid() {
		return nil
	}

	return reflected.Interface()
}

// statementEntry is a compiled statement as it sits in the cache.
type statementEntry struct {
	Query      string           `json:"query"`
	Parameters map[string]value `json:"parameters"`
}

// newStatementEntry reports false when a parameter cannot be encoded exactly.
func newStatementEntry(statement radar.Statement) (statementEntry, bool) {
	entry := statementEntry{Query: statement.Query}
	if statement.Parameters == nil {
		return entry, true
	}

	entry.Parameters = make(map[string]value, len(statement.Parameters))
	for name, parameter := range statement.Parameters {
		encoded, ok := encodeValue(parameter)
		if !ok {
			return statementEntry{}, false
		}

		entry.Parameters[name] = encoded
	}

	return entry, true
}

func (entry statementEntry) statement() (radar.Statement, error) {
	statement := radar.Statement{Query: entry.Query}
	if entry.Parameters == nil {
		return statement, nil
	}

	statement.Parameters = make(map[string]any, len(entry.Parameters))
	for name, encoded := range entry.Parameters {
		reflected, err := encoded.decode()
		if err != nil {
			return radar.Statement{}, err
		}

		statement.Parameters[name] = interfaceOf(reflected)
	}

	return statement, nil
}
