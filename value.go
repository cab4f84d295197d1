package jsop

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// KV is one key/value pair of an Object.
type KV struct {
	Key   string
	Value any
}

// Object is an order-preserving JSON object: a slice of key/value pairs
// rather than a map[string]any. Go map iteration order is randomized,
// which would silently defeat the insertion-order guarantee the JSOP
// data model requires, so Object is the canonical in-memory
// representation of a map wherever order matters (Export results,
// ParseJSON results, anything fed to Init).
//
// A plain map[string]any is still accepted by Put/Init for
// convenience; its entries are then linked in whatever order Go's map
// iteration yields, which is unspecified.
type Object []KV

// Get returns the value for key and whether it was present.
func (o Object) Get(key string) (any, bool) {
	for _, kv := range o {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return nil, false
}

// MarshalJSON renders the object preserving field order, unlike
// map[string]any which encoding/json sorts by key.
func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kv := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(kv.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(kv.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ParseJSON decodes JSON text into the value domain used throughout
// jsop: Object for objects (order preserved), []any for arrays, and
// plain nil/bool/float64/string for scalars.
func ParseJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	v, err := decodeOrdered(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCorrupt, err)
	}
	return v, nil
}

func decodeOrdered(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, isDelim := tok.(json.Delim)
	if !isDelim {
		return tok, nil // nil, bool, float64 or string
	}

	switch delim {
	case '{':
		obj := Object{}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, _ := keyTok.(string)
			val, err := decodeOrdered(dec)
			if err != nil {
				return nil, err
			}
			obj = append(obj, KV{Key: key, Value: val})
		}
		if _, err := dec.Token(); err != nil { // consume '}'
			return nil, err
		}
		return obj, nil
	case '[':
		arr := []any{}
		for dec.More() {
			val, err := decodeOrdered(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		if _, err := dec.Token(); err != nil { // consume ']'
			return nil, err
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unexpected token %v", delim)
	}
}

// normalize converts any value accepted by the public API (a live
// handle, a plain Go map/slice, or an already-normalized Object/[]any)
// into the canonical Object/[]any/scalar tree, recursively, by
// exporting any live handle found along the way. This is also the
// point at which a handle assigned into a new address is snapshotted
// before the destination is touched (spec §4.2's "snapshot the handle's
// contents before proceeding").
func normalize(v any) (any, error) {
	switch t := v.(type) {
	case nil, bool, string, float64:
		return t, nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case *MapNode:
		return t.Export()
	case *ListNode:
		return t.Export()
	case Ref:
		return t.export()
	case Object:
		out := make(Object, len(t))
		for i, kv := range t {
			nv, err := normalize(kv.Value)
			if err != nil {
				return nil, err
			}
			out[i] = KV{Key: kv.Key, Value: nv}
		}
		return out, nil
	case map[string]any:
		out := make(Object, 0, len(t))
		for k, vv := range t {
			nv, err := normalize(vv)
			if err != nil {
				return nil, err
			}
			out = append(out, KV{Key: k, Value: nv})
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			nv, err := normalize(vv)
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	default:
		// Any other numeric/bool Go type understood by encoding/json.
		b, err := json.Marshal(t)
		if err != nil {
			return nil, fmt.Errorf("%w: unsupported value type %T", ErrInvalidAddress, t)
		}
		return ParseJSON(b)
	}
}

// Equal implements the deep-equality relation of §4.5: containers of
// the same kind compare element-wise (maps as unordered key/value
// sets, lists in order); scalars compare by value; cross-kind
// comparisons are false. Any mix of live handles, Object/map, and
// []any is accepted.
func Equal(a, b any) bool {
	na, errA := normalize(a)
	nb, errB := normalize(b)
	if errA != nil || errB != nil {
		return false
	}
	return deepEqual(na, nb)
}

func deepEqual(a, b any) bool {
	switch av := a.(type) {
	case Object:
		bv, ok := b.(Object)
		if !ok || len(av) != len(bv) {
			return false
		}
		for _, kv := range av {
			bval, found := bv.Get(kv.Key)
			if !found || !deepEqual(kv.Value, bval) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !deepEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(a, b)
	}
}
