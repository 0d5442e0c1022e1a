package geojson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/samirrijal/mtlmap/internal/pkg/geospatial"
)

// Property is one key/value pair of a feature's property bag.
type Property struct {
	Key   string
	Value any
}

// Properties is an ordered property bag. It marshals in insertion order.
type Properties []Property

// Set appends key, or replaces its value in place when already present.
func (p *Properties) Set(key string, value any) {
	for i := range *p {
		if (*p)[i].Key == key {
			(*p)[i].Value = value
			return
		}
	}
	*p = append(*p, Property{Key: key, Value: value})
}

// Get returns the value stored under key.
func (p Properties) Get(key string) (any, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return nil, false
}

// Keys returns the keys in order.
func (p Properties) Keys() []string {
	keys := make([]string, len(p))
	for i, kv := range p {
		keys[i] = kv.Key
	}
	return keys
}

// MarshalJSON writes the bag as a JSON object, keys in insertion order.
func (p Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kv := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(kv.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(kv.Value)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", kv.Key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping key order. Numbers are kept as
// json.Number so integer attributes survive untouched.
func (p *Properties) UnmarshalJSON(data []byte) error {
	*p = nil
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("properties: expected object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var v any
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("property %q: %w", key, err)
		}
		*p = append(*p, Property{Key: key, Value: v})
	}
	_, err = dec.Token()
	return err
}

// String returns the value of key as a string, nil when missing or null.
func (p Properties) String(key string) *string {
	v, ok := p.Get(key)
	if !ok || v == nil {
		return nil
	}
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case json.Number:
		s = t.String()
	default:
		s = fmt.Sprint(t)
	}
	return &s
}

// Int returns the value of key as an int, nil when missing, null or not integral.
func (p Properties) Int(key string) *int {
	f := p.Float(key)
	if f == nil || *f != float64(int(*f)) {
		return nil
	}
	n := int(*f)
	return &n
}

// Float returns the value of key as a float64, nil when missing, null or not numeric.
func (p Properties) Float(key string) *float64 {
	v, ok := p.Get(key)
	if !ok || v == nil {
		return nil
	}
	var (
		f   float64
		err error
	)
	switch t := v.(type) {
	case json.Number:
		f, err = t.Float64()
	case float64:
		f = t
	case int:
		f = float64(t)
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(t), 64)
	default:
		return nil
	}
	if err != nil {
		return nil
	}
	return &f
}

// Feature is a GeoJSON feature. Geometry is never nil for features built
// with NewFeature.
type Feature struct {
	Type       string     `json:"type"`
	ID         string     `json:"id"`
	Geometry   *Geometry  `json:"geometry"`
	Properties Properties `json:"properties"`
}

// NewFeature encodes g and builds a feature. It returns ErrNoGeometry when g
// has nothing to encode; callers drop such records.
func NewFeature(id string, g geospatial.Geometry, props Properties) (Feature, error) {
	wire, err := Encode(g)
	if err != nil {
		return Feature{}, err
	}
	if props == nil {
		props = Properties{}
	}
	return Feature{Type: "Feature", ID: id, Geometry: wire, Properties: props}, nil
}

// UnmarshalJSON accepts numeric and string ids.
func (f *Feature) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type       string          `json:"type"`
		ID         json.RawMessage `json:"id"`
		Geometry   *Geometry       `json:"geometry"`
		Properties Properties      `json:"properties"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	f.Type, f.Geometry, f.Properties = raw.Type, raw.Geometry, raw.Properties
	f.ID = ""
	if len(raw.ID) > 0 && !bytes.Equal(raw.ID, []byte("null")) {
		var s string
		if err := json.Unmarshal(raw.ID, &s); err != nil {
			s = string(raw.ID)
		}
		f.ID = s
	}
	return nil
}

// FeatureCollection is an ordered list of features.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// NewFeatureCollection returns an empty collection ready for Add.
func NewFeatureCollection() *FeatureCollection {
	return &FeatureCollection{Type: "FeatureCollection", Features: []Feature{}}
}

// Add appends a feature.
func (fc *FeatureCollection) Add(f Feature) { fc.Features = append(fc.Features, f) }

// Len returns the number of features.
func (fc *FeatureCollection) Len() int { return len(fc.Features) }

// MarshalJSON always writes features as an array.
func (fc FeatureCollection) MarshalJSON() ([]byte, error) {
	type alias FeatureCollection
	out := alias(fc)
	if out.Type == "" {
		out.Type = "FeatureCollection"
	}
	if out.Features == nil {
		out.Features = []Feature{}
	}
	return json.Marshal(out)
}
