package adapter

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"sumry/internal/errs"
	"sumry/internal/table"
)

// GeometryColumnName 几何列名称
const GeometryColumnName = "geometry"

type rawFeature struct {
	Type       string          `json:"type"`
	Geometry   json.RawMessage `json:"geometry"`
	Properties json.RawMessage `json:"properties"`
}

type rawDocument struct {
	Type     string       `json:"type"`
	Features []rawFeature `json:"features"`
	CRS      *struct {
		Type       string `json:"type"`
		Properties struct {
			Name string `json:"name"`
		} `json:"properties"`
	} `json:"crs"`

	// 单个 Feature
	Geometry   json.RawMessage `json:"geometry"`
	Properties json.RawMessage `json:"properties"`
}

// LoadGeoJSON 读取 FeatureCollection 或单个 Feature
func LoadGeoJSON(path string) (*table.Table, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name := filepath.Base(path)
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errs.Wrap(errs.FileReadError, err, "read %s", name)
	}

	var doc rawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errs.Wrap(errs.ParseError, err, "decode %s", name)
	}

	var features []rawFeature
	switch doc.Type {
	case "FeatureCollection":
		features = doc.Features
	case "Feature":
		features = []rawFeature{{Type: doc.Type, Geometry: doc.Geometry, Properties: doc.Properties}}
	default:
		return nil, errs.New(errs.ParseError, "%s is not a GeoJSON Feature or FeatureCollection (type %q)", name, doc.Type)
	}

	t, err := featureTable(name, features)
	if err != nil {
		return nil, err
	}
	if doc.CRS != nil {
		t.CRS = normalizeCRS(doc.CRS.Properties.Name)
	}
	return t, nil
}

func featureTable(name string, features []rawFeature) (*table.Table, error) {
	var keys []string
	known := make(map[string]bool)
	props := make([]map[string]interface{}, len(features))
	geoms := make([]table.Value, len(features))

	for i, feat := range features {
		order, values, err := decodeProperties(feat.Properties)
		if err != nil {
			return nil, errs.Wrap(errs.ParseError, err, "%s feature %d properties", name, i)
		}
		for _, k := range order {
			if !known[k] {
				known[k] = true
				keys = append(keys, k)
			}
		}
		props[i] = values

		g, err := decodeGeometry(feat.Geometry)
		if err != nil {
			return nil, errs.Wrap(errs.ParseError, err, "%s feature %d geometry", name, i)
		}
		geoms[i] = table.Geometry(g)
	}

	t := table.New(name, len(features))
	names := table.UniqueNames(append(append([]string{}, keys...), GeometryColumnName))
	for k, key := range keys {
		raw := make([]interface{}, len(features))
		for i := range features {
			raw[i] = props[i][key]
		}
		if err := t.AddColumn(propertyColumn(names[k], raw)); err != nil {
			return nil, err
		}
	}
	if err := t.AddColumn(table.NewColumn(names[len(keys)], table.KindGeometry, geoms)); err != nil {
		return nil, err
	}
	return t, nil
}

// decodeProperties 保留键的出现顺序，数字以 json.Number 保存
func decodeProperties(raw json.RawMessage) ([]string, map[string]interface{}, error) {
	values := make(map[string]interface{})
	if isNullJSON(raw) {
		return nil, values, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, errs.New(errs.ParseError, "properties must be an object")
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, _ := tok.(string)
		var v interface{}
		if err := dec.Decode(&v); err != nil {
			return nil, nil, err
		}
		if _, dup := values[key]; !dup {
			keys = append(keys, key)
		}
		values[key] = v
	}
	return keys, values, nil
}

func decodeGeometry(raw json.RawMessage) (orb.Geometry, error) {
	if isNullJSON(raw) {
		return nil, nil
	}
	g, err := geojson.UnmarshalGeometry(raw)
	if err != nil {
		return nil, err
	}
	return g.Geometry(), nil
}

func isNullJSON(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// propertyColumn 根据 JSON 值类型确定列类型，混合类型按文本处理
func propertyColumn(name string, raw []interface{}) *table.Column {
	var bools, numbers, ints, texts, seen int
	var strs []string
	for _, v := range raw {
		switch v := v.(type) {
		case nil:
			continue
		case bool:
			bools++
		case json.Number:
			numbers++
			if _, err := strconv.ParseInt(v.String(), 10, 64); err == nil {
				ints++
			}
		case string:
			texts++
			strs = append(strs, v)
		}
		seen++
	}

	kind := table.KindText
	switch {
	case seen == 0:
		kind = table.KindUnknown
	case bools == seen:
		kind = table.KindBoolean
	case ints == seen:
		kind = table.KindInteger
	case numbers == seen:
		kind = table.KindFloat
	case texts == seen && table.InferKind(strs) == table.KindDatetime:
		kind = table.KindDatetime
	}

	values := make([]table.Value, len(raw))
	for i, v := range raw {
		values[i] = jsonValue(v, kind)
	}
	return table.NewColumn(name, kind, values)
}

func jsonValue(v interface{}, kind table.Kind) table.Value {
	if v == nil {
		return table.Null(kind)
	}
	switch kind {
	case table.KindBoolean:
		return table.Bool(v.(bool))
	case table.KindInteger, table.KindFloat, table.KindDatetime:
		return table.ParseCell(jsonText(v), kind)
	}
	return table.Text(jsonText(v))
}

func jsonText(v interface{}) string {
	switch v := v.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

// normalizeCRS 将 urn:ogc:def:crs:EPSG::4326 等写法统一为 EPSG:4326
func normalizeCRS(name string) string {
	name = strings.TrimSpace(name)
	upper := strings.ToUpper(name)
	if strings.HasSuffix(upper, "CRS84") {
		return "OGC:CRS84"
	}
	if i := strings.LastIndex(upper, "EPSG"); i >= 0 {
		code := strings.TrimLeft(upper[i+len("EPSG"):], ":")
		if code != "" && strings.Trim(code, "0123456789") == "" {
			return "EPSG:" + code
		}
	}
	return name
}
