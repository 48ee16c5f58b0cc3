package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"

	"sumry/internal/errs"
	"sumry/internal/table"
)

var (
	prjAuthority = regexp.MustCompile(`AUTHORITY\[\s*"EPSG"\s*,\s*"?(\d+)"?\s*\]\s*\]\s*$`)
	prjName      = regexp.MustCompile(`^\s*[A-Z_]+\[\s*"([^"]*)"`)
)

// LoadShapefile 读取 .shp 及同名 .dbf，坐标系来自 .prj
func LoadShapefile(path string) (t *table.Table, err error) {
	if err := checkReadable(path); err != nil {
		return nil, err
	}
	name := filepath.Base(path)
	if _, ok := sibling(path, ".dbf"); !ok {
		return nil, errs.New(errs.ParseError, "%s: missing .dbf attribute file", name)
	}

	reader, err := shp.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ParseError, err, "open shapefile %s", name)
	}
	defer reader.Close()

	// 损坏的文件会让 go-shp panic
	defer func() {
		if r := recover(); r != nil {
			t, err = nil, errs.New(errs.ParseError, "%s: corrupt shapefile: %v", name, r)
		}
	}()

	fields := reader.Fields()
	cells := make([][]string, len(fields))
	var geoms []table.Value
	for reader.Next() {
		n, shape := reader.Shape()
		geoms = append(geoms, table.Geometry(shapeGeometry(shape)))
		for k := range fields {
			cells[k] = append(cells[k], reader.ReadAttribute(n, k))
		}
	}
	if err := reader.Err(); err != nil {
		return nil, errs.Wrap(errs.ParseError, err, "read shapefile %s", name)
	}
	if len(geoms) != reader.AttributeCount() {
		return nil, errs.New(errs.ParseError, "%s: %d shapes but %d attribute records", name, len(geoms), reader.AttributeCount())
	}

	t = table.New(name, len(geoms))
	headers := make([]string, 0, len(fields)+1)
	for _, f := range fields {
		headers = append(headers, f.String())
	}
	names := table.UniqueNames(append(headers, GeometryColumnName))

	for k, f := range fields {
		if err := t.AddColumn(attributeColumn(names[k], f, cells[k])); err != nil {
			return nil, err
		}
	}
	if err := t.AddColumn(table.NewColumn(names[len(fields)], table.KindGeometry, geoms)); err != nil {
		return nil, err
	}

	crs, err := readPrj(path)
	if err != nil {
		return nil, err
	}
	t.CRS = crs
	return t, nil
}

// attributeColumn 按 dBase 字段类型转换属性值
func attributeColumn(name string, f shp.Field, cells []string) *table.Column {
	var kind table.Kind
	switch f.Fieldtype {
	case 'C':
		kind = table.KindText
	case 'N':
		kind = table.KindFloat
		if f.Precision == 0 {
			kind = table.KindInteger
		}
	case 'F':
		kind = table.KindFloat
	case 'L':
		kind = table.KindBoolean
	case 'D':
		kind = table.KindDatetime
	default:
		return table.InferColumn(name, cells)
	}

	values := make([]table.Value, len(cells))
	for i, raw := range cells {
		values[i] = dbfValue(strings.TrimSpace(strings.Trim(raw, "\x00")), kind)
	}
	return table.NewColumn(name, kind, values)
}

func dbfValue(s string, kind table.Kind) table.Value {
	if s == "" || strings.Trim(s, "*") == "" {
		return table.Null(kind)
	}
	switch kind {
	case table.KindText:
		return table.Text(s)
	case table.KindBoolean:
		switch s {
		case "T", "t", "Y", "y":
			return table.Bool(true)
		case "F", "f", "N", "n":
			return table.Bool(false)
		}
		return table.Null(kind)
	case table.KindDatetime:
		d, err := time.Parse("20060102", s)
		if err != nil {
			return table.Null(kind)
		}
		return table.Time(d, true)
	}
	return table.ParseCell(s, kind)
}

// shapeGeometry 转换为 orb 几何，空记录返回 nil
func shapeGeometry(s shp.Shape) orb.Geometry {
	switch s := s.(type) {
	case *shp.Point:
		return orb.Point{s.X, s.Y}
	case *shp.PointZ:
		return orb.Point{s.X, s.Y}
	case *shp.PointM:
		return orb.Point{s.X, s.Y}
	case *shp.MultiPoint:
		return multiPoint(s.Points)
	case *shp.MultiPointZ:
		return multiPoint(s.Points)
	case *shp.MultiPointM:
		return multiPoint(s.Points)
	case *shp.PolyLine:
		return lines(s.Parts, s.Points)
	case *shp.PolyLineZ:
		return lines(s.Parts, s.Points)
	case *shp.PolyLineM:
		return lines(s.Parts, s.Points)
	case *shp.Polygon:
		return polygons(s.Parts, s.Points)
	case *shp.PolygonZ:
		return polygons(s.Parts, s.Points)
	case *shp.PolygonM:
		return polygons(s.Parts, s.Points)
	}
	return nil
}

func multiPoint(points []shp.Point) orb.Geometry {
	if len(points) == 0 {
		return nil
	}
	mp := make(orb.MultiPoint, len(points))
	for i, p := range points {
		mp[i] = orb.Point{p.X, p.Y}
	}
	return mp
}

// splitParts 按 Parts 起始下标切分坐标
func splitParts(parts []int32, points []shp.Point) [][]orb.Point {
	var out [][]orb.Point
	for i, start := range parts {
		end := len(points)
		if i+1 < len(parts) {
			end = int(parts[i+1])
		}
		if int(start) < 0 || int(start) > end || end > len(points) {
			continue
		}
		part := make([]orb.Point, 0, end-int(start))
		for _, p := range points[start:end] {
			part = append(part, orb.Point{p.X, p.Y})
		}
		out = append(out, part)
	}
	return out
}

func lines(parts []int32, points []shp.Point) orb.Geometry {
	split := splitParts(parts, points)
	switch len(split) {
	case 0:
		return nil
	case 1:
		return orb.LineString(split[0])
	}
	mls := make(orb.MultiLineString, len(split))
	for i, p := range split {
		mls[i] = orb.LineString(p)
	}
	return mls
}

// polygons 顺时针环为外环，逆时针环为前一个外环的洞
func polygons(parts []int32, points []shp.Point) orb.Geometry {
	var mp orb.MultiPolygon
	for _, p := range splitParts(parts, points) {
		ring := orb.Ring(p)
		if ring.Orientation() != orb.CCW || len(mp) == 0 {
			mp = append(mp, orb.Polygon{ring})
			continue
		}
		last := len(mp) - 1
		mp[last] = append(mp[last], ring)
	}
	switch len(mp) {
	case 0:
		return nil
	case 1:
		return mp[0]
	}
	return mp
}

// readPrj 读取 .prj 中的 EPSG 编码或坐标系名称，缺少 .prj 时返回空字符串
func readPrj(path string) (string, error) {
	prj, ok := sibling(path, ".prj")
	if !ok {
		return "", nil
	}
	data, err := os.ReadFile(prj)
	if err != nil {
		return "", errs.Wrap(errs.FileReadError, err, "read %s", filepath.Base(prj))
	}
	return crsFromWKT(string(data)), nil
}

func crsFromWKT(wkt string) string {
	wkt = strings.TrimSpace(wkt)
	if m := prjAuthority.FindStringSubmatch(wkt); m != nil {
		return fmt.Sprintf("EPSG:%s", m[1])
	}
	if m := prjName.FindStringSubmatch(wkt); m != nil && m[1] != "" {
		return m[1]
	}
	return wkt
}
