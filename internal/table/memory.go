package table

import "github.com/paulmach/orb"

// 每个值的固定开销（字节），近似值
const (
	wordSize       = 8
	stringHeader   = 16
	geometryHeader = 16
	pointSize      = 16
)

// MemoryUsage 估算表占用的内存，行数增加时不会减少
func (t *Table) MemoryUsage() int64 {
	var total int64
	for _, c := range t.Columns {
		total += c.MemoryUsage()
	}
	return total
}

// MemoryUsage 估算列占用的内存
func (c *Column) MemoryUsage() int64 {
	var total int64
	for _, v := range c.Values {
		total += valueSize(c.Kind, v)
	}
	return total
}

func valueSize(kind Kind, v Value) int64 {
	switch kind {
	case KindBoolean:
		return 1
	case KindText:
		return stringHeader + int64(len(v.Str))
	case KindGeometry:
		if v.Null {
			return geometryHeader
		}
		return geometryHeader + pointSize*int64(PointCount(v.Geom))
	}
	return wordSize
}

// PointCount 几何对象中的坐标点数
func PointCount(g orb.Geometry) int {
	switch g := g.(type) {
	case orb.Point:
		return 1
	case orb.MultiPoint:
		return len(g)
	case orb.LineString:
		return len(g)
	case orb.Ring:
		return len(g)
	case orb.MultiLineString:
		n := 0
		for _, ls := range g {
			n += len(ls)
		}
		return n
	case orb.Polygon:
		n := 0
		for _, r := range g {
			n += len(r)
		}
		return n
	case orb.MultiPolygon:
		n := 0
		for _, p := range g {
			n += PointCount(p)
		}
		return n
	case orb.Collection:
		n := 0
		for _, sub := range g {
			n += PointCount(sub)
		}
		return n
	case orb.Bound:
		return 2
	}
	return 0
}
