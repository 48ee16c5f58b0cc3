package analyzer

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"sumry/internal/summary"
	"sumry/internal/table"
)

// geometryInfo 汇总几何列：类型计数、外包矩形、总面积和总长度
func geometryInfo(c *table.Column, crs string) *summary.GeometryInfo {
	info := &summary.GeometryInfo{GeometryTypeCounts: make(map[string]int)}
	if crs != "" {
		info.CRS = &crs
	}

	var bound orb.Bound
	hasBound := false

	for _, v := range c.Values {
		if v.Null {
			continue
		}
		g := v.Geom
		info.GeometryTypeCounts[g.GeoJSONType()]++

		if table.PointCount(g) > 0 {
			if hasBound {
				bound = bound.Union(g.Bound())
			} else {
				bound = g.Bound()
				hasBound = true
			}
		}

		info.TotalArea += Area(g)
		info.TotalLength += Length(g)
	}

	if hasBound {
		info.BBox = &[4]float64{bound.Min[0], bound.Min[1], bound.Max[0], bound.Max[1]}
	}
	return info
}

// Area 面状几何的平面面积，其他类型为 0
func Area(g orb.Geometry) float64 {
	switch g := g.(type) {
	case orb.Polygon:
		return polygonArea(g)
	case orb.MultiPolygon:
		total := 0.0
		for _, p := range g {
			total += polygonArea(p)
		}
		return total
	}
	return 0
}

// Length 线状几何的平面长度，其他类型为 0
func Length(g orb.Geometry) float64 {
	switch g.(type) {
	case orb.LineString, orb.MultiLineString:
		return planar.Length(g)
	}
	return 0
}

// polygonArea 外环面积减去内环面积，与环方向无关
func polygonArea(p orb.Polygon) float64 {
	if len(p) == 0 {
		return 0
	}
	area := math.Abs(planar.Area(p[0]))
	for _, hole := range p[1:] {
		area -= math.Abs(planar.Area(hole))
	}
	return math.Max(area, 0)
}
