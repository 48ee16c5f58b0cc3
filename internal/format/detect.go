package format

import (
	"path/filepath"
	"strings"

	"sumry/internal/errs"
)

// Kind 文件格式
type Kind string

const (
	CSV       Kind = "tabular-csv"
	Excel     Kind = "tabular-excel"
	GeoJSON   Kind = "geojson"
	Shapefile Kind = "shapefile"
)

var extensions = map[string]Kind{
	".csv":     CSV,
	".tsv":     CSV,
	".xlsx":    Excel,
	".xls":     Excel,
	".xlsm":    Excel,
	".geojson": GeoJSON,
	".json":    GeoJSON,
	".shp":     Shapefile,
}

// Detect 根据扩展名判断文件格式，不读取文件内容
func Detect(path string) (Kind, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if kind, ok := extensions[ext]; ok {
		return kind, nil
	}
	return "", errs.New(errs.UnsupportedFormat, "unsupported file type for %s", filepath.Base(path))
}

// Delimiter CSV 分隔符，.tsv 使用制表符
func Delimiter(path string) rune {
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		return '\t'
	}
	return ','
}

// Title 报告标题中的格式名
func (k Kind) Title() string {
	switch k {
	case CSV:
		return "CSV"
	case Excel:
		return "Excel"
	case GeoJSON:
		return "GeoJSON"
	case Shapefile:
		return "Shapefile"
	}
	return string(k)
}

// IsGeo 是否为地理空间格式
func (k Kind) IsGeo() bool {
	return k == GeoJSON || k == Shapefile
}
