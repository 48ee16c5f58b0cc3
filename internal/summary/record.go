package summary

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Report 一次调用的完整结果，Excel 多个工作表时包含多条记录
type Report struct {
	Source     string
	Format     string
	SheetNames []string
	Records    []*Record
}

// Record 单个表的摘要
type Record struct {
	BasicInfo  BasicInfo
	Columns    []Column
	Statistics Statistics // nil 表示非 verbose
	SampleRows []Row      // nil 表示未请求样本
}

// Column 列名和类型
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// BasicInfo 基本信息
type BasicInfo struct {
	SourceName          string   `json:"source_name"`
	Sheet               string   `json:"sheet,omitempty"`
	SheetNames          []string `json:"sheet_names,omitempty"`
	RowCount            int      `json:"row_count"`
	ColumnCount         int      `json:"column_count"`
	MemoryEstimateBytes int64    `json:"memory_estimate_bytes"`
	*GeometryInfo
}

// GeometryInfo 地理空间表的附加信息
type GeometryInfo struct {
	BBox               *[4]float64    `json:"bbox"`
	TotalArea          float64        `json:"total_area"`
	TotalLength        float64        `json:"total_length"`
	CRS                *string        `json:"crs"`
	GeometryTypeCounts map[string]int `json:"geometry_type_counts"`
}

// Pair 文本报告中的一行键值
type Pair struct {
	Key   string
	Value string
}

// Pairs 按 JSON 字段顺序返回键值对
func (b BasicInfo) Pairs() []Pair {
	pairs := []Pair{{"source_name", b.SourceName}}
	if b.Sheet != "" {
		pairs = append(pairs, Pair{"sheet", b.Sheet})
	}
	if len(b.SheetNames) > 0 {
		pairs = append(pairs, Pair{"sheet_names", strings.Join(b.SheetNames, ", ")})
	}
	pairs = append(pairs,
		Pair{"row_count", strconv.Itoa(b.RowCount)},
		Pair{"column_count", strconv.Itoa(b.ColumnCount)},
		Pair{"memory_estimate_bytes", strconv.FormatInt(b.MemoryEstimateBytes, 10)},
	)
	if g := b.GeometryInfo; g != nil {
		pairs = append(pairs,
			Pair{"bbox", formatBBox(g.BBox)},
			Pair{"total_area", formatFloat(g.TotalArea)},
			Pair{"total_length", formatFloat(g.TotalLength)},
			Pair{"crs", optional(g.CRS)},
			Pair{"geometry_type_counts", formatCounts(g.GeometryTypeCounts)},
		)
	}
	return pairs
}

// ColumnStats 单列统计
type ColumnStats struct {
	Name         string
	Numeric      bool
	Min          *float64
	Max          *float64
	Mean         *float64
	UniqueCount  int
	MostCommon   *string
	SampleValues []string
}

// MarshalJSON 数值列输出 min/max/mean，其他列输出 most_common
func (s *ColumnStats) MarshalJSON() ([]byte, error) {
	samples := s.SampleValues
	if samples == nil {
		samples = []string{}
	}
	var obj object
	if s.Numeric {
		obj = object{
			{"min", s.Min},
			{"max", s.Max},
			{"mean", s.Mean},
			{"unique_count", s.UniqueCount},
		}
	} else {
		obj = object{
			{"unique_count", s.UniqueCount},
			{"most_common", s.MostCommon},
		}
	}
	obj = append(obj, field{"sample_values", samples})
	return obj.MarshalJSON()
}

// Statistics 按列顺序排列的统计
type Statistics []*ColumnStats

// MarshalJSON 输出以列名为键、保持列顺序的对象
func (s Statistics) MarshalJSON() ([]byte, error) {
	obj := make(object, 0, len(s))
	for _, cs := range s {
		obj = append(obj, field{cs.Name, cs})
	}
	return obj.MarshalJSON()
}

// Cell 样本行中的一个值，Value 为 nil 表示空值
type Cell struct {
	Column string
	Value  *string
}

// Row 样本行
type Row []Cell

// MarshalJSON 输出保持列顺序的对象
func (r Row) MarshalJSON() ([]byte, error) {
	obj := make(object, 0, len(r))
	for _, c := range r {
		obj = append(obj, field{c.Column, c.Value})
	}
	return obj.MarshalJSON()
}

// MarshalJSON 省略未请求的 statistics / sample_rows
func (r *Record) MarshalJSON() ([]byte, error) {
	columns := r.Columns
	if columns == nil {
		columns = []Column{}
	}
	obj := object{
		{"basic_info", r.BasicInfo},
		{"columns", columns},
	}
	if r.Statistics != nil {
		obj = append(obj, field{"statistics", r.Statistics})
	}
	if r.SampleRows != nil {
		obj = append(obj, field{"sample_rows", r.SampleRows})
	}
	return obj.MarshalJSON()
}

// OptionalString 空值显示为 null
func OptionalString(s *string) string {
	return optional(s)
}

// OptionalFloat 缺失的数值显示为 null
func OptionalFloat(f *float64) string {
	if f == nil {
		return "null"
	}
	return formatFloat(*f)
}

func optional(s *string) string {
	if s == nil {
		return "null"
	}
	return *s
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatBBox(b *[4]float64) string {
	if b == nil {
		return "null"
	}
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = formatFloat(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + strconv.Itoa(counts[k])
	}
	return strings.Join(parts, ", ")
}

type field struct {
	key   string
	value interface{}
}

// object 保持字段顺序的 JSON 对象
type object []field

func (o object) MarshalJSON() ([]byte, error) {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			sb.WriteByte(',')
		}
		key, err := json.Marshal(f.key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(f.value)
		if err != nil {
			return nil, err
		}
		sb.Write(key)
		sb.WriteByte(':')
		sb.Write(value)
	}
	sb.WriteByte('}')
	return []byte(sb.String()), nil
}
