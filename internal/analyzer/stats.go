package analyzer

import (
	"math"

	"sumry/internal/errs"
	"sumry/internal/summary"
	"sumry/internal/table"
)

// DefaultSampleValues 每列展示的样本值数量
const DefaultSampleValues = 3

// Options 统计选项
type Options struct {
	// Verbose 输出每列统计
	Verbose bool
	// SampleCount 样本行数，0 表示不输出样本
	SampleCount int
	// SampleValues 每列样本值数量，0 使用默认值
	SampleValues int
}

// Summarizer 表统计引擎
type Summarizer struct {
	opts Options
}

// NewSummarizer 创建统计引擎
func NewSummarizer(opts Options) *Summarizer {
	if opts.SampleValues <= 0 {
		opts.SampleValues = DefaultSampleValues
	}
	return &Summarizer{opts: opts}
}

// Summarize 使用给定选项计算表摘要
func Summarize(t *table.Table, opts Options) (*summary.Record, error) {
	return NewSummarizer(opts).Summarize(t)
}

// Summarize 计算表摘要，相同输入总是得到相同结果
func (s *Summarizer) Summarize(t *table.Table) (*summary.Record, error) {
	if len(t.Columns) == 0 {
		return nil, errs.New(errs.EmptyTableError, "%s has no columns", t.Name)
	}

	rec := &summary.Record{
		BasicInfo: summary.BasicInfo{
			SourceName:          t.Name,
			Sheet:               t.Sheet,
			RowCount:            t.Rows,
			ColumnCount:         len(t.Columns),
			MemoryEstimateBytes: t.MemoryUsage(),
		},
		Columns: make([]summary.Column, 0, len(t.Columns)),
	}

	for _, c := range t.Columns {
		rec.Columns = append(rec.Columns, summary.Column{Name: c.Name, Type: string(c.Kind)})
	}

	if geom := t.GeometryColumn(); geom != nil {
		rec.BasicInfo.GeometryInfo = geometryInfo(geom, t.CRS)
	}

	if s.opts.Verbose {
		rec.Statistics = summary.Statistics{}
		if t.Rows > 0 {
			for _, c := range t.Columns {
				if c.Kind == table.KindGeometry {
					continue
				}
				rec.Statistics = append(rec.Statistics, s.columnStats(c))
			}
		}
	}

	if s.opts.SampleCount > 0 {
		rec.SampleRows = sampleRows(t, s.opts.SampleCount)
	}

	return rec, nil
}

// columnStats 计算单列统计
func (s *Summarizer) columnStats(c *table.Column) *summary.ColumnStats {
	stats := &summary.ColumnStats{
		Name:         c.Name,
		Numeric:      c.Kind.IsNumeric(),
		SampleValues: []string{},
	}

	counts := make(map[string]int)
	var order []string
	var n int
	var lo, hi, mean float64

	for _, v := range c.Values {
		if v.Null {
			continue
		}
		key := v.String()
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++

		if len(stats.SampleValues) < s.opts.SampleValues {
			stats.SampleValues = append(stats.SampleValues, key)
		}

		if x, ok := v.Number(); ok {
			n++
			if n == 1 || x < lo {
				lo = x
			}
			if n == 1 || x > hi {
				hi = x
			}
			mean += (x - mean) / float64(n)
		}
	}

	stats.UniqueCount = len(counts)

	if stats.Numeric {
		if n > 0 {
			// 增量均值的舍入误差
			mean = math.Max(lo, math.Min(hi, mean))
			stats.Min, stats.Max, stats.Mean = &lo, &hi, &mean
		}
		return stats
	}

	if c.Kind != table.KindUnknown {
		stats.MostCommon = mostCommon(order, counts)
	}
	return stats
}

// mostCommon 频次最高的值，频次相同时取最先出现的
func mostCommon(order []string, counts map[string]int) *string {
	if len(order) == 0 {
		return nil
	}
	best := order[0]
	for _, key := range order[1:] {
		if counts[key] > counts[best] {
			best = key
		}
	}
	return &best
}

// sampleRows 前 n 行，几何列不输出
func sampleRows(t *table.Table, n int) []summary.Row {
	if n > t.Rows {
		n = t.Rows
	}
	rows := make([]summary.Row, 0, n)
	for i := 0; i < n; i++ {
		row := make(summary.Row, 0, len(t.Columns))
		for _, c := range t.Columns {
			if c.Kind == table.KindGeometry {
				continue
			}
			cell := summary.Cell{Column: c.Name}
			if v := c.Values[i]; !v.Null {
				s := v.String()
				cell.Value = &s
			}
			row = append(row, cell)
		}
		rows = append(rows, row)
	}
	return rows
}
