package table

import (
	"fmt"
	"strings"

	"sumry/internal/errs"
)

// Column 列
type Column struct {
	Name   string
	Kind   Kind
	Values []Value
}

// NewColumn 创建列
func NewColumn(name string, kind Kind, values []Value) *Column {
	return &Column{Name: name, Kind: kind, Values: values}
}

// NonNullCount 非空值数量
func (c *Column) NonNullCount() int {
	n := 0
	for _, v := range c.Values {
		if !v.Null {
			n++
		}
	}
	return n
}

// Table 内存中的表，一个文件或一个工作表
type Table struct {
	Name    string
	Sheet   string // 工作表名称，仅 Excel
	Rows    int
	Columns []*Column
	CRS     string // 坐标参考系，空字符串表示缺失

	index map[string]int
}

// New 创建表
func New(name string, rows int) *Table {
	return &Table{Name: name, Rows: rows, index: make(map[string]int)}
}

// AddColumn 追加列，列名必须唯一且行数与表一致
func (t *Table) AddColumn(c *Column) error {
	if len(c.Values) != t.Rows {
		return errs.New(errs.ParseError, "column %q has %d values, table has %d rows", c.Name, len(c.Values), t.Rows)
	}
	if _, exists := t.index[c.Name]; exists {
		return errs.New(errs.ParseError, "duplicate column %q", c.Name)
	}
	t.index[c.Name] = len(t.Columns)
	t.Columns = append(t.Columns, c)
	return nil
}

// Column 按名称查找列
func (t *Table) Column(name string) *Column {
	if i, ok := t.index[name]; ok {
		return t.Columns[i]
	}
	return nil
}

// GeometryColumn 返回第一个几何列，非地理表返回 nil
func (t *Table) GeometryColumn() *Column {
	for _, c := range t.Columns {
		if c.Kind == KindGeometry {
			return c
		}
	}
	return nil
}

// UniqueNames 处理空列名和重复列名
func UniqueNames(headers []string) []string {
	names := make([]string, len(headers))
	used := make(map[string]bool, len(headers))
	suffix := make(map[string]int)
	for i, h := range headers {
		base := strings.TrimSpace(h)
		if base == "" {
			base = fmt.Sprintf("Unnamed: %d", i)
		}
		name := base
		for used[name] {
			suffix[base]++
			name = fmt.Sprintf("%s.%d", base, suffix[base])
		}
		used[name] = true
		names[i] = name
	}
	return names
}
