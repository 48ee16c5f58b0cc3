package table

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// nullMarkers 读取文本时视为空值的内容
var nullMarkers = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"n/a":  true,
	"NaN":  true,
	"nan":  true,
	"-NaN": true,
	"null": true,
	"NULL": true,
	"None": true,
	"#N/A": true,
	"<NA>": true,
}

var datetimeLayouts = []struct {
	layout   string
	dateOnly bool
}{
	{dateLayout, true},
	{"2006/01/02", true},
	{"01/02/2006", true},
	{time.RFC3339, false},
	{time.RFC3339Nano, false},
	{"2006-01-02T15:04:05", false},
	{"2006-01-02 15:04:05", false},
	{"2006-01-02 15:04", false},
	{"2006/01/02 15:04:05", false},
}

// IsNullText 文本是否表示空值
func IsNullText(s string) bool {
	return nullMarkers[strings.TrimSpace(s)]
}

// InferColumn 根据文本单元格推断列类型并转换为对应的值
func InferColumn(name string, cells []string) *Column {
	kind := InferKind(cells)
	values := make([]Value, len(cells))
	for i, cell := range cells {
		values[i] = ParseCell(cell, kind)
	}
	return NewColumn(name, kind, values)
}

// InferKind 所有非空单元格都满足的最窄类型，全部为空时返回 unknown
func InferKind(cells []string) Kind {
	seen := 0
	isBool, isInt, isFloat, isTime := true, true, true, true

	for _, raw := range cells {
		if IsNullText(raw) {
			continue
		}
		s := strings.TrimSpace(raw)
		seen++

		if isBool && !isBoolText(s) {
			isBool = false
		}
		if isInt {
			if _, err := strconv.ParseInt(s, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, ok := parseFloat(s); !ok {
				isFloat = false
			}
		}
		if isTime {
			if _, _, ok := parseTime(s); !ok {
				isTime = false
			}
		}
		if !isBool && !isInt && !isFloat && !isTime {
			return KindText
		}
	}

	switch {
	case seen == 0:
		return KindUnknown
	case isBool:
		return KindBoolean
	case isInt:
		return KindInteger
	case isFloat:
		return KindFloat
	case isTime:
		return KindDatetime
	}
	return KindText
}

// ParseCell 按列类型解析单元格，kind 必须来自 InferKind
func ParseCell(raw string, kind Kind) Value {
	if IsNullText(raw) {
		return Null(kind)
	}
	s := strings.TrimSpace(raw)

	switch kind {
	case KindBoolean:
		return Bool(strings.EqualFold(s, "true"))
	case KindInteger:
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Null(kind)
		}
		return Int(i)
	case KindFloat:
		f, ok := parseFloat(s)
		if !ok {
			return Null(kind)
		}
		return Float(f)
	case KindDatetime:
		t, dateOnly, ok := parseTime(s)
		if !ok {
			return Null(kind)
		}
		return Time(t, dateOnly)
	}
	return Text(raw)
}

func isBoolText(s string) bool {
	return strings.EqualFold(s, "true") || strings.EqualFold(s, "false")
}

// parseFloat 只接受有限的十进制数
func parseFloat(s string) (float64, bool) {
	if strings.ContainsAny(s, "xX_pP") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseTime(s string) (time.Time, bool, bool) {
	// 日期至少形如 2006-1-2
	if len(s) < 8 || !strings.ContainsAny(s, "-/") {
		return time.Time{}, false, false
	}
	for _, l := range datetimeLayouts {
		if t, err := time.Parse(l.layout, s); err == nil {
			return t, l.dateOnly, true
		}
	}
	return time.Time{}, false, false
}
