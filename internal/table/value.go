package table

import (
	"strconv"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

// Kind 列类型
type Kind string

const (
	KindInteger  Kind = "integer"
	KindFloat    Kind = "float"
	KindText     Kind = "text"
	KindBoolean  Kind = "boolean"
	KindDatetime Kind = "datetime"
	KindGeometry Kind = "geometry"
	KindUnknown  Kind = "unknown"
)

// IsNumeric 是否为数值类型
func (k Kind) IsNumeric() bool {
	return k == KindInteger || k == KindFloat
}

const dateLayout = "2006-01-02"

// Value 单元格值，按 Kind 读取对应字段
type Value struct {
	Kind     Kind
	Null     bool
	Int      int64
	Float    float64
	Str      string
	Bool     bool
	Time     time.Time
	DateOnly bool
	Geom     orb.Geometry
}

// Null 空值
func Null(kind Kind) Value { return Value{Kind: kind, Null: true} }

func Int(i int64) Value { return Value{Kind: KindInteger, Int: i} }

func Float(f float64) Value { return Value{Kind: KindFloat, Float: f} }

func Text(s string) Value { return Value{Kind: KindText, Str: s} }

func Bool(b bool) Value { return Value{Kind: KindBoolean, Bool: b} }

// Time 时间值，dateOnly 为 true 时只显示日期
func Time(t time.Time, dateOnly bool) Value {
	return Value{Kind: KindDatetime, Time: t, DateOnly: dateOnly}
}

// Geometry 几何值，nil 视为空
func Geometry(g orb.Geometry) Value {
	if g == nil {
		return Null(KindGeometry)
	}
	return Value{Kind: KindGeometry, Geom: g}
}

// Number 数值，非数值类型返回 false
func (v Value) Number() (float64, bool) {
	if v.Null {
		return 0, false
	}
	switch v.Kind {
	case KindInteger:
		return float64(v.Int), true
	case KindFloat:
		return v.Float, true
	}
	return 0, false
}

// String 规范显示形式，空值显示为 null
func (v Value) String() string {
	if v.Null {
		return "null"
	}
	switch v.Kind {
	case KindInteger:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return FormatFloat(v.Float)
	case KindBoolean:
		return strconv.FormatBool(v.Bool)
	case KindDatetime:
		if v.DateOnly {
			return v.Time.Format(dateLayout)
		}
		return v.Time.Format(time.RFC3339)
	case KindGeometry:
		return wkt.MarshalString(v.Geom)
	}
	return v.Str
}

// FormatFloat 最短可往返的十进制表示
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
