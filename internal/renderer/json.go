package renderer

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/pkg/errors"

	"sumry/internal/summary"
)

// JSONRenderer JSON 渲染器
type JSONRenderer struct {
	w io.Writer
}

// NewJSONRenderer 创建渲染器
func NewJSONRenderer(w io.Writer) *JSONRenderer {
	return &JSONRenderer{w: w}
}

// multiSheet 多个工作表的外层对象
type multiSheet struct {
	SourceName string            `json:"source_name"`
	SheetNames []string          `json:"sheet_names"`
	Sheets     []*summary.Record `json:"sheets"`
}

// Render 单条记录直接输出，多条记录包装为 sheets 数组
func (j *JSONRenderer) Render(r *summary.Report) error {
	var v interface{}
	switch len(r.Records) {
	case 0:
		return errors.New("report has no records")
	case 1:
		v = r.Records[0]
	default:
		v = multiSheet{SourceName: r.Source, SheetNames: r.SheetNames, Sheets: r.Records}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "encode report")
	}

	_, err := j.w.Write(buf.Bytes())
	return errors.Wrap(err, "write report")
}
