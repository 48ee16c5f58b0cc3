package renderer

import (
	"io"

	"sumry/internal/summary"
)

// Renderer 报告渲染器，输出完整生成后一次写出
type Renderer interface {
	Render(r *summary.Report) error
}

// New 按输出模式创建渲染器
func New(w io.Writer, jsonMode bool) Renderer {
	if jsonMode {
		return NewJSONRenderer(w)
	}
	return NewTextRenderer(w)
}
