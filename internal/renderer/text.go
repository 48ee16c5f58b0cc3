package renderer

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"

	"sumry/internal/summary"
)

// notApplicable 该列类型没有此项统计
const notApplicable = "N/A"

// TextRenderer 终端表格渲染器
type TextRenderer struct {
	w io.Writer
}

// NewTextRenderer 创建渲染器
func NewTextRenderer(w io.Writer) *TextRenderer {
	return &TextRenderer{w: w}
}

// Render 渲染标题面板和各个表格
func (t *TextRenderer) Render(r *summary.Report) error {
	if len(r.Records) == 0 {
		return errors.New("report has no records")
	}

	var buf bytes.Buffer
	panel(&buf, fmt.Sprintf("%s File Summary", r.Format))

	multi := len(r.Records) > 1
	for i, rec := range r.Records {
		if multi {
			if i > 0 {
				buf.WriteString("\n")
			}
			section(&buf, fmt.Sprintf("Sheet: %s", rec.BasicInfo.Sheet))
		}
		writeRecord(&buf, rec)
	}

	_, err := t.w.Write(buf.Bytes())
	return errors.Wrap(err, "write report")
}

func writeRecord(buf *bytes.Buffer, rec *summary.Record) {
	heading(buf, "Basic Info")
	info := newTable(buf, "Property", "Value")
	for _, p := range rec.BasicInfo.Pairs() {
		value := p.Value
		if p.Key == "memory_estimate_bytes" {
			value = fmt.Sprintf("%s (%s)", value, humanize.Bytes(uint64(rec.BasicInfo.MemoryEstimateBytes)))
		}
		info.Append([]string{p.Key, value})
	}
	info.Render()

	heading(buf, "Columns")
	cols := newTable(buf, "#", "Name", "Type")
	for i, c := range rec.Columns {
		cols.Append([]string{strconv.Itoa(i + 1), c.Name, c.Type})
	}
	cols.Render()

	if rec.Statistics != nil {
		heading(buf, "Statistics")
		if len(rec.Statistics) == 0 {
			buf.WriteString("(no rows)\n")
		} else {
			stats := newTable(buf, "Column", "Min", "Max", "Mean", "Unique", "Most Common", "Sample Values")
			for _, s := range rec.Statistics {
				stats.Append(statsRow(s))
			}
			stats.Render()
		}
	}

	if rec.SampleRows != nil {
		heading(buf, "Sample Rows")
		if len(rec.SampleRows) == 0 {
			buf.WriteString("(no rows)\n")
			return
		}
		header := make([]string, len(rec.SampleRows[0]))
		for i, c := range rec.SampleRows[0] {
			header[i] = c.Column
		}
		rows := newTable(buf, header...)
		for _, row := range rec.SampleRows {
			line := make([]string, len(row))
			for i, c := range row {
				line[i] = summary.OptionalString(c.Value)
			}
			rows.Append(line)
		}
		rows.Render()
	}
}

func statsRow(s *summary.ColumnStats) []string {
	lo, hi, mean, mostCommon := notApplicable, notApplicable, notApplicable, notApplicable
	if s.Numeric {
		lo = summary.OptionalFloat(s.Min)
		hi = summary.OptionalFloat(s.Max)
		mean = summary.OptionalFloat(s.Mean)
	} else {
		mostCommon = summary.OptionalString(s.MostCommon)
	}
	return []string{
		s.Name,
		lo,
		hi,
		mean,
		strconv.Itoa(s.UniqueCount),
		mostCommon,
		strings.Join(s.SampleValues, ", "),
	}
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

// panel 单元格标题框
func panel(w io.Writer, title string) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_CENTER)
	table.Append([]string{title})
	table.Render()
}

func section(buf *bytes.Buffer, title string) {
	buf.WriteString("\n== " + title + " ==\n")
}

func heading(buf *bytes.Buffer, title string) {
	buf.WriteString("\n" + title + "\n")
}
