package adapter

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"sumry/internal/errs"
	"sumry/internal/table"
)

// Workbook 已打开的 Excel 工作簿
type Workbook struct {
	name   string
	file   *excelize.File
	sheets []string
}

// OpenWorkbook 打开工作簿，.xls 等无法解析的文件返回 ParseError
func OpenWorkbook(path string) (*Workbook, error) {
	if err := checkReadable(path); err != nil {
		return nil, err
	}
	name := filepath.Base(path)
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ParseError, err, "open workbook %s", name)
	}
	return &Workbook{name: name, file: f, sheets: f.GetSheetList()}, nil
}

// SheetNames 全部工作表名称
func (w *Workbook) SheetNames() []string {
	return w.sheets
}

// Select 解析逗号分隔的工作表选择，纯数字按 0 起始的序号处理；为空时选择第一个工作表
func (w *Workbook) Select(selection string) ([]string, error) {
	if len(w.sheets) == 0 {
		return nil, errs.New(errs.ParseError, "workbook %s has no sheets", w.name)
	}
	if strings.TrimSpace(selection) == "" {
		return w.sheets[:1], nil
	}

	var selected []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(selection, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		sheet, err := w.resolve(name)
		if err != nil {
			return nil, err
		}
		if !seen[sheet] {
			seen[sheet] = true
			selected = append(selected, sheet)
		}
	}

	if len(selected) == 0 {
		return nil, errs.New(errs.InvalidSheetSelection, "no sheet names in %q", selection)
	}
	return selected, nil
}

// resolve 名称优先于序号
func (w *Workbook) resolve(name string) (string, error) {
	for _, sheet := range w.sheets {
		if sheet == name {
			return sheet, nil
		}
	}

	if index, err := strconv.Atoi(name); err == nil {
		if index >= 0 && index < len(w.sheets) {
			return w.sheets[index], nil
		}
		return "", errs.New(errs.InvalidSheetSelection, "sheet index %d out of range (workbook has %d sheets)", index, len(w.sheets))
	}

	hint := ""
	if s := suggest(name, w.sheets); s != "" {
		hint = ", did you mean " + strconv.Quote(s) + "?"
	}
	return "", errs.New(errs.InvalidSheetSelection, "sheet %q not found in %s (available: %s)%s",
		name, w.name, strings.Join(w.sheets, ", "), hint)
}

// Load 读取工作表，首行为列名
func (w *Workbook) Load(sheet string) (*table.Table, error) {
	rows, err := w.file.GetRows(sheet)
	if err != nil {
		return nil, errs.Wrap(errs.ParseError, err, "read sheet %s", sheet)
	}
	raw, err := w.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errs.Wrap(errs.ParseError, err, "read sheet %s", sheet)
	}

	t := table.New(w.name, 0)
	t.Sheet = sheet
	if len(rows) == 0 {
		return t, nil
	}

	// 每行末尾的空单元格会被省略，以最宽的行为准
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	header := make([]string, width)
	copy(header, rows[0])
	body := rows[1:]

	t.Rows = len(body)
	styles := make(map[int]dateStyle)
	for i, colName := range table.UniqueNames(header) {
		cells := make([]string, len(body))
		for r, row := range body {
			if i < len(row) {
				cells[r] = row[i]
			}
		}
		col, err := w.dateColumn(sheet, colName, i, cells, raw, styles)
		if err != nil {
			return nil, err
		}
		if col == nil {
			col = table.InferColumn(colName, cells)
		}
		if err := t.AddColumn(col); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// dateStyle 单元格样式的日期格式判断结果
type dateStyle struct {
	date     bool
	dateOnly bool
}

// dateColumn 所有非空单元格都是日期格式的数值时返回 datetime 列，否则返回 nil
func (w *Workbook) dateColumn(sheet, name string, col int, cells []string, raw [][]string, styles map[int]dateStyle) (*table.Column, error) {
	date1904 := false
	if props, err := w.file.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	values := make([]table.Value, len(cells))
	seen := 0
	for r, cell := range cells {
		if table.IsNullText(cell) {
			values[r] = table.Null(table.KindDatetime)
			continue
		}
		row := r + 1
		if row >= len(raw) || col >= len(raw[row]) {
			return nil, nil
		}
		serial, err := strconv.ParseFloat(strings.TrimSpace(raw[row][col]), 64)
		if err != nil {
			return nil, nil
		}

		ref, err := excelize.CoordinatesToCellName(col+1, row+1)
		if err != nil {
			return nil, errs.Wrap(errs.ParseError, err, "read sheet %s", sheet)
		}
		idx, err := w.file.GetCellStyle(sheet, ref)
		if err != nil {
			return nil, errs.Wrap(errs.ParseError, err, "read style of %s!%s", sheet, ref)
		}
		style, ok := styles[idx]
		if !ok {
			style = w.numFmtStyle(idx)
			styles[idx] = style
		}
		if !style.date {
			return nil, nil
		}

		when, err := excelize.ExcelDateToTime(serial, date1904)
		if err != nil {
			return nil, nil
		}
		values[r] = table.Time(when, style.dateOnly)
		seen++
	}
	if seen == 0 {
		return nil, nil
	}
	return table.NewColumn(name, table.KindDatetime, values), nil
}

// numFmtStyle 按数字格式判断样式是否为日期，读取不到样式时按普通数值处理
func (w *Workbook) numFmtStyle(idx int) dateStyle {
	style, err := w.file.GetStyle(idx)
	if err != nil {
		return dateStyle{}
	}
	if style.CustomNumFmt != nil {
		return dateFormatCode(*style.CustomNumFmt)
	}
	switch {
	case style.NumFmt >= 14 && style.NumFmt <= 17, style.NumFmt >= 27 && style.NumFmt <= 31,
		style.NumFmt >= 34 && style.NumFmt <= 36, style.NumFmt >= 50 && style.NumFmt <= 58:
		return dateStyle{date: true, dateOnly: true}
	case style.NumFmt >= 18 && style.NumFmt <= 22, style.NumFmt == 32, style.NumFmt == 33,
		style.NumFmt >= 45 && style.NumFmt <= 47:
		return dateStyle{date: true}
	}
	return dateStyle{}
}

// dateFormatCode 去掉引号文本、方括号段和转义字符后按日期时间占位符判断
func dateFormatCode(code string) dateStyle {
	var sb strings.Builder
	quoted, bracket := false, false
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case c == '"':
			quoted = !quoted
		case quoted:
		case c == '[':
			bracket = true
		case c == ']':
			bracket = false
		case bracket:
		case c == '\\' || c == '_' || c == '*':
			i++
		default:
			sb.WriteByte(c)
		}
	}
	plain := strings.ToLower(sb.String())
	if i := strings.IndexByte(plain, ';'); i >= 0 {
		plain = plain[:i]
	}
	hasDate := strings.ContainsAny(plain, "yd")
	hasTime := strings.ContainsAny(plain, "hs")
	return dateStyle{date: hasDate || hasTime, dateOnly: hasDate && !hasTime}
}

// Close 关闭工作簿
func (w *Workbook) Close() error {
	return w.file.Close()
}
