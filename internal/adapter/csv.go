package adapter

import (
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"

	"sumry/internal/errs"
	"sumry/internal/table"
)

// LoadCSV 读取 CSV/TSV，首行为列名
func LoadCSV(path string, delimiter rune) (*table.Table, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name := filepath.Base(path)
	r := csv.NewReader(f)
	r.Comma = delimiter
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return table.New(name, 0), nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.ParseError, err, "read header of %s", name)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	cells := make([][]string, len(header))
	rows := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errs.Wrap(errs.ParseError, err, "read %s", name)
		}
		if len(record) > len(header) {
			return nil, errs.New(errs.ParseError, "%s row %d: expected %d fields, saw %d", name, rows+1, len(header), len(record))
		}
		for i := range header {
			cell := ""
			if i < len(record) {
				cell = record[i]
			}
			cells[i] = append(cells[i], cell)
		}
		rows++
	}

	t := table.New(name, rows)
	for i, colName := range table.UniqueNames(header) {
		if err := t.AddColumn(table.InferColumn(colName, cells[i])); err != nil {
			return nil, err
		}
	}
	return t, nil
}
