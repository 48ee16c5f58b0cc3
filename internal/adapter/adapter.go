package adapter

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"sumry/internal/errs"
	"sumry/internal/format"
	"sumry/internal/table"
)

// DBAdapter 数据库适配器接口
type DBAdapter interface {
	// ListTables 列出可读取的表
	ListTables(ctx context.Context) ([]string, error)

	// LoadTable 读取整张表，limit > 0 时只读取前 limit 行
	LoadTable(ctx context.Context, name string, limit int) (*table.Table, error)

	// Close 关闭连接
	Close() error
}

// ColumnMeta 数据库列信息
type ColumnMeta struct {
	Name     string
	DataType string
}

// LoadFile 按格式读取单表文件，Excel 使用 OpenWorkbook
func LoadFile(path string, kind format.Kind) (*table.Table, error) {
	switch kind {
	case format.CSV:
		return LoadCSV(path, format.Delimiter(path))
	case format.GeoJSON:
		return LoadGeoJSON(path)
	case format.Shapefile:
		return LoadShapefile(path)
	case format.Excel:
		wb, err := OpenWorkbook(path)
		if err != nil {
			return nil, err
		}
		defer wb.Close()
		sheets, err := wb.Select("")
		if err != nil {
			return nil, err
		}
		return wb.Load(sheets[0])
	}
	return nil, errs.New(errs.UnsupportedFormat, "no loader for %s", kind)
}

// openFile 打开文件，路径不存在或不可读时返回 FileReadError
func openFile(path string) (*os.File, error) {
	if err := checkReadable(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.FileReadError, err, "open %s", path)
	}
	return f, nil
}

func checkReadable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errs.Wrap(errs.FileReadError, err, "file %s does not exist or is unreadable", path)
	}
	if info.IsDir() {
		return errs.New(errs.FileReadError, "%s is a directory", path)
	}
	return nil
}

// sibling 同名不同扩展名的文件，兼容大写扩展名
func sibling(path, ext string) (string, bool) {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	for _, candidate := range []string{base + ext, base + strings.ToUpper(ext)} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}
