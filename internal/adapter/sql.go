package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"sumry/internal/errs"
	"sumry/internal/table"
)

// openDB 打开连接并检查可用性
func openDB(ctx context.Context, driver, connStr string) (*sql.DB, error) {
	db, err := sql.Open(driver, connStr)
	if err != nil {
		return nil, errs.Wrap(errs.FileReadError, err, "open %s connection", driver)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errs.Wrap(errs.FileReadError, err, "connect to %s", driver)
	}
	return db, nil
}

// queryColumns 读取 INFORMATION_SCHEMA 中的列名和类型，表不存在时返回 FileReadError
func queryColumns(ctx context.Context, db *sql.DB, name, query string, args ...interface{}) ([]ColumnMeta, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errs.Wrap(errs.FileReadError, err, "read columns of %s", name)
	}
	defer rows.Close()

	var columns []ColumnMeta
	for rows.Next() {
		var c ColumnMeta
		if err := rows.Scan(&c.Name, &c.DataType); err != nil {
			return nil, errs.Wrap(errs.ParseError, err, "scan columns of %s", name)
		}
		columns = append(columns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.FileReadError, err, "read columns of %s", name)
	}
	if len(columns) == 0 {
		return nil, errs.New(errs.FileReadError, "table %s does not exist", name)
	}
	return columns, nil
}

// queryNames 读取单列字符串结果
func queryNames(ctx context.Context, db *sql.DB, query string, args ...interface{}) ([]string, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errs.Wrap(errs.FileReadError, err, "list tables")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errs.Wrap(errs.ParseError, err, "scan table name")
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.FileReadError, err, "list tables")
	}
	return names, nil
}

// scanTable 执行查询，按列元数据转换每个值
func scanTable(ctx context.Context, db *sql.DB, name string, columns []ColumnMeta, query string) (*table.Table, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, errs.Wrap(errs.FileReadError, err, "query %s", name)
	}
	defer rows.Close()

	kinds := make([]table.Kind, len(columns))
	for i, c := range columns {
		kinds[i] = KindForSQLType(c.DataType)
	}

	values := make([][]table.Value, len(columns))
	raw := make([]interface{}, len(columns))
	dest := make([]interface{}, len(columns))
	for i := range raw {
		dest[i] = &raw[i]
	}

	n := 0
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, errs.Wrap(errs.ParseError, err, "scan %s row %d", name, n+1)
		}
		for i, v := range raw {
			values[i] = append(values[i], sqlValue(v, kinds[i], columns[i].DataType))
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.FileReadError, err, "query %s", name)
	}

	t := table.New(name, n)
	for i, colName := range table.UniqueNames(columnNames(columns)) {
		if values[i] == nil {
			values[i] = []table.Value{}
		}
		if err := t.AddColumn(table.NewColumn(colName, kinds[i], values[i])); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func columnNames(columns []ColumnMeta) []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	return names
}

// KindForSQLType 将 INFORMATION_SCHEMA.DATA_TYPE 映射为列类型
func KindForSQLType(dataType string) table.Kind {
	switch strings.ToLower(strings.TrimSpace(dataType)) {
	case "tinyint", "smallint", "mediumint", "int", "integer", "bigint", "year":
		return table.KindInteger
	case "decimal", "numeric", "float", "double", "real", "money", "smallmoney":
		return table.KindFloat
	case "bit", "bool", "boolean":
		return table.KindBoolean
	case "date", "datetime", "datetime2", "smalldatetime", "datetimeoffset", "timestamp":
		return table.KindDatetime
	}
	return table.KindText
}

// sqlValue 转换驱动返回的值，无法转换时按空值处理
func sqlValue(v interface{}, kind table.Kind, dataType string) table.Value {
	switch v := v.(type) {
	case nil:
		return table.Null(kind)
	case []byte:
		return textValue(string(v), kind)
	case string:
		return textValue(v, kind)
	case int64:
		switch kind {
		case table.KindInteger:
			return table.Int(v)
		case table.KindFloat:
			return table.Float(float64(v))
		case table.KindBoolean:
			return table.Bool(v != 0)
		}
		return textValue(strconv.FormatInt(v, 10), kind)
	case float64:
		switch kind {
		case table.KindFloat:
			return table.Float(v)
		case table.KindInteger:
			if v == math.Trunc(v) {
				return table.Int(int64(v))
			}
			return table.Null(kind)
		}
		return textValue(table.FormatFloat(v), kind)
	case bool:
		if kind == table.KindBoolean {
			return table.Bool(v)
		}
		return textValue(strconv.FormatBool(v), kind)
	case time.Time:
		if kind == table.KindDatetime {
			return table.Time(v, strings.EqualFold(dataType, "date"))
		}
		return textValue(v.Format(time.RFC3339), kind)
	}
	return textValue(fmt.Sprint(v), kind)
}

func textValue(s string, kind table.Kind) table.Value {
	switch kind {
	case table.KindText:
		return table.Text(s)
	case table.KindBoolean:
		// MySQL BIT(1) 以单字节返回
		if len(s) == 1 && (s[0] == 0 || s[0] == 1) {
			return table.Bool(s[0] == 1)
		}
		switch s {
		case "1":
			return table.Bool(true)
		case "0":
			return table.Bool(false)
		}
	}
	return table.ParseCell(s, kind)
}
