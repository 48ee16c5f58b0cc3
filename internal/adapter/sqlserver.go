package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/denisenkom/go-mssqldb"

	"sumry/internal/table"
)

// defaultSQLServerSchema 未写明架构时使用
const defaultSQLServerSchema = "dbo"

// SQLServerAdapter SQL Server 适配器，表名可写作 schema.table
type SQLServerAdapter struct {
	db *sql.DB
}

// NewSQLServerAdapter 创建 SQL Server 适配器
func NewSQLServerAdapter(ctx context.Context, connStr string) (*SQLServerAdapter, error) {
	db, err := openDB(ctx, "sqlserver", connStr)
	if err != nil {
		return nil, err
	}
	return newSQLServerAdapter(db), nil
}

func newSQLServerAdapter(db *sql.DB) *SQLServerAdapter {
	return &SQLServerAdapter{db: db}
}

// ListTables 全部基础表，格式为 schema.table
func (a *SQLServerAdapter) ListTables(ctx context.Context) ([]string, error) {
	query := `
		SELECT TABLE_SCHEMA + '.' + TABLE_NAME
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_SCHEMA, TABLE_NAME
	`
	return queryNames(ctx, a.db, query)
}

// LoadTable 读取表数据
func (a *SQLServerAdapter) LoadTable(ctx context.Context, name string, limit int) (*table.Table, error) {
	schema, tableName := splitSQLServerName(name)
	query := `
		SELECT COLUMN_NAME, DATA_TYPE
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = @p1 AND TABLE_NAME = @p2
		ORDER BY ORDINAL_POSITION
	`
	columns, err := queryColumns(ctx, a.db, name, query, schema, tableName)
	if err != nil {
		return nil, err
	}

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteSQLServer(c.Name)
	}
	top := ""
	if limit > 0 {
		top = fmt.Sprintf("TOP (%d) ", limit)
	}
	selectSQL := fmt.Sprintf("SELECT %s%s FROM %s.%s",
		top, strings.Join(quoted, ", "), quoteSQLServer(schema), quoteSQLServer(tableName))
	return scanTable(ctx, a.db, name, columns, selectSQL)
}

// Close 关闭连接
func (a *SQLServerAdapter) Close() error {
	return a.db.Close()
}

func splitSQLServerName(name string) (string, string) {
	if i := strings.Index(name, "."); i > 0 && i < len(name)-1 {
		return name[:i], name[i+1:]
	}
	return defaultSQLServerSchema, name
}

func quoteSQLServer(ident string) string {
	return "[" + strings.ReplaceAll(ident, "]", "]]") + "]"
}
