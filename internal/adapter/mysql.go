package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"sumry/internal/table"
)

// MySQLAdapter MySQL 适配器，读取连接串中指定的数据库
type MySQLAdapter struct {
	db *sql.DB
}

// NewMySQLAdapter 创建 MySQL 适配器
func NewMySQLAdapter(ctx context.Context, connStr string) (*MySQLAdapter, error) {
	db, err := openDB(ctx, "mysql", connStr)
	if err != nil {
		return nil, err
	}
	return newMySQLAdapter(db), nil
}

func newMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// ListTables 当前数据库中的基础表
func (a *MySQLAdapter) ListTables(ctx context.Context) ([]string, error) {
	query := `
		SELECT TABLE_NAME
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME
	`
	return queryNames(ctx, a.db, query)
}

// LoadTable 读取表数据
func (a *MySQLAdapter) LoadTable(ctx context.Context, name string, limit int) (*table.Table, error) {
	query := `
		SELECT COLUMN_NAME, DATA_TYPE
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION
	`
	columns, err := queryColumns(ctx, a.db, name, query, name)
	if err != nil {
		return nil, err
	}

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteMySQL(c.Name)
	}
	selectSQL := fmt.Sprintf("SELECT %s FROM %s", strings.Join(quoted, ", "), quoteMySQL(name))
	if limit > 0 {
		selectSQL += fmt.Sprintf(" LIMIT %d", limit)
	}
	return scanTable(ctx, a.db, name, columns, selectSQL)
}

// Close 关闭连接
func (a *MySQLAdapter) Close() error {
	return a.db.Close()
}

func quoteMySQL(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}
