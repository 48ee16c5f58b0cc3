package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"sumry/internal/adapter"
	"sumry/internal/analyzer"
	"sumry/internal/errs"
	"sumry/internal/summary"
)

// openDBAdapter 按类型创建数据库适配器，测试中可替换
var openDBAdapter = func(ctx context.Context, dbType, connStr string) (adapter.DBAdapter, error) {
	switch strings.ToLower(dbType) {
	case "mysql":
		return adapter.NewMySQLAdapter(ctx, connStr)
	case "sqlserver", "mssql":
		return adapter.NewSQLServerAdapter(ctx, connStr)
	}
	return nil, errs.New(errs.UnsupportedFormat, "unsupported database type %q (mysql/sqlserver)", dbType)
}

// newDBCmd 汇总数据库中的一张表
func newDBCmd(opts *options) *cobra.Command {
	var (
		tableName string
		list      bool
	)

	cmd := &cobra.Command{
		Use:           "db",
		Short:         "Summarize a MySQL or SQL Server table",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd, opts)
			if err != nil {
				return err
			}
			if e.cfg.DB.Conn == "" {
				return errors.New("a connection string is required (--conn or SUMRY_DB_CONN)")
			}
			if !list && tableName == "" {
				return errors.New("--table is required unless --list is given")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), e.cfg.DB.Timeout)
			defer cancel()

			e.log.WithField("type", e.cfg.DB.Type).Info("Connecting to database...")
			db, err := openDBAdapter(ctx, e.cfg.DB.Type, e.cfg.DB.Conn)
			if err != nil {
				return err
			}
			defer db.Close()

			if list {
				return e.listTables(ctx, db)
			}
			return e.summarizeTable(ctx, db, tableName)
		},
	}

	cmd.Flags().String("type", "mysql", "Database type (mysql/sqlserver)")
	cmd.Flags().String("conn", "", "Connection string")
	cmd.Flags().Int("limit", 0, "Read at most N rows (0 reads the whole table)")
	cmd.Flags().Duration("timeout", 0, "Query timeout (default 30s)")
	cmd.Flags().StringVar(&tableName, "table", "", "Table name (schema.table for SQL Server)")
	cmd.Flags().BoolVar(&list, "list", false, "List tables instead of summarizing one")
	return cmd
}

func (e *env) summarizeTable(ctx context.Context, db adapter.DBAdapter, name string) error {
	e.log.Infof("Reading table %s...", name)
	t, err := db.LoadTable(ctx, name, e.cfg.DB.Limit)
	if err != nil {
		return err
	}
	rec, err := analyzer.Summarize(t, e.analyzer)
	if err != nil {
		return err
	}
	return e.render(&summary.Report{Source: name, Format: "Database", Records: []*summary.Record{rec}})
}

func (e *env) listTables(ctx context.Context, db adapter.DBAdapter) error {
	names, err := db.ListTables(ctx)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if e.opts.json {
		if names == nil {
			names = []string{}
		}
		data, err := json.MarshalIndent(map[string][]string{"tables": names}, "", "  ")
		if err != nil {
			return errors.Wrap(err, "encode table list")
		}
		buf.Write(data)
		buf.WriteByte('\n')
	} else {
		for _, n := range names {
			fmt.Fprintln(&buf, n)
		}
	}
	_, err = e.out.Write(buf.Bytes())
	return errors.Wrap(err, "write table list")
}
