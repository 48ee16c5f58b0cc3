package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sumry/internal/adapter"
	"sumry/internal/errs"
	"sumry/internal/table"
)

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	var stdout, stderr bytes.Buffer
	code := Execute(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writePeople(t *testing.T) string {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("name,age,city,salary\n")
	cities := []string{"Oslo", "Lima", "Pune", "Oslo", "Kyiv"}
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&sb, "person%d,%d,%s,%d\n", i, 20+i, cities[i%len(cities)], 1000*(i+1))
	}
	path := filepath.Join(t.TempDir(), "people.csv")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o644))
	return path
}

func decodeJSON(t *testing.T, data string) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(data), &out))
	return out
}

func TestCSVText(t *testing.T) {
	code, stdout, stderr := run(t, writePeople(t))
	require.Equal(t, 0, code, stderr)

	assert.Contains(t, stdout, "CSV File Summary")
	assert.Contains(t, stdout, "people.csv")
	assert.NotContains(t, stdout, "Statistics")
	assert.Empty(t, stderr)
}

func TestCSVJSONVerbose(t *testing.T) {
	code, stdout, stderr := run(t, writePeople(t), "-j", "-v", "-n", "2")
	require.Equal(t, 0, code, stderr)

	doc := decodeJSON(t, stdout)
	info := doc["basic_info"].(map[string]interface{})
	assert.Equal(t, float64(10), info["row_count"])
	assert.Equal(t, float64(4), info["column_count"])

	columns := doc["columns"].([]interface{})
	require.Len(t, columns, 4)
	var names []string
	for _, c := range columns {
		names = append(names, c.(map[string]interface{})["name"].(string))
	}
	assert.Equal(t, []string{"name", "age", "city", "salary"}, names)

	stats := doc["statistics"].(map[string]interface{})
	for _, col := range []string{"age", "salary"} {
		s := stats[col].(map[string]interface{})
		lo, mean, hi := s["min"].(float64), s["mean"].(float64), s["max"].(float64)
		assert.LessOrEqual(t, lo, mean)
		assert.LessOrEqual(t, mean, hi)
	}
	assert.Equal(t, "Oslo", stats["city"].(map[string]interface{})["most_common"])
	assert.Len(t, doc["sample_rows"], 2)
}

func TestCountDefaults(t *testing.T) {
	code, stdout, _ := run(t, writePeople(t), "-j", "--count=0")
	require.Equal(t, 0, code)
	assert.Len(t, decodeJSON(t, stdout)["sample_rows"], 5)

	code, stdout, _ = run(t, writePeople(t), "-j")
	require.Equal(t, 0, code)
	assert.NotContains(t, decodeJSON(t, stdout), "sample_rows")
}

func TestErrors(t *testing.T) {
	dir := t.TempDir()
	xyz := filepath.Join(dir, "data.xyz")
	require.NoError(t, os.WriteFile(xyz, []byte("x"), 0o644))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unsupported", []string{xyz}, "unsupported format"},
		{"missing", []string{filepath.Join(dir, "nope.csv")}, "file read error"},
		{"no args", []string{}, "accepts 1 arg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := run(t, tt.args...)
			assert.Equal(t, 1, code)
			assert.Empty(t, stdout)
			assert.True(t, strings.HasPrefix(stderr, "Error: "), stderr)
			assert.Contains(t, stderr, tt.want)
			assert.Equal(t, 1, strings.Count(stderr, "\n"))
		})
	}
}

func TestErrorsJSON(t *testing.T) {
	code, stdout, stderr := run(t, filepath.Join(t.TempDir(), "nope.geojson"), "-j")
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, decodeJSON(t, stderr)["error"], "does not exist")
}

func writeBook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"a", "b"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{1, "x"}))
	_, err := f.NewSheet("Extra")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Extra", "A1", &[]interface{}{"c"}))
	require.NoError(t, f.SetSheetRow("Extra", "A2", &[]interface{}{true}))

	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestExcelSheets(t *testing.T) {
	book := writeBook(t)

	code, stdout, stderr := run(t, book, "-j")
	require.Equal(t, 0, code, stderr)
	info := decodeJSON(t, stdout)["basic_info"].(map[string]interface{})
	assert.Equal(t, "Sheet1", info["sheet"])
	assert.Len(t, info["sheet_names"], 2)

	code, stdout, stderr = run(t, book, "-j", "-s", "Extra,Sheet1")
	require.Equal(t, 0, code, stderr)
	doc := decodeJSON(t, stdout)
	assert.Equal(t, []interface{}{"Extra", "Sheet1"}, doc["sheet_names"])
	sheets := doc["sheets"].([]interface{})
	require.Len(t, sheets, 2)
	first := sheets[0].(map[string]interface{})["basic_info"].(map[string]interface{})
	assert.Equal(t, "Extra", first["sheet"])

	code, stdout, stderr = run(t, book, "-s", "Extra,1")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, 1, strings.Count(stdout, "Basic Info"))
	assert.NotContains(t, stdout, "== Sheet:")
	assert.Contains(t, stdout, "Extra")

	code, stdout, stderr = run(t, book, "-s", "SheetX")
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "invalid sheet selection")
}

func TestSelectIgnoredForCSV(t *testing.T) {
	code, stdout, stderr := run(t, writePeople(t), "-s", "Sheet1", "-v")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "CSV File Summary")
	assert.Contains(t, stderr, "only applies to Excel")
}

func writeSites(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sites.shp")
	w, err := shp.Create(path, shp.POINT)
	require.NoError(t, err)
	require.NoError(t, w.SetFields([]shp.Field{shp.StringField("NAME", 10)}))
	for i, p := range []shp.Point{{X: 1, Y: 2}, {X: 3, Y: 5}} {
		w.Write(&p)
		require.NoError(t, w.WriteAttribute(i, 0, fmt.Sprintf("site%d", i)))
	}
	w.Close()
	require.NoError(t, os.Rename(filepath.Join(dir, "sitesdbf"), filepath.Join(dir, "sites.dbf")))
	return path
}

func TestShapefileJSON(t *testing.T) {
	code, stdout, stderr := run(t, writeSites(t), "-j", "-v")
	require.Equal(t, 0, code, stderr)

	doc := decodeJSON(t, stdout)
	info := doc["basic_info"].(map[string]interface{})
	assert.Equal(t, "sites.shp", info["source_name"])
	assert.Equal(t, float64(2), info["row_count"])
	assert.Equal(t, []interface{}{1.0, 2.0, 3.0, 5.0}, info["bbox"])
	assert.Equal(t, map[string]interface{}{"Point": 2.0}, info["geometry_type_counts"])
	assert.Contains(t, doc["statistics"], "NAME")
	assert.NotContains(t, doc["statistics"], "geometry")
}

func TestShapefileCorrupt(t *testing.T) {
	path := writeSites(t)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data[:len(data)-10], 0o644))

	code, stdout, stderr := run(t, path)
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "parse error")
}

func TestVersion(t *testing.T) {
	code, stdout, _ := run(t, "version")
	assert.Equal(t, 0, code)
	assert.Equal(t, "sumry "+Version+"\n", stdout)
}

type fakeDB struct {
	tables []string
	closed bool
}

func (f *fakeDB) ListTables(ctx context.Context) ([]string, error) {
	return f.tables, nil
}

func (f *fakeDB) LoadTable(ctx context.Context, name string, limit int) (*table.Table, error) {
	if name != "orders" {
		return nil, errs.New(errs.FileReadError, "table %s does not exist", name)
	}
	rows := 3
	if limit > 0 && limit < rows {
		rows = limit
	}
	t := table.New(name, rows)
	values := make([]table.Value, rows)
	for i := range values {
		values[i] = table.Int(int64(i + 1))
	}
	if err := t.AddColumn(table.NewColumn("id", table.KindInteger, values)); err != nil {
		return nil, err
	}
	return t, nil
}

func (f *fakeDB) Close() error {
	f.closed = true
	return nil
}

func withFakeDB(t *testing.T) *fakeDB {
	t.Helper()
	db := &fakeDB{tables: []string{"orders", "people"}}
	orig := openDBAdapter
	openDBAdapter = func(ctx context.Context, dbType, connStr string) (adapter.DBAdapter, error) {
		return db, nil
	}
	t.Cleanup(func() { openDBAdapter = orig })
	return db
}

func TestDBSummarize(t *testing.T) {
	db := withFakeDB(t)

	code, stdout, stderr := run(t, "db", "--conn", "fake", "--table", "orders", "--limit", "2", "-j", "-v")
	require.Equal(t, 0, code, stderr)
	assert.True(t, db.closed)

	doc := decodeJSON(t, stdout)
	info := doc["basic_info"].(map[string]interface{})
	assert.Equal(t, "orders", info["source_name"])
	assert.Equal(t, float64(2), info["row_count"])
	assert.Contains(t, doc, "statistics")
}

func TestDBList(t *testing.T) {
	withFakeDB(t)

	code, stdout, stderr := run(t, "db", "--conn", "fake", "--list")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "orders\npeople\n", stdout)

	code, stdout, _ = run(t, "db", "--conn", "fake", "--list", "-j")
	require.Equal(t, 0, code)
	assert.Equal(t, []interface{}{"orders", "people"}, decodeJSON(t, stdout)["tables"])
}

func TestDBErrors(t *testing.T) {
	withFakeDB(t)

	code, _, stderr := run(t, "db", "--table", "orders")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "connection string is required")

	code, _, stderr = run(t, "db", "--conn", "fake")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "--table is required")

	code, stdout, stderr := run(t, "db", "--conn", "fake", "--table", "ghost")
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "does not exist")
}

func TestOpenDBAdapterUnknownType(t *testing.T) {
	_, err := openDBAdapter(context.Background(), "oracle", "dsn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database type")
}
