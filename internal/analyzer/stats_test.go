package analyzer

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sumry/internal/errs"
	"sumry/internal/summary"
	"sumry/internal/table"
)

func peopleTable(t *testing.T) *table.Table {
	t.Helper()
	names := []string{"Ann", "Bob", "Cid", "Dee", "Eve", "Fay", "Gus", "Hal", "Ivy", "Jon"}
	ages := []string{"31", "45", "27", "38", "52", "29", "41", "33", "36", "48"}
	cities := []string{"Oslo", "Rome", "Oslo", "Lima", "Rome", "Oslo", "Lima", "Rome", "Oslo", "Kyiv"}
	salaries := []string{"50000", "72000", "43000", "61000", "90000", "47000", "68000", "55000", "59000", "81000"}

	tbl := table.New("people.csv", len(names))
	require.NoError(t, tbl.AddColumn(table.InferColumn("name", names)))
	require.NoError(t, tbl.AddColumn(table.InferColumn("age", ages)))
	require.NoError(t, tbl.AddColumn(table.InferColumn("city", cities)))
	require.NoError(t, tbl.AddColumn(table.InferColumn("salary", salaries)))
	return tbl
}

func findStats(t *testing.T, rec *summary.Record, name string) *summary.ColumnStats {
	t.Helper()
	for _, s := range rec.Statistics {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("no statistics for %s", name)
	return nil
}

func TestSummarizePeople(t *testing.T) {
	rec, err := NewSummarizer(Options{Verbose: true, SampleCount: 5}).Summarize(peopleTable(t))
	require.NoError(t, err)

	assert.Equal(t, 10, rec.BasicInfo.RowCount)
	assert.Equal(t, 4, rec.BasicInfo.ColumnCount)
	assert.Nil(t, rec.BasicInfo.GeometryInfo)
	assert.Greater(t, rec.BasicInfo.MemoryEstimateBytes, int64(0))

	assert.Equal(t, []summary.Column{
		{Name: "name", Type: "text"},
		{Name: "age", Type: "integer"},
		{Name: "city", Type: "text"},
		{Name: "salary", Type: "integer"},
	}, rec.Columns)

	age := findStats(t, rec, "age")
	require.NotNil(t, age.Min)
	assert.Equal(t, 27.0, *age.Min)
	assert.Equal(t, 52.0, *age.Max)
	assert.InDelta(t, 38.0, *age.Mean, 1e-9)
	assert.Equal(t, 10, age.UniqueCount)
	assert.Nil(t, age.MostCommon)
	assert.Equal(t, []string{"31", "45", "27"}, age.SampleValues)

	city := findStats(t, rec, "city")
	assert.Equal(t, 4, city.UniqueCount)
	require.NotNil(t, city.MostCommon)
	assert.Equal(t, "Oslo", *city.MostCommon)
	assert.Nil(t, city.Min)

	require.Len(t, rec.SampleRows, 5)
	first := rec.SampleRows[0]
	require.Len(t, first, 4)
	assert.Equal(t, "name", first[0].Column)
	assert.Equal(t, "Ann", *first[0].Value)
	assert.Equal(t, "50000", *first[3].Value)
}

func TestSummarizeNotVerbose(t *testing.T) {
	rec, err := NewSummarizer(Options{}).Summarize(peopleTable(t))
	require.NoError(t, err)
	assert.Nil(t, rec.Statistics)
	assert.Nil(t, rec.SampleRows)
}

func TestSummarizeZeroRows(t *testing.T) {
	tbl := table.New("empty.csv", 0)
	require.NoError(t, tbl.AddColumn(table.InferColumn("a", nil)))
	require.NoError(t, tbl.AddColumn(table.InferColumn("b", nil)))

	rec, err := NewSummarizer(Options{Verbose: true, SampleCount: 5}).Summarize(tbl)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.BasicInfo.RowCount)
	assert.Equal(t, 2, rec.BasicInfo.ColumnCount)
	assert.NotNil(t, rec.Statistics)
	assert.Empty(t, rec.Statistics)
	assert.NotNil(t, rec.SampleRows)
	assert.Empty(t, rec.SampleRows)
}

func TestSummarizeNoColumns(t *testing.T) {
	_, err := NewSummarizer(Options{}).Summarize(table.New("blank.csv", 0))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.EmptyTableError))
}

func TestAllNullNumericColumn(t *testing.T) {
	tbl := table.New("t", 3)
	values := []table.Value{table.Null(table.KindFloat), table.Null(table.KindFloat), table.Null(table.KindFloat)}
	require.NoError(t, tbl.AddColumn(table.NewColumn("x", table.KindFloat, values)))

	rec, err := NewSummarizer(Options{Verbose: true}).Summarize(tbl)
	require.NoError(t, err)

	x := findStats(t, rec, "x")
	assert.Nil(t, x.Min)
	assert.Nil(t, x.Max)
	assert.Nil(t, x.Mean)
	assert.Equal(t, 0, x.UniqueCount)
	assert.Empty(t, x.SampleValues)
}

func TestMostCommonTieBreaksOnFirstSeen(t *testing.T) {
	tbl := table.New("t", 6)
	require.NoError(t, tbl.AddColumn(table.InferColumn("c", []string{"b", "a", "a", "", "b", "c"})))

	rec, err := NewSummarizer(Options{Verbose: true}).Summarize(tbl)
	require.NoError(t, err)

	c := findStats(t, rec, "c")
	require.NotNil(t, c.MostCommon)
	assert.Equal(t, "b", *c.MostCommon)
	assert.Equal(t, 3, c.UniqueCount)
	assert.Equal(t, []string{"b", "a", "a"}, c.SampleValues)
}

func TestUnknownColumnHasNoMostCommon(t *testing.T) {
	tbl := table.New("t", 2)
	require.NoError(t, tbl.AddColumn(table.InferColumn("empty", []string{"", "NA"})))

	rec, err := NewSummarizer(Options{Verbose: true, SampleCount: 1}).Summarize(tbl)
	require.NoError(t, err)

	assert.Equal(t, "unknown", rec.Columns[0].Type)
	s := findStats(t, rec, "empty")
	assert.Nil(t, s.MostCommon)
	assert.Empty(t, s.SampleValues)
	require.Len(t, rec.SampleRows, 1)
	assert.Nil(t, rec.SampleRows[0][0].Value)
}

func TestStatisticsProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 25; round++ {
		rows := rng.Intn(40)
		nums := make([]string, rows)
		words := make([]string, rows)
		for i := range nums {
			if rng.Intn(5) == 0 {
				nums[i] = ""
			} else {
				nums[i] = fmt.Sprintf("%.3f", rng.NormFloat64()*100)
			}
			words[i] = []string{"x", "y", "z", ""}[rng.Intn(4)]
		}

		tbl := table.New("t", rows)
		require.NoError(t, tbl.AddColumn(table.InferColumn("n", nums)))
		require.NoError(t, tbl.AddColumn(table.InferColumn("w", words)))

		rec, err := NewSummarizer(Options{Verbose: true}).Summarize(tbl)
		require.NoError(t, err)

		for _, s := range rec.Statistics {
			col := tbl.Column(s.Name)
			assert.GreaterOrEqual(t, s.UniqueCount, 0)
			assert.LessOrEqual(t, s.UniqueCount, rows)

			want := col.NonNullCount()
			if want > 3 {
				want = 3
			}
			assert.Len(t, s.SampleValues, want)

			if s.Numeric && s.Mean != nil {
				assert.LessOrEqual(t, *s.Min, *s.Mean)
				assert.LessOrEqual(t, *s.Mean, *s.Max)
			}
		}
	}
}

func TestSummarizeDeterministic(t *testing.T) {
	s := NewSummarizer(Options{Verbose: true, SampleCount: 3})
	a, err := s.Summarize(peopleTable(t))
	require.NoError(t, err)
	b, err := s.Summarize(peopleTable(t))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSampleCountLargerThanRows(t *testing.T) {
	rec, err := NewSummarizer(Options{SampleCount: 50}).Summarize(peopleTable(t))
	require.NoError(t, err)
	assert.Len(t, rec.SampleRows, 10)
}
