package cli

import (
	"path/filepath"

	"github.com/sirupsen/logrus"

	"sumry/internal/adapter"
	"sumry/internal/analyzer"
	"sumry/internal/format"
	"sumry/internal/renderer"
	"sumry/internal/summary"
)

// summarizeFile 识别格式、读取并统计，Excel 按选择逐个工作表处理
func summarizeFile(e *env, path string) (*summary.Report, error) {
	kind, err := format.Detect(path)
	if err != nil {
		return nil, err
	}

	report := &summary.Report{Source: filepath.Base(path), Format: kind.Title()}
	if kind == format.Excel {
		if err := e.summarizeWorkbook(report, path); err != nil {
			return nil, err
		}
		return report, nil
	}

	if e.opts.selection != "" {
		e.log.WithField("format", kind.Title()).Debug("--select only applies to Excel files, ignoring")
	}
	e.log.Infof("Reading %s file...", kind.Title())

	t, err := adapter.LoadFile(path, kind)
	if err != nil {
		return nil, err
	}
	rec, err := analyzer.Summarize(t, e.analyzer)
	if err != nil {
		return nil, err
	}
	report.Records = []*summary.Record{rec}
	return report, nil
}

func (e *env) summarizeWorkbook(report *summary.Report, path string) error {
	wb, err := adapter.OpenWorkbook(path)
	if err != nil {
		return err
	}
	defer wb.Close()

	sheets, err := wb.Select(e.opts.selection)
	if err != nil {
		return err
	}
	report.SheetNames = sheets

	summarizer := analyzer.NewSummarizer(e.analyzer)
	for _, sheet := range sheets {
		e.log.Infof("Reading Excel file (%s)...", sheet)
		t, err := wb.Load(sheet)
		if err != nil {
			return err
		}
		rec, err := summarizer.Summarize(t)
		if err != nil {
			return err
		}
		rec.BasicInfo.SheetNames = wb.SheetNames()
		report.Records = append(report.Records, rec)
	}
	return nil
}

// render 报告完整生成后一次写出
func (e *env) render(report *summary.Report) error {
	e.log.WithFields(logrus.Fields{
		"source":  report.Source,
		"records": len(report.Records),
		"json":    e.opts.json,
	}).Debug("rendering report")
	return renderer.New(e.out, e.opts.json).Render(report)
}
