package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"sumry/internal/analyzer"
	"sumry/internal/config"
	"sumry/internal/log"
)

// options 一次调用的命令行选项
type options struct {
	verbose   bool
	count     int
	selection string
	json      bool
	logLevel  string
	logFormat string
}

// Execute 运行命令并返回退出码，错误以单行写入 stderr
func Execute(args []string, stdout, stderr io.Writer) int {
	opts := &options{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		reportError(stderr, err, opts.json)
		return 1
	}
	return 0
}

// newRootCmd 汇总单个数据文件
func newRootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "sumry <file>",
		Short:         "Summarize CSV, Excel, GeoJSON and Shapefile data",
		Long:          "Print row/column counts, inferred types, statistics and sample rows for a data file.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(cmd, opts)
			if err != nil {
				return err
			}
			report, err := summarizeFile(env, args[0])
			if err != nil {
				return err
			}
			return env.render(report)
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Show per-column statistics")
	flags.IntVarP(&opts.count, "count", "n", 0, "Display N sample records (N <= 0 means the configured default of 5)")
	flags.BoolVarP(&opts.json, "json", "j", false, "Output results in JSON format")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&opts.logFormat, "log-format", "", "Log format (text or json)")
	cmd.Flags().StringVarP(&opts.selection, "select", "s", "", "Comma-separated Excel sheet names or 0-based indexes")

	cmd.AddCommand(newDBCmd(opts))
	cmd.AddCommand(VersionCmd())
	return cmd
}

// env 配置、日志与输出位置
type env struct {
	cfg      *config.Config
	log      *logrus.Logger
	opts     *options
	out      io.Writer
	analyzer analyzer.Options
}

func newEnv(cmd *cobra.Command, opts *options) (*env, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if opts.verbose && !cmd.Flags().Changed("log-level") {
		level = "debug"
	}
	logger, err := log.NewLogger(cmd.ErrOrStderr(), level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	sampleCount := 0
	if cmd.Flags().Changed("count") {
		sampleCount = opts.count
		if sampleCount <= 0 {
			sampleCount = cfg.Sample.DefaultCount
		}
	}

	return &env{
		cfg:  cfg,
		log:  logger,
		opts: opts,
		out:  cmd.OutOrStdout(),
		analyzer: analyzer.Options{
			Verbose:      opts.verbose,
			SampleCount:  sampleCount,
			SampleValues: cfg.Sample.Values,
		},
	}, nil
}

// reportError JSON 模式输出 {"error": ...}，否则输出 Error: ...
func reportError(w io.Writer, err error, jsonMode bool) {
	if jsonMode {
		data, _ := json.Marshal(map[string]string{"error": err.Error()})
		fmt.Fprintln(w, string(data))
		return
	}
	fmt.Fprintf(w, "Error: %s\n", err)
}
