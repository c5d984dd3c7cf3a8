package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/withObsrvr/oracle-persist/internal/checkpoint"
	"github.com/withObsrvr/oracle-persist/internal/config"
	"github.com/withObsrvr/oracle-persist/internal/importer"
	"github.com/withObsrvr/oracle-persist/internal/logging"
	"github.com/withObsrvr/oracle-persist/internal/metrics"
	"github.com/withObsrvr/oracle-persist/internal/source"
	"github.com/withObsrvr/oracle-persist/internal/storage"
	"github.com/withObsrvr/oracle-persist/internal/watcher"
)

type importFlags struct {
	fileType  string
	dbDriver  string
	dbURL     string
	maxParams int
	source    string
	bucket    string
	prefix    string
	region    string
	endpoint  string
	localPath string
	after     string
	before    string
	logLevel  string

	follow        bool
	pollInterval  time.Duration
	checkpointDir string
}

func newImportCmd() *cobra.Command {
	var f importFlags

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import every file of one type in a time window",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			f.apply(cmd.Flags(), &cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runImport(cmd, cfg)
		},
	}

	f.register(cmd.Flags())
	return cmd
}

// register binds the import flags to flags.
func (f *importFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.fileType, "file-type", "", "File type prefix, e.g. mobile_reward_share")
	flags.StringVar(&f.dbDriver, "db-driver", "", "Database driver: postgres | sqlite")
	flags.StringVar(&f.dbURL, "db-url", "", "Database connection string")
	flags.IntVar(&f.maxParams, "max-params", 0, "Bind parameters per INSERT (0 uses the driver limit)")
	flags.StringVar(&f.source, "source", "", "File source: s3 | gcs | local | mem")
	flags.StringVar(&f.bucket, "bucket", "", "Bucket holding the oracle files")
	flags.StringVar(&f.prefix, "prefix", "", "Key prefix inside the bucket")
	flags.StringVar(&f.region, "region", "", "S3 region")
	flags.StringVar(&f.endpoint, "endpoint", "", "Custom S3 endpoint")
	flags.StringVar(&f.localPath, "local-path", "", "Directory for the local source")
	flags.StringVar(&f.after, "after", "", "Import files at or after this time (RFC3339, or UTC without a zone)")
	flags.StringVar(&f.before, "before", "", "Import files before this time (RFC3339, or UTC without a zone)")
	flags.StringVar(&f.logLevel, "log-level", "", "Log level: debug | info | warn | error")
	flags.BoolVar(&f.follow, "follow", false, "Keep polling for new files after the first pass")
	flags.DurationVar(&f.pollInterval, "poll-interval", time.Minute, "Time between passes with --follow")
	flags.StringVar(&f.checkpointDir, "checkpoint-dir", "", "Resume from and record progress in this directory")
}

// apply overrides cfg with every flag set on the command line.
func (f *importFlags) apply(flags *pflag.FlagSet, cfg *config.Config) {
	set := func(name string, dst *string, v string) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	set("file-type", &cfg.Import.FileType, f.fileType)
	set("db-driver", &cfg.Database.Driver, f.dbDriver)
	set("db-url", &cfg.Database.URL, f.dbURL)
	set("source", &cfg.Source.Mode, f.source)
	set("bucket", &cfg.Source.Bucket, f.bucket)
	set("prefix", &cfg.Source.Prefix, f.prefix)
	set("region", &cfg.Source.Region, f.region)
	set("endpoint", &cfg.Source.Endpoint, f.endpoint)
	set("local-path", &cfg.Source.LocalPath, f.localPath)
	set("after", &cfg.Import.After, f.after)
	set("before", &cfg.Import.Before, f.before)
	set("log-level", &cfg.Logging.Level, f.logLevel)
	if flags.Changed("max-params") {
		cfg.Database.MaxParams = f.maxParams
	}
	if flags.Changed("follow") {
		cfg.Import.Follow = f.follow
	}
	if flags.Changed("poll-interval") {
		cfg.Import.PollInterval = f.pollInterval
	}
	if flags.Changed("checkpoint-dir") {
		cfg.Checkpoint.Enabled = true
		cfg.Checkpoint.Dir = f.checkpointDir
	}
}

func runImport(cmd *cobra.Command, cfg config.Config) error {
	ctx := cmd.Context()
	logging.Setup(cfg.LogConfig())
	log := logging.Component("main")
	log.Info("oracle-persist starting", "version", importer.Version, "git_sha", importer.GitSHA)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.Init(cfg.Metrics.Namespace)
		go func() {
			if err := metrics.StartServer(cfg.Metrics.Address); err != nil {
				log.Error("metrics server stopped", "error", err)
			}
		}()
		log.Info("metrics server listening", "address", cfg.Metrics.Address)
	}

	after, before, err := cfg.Window()
	if err != nil {
		return err
	}

	src, err := source.New(ctx, cfg.SourceConfig())
	if err != nil {
		return fmt.Errorf("create source: %w", err)
	}
	defer src.Close()

	store, err := storage.Open(ctx, cfg.StoreConfig())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	cp, err := checkpoint.NewManager(cfg.Checkpoint)
	if err != nil {
		return err
	}

	im, err := importer.New(importer.Config{
		FileType:   cfg.Import.FileType,
		After:      after,
		Before:     before,
		MaxParams:  cfg.Database.MaxParams,
		Retry:      cfg.Retry,
		Checkpoint: cp,
	}, src, store, m)
	if err != nil {
		return err
	}

	if cfg.Import.Follow {
		log.Info("following new files", "poll_interval", cfg.Import.PollInterval.String())
		return watcher.New(im, cfg.Import.PollInterval).Run(ctx)
	}

	summary, err := im.Run(ctx)
	if err != nil {
		log.Error("import failed",
			"files_imported", len(summary.Files),
			"error", err)
		return err
	}

	for table, r := range summary.Rows {
		log.Debug("table written", "table", table, "rows", r.Rows, "statements", r.Statements)
	}
	log.Info("import finished", "files", len(summary.Files), "records", summary.Records)
	return nil
}
