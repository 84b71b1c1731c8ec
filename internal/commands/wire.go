package commands

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ntpusu/su-services/representatives/internal/config"
	"github.com/ntpusu/su-services/representatives/internal/dataset"
	"github.com/ntpusu/su-services/representatives/internal/importer"
	"github.com/ntpusu/su-services/representatives/internal/metrics"
	"github.com/ntpusu/su-services/representatives/internal/sheets"
)

func newRepository(cfg *config.Config, logger *zap.Logger) (dataset.Repository, error) {
	codec, err := dataset.NewCodec(cfg.Storage.Format)
	if err != nil {
		return nil, err
	}

	switch cfg.Storage.Backend {
	case config.BackendS3:
		s3 := cfg.Storage.S3
		client, err := dataset.NewMinIOClient(dataset.ObjectStoreConfig{
			Endpoint:        s3.Endpoint,
			AccessKeyID:     s3.AccessKeyID,
			SecretAccessKey: s3.SecretAccessKey,
			Bucket:          s3.Bucket,
			Object:          s3.Object,
			UseSSL:          s3.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		return dataset.NewObjectStore(client, s3.Bucket, s3.Object, codec, logger), nil
	case config.BackendFile:
		return dataset.NewFileStore(cfg.Storage.Path, cfg.Storage.BackupDir, codec, logger), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func newPipeline(cfg *config.Config, repo dataset.Repository, m *metrics.Metrics, logger *zap.Logger) (*importer.Pipeline, error) {
	mapping, err := cfg.RowMapping()
	if err != nil {
		return nil, err
	}

	fetcher := sheets.NewFetcher(cfg.FetcherConfig(), logger).WithObserver(m)
	reconciler := importer.NewReconciler(repo, cfg.Sync.IgnoreOrder, logger)

	return importer.NewPipeline(fetcher, cfg.Sources(), mapping, reconciler, cfg.Sync.Timeout, logger).
		WithRecorder(m), nil
}
