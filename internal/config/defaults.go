package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/ntpusu/su-services/representatives/internal/sheets"
)

// Defaults of the production deployment
const (
	DefaultSpreadsheetID = "160GDmRWGq1_lM3w0gGgTPHdJG3hztyJog8rEIOFkaKs"
	DefaultArtifactPath  = "data/student-representatives.json"
	DefaultPort          = 8080
	DefaultJob           = "representatives_sync"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.service", "representatives")

	v.SetDefault("sheets.base_url", sheets.DefaultBaseURL)
	v.SetDefault("sheets.spreadsheet_id", DefaultSpreadsheetID)
	v.SetDefault("sheets.meetings.gid", "329615512")
	v.SetDefault("sheets.meetings.name", "01-會議基本資料")
	v.SetDefault("sheets.representatives.gid", "163829263")
	v.SetDefault("sheets.representatives.name", "02-學代基本資料")
	v.SetDefault("sheets.assignments.gid", "1123889444")
	v.SetDefault("sheets.assignments.name", "03-會議學代名單")
	v.SetDefault("sheets.mode", "keyed")
	v.SetDefault("sheets.max_redirects", sheets.DefaultMaxRedirects)
	v.SetDefault("sheets.timeout", 30*time.Second)
	v.SetDefault("sheets.retry_count", 3)
	v.SetDefault("sheets.retry_wait", 500*time.Millisecond)
	v.SetDefault("sheets.retry_max_wait", 5*time.Second)

	v.SetDefault("storage.backend", BackendFile)
	v.SetDefault("storage.path", DefaultArtifactPath)
	v.SetDefault("storage.format", "json")
	v.SetDefault("storage.backup_dir", "")
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("storage.s3.access_key_id", "")
	v.SetDefault("storage.s3.secret_access_key", "")
	v.SetDefault("storage.s3.bucket", "")
	v.SetDefault("storage.s3.object", "student-representatives.json")
	v.SetDefault("storage.s3.use_ssl", true)

	v.SetDefault("sync.timeout", 2*time.Minute)
	v.SetDefault("sync.ignore_order", false)

	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.auth_file", "")
	v.SetDefault("server.watch", true)

	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("metrics.job", DefaultJob)
}
