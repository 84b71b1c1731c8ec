// Package config loads and validates the runtime configuration of the sync
// pipeline and the HTTP server.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"

	"github.com/ntpusu/su-services/representatives/internal/importer"
)

// Storage backends
const (
	BackendFile = "file"
	BackendS3   = "s3"
)

// Config is the root configuration
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Sheets  SheetsConfig  `mapstructure:"sheets"`
	Mapping MappingConfig `mapstructure:"mapping"`
	Storage StorageConfig `mapstructure:"storage"`
	Sync    SyncConfig    `mapstructure:"sync"`
	Server  ServerConfig  `mapstructure:"server"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type LogConfig struct {
	Level   string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format  string `mapstructure:"format" validate:"oneof=json console"`
	Service string `mapstructure:"service"`
}

// SheetRef identifies one tab of the source spreadsheet
type SheetRef struct {
	GID  string `mapstructure:"gid" validate:"required,numeric"`
	Name string `mapstructure:"name"`
}

type SheetsConfig struct {
	BaseURL         string        `mapstructure:"base_url" validate:"required,url"`
	SpreadsheetID   string        `mapstructure:"spreadsheet_id" validate:"required"`
	Meetings        SheetRef      `mapstructure:"meetings"`
	Representatives SheetRef      `mapstructure:"representatives"`
	Assignments     SheetRef      `mapstructure:"assignments"`
	Mode            string        `mapstructure:"mode" validate:"oneof=keyed positional"`
	MaxRedirects    int           `mapstructure:"max_redirects" validate:"min=1,max=50"`
	Timeout         time.Duration `mapstructure:"timeout" validate:"min=0"`
	RetryCount      int           `mapstructure:"retry_count" validate:"min=0,max=10"`
	RetryWait       time.Duration `mapstructure:"retry_wait" validate:"min=0"`
	RetryMaxWait    time.Duration `mapstructure:"retry_max_wait" validate:"min=0"`
}

// ColumnConfig overrides the column layout of one sheet. Columns are used in
// positional mode, Headers in keyed mode. Field names are matched without
// regard to case.
type ColumnConfig struct {
	Columns map[string]int    `mapstructure:"columns"`
	Headers map[string]string `mapstructure:"headers"`
}

type MappingConfig struct {
	Meetings        ColumnConfig `mapstructure:"meetings"`
	Representatives ColumnConfig `mapstructure:"representatives"`
	Assignments     ColumnConfig `mapstructure:"assignments"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Bucket          string `mapstructure:"bucket"`
	Object          string `mapstructure:"object"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

type StorageConfig struct {
	Backend   string   `mapstructure:"backend" validate:"oneof=file s3"`
	Path      string   `mapstructure:"path"`
	Format    string   `mapstructure:"format" validate:"oneof=json handler"`
	BackupDir string   `mapstructure:"backup_dir"`
	S3        S3Config `mapstructure:"s3"`
}

type SyncConfig struct {
	Timeout     time.Duration `mapstructure:"timeout" validate:"min=0"`
	IgnoreOrder bool          `mapstructure:"ignore_order"`
}

type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"min=1,max=65535"`
	AuthFile string `mapstructure:"auth_file"`
	Watch    bool   `mapstructure:"watch"`
}

type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url" validate:"omitempty,url"`
	Job            string `mapstructure:"job"`
}

var validate = validator.New()

// Validate checks struct tags and the rules that span several fields. All
// problems are reported together.
func (c *Config) Validate() error {
	var result *multierror.Error

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				result = multierror.Append(result, fmt.Errorf("%s: failed %q (value %v)", fieldPath(fe), fe.Tag(), fe.Value()))
			}
		} else {
			result = multierror.Append(result, err)
		}
	}

	switch c.Storage.Backend {
	case BackendFile:
		if c.Storage.Path == "" {
			result = multierror.Append(result, errors.New("storage.path is required for the file backend"))
		}
	case BackendS3:
		s3 := c.Storage.S3
		for name, v := range map[string]string{
			"storage.s3.endpoint": s3.Endpoint,
			"storage.s3.bucket":   s3.Bucket,
			"storage.s3.object":   s3.Object,
		} {
			if v == "" {
				result = multierror.Append(result, fmt.Errorf("%s is required for the s3 backend", name))
			}
		}
	}

	gids := map[string]string{}
	for name, ref := range map[string]SheetRef{
		"meetings":        c.Sheets.Meetings,
		"representatives": c.Sheets.Representatives,
		"assignments":     c.Sheets.Assignments,
	} {
		if ref.GID == "" {
			continue
		}
		if other, ok := gids[ref.GID]; ok {
			result = multierror.Append(result, fmt.Errorf("sheets.%s and sheets.%s share gid %s", other, name, ref.GID))
		}
		gids[ref.GID] = name
	}

	for name, cols := range map[string]struct {
		cfg    ColumnConfig
		fields []string
	}{
		"meetings":        {c.Mapping.Meetings, importer.MeetingFields},
		"representatives": {c.Mapping.Representatives, importer.RepresentativeFields},
		"assignments":     {c.Mapping.Assignments, importer.AssignmentFields},
	} {
		for key := range cols.cfg.Columns {
			if canonicalField(cols.fields, key) == "" {
				result = multierror.Append(result, fmt.Errorf("mapping.%s.columns: unknown field %q", name, key))
			}
		}
		for key := range cols.cfg.Headers {
			if canonicalField(cols.fields, key) == "" {
				result = multierror.Append(result, fmt.Errorf("mapping.%s.headers: unknown field %q", name, key))
			}
		}
	}

	return result.ErrorOrNil()
}

// fieldPath turns Config.Sheets.MaxRedirects into sheets.maxredirects
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	return strings.ToLower(ns)
}

func canonicalField(fields []string, key string) string {
	for _, f := range fields {
		if strings.EqualFold(f, key) {
			return f
		}
	}
	return ""
}
