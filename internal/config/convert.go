package config

import (
	"github.com/ntpusu/su-services/representatives/internal/importer"
	"github.com/ntpusu/su-services/representatives/internal/sheets"
)

// FetcherConfig returns the download settings for sheets.NewFetcher
func (c *Config) FetcherConfig() sheets.Config {
	return sheets.Config{
		BaseURL:       c.Sheets.BaseURL,
		SpreadsheetID: c.Sheets.SpreadsheetID,
		MaxRedirects:  c.Sheets.MaxRedirects,
		Timeout:       c.Sheets.Timeout,
		RetryCount:    c.Sheets.RetryCount,
		RetryWait:     c.Sheets.RetryWait,
		RetryMaxWait:  c.Sheets.RetryMaxWait,
	}
}

// Sources returns the three sheet references
func (c *Config) Sources() importer.Sources {
	ref := func(key string, r SheetRef) sheets.Ref {
		return sheets.Ref{Key: key, GID: r.GID, Name: r.Name}
	}
	return importer.Sources{
		Meetings:        ref("meetings", c.Sheets.Meetings),
		Representatives: ref("representatives", c.Sheets.Representatives),
		Assignments:     ref("assignments", c.Sheets.Assignments),
	}
}

// RowMapping resolves the configured mode over the default layouts, with the
// overrides of the mapping section applied.
func (c *Config) RowMapping() (importer.Mapping, error) {
	return importer.NewMapping(c.Sheets.Mode,
		overlay(importer.DefaultMeetingLayout(), importer.MeetingFields, c.Mapping.Meetings),
		overlay(importer.DefaultRepresentativeLayout(), importer.RepresentativeFields, c.Mapping.Representatives),
		overlay(importer.DefaultAssignmentLayout(), importer.AssignmentFields, c.Mapping.Assignments),
	)
}

func overlay(layout importer.SheetLayout, fields []string, cfg ColumnConfig) importer.SheetLayout {
	for key, idx := range cfg.Columns {
		if f := canonicalField(fields, key); f != "" {
			layout.Columns[f] = idx
		}
	}
	for key, header := range cfg.Headers {
		if f := canonicalField(fields, key); f != "" {
			layout.Headers[f] = header
		}
	}
	return layout
}
