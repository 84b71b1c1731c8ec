package app

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ntpusu/su-services/representatives/internal/dataset"
)

func TestRoster(t *testing.T) {
	rows := Roster(sampleDataset())
	require.Len(t, rows, 4)

	assert.Equal(t, RosterRow{
		Meeting: "校務會議", Department: "秘書室", TotalSeats: "4", Distribution: "學士班3名、碩博班1名",
		Group: "碩博班代表", Name: "周瑜芳", Title: "X1", RepDept: "社學碩4",
	}, rows[0])
	assert.Equal(t, "林欣毅", rows[1].Name)
	assert.Equal(t, "周俊良", rows[2].Name)

	// Meeting without representatives still gets a row
	assert.Equal(t, RosterRow{Meeting: "膳食委員會", Department: "總務處"}, rows[3])
}

func TestRosterEmpty(t *testing.T) {
	assert.Empty(t, Roster(dataset.Empty("")))
	assert.NotNil(t, Roster(nil))
}

func TestRenderRosterCSV(t *testing.T) {
	export, err := RenderRoster(sampleDataset(), ExportCSV)
	require.NoError(t, err)

	assert.Equal(t, "student-representatives.csv", export.FileName)
	assert.True(t, strings.HasPrefix(export.ContentType, "text/csv"))
	require.True(t, bytes.HasPrefix(export.Body, []byte("\xef\xbb\xbf")))

	records, err := csv.NewReader(bytes.NewReader(export.Body[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, RosterHeader, records[0])
	assert.Equal(t, []string{"學生申訴評議委員會", "學務處", "1", "學生法官1名", "學生法官", "周俊良", "學生法官", "公法碩1"}, records[3])
}

func TestRenderRosterJSON(t *testing.T) {
	export, err := RenderRoster(sampleDataset(), ExportJSON)
	require.NoError(t, err)

	var got struct {
		LastUpdated string      `json:"lastUpdated"`
		Rows        []RosterRow `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(export.Body, &got))
	assert.Equal(t, "2025-11-21T08:30:00.000Z", got.LastUpdated)
	assert.Equal(t, Roster(sampleDataset()), got.Rows)
}

func TestRenderRosterXLSX(t *testing.T) {
	export, err := RenderRoster(sampleDataset(), ExportXLSX)
	require.NoError(t, err)
	assert.Equal(t, "student-representatives.xlsx", export.FileName)

	f, err := excelize.OpenReader(bytes.NewReader(export.Body))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(rosterSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, RosterHeader, rows[0])
	assert.Equal(t, "周瑜芳", rows[1][5])
	assert.Equal(t, "膳食委員會", rows[4][0])
	assert.Equal(t, "總務處", rows[4][1])
}

func TestRenderRosterUnsupportedFormat(t *testing.T) {
	_, err := RenderRoster(sampleDataset(), "ics")
	assert.Error(t, err)
}
