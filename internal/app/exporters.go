package app

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/xuri/excelize/v2"

	"github.com/ntpusu/su-services/representatives/internal/dataset"
)

// Export formats
const (
	ExportCSV  = "csv"
	ExportJSON = "json"
	ExportXLSX = "xlsx"
)

const (
	rosterSheetName = "學代名單"
	rosterFileBase  = "student-representatives"
)

// RosterHeader is the column layout of every roster export
var RosterHeader = []string{
	"會議名稱", "承辦單位", "本會法定可推派總額", "席次分配", "分組", "姓名", "職稱", "系級",
}

// RosterRow is one meeting/representative pair. Meetings without an assigned
// representative produce a single row with empty representative columns.
type RosterRow struct {
	Meeting      string `json:"meeting"`
	Department   string `json:"department"`
	TotalSeats   string `json:"totalSeats"`
	Distribution string `json:"seatDistribution"`
	Group        string `json:"group"`
	Name         string `json:"name"`
	Title        string `json:"title"`
	RepDept      string `json:"representativeDepartment"`
}

func (r RosterRow) cells() []string {
	return []string{r.Meeting, r.Department, r.TotalSeats, r.Distribution, r.Group, r.Name, r.Title, r.RepDept}
}

// Roster flattens the meeting/representative join of d
func Roster(d *dataset.Dataset) []RosterRow {
	rows := []RosterRow{}
	for _, m := range dataset.MeetingsWithReps(d) {
		base := RosterRow{
			Meeting:      m.Name,
			Department:   m.Department,
			TotalSeats:   m.TotalSeats,
			Distribution: m.SeatDistribution,
		}
		if len(m.AssignedReps) == 0 {
			rows = append(rows, base)
			continue
		}
		for _, rep := range m.AssignedReps {
			row := base
			row.Group = rep.Group
			row.Name = rep.Name
			row.Title = rep.Title
			row.RepDept = rep.Department
			rows = append(rows, row)
		}
	}
	return rows
}

// Export is a rendered download
type Export struct {
	ContentType string
	FileName    string
	Body        []byte
}

// RenderRoster renders the roster of d in the given format
func RenderRoster(d *dataset.Dataset, format string) (*Export, error) {
	rows := Roster(d)

	var (
		body        []byte
		contentType string
		err         error
	)
	switch format {
	case ExportCSV:
		body, err = rosterCSV(rows)
		contentType = "text/csv; charset=utf-8"
	case ExportJSON:
		body, err = json.MarshalIndent(map[string]any{
			"lastUpdated": d.LastUpdated,
			"rows":        rows,
		}, "", "  ")
		contentType = "application/json; charset=utf-8"
	case ExportXLSX:
		body, err = rosterXLSX(rows)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return nil, err
	}

	return &Export{
		ContentType: contentType,
		FileName:    rosterFileBase + "." + format,
		Body:        body,
	}, nil
}

func rosterCSV(rows []RosterRow) ([]byte, error) {
	var buf bytes.Buffer
	// Excel only detects UTF-8 with a BOM
	buf.WriteString("\ufeff")

	w := csv.NewWriter(&buf)
	if err := w.Write(RosterHeader); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := w.Write(r.cells()); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.Bytes(), nil
}

func rosterXLSX(rows []RosterRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", rosterSheetName); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(rosterSheetName, "A1", &RosterHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(RosterHeader))
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(rosterSheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		cells := r.cells()
		if err := f.SetSheetRow(rosterSheetName, cell, &cells); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(rosterSheetName, "A", "A", 36); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(rosterSheetName, "B", lastCol, 16); err != nil {
		return nil, err
	}
	if err := f.SetPanes(rosterSheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
