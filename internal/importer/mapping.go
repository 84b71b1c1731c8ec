package importer

import (
	"fmt"

	"github.com/ntpusu/su-services/representatives/internal/sheets"
)

// Mapping modes
const (
	ModeKeyed      = "keyed"
	ModePositional = "positional"
)

// Record field names shared by both mapping modes
const (
	FieldID                 = "id"
	FieldName               = "name"
	FieldLink               = "link"
	FieldDepartment         = "department"
	FieldDepartmentLink     = "departmentLink"
	FieldTotalSeats         = "totalSeats"
	FieldRegulationArticle  = "regulationArticle"
	FieldSeatDistribution   = "seatDistribution"
	FieldSanxiaRegulation   = "sanxiaRegulation"
	FieldSanxiaMethod       = "sanxiaMethod"
	FieldTaipeiRegulation   = "taipeiRegulation"
	FieldTaipeiMethod       = "taipeiMethod"
	FieldOtherMethod        = "otherMethod"
	FieldNote               = "note"
	FieldGroup              = "group"
	FieldTitle              = "title"
	FieldMeetingName        = "meetingName"
	FieldRepresentativeName = "representativeName"
)

// MeetingFields lists the meeting fields in spreadsheet column order
var MeetingFields = []string{
	FieldID, FieldName, FieldLink, FieldDepartment, FieldDepartmentLink, FieldTotalSeats,
	FieldRegulationArticle, FieldSeatDistribution, FieldSanxiaRegulation, FieldSanxiaMethod,
	FieldTaipeiRegulation, FieldTaipeiMethod, FieldOtherMethod, FieldNote,
}

// RepresentativeFields lists the representative fields in spreadsheet column order
var RepresentativeFields = []string{
	FieldGroup, FieldID, FieldName, FieldTitle, FieldDepartment, FieldNote,
}

// AssignmentFields lists the assignment fields in spreadsheet column order
var AssignmentFields = []string{
	FieldID, FieldMeetingName, FieldRepresentativeName,
}

// Row returns the raw cell value of a field, or "" when the cell is absent
type Row func(field string) string

// RowMapping turns the rows of a sheet into field accessors. Fields listed in
// required are join keys; a mapping that cannot locate them fails instead of
// producing empty values.
type RowMapping interface {
	Rows(sheet *sheets.Sheet, required ...string) ([]Row, error)
}

// MissingColumnError is returned when a required column is absent from a sheet
type MissingColumnError struct {
	Sheet  string
	Field  string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("sheet %s: column %q for field %s not found", e.Sheet, e.Column, e.Field)
}

// Positional reads fields by zero-based column index. The header row is ignored.
type Positional struct {
	Columns map[string]int
}

func (p Positional) Rows(sheet *sheets.Sheet, required ...string) ([]Row, error) {
	for _, field := range required {
		if _, ok := p.Columns[field]; !ok {
			return nil, &MissingColumnError{Sheet: sheet.Ref.Key, Field: field, Column: "<unmapped>"}
		}
	}

	rows := make([]Row, 0, len(sheet.Rows))
	for _, cells := range sheet.Rows {
		cells := cells
		rows = append(rows, func(field string) string {
			idx, ok := p.Columns[field]
			if !ok || idx < 0 || idx >= len(cells) {
				return ""
			}
			return cells[idx]
		})
	}
	return rows, nil
}

// Keyed reads fields by header name
type Keyed struct {
	Headers map[string]string
}

func (k Keyed) Rows(sheet *sheets.Sheet, required ...string) ([]Row, error) {
	present := make(map[string]bool, len(sheet.Header))
	for _, h := range sheet.Header {
		present[h] = true
	}
	for _, field := range required {
		header, ok := k.Headers[field]
		if !ok || !present[header] {
			return nil, &MissingColumnError{Sheet: sheet.Ref.Key, Field: field, Column: header}
		}
	}

	records := sheet.Records()
	rows := make([]Row, 0, len(records))
	for _, record := range records {
		record := record
		rows = append(rows, func(field string) string {
			header, ok := k.Headers[field]
			if !ok {
				return ""
			}
			return record[header]
		})
	}
	return rows, nil
}

// Mapping holds the row mapping of each sheet
type Mapping struct {
	Meetings        RowMapping
	Representatives RowMapping
	Assignments     RowMapping
}

// SheetLayout describes the columns of one sheet for both modes
type SheetLayout struct {
	Columns map[string]int
	Headers map[string]string
}

// NewMapping resolves the mapping mode once for all three sheets
func NewMapping(mode string, meetings, representatives, assignments SheetLayout) (Mapping, error) {
	build := func(l SheetLayout) RowMapping {
		if mode == ModePositional {
			return Positional{Columns: l.Columns}
		}
		return Keyed{Headers: l.Headers}
	}

	switch mode {
	case ModeKeyed, ModePositional:
		return Mapping{
			Meetings:        build(meetings),
			Representatives: build(representatives),
			Assignments:     build(assignments),
		}, nil
	default:
		return Mapping{}, fmt.Errorf("unknown mapping mode %q", mode)
	}
}

// DefaultMeetingLayout matches the 01-會議基本資料 sheet
func DefaultMeetingLayout() SheetLayout {
	return layout(MeetingFields, []string{
		"流水編號", "會議名稱", "會議資料連結", "承辦單位", "承辦單位連結", "本會法定可推派總額",
		"本會推派辦法款次", "席次分配", "三峽規則款次", "三峽推派方式", "臺北規則款次",
		"臺北推派方式", "其他推派方式", "備註",
	})
}

// DefaultRepresentativeLayout matches the 02-學代基本資料 sheet
func DefaultRepresentativeLayout() SheetLayout {
	return layout(RepresentativeFields, []string{
		"分組", "流水編號", "姓名", "職稱", "系級", "備註",
	})
}

// DefaultAssignmentLayout matches the 03-會議學代名單 sheet
func DefaultAssignmentLayout() SheetLayout {
	return layout(AssignmentFields, []string{
		"流水編號", "會議名稱", "學代姓名",
	})
}

func layout(fields, headers []string) SheetLayout {
	l := SheetLayout{
		Columns: make(map[string]int, len(fields)),
		Headers: make(map[string]string, len(fields)),
	}
	for i, f := range fields {
		l.Columns[f] = i
		l.Headers[f] = headers[i]
	}
	return l
}
