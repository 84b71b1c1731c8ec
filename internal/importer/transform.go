package importer

import (
	"github.com/ntpusu/su-services/representatives/internal/dataset"
	"github.com/ntpusu/su-services/representatives/internal/sheets"
)

// Dropped counts rows discarded because a join key was empty
type Dropped struct {
	Meetings        int
	Representatives int
	Assignments     int
}

// Total returns the number of dropped rows across all sheets
func (d Dropped) Total() int {
	return d.Meetings + d.Representatives + d.Assignments
}

// Transform maps the three raw sheets into a dataset candidate. Records keep
// sheet order. The returned dataset has no LastUpdated value.
func Transform(m Mapping, meetings, representatives, assignments *sheets.Sheet) (*dataset.Dataset, Dropped, error) {
	var dropped Dropped
	d := dataset.Empty("")

	rows, err := m.Meetings.Rows(meetings, FieldName)
	if err != nil {
		return nil, dropped, err
	}
	for _, row := range rows {
		meeting := dataset.Meeting{
			ID:                row(FieldID),
			Name:              row(FieldName),
			Link:              row(FieldLink),
			Department:        row(FieldDepartment),
			DepartmentLink:    row(FieldDepartmentLink),
			TotalSeats:        row(FieldTotalSeats),
			RegulationArticle: row(FieldRegulationArticle),
			SeatDistribution:  row(FieldSeatDistribution),
			SanxiaRegulation:  row(FieldSanxiaRegulation),
			SanxiaMethod:      row(FieldSanxiaMethod),
			TaipeiRegulation:  row(FieldTaipeiRegulation),
			TaipeiMethod:      row(FieldTaipeiMethod),
			OtherMethod:       row(FieldOtherMethod),
			Note:              row(FieldNote),
		}
		if meeting.Name == "" {
			dropped.Meetings++
			continue
		}
		d.Meetings = append(d.Meetings, meeting)
	}

	rows, err = m.Representatives.Rows(representatives, FieldName)
	if err != nil {
		return nil, dropped, err
	}
	for _, row := range rows {
		rep := dataset.Representative{
			Group:      row(FieldGroup),
			ID:         row(FieldID),
			Name:       row(FieldName),
			Title:      row(FieldTitle),
			Department: row(FieldDepartment),
			Note:       row(FieldNote),
		}
		if rep.Name == "" {
			dropped.Representatives++
			continue
		}
		d.Representatives = append(d.Representatives, rep)
	}

	rows, err = m.Assignments.Rows(assignments, FieldMeetingName, FieldRepresentativeName)
	if err != nil {
		return nil, dropped, err
	}
	for _, row := range rows {
		a := dataset.Assignment{
			ID:                 row(FieldID),
			MeetingName:        row(FieldMeetingName),
			RepresentativeName: row(FieldRepresentativeName),
		}
		if a.MeetingName == "" || a.RepresentativeName == "" {
			dropped.Assignments++
			continue
		}
		d.Assignments = append(d.Assignments, a)
	}

	return d, dropped, nil
}
