package dataset

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// joinKey normalizes a human-entered name for comparison
func joinKey(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// MeetingsWithReps joins every meeting with the representatives assigned to it.
// Meetings keep dataset order; representatives follow assignment order.
// Assignments naming an unknown meeting or representative are ignored. When two
// representatives share a name the first one wins.
func MeetingsWithReps(d *Dataset) []MeetingWithReps {
	if d == nil {
		return []MeetingWithReps{}
	}

	reps := make(map[string]Representative, len(d.Representatives))
	for _, r := range d.Representatives {
		key := joinKey(r.Name)
		if _, ok := reps[key]; !ok {
			reps[key] = r
		}
	}

	byMeeting := make(map[string][]Representative)
	for _, a := range d.Assignments {
		rep, ok := reps[joinKey(a.RepresentativeName)]
		if !ok {
			continue
		}
		key := joinKey(a.MeetingName)
		byMeeting[key] = append(byMeeting[key], rep)
	}

	result := make([]MeetingWithReps, 0, len(d.Meetings))
	for _, m := range d.Meetings {
		assigned := byMeeting[joinKey(m.Name)]
		if assigned == nil {
			assigned = []Representative{}
		}
		result = append(result, MeetingWithReps{Meeting: m, AssignedReps: assigned})
	}
	return result
}
