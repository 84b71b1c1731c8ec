package dataset

// Meeting represents a committee the student government sends representatives to.
// Name is the join key used by assignments.
type Meeting struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Link              string `json:"link"`
	Department        string `json:"department"`
	DepartmentLink    string `json:"departmentLink"`
	TotalSeats        string `json:"totalSeats"`
	RegulationArticle string `json:"regulationArticle"`
	SeatDistribution  string `json:"seatDistribution"`
	SanxiaRegulation  string `json:"sanxiaRegulation"`
	SanxiaMethod      string `json:"sanxiaMethod"`
	TaipeiRegulation  string `json:"taipeiRegulation"`
	TaipeiMethod      string `json:"taipeiMethod"`
	OtherMethod       string `json:"otherMethod"`
	Note              string `json:"note"`
}

// Representative represents a person holding a representative seat
type Representative struct {
	Group      string `json:"group"`
	ID         string `json:"id"`
	Name       string `json:"name"`
	Title      string `json:"title"`
	Department string `json:"department"`
	Note       string `json:"note"`
}

// Assignment links a representative to a meeting by name
type Assignment struct {
	ID                 string `json:"id"`
	MeetingName        string `json:"meetingName"`
	RepresentativeName string `json:"representativeName"`
}

// Dataset is the complete persisted data structure
type Dataset struct {
	Meetings        []Meeting        `json:"meetings"`
	Representatives []Representative `json:"representatives"`
	Assignments     []Assignment     `json:"assignments"`
	LastUpdated     string           `json:"lastUpdated"`
}

// MeetingWithReps is a meeting joined with the representatives assigned to it.
// It is computed on read and never persisted.
type MeetingWithReps struct {
	Meeting
	AssignedReps []Representative `json:"assignedReps"`
}

// Empty returns a well-formed dataset with no records.
func Empty(lastUpdated string) *Dataset {
	return &Dataset{
		Meetings:        []Meeting{},
		Representatives: []Representative{},
		Assignments:     []Assignment{},
		LastUpdated:     lastUpdated,
	}
}

// Counts returns the number of meetings, representatives and assignments.
func (d *Dataset) Counts() (meetings, representatives, assignments int) {
	return len(d.Meetings), len(d.Representatives), len(d.Assignments)
}

// Normalize replaces nil collections with empty ones so that the dataset always
// encodes as arrays rather than null.
func (d *Dataset) Normalize() {
	if d.Meetings == nil {
		d.Meetings = []Meeting{}
	}
	if d.Representatives == nil {
		d.Representatives = []Representative{}
	}
	if d.Assignments == nil {
		d.Assignments = []Assignment{}
	}
}
