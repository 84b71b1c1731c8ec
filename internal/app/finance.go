package app

// Resource types of a financial statement
const (
	ResourceLink = "link"
	ResourcePDF  = "pdf"
)

// FinancialStatement is one published budget or final account of the union
type FinancialStatement struct {
	ID            int    `json:"id"`
	Entity        string `json:"entity"`   // 三峽校區, 臺北校區, 總會, 學生法院
	Year          int    `json:"year"`     // academic year, e.g. 114
	Semester      int    `json:"semester"` // 1 or 2
	Type          string `json:"type"`
	Title         string `json:"title,omitempty"`
	ResourceType  string `json:"resourceType"`
	URL           string `json:"url,omitempty"`
	FileName      string `json:"fileName,omitempty"`
	PublicateDate string `json:"publicateDate,omitempty"`
}

// FinancialStatements returns the hand-maintained list, newest first
func FinancialStatements() []FinancialStatement {
	return []FinancialStatement{
		{
			ID:            5,
			Entity:        "臺北校區",
			Year:          114,
			Semester:      1,
			Type:          "法定追加預算",
			Title:         "臺北校區學生會114學年度第一期間追加預算（一追）",
			ResourceType:  ResourceLink,
			URL:           "https://ntpusu.org/?p=2370",
			PublicateDate: "2025-11-21",
		},
		{
			ID:           4,
			Entity:       "臺北校區",
			Year:         114,
			Semester:     1,
			Type:         "法定預算",
			Title:        "臺北校區學生會114學年度第一期間預算",
			ResourceType: ResourceLink,
			URL:          "https://ntpusu.org/?p=2469",
		},
		{
			ID:           3,
			Entity:       "三峽校區",
			Year:         114,
			Semester:     1,
			Type:         "法定追加預算",
			Title:        "三峽校區學生會114學年度第一期間追加預算",
			ResourceType: ResourceLink,
			URL:          "https://ntpusu.org/?p=2329",
		},
		{
			ID:           2,
			Entity:       "三峽校區",
			Year:         114,
			Semester:     1,
			Type:         "法定預算",
			Title:        "三峽校區114學年度第1期間法定預算",
			ResourceType: ResourceLink,
			URL:          "https://ntpusu.org/?p=2150",
		},
		{
			ID:           1,
			Entity:       "三峽校區",
			Year:         114,
			Semester:     1,
			Type:         "法定特別預算",
			Title:        "三峽校區114學年度第一期間暑期法定預算",
			ResourceType: ResourceLink,
			URL:          "https://ntpusu.org/?p=2113",
		},
		{
			ID:           202,
			Entity:       "三峽校區",
			Year:         113,
			Semester:     2,
			Type:         "法定決算",
			ResourceType: ResourceLink,
			URL:          "https://ntpusu.org/?p=1968",
		},
		{
			ID:           2492,
			Entity:       "學生法院",
			Year:         113,
			Semester:     2,
			Type:         "法定決算",
			ResourceType: ResourceLink,
			URL:          "https://ntpusu.org/?p=2492",
		},
		{
			ID:           301,
			Entity:       "總會",
			Year:         113,
			Semester:     1,
			Type:         "法定預算",
			ResourceType: ResourceLink,
			URL:          "https://ntpusu.org/?p=1369",
		},
		{
			ID:           401,
			Entity:       "總會",
			Year:         112,
			Semester:     2,
			Type:         "法定決算",
			ResourceType: ResourceLink,
			URL:          "https://drive.google.com/file/d/1YbsVfWJpGbsJl0HkYS_J_C8dZWbqxo9B/view?usp=drive_link",
		},
	}
}
