package dataset

func sampleDataset() *Dataset {
	return &Dataset{
		Meetings: []Meeting{
			{ID: "1", Name: "校務會議", Link: "https://fms.ntpu.edu.tw/km/24761", Department: "秘書室",
				Note: "校務會議工作報告及檢討會議，資料請見 https://fms.ntpu.edu.tw/km/24762 。"},
			{ID: "2", Name: "學生申訴評議委員會", Link: "non-public", Department: "學務處", TotalSeats: "1",
				RegulationArticle: "第3條第1項第15款", SeatDistribution: "學生法官1名",
				Note: "1. 全體學生法官依共識決推派。\n2. 另有各學院推派學生代表共7名。"},
		},
		Representatives: []Representative{
			{Group: "碩博班代表", ID: "1", Name: "周瑜芳", Title: "X1", Department: "社學碩4"},
			{Group: "碩博班代表", ID: "2", Name: "林欣毅", Title: "X1"},
			{Group: "學生法官", ID: "3", Name: "周俊良", Title: "學生法官", Department: "公法碩1"},
		},
		Assignments: []Assignment{
			{ID: "1", MeetingName: "校務會議", RepresentativeName: "周瑜芳"},
			{ID: "2", MeetingName: "校務會議", RepresentativeName: "林欣毅"},
			{ID: "3", MeetingName: "學生申訴評議委員會", RepresentativeName: "周俊良"},
		},
		LastUpdated: "2025-11-21T08:30:00.000Z",
	}
}
