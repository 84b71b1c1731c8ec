package app

import (
	"context"
	"sync"

	"github.com/ntpusu/su-services/representatives/internal/dataset"
	"github.com/ntpusu/su-services/representatives/internal/importer"
)

func sampleDataset() *dataset.Dataset {
	return &dataset.Dataset{
		Meetings: []dataset.Meeting{
			{ID: "1", Name: "校務會議", Department: "秘書室", TotalSeats: "4", SeatDistribution: "學士班3名、碩博班1名"},
			{ID: "2", Name: "學生申訴評議委員會", Department: "學務處", TotalSeats: "1", SeatDistribution: "學生法官1名"},
			{ID: "3", Name: "膳食委員會", Department: "總務處"},
		},
		Representatives: []dataset.Representative{
			{Group: "碩博班代表", ID: "1", Name: "周瑜芳", Title: "X1", Department: "社學碩4"},
			{Group: "碩博班代表", ID: "2", Name: "林欣毅", Title: "X1"},
			{Group: "學生法官", ID: "3", Name: "周俊良", Title: "學生法官", Department: "公法碩1"},
		},
		Assignments: []dataset.Assignment{
			{ID: "1", MeetingName: "校務會議", RepresentativeName: "周瑜芳"},
			{ID: "2", MeetingName: "校務會議", RepresentativeName: "林欣毅"},
			{ID: "3", MeetingName: "學生申訴評議委員會", RepresentativeName: "周俊良"},
		},
		LastUpdated: "2025-11-21T08:30:00.000Z",
	}
}

// memRepo is an in-memory dataset.Repository
type memRepo struct {
	mu      sync.Mutex
	data    *dataset.Dataset
	loadErr error
}

func (r *memRepo) Load(context.Context) (*dataset.Dataset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	if r.data == nil {
		return nil, dataset.ErrNotFound
	}
	return r.data, nil
}

func (r *memRepo) Save(_ context.Context, d *dataset.Dataset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = d
	return nil
}

// fakeSyncer stores next into repo and reports outcome
type fakeSyncer struct {
	repo    *memRepo
	next    *dataset.Dataset
	outcome importer.Outcome
	err     error
	calls   int
	block   chan struct{}
}

func (f *fakeSyncer) Run(ctx context.Context) (*importer.Result, error) {
	f.calls++
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.outcome != importer.OutcomeUnchanged {
		_ = f.repo.Save(ctx, f.next)
	}
	return &importer.Result{
		RunID:   "run-1",
		Outcome: f.outcome,
		Dataset: f.next,
		Dropped: importer.Dropped{Representatives: 1},
	}, nil
}
