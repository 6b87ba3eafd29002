package services

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/hanvote/regionvote/internal/core/domain"
	"github.com/hanvote/regionvote/internal/core/ports"
)

type fakeGazetteer struct {
	entries []domain.Municipality
}

func (f *fakeGazetteer) Municipalities() []domain.Municipality {
	return f.entries
}

func muni(code, name string) domain.Municipality {
	return domain.Municipality{Code: code, Name: name, NormalizedName: NormalizeRegionName(name)}
}

type fakeSchoolRepo struct {
	byKey             map[string]*domain.School
	byID              map[uuid.UUID]*domain.School
	regionUpdates     int
	parentUpdates     int
	insertedSchoolIDs []uuid.UUID
}

func newFakeSchoolRepo() *fakeSchoolRepo {
	return &fakeSchoolRepo{
		byKey: make(map[string]*domain.School),
		byID:  make(map[uuid.UUID]*domain.School),
	}
}

func schoolKey(source domain.SchoolSource, externalCode string) string {
	return string(source) + ":" + externalCode
}

func (f *fakeSchoolRepo) FindBySourceCode(_ context.Context, source domain.SchoolSource, externalCode string) (*domain.School, error) {
	school, ok := f.byKey[schoolKey(source, externalCode)]
	if !ok {
		return nil, domain.ErrSchoolNotFound
	}
	copied := *school
	return &copied, nil
}

func (f *fakeSchoolRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.School, error) {
	school, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrSchoolNotFound
	}
	copied := *school
	return &copied, nil
}

func (f *fakeSchoolRepo) Insert(_ context.Context, school *domain.School) error {
	copied := *school
	f.byKey[schoolKey(school.Source, school.ExternalCode)] = &copied
	f.byID[school.ID] = &copied
	f.insertedSchoolIDs = append(f.insertedSchoolIDs, school.ID)
	return nil
}

func (f *fakeSchoolRepo) UpdateRegion(_ context.Context, id uuid.UUID, provinceCode, municipalityCode string) error {
	f.regionUpdates++
	if school, ok := f.byID[id]; ok {
		school.ProvinceCode = provinceCode
		school.MunicipalityCode = municipalityCode
	}
	return nil
}

func (f *fakeSchoolRepo) UpdateParent(_ context.Context, id uuid.UUID, parentID uuid.UUID) error {
	f.parentUpdates++
	if school, ok := f.byID[id]; ok {
		school.ParentID = &parentID
	}
	return nil
}

func (f *fakeSchoolRepo) ListAll(_ context.Context) ([]*domain.School, error) {
	schools := make([]*domain.School, 0, len(f.byID))
	for _, school := range f.byID {
		copied := *school
		schools = append(schools, &copied)
	}
	sort.Slice(schools, func(i, j int) bool {
		return schools[i].ID.String() < schools[j].ID.String()
	})
	return schools, nil
}

func (f *fakeSchoolRepo) SearchByName(_ context.Context, query string, _ int) ([]*domain.School, error) {
	var schools []*domain.School
	for _, school := range f.byID {
		copied := *school
		schools = append(schools, &copied)
	}
	return schools, nil
}

type fakeDirectory struct {
	results []ports.DirectorySchool
	err     error
}

func (f *fakeDirectory) Search(context.Context, string) ([]ports.DirectorySchool, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

type fakeTopicRepo struct {
	topics map[uuid.UUID]*domain.Topic
}

func newFakeTopicRepo(topics ...*domain.Topic) *fakeTopicRepo {
	repo := &fakeTopicRepo{topics: make(map[uuid.UUID]*domain.Topic)}
	for _, topic := range topics {
		repo.topics[topic.ID] = topic
	}
	return repo
}

func (f *fakeTopicRepo) Save(_ context.Context, topic *domain.Topic) error {
	f.topics[topic.ID] = topic
	return nil
}

func (f *fakeTopicRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Topic, error) {
	topic, ok := f.topics[id]
	if !ok {
		return nil, domain.ErrTopicNotFound
	}
	return topic, nil
}

func (f *fakeTopicRepo) ListAll(_ context.Context) ([]*domain.Topic, error) {
	var topics []*domain.Topic
	for _, topic := range f.topics {
		topics = append(topics, topic)
	}
	return topics, nil
}

func (f *fakeTopicRepo) ListByStatus(_ context.Context, status string) ([]*domain.Topic, error) {
	var topics []*domain.Topic
	for _, topic := range f.topics {
		if topic.Status == status {
			topics = append(topics, topic)
		}
	}
	return topics, nil
}

type fakeVoteRepo struct {
	votes         []*domain.Vote
	schoolRegions map[uuid.UUID][2]string
}

func newFakeVoteRepo() *fakeVoteRepo {
	return &fakeVoteRepo{schoolRegions: make(map[uuid.UUID][2]string)}
}

func (f *fakeVoteRepo) Insert(_ context.Context, vote *domain.Vote) error {
	for _, existing := range f.votes {
		if existing.TopicID != vote.TopicID {
			continue
		}
		if vote.UserID != nil && existing.UserID != nil && *existing.UserID == *vote.UserID {
			return domain.ErrDuplicateVote
		}
		if vote.GuestToken != "" && existing.GuestToken == vote.GuestToken {
			return domain.ErrDuplicateVote
		}
	}
	copied := *vote
	f.votes = append(f.votes, &copied)
	return nil
}

func (f *fakeVoteRepo) FindByTopicAndUser(_ context.Context, topicID, userID uuid.UUID) (*domain.Vote, error) {
	for _, vote := range f.votes {
		if vote.TopicID == topicID && vote.UserID != nil && *vote.UserID == userID {
			copied := *vote
			return &copied, nil
		}
	}
	return nil, domain.ErrVoteNotFound
}

func (f *fakeVoteRepo) FindByTopicAndGuest(_ context.Context, topicID uuid.UUID, guestToken string) (*domain.Vote, error) {
	for _, vote := range f.votes {
		if vote.TopicID == topicID && vote.GuestToken == guestToken {
			copied := *vote
			return &copied, nil
		}
	}
	return nil, domain.ErrVoteNotFound
}

func (f *fakeVoteRepo) ListByGuest(_ context.Context, guestToken string) ([]*domain.Vote, error) {
	var votes []*domain.Vote
	for _, vote := range f.votes {
		if vote.GuestToken == guestToken {
			copied := *vote
			votes = append(votes, &copied)
		}
	}
	return votes, nil
}

func (f *fakeVoteRepo) Reassign(_ context.Context, voteID, userID uuid.UUID) error {
	var target *domain.Vote
	for _, vote := range f.votes {
		if vote.ID == voteID {
			target = vote
			break
		}
	}
	if target == nil {
		return domain.ErrVoteNotFound
	}
	for _, vote := range f.votes {
		if vote.ID != voteID && vote.TopicID == target.TopicID && vote.UserID != nil && *vote.UserID == userID {
			return domain.ErrDuplicateVote
		}
	}
	target.UserID = &userID
	target.GuestToken = ""
	target.MergedFromGuest = true
	return nil
}

func (f *fakeVoteRepo) Delete(_ context.Context, voteID uuid.UUID) error {
	for i, vote := range f.votes {
		if vote.ID == voteID {
			f.votes = append(f.votes[:i], f.votes[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeVoteRepo) ListPageByTopic(_ context.Context, topicID uuid.UUID, limit, offset int) ([]ports.VoteWithSchoolRegion, error) {
	var matching []*domain.Vote
	for _, vote := range f.votes {
		if vote.TopicID == topicID {
			matching = append(matching, vote)
		}
	}
	sort.Slice(matching, func(i, j int) bool {
		if matching[i].CreatedAt.Equal(matching[j].CreatedAt) {
			return matching[i].ID.String() < matching[j].ID.String()
		}
		return matching[i].CreatedAt.Before(matching[j].CreatedAt)
	})

	if offset >= len(matching) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matching) {
		end = len(matching)
	}

	page := make([]ports.VoteWithSchoolRegion, 0, end-offset)
	for _, vote := range matching[offset:end] {
		region := f.schoolRegions[vote.SchoolID]
		page = append(page, ports.VoteWithSchoolRegion{
			Vote:                   *vote,
			SchoolProvinceCode:     region[0],
			SchoolMunicipalityCode: region[1],
		})
	}
	return page, nil
}

type fakeProfileRepo struct {
	profiles map[uuid.UUID]domain.Profile
	saves    int
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[uuid.UUID]domain.Profile)}
}

func (f *fakeProfileRepo) Get(_ context.Context, userID uuid.UUID) (*domain.Profile, error) {
	profile, ok := f.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &profile, nil
}

func (f *fakeProfileRepo) Save(_ context.Context, userID uuid.UUID, profile domain.Profile) error {
	f.profiles[userID] = profile
	f.saves++
	return nil
}

type fakeSchoolService struct {
	schools map[uuid.UUID]*domain.School
	ensured *domain.School
}

func (f *fakeSchoolService) Ensure(context.Context, ports.EnsureSchoolInput) (*domain.School, error) {
	return f.ensured, nil
}

func (f *fakeSchoolService) Get(_ context.Context, id uuid.UUID) (*domain.School, error) {
	school, ok := f.schools[id]
	if !ok {
		return nil, domain.ErrSchoolNotFound
	}
	return school, nil
}

func (f *fakeSchoolService) ReconcileParents(context.Context) (int, error) {
	return 0, nil
}

func (f *fakeSchoolService) Search(context.Context, string) ([]*domain.School, error) {
	return nil, nil
}

type fakeStatsRepo struct {
	mu        sync.Mutex
	data      map[domain.RegionLevel]map[string]domain.RegionStat
	refreshes int
}

func newFakeStatsRepo() *fakeStatsRepo {
	return &fakeStatsRepo{data: make(map[domain.RegionLevel]map[string]domain.RegionStat)}
}

func (f *fakeStatsRepo) Refresh(context.Context, uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	return nil
}

func (f *fakeStatsRepo) GetByTopicAndLevel(_ context.Context, _ uuid.UUID, level domain.RegionLevel) (map[string]domain.RegionStat, error) {
	stats := make(map[string]domain.RegionStat, len(f.data[level]))
	for code, stat := range f.data[level] {
		stats[code] = stat
	}
	return stats, nil
}

type fakeStatsCache struct {
	entries map[string]map[string]domain.RegionStat
	hits    int
}

func newFakeStatsCache() *fakeStatsCache {
	return &fakeStatsCache{entries: make(map[string]map[string]domain.RegionStat)}
}

func (f *fakeStatsCache) Get(_ context.Context, topicID uuid.UUID, level domain.RegionLevel) (map[string]domain.RegionStat, bool) {
	stats, ok := f.entries[topicID.String()+":"+string(level)]
	if ok {
		f.hits++
	}
	return stats, ok
}

func (f *fakeStatsCache) Set(_ context.Context, topicID uuid.UUID, level domain.RegionLevel, stats map[string]domain.RegionStat) {
	f.entries[topicID.String()+":"+string(level)] = stats
}
