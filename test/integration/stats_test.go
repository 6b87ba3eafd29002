package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanvote/regionvote/internal/core/domain"
)

func schoolPayload(externalCode, address string) map[string]any {
	return map[string]any{
		"source":        "careernet",
		"external_code": externalCode,
		"name":          "학교 " + externalCode,
		"level":         "high",
		"address":       address,
	}
}

func fetchRegionStats(t *testing.T, app *TestApp, topicID uuid.UUID, level string) map[string]domain.RegionStat {
	t.Helper()

	url := fmt.Sprintf("%s/api/topics/%s/region-stats", app.Server.URL, topicID)
	if level != "" {
		url += "?level=" + level
	}
	resp, err := app.Client.Get(url)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats map[string]domain.RegionStat
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	resp.Body.Close()
	return stats
}

// TestRegionStatsDualPath seeds votes across two provinces, reads the stats
// before materialization (scan path) and after (materialized path), and
// expects identical tallies from both.
func TestRegionStatsDualPath(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	topic := createTopic(t, app, "지역 통계", "가", "나")

	// Seoul: 2 votes for A, 1 for B; Incheon: 2 for B
	submissions := []struct {
		optionID uuid.UUID
		school   map[string]any
	}{
		{topic.Options[0].ID, schoolPayload("SEO-1", "서울 강남구 역삼동 1")},
		{topic.Options[0].ID, schoolPayload("SEO-2", "서울 종로구 관철동 2")},
		{topic.Options[1].ID, schoolPayload("SEO-3", "서울 강남구 대치동 3")},
		{topic.Options[1].ID, schoolPayload("INC-1", "인천 남구 용현동 4")},
		{topic.Options[1].ID, schoolPayload("INC-2", "인천 남구 학익동 5")},
	}
	for _, sub := range submissions {
		payload := map[string]any{
			"option_id": sub.optionID,
			"profile":   map[string]any{"birth_year": 2006, "gender": "M"},
			"school":    sub.school,
		}
		resp := submitVote(t, app, topic.ID, payload, asGuest(uuid.NewString()))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	expectedSido := map[string]domain.RegionStat{
		"11": {Total: 3, CountA: 2, CountB: 1, Winner: domain.WinnerA},
		"23": {Total: 2, CountA: 0, CountB: 2, Winner: domain.WinnerB},
	}

	// before materialization the endpoint answers from the vote scan
	var materialized int
	require.NoError(t, app.DB.QueryRow("SELECT COUNT(*) FROM region_stats WHERE topic_id = $1", topic.ID).Scan(&materialized))
	require.Zero(t, materialized)
	assert.Equal(t, expectedSido, fetchRegionStats(t, app, topic.ID, "sido"))

	require.NoError(t, app.StatsRepo.Refresh(context.Background(), topic.ID))
	require.NoError(t, app.DB.QueryRow("SELECT COUNT(*) FROM region_stats WHERE topic_id = $1", topic.ID).Scan(&materialized))
	require.NotZero(t, materialized)

	assert.Equal(t, expectedSido, fetchRegionStats(t, app, topic.ID, "sido"))

	sigungu := fetchRegionStats(t, app, topic.ID, "sigungu")
	assert.Equal(t, domain.RegionStat{Total: 2, CountA: 1, CountB: 1, Winner: domain.WinnerTie}, sigungu["11230"])
	assert.Equal(t, domain.RegionStat{Total: 2, CountA: 0, CountB: 2, Winner: domain.WinnerB}, sigungu["23030"])

	// level defaults to sido when omitted
	assert.Equal(t, expectedSido, fetchRegionStats(t, app, topic.ID, ""))
}

func TestRegionStatsRefreshReplacesStaleRows(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	topic := createTopic(t, app, "갱신 검사", "가", "나")

	payload := map[string]any{
		"option_id": topic.Options[0].ID,
		"profile":   map[string]any{"birth_year": 2006, "gender": "M"},
		"school":    schoolPayload("SEO-1", "서울 강남구 역삼동 1"),
	}
	resp := submitVote(t, app, topic.ID, payload, asGuest(uuid.NewString()))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	require.NoError(t, app.StatsRepo.Refresh(context.Background(), topic.ID))

	// plant a stale row for a region that no longer has votes
	_, err := app.DB.Exec(`INSERT INTO region_stats (topic_id, level, region_code, count_a, count_b, total)
		VALUES ($1, 'sido', '99', 5, 5, 10)`, topic.ID)
	require.NoError(t, err)

	require.NoError(t, app.StatsSvc.RefreshAll(context.Background()))

	stats := fetchRegionStats(t, app, topic.ID, "sido")
	assert.NotContains(t, stats, "99")
	assert.Equal(t, domain.RegionStat{Total: 1, CountA: 1, CountB: 0, Winner: domain.WinnerA}, stats["11"])
}

func TestRegionStatsUnknownTopic(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	resp, err := app.Client.Get(fmt.Sprintf("%s/api/topics/%s/region-stats?level=sido", app.Server.URL, uuid.New()))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestRegionStatsInvalidLevel(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	topic := createTopic(t, app, "레벨 검사", "가", "나")

	resp, err := app.Client.Get(fmt.Sprintf("%s/api/topics/%s/region-stats?level=dong", app.Server.URL, topic.ID))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}
