package directory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanvote/regionvote/internal/core/domain"
)

func TestSearchQueriesEveryKind(t *testing.T) {
	var gubuns []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.URL.Query().Get("apiKey"))
		assert.Equal(t, "서울", r.URL.Query().Get("searchSchulNm"))
		gubuns = append(gubuns, r.URL.Query().Get("gubun"))

		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("gubun") != "high_list" {
			w.Write([]byte(`{"dataSearch":{"content":[]}}`))
			return
		}
		w.Write([]byte(`{"dataSearch":{"content":[
			{"schulCode":"SCH-1","schoolName":"서울고등학교","campusName":"본교","adres":"서울 강남구 역삼동","status":""},
			{"schulCode":"","schoolName":"이름만 있는 항목"}
		]}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "key")

	schools, err := client.Search(context.Background(), "서울")
	require.NoError(t, err)

	assert.Equal(t, []string{"midd_list", "high_list", "univ_list"}, gubuns)

	// entries without a school code are dropped
	require.Len(t, schools, 1)
	assert.Equal(t, "SCH-1", schools[0].ExternalCode)
	assert.Equal(t, "서울고등학교", schools[0].Name)
	assert.Equal(t, domain.LevelHigh, schools[0].Level)
	assert.Equal(t, "본교", schools[0].CampusType)
	assert.Equal(t, "서울 강남구 역삼동", schools[0].Address)
}

func TestSearchSurfacesServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, "key")

	_, err := client.Search(context.Background(), "서울")
	assert.Error(t, err)
}
