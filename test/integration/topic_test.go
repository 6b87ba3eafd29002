package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanvote/regionvote/internal/core/domain"
)

func createTopic(t *testing.T, app *TestApp, title, optionA, optionB string) domain.Topic {
	t.Helper()

	body, _ := json.Marshal(map[string]string{
		"title":    title,
		"option_a": optionA,
		"option_b": optionB,
	})
	resp, err := app.Client.Post(app.Server.URL+"/api/topics", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var topic domain.Topic
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&topic))
	resp.Body.Close()
	return topic
}

func TestTopicLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	created := createTopic(t, app, "짜장면 대 짬뽕", "짜장면", "짬뽕")
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, domain.TopicStatusLive, created.Status)
	require.Len(t, created.Options, 2)
	assert.Equal(t, domain.PositionA, created.Options[0].Position)
	assert.Equal(t, domain.PositionB, created.Options[1].Position)

	resp, err := app.Client.Get(fmt.Sprintf("%s/api/topics/%s", app.Server.URL, created.ID))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var fetched domain.Topic
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&fetched))
	resp.Body.Close()
	assert.Equal(t, created.ID, fetched.ID)
	assert.Len(t, fetched.Options, 2)

	resp, err = app.Client.Get(app.Server.URL + "/api/topics")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listed []domain.Topic
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	resp.Body.Close()
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
}

func TestGetTopicNotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	resp, err := app.Client.Get(fmt.Sprintf("%s/api/topics/%s", app.Server.URL, uuid.New()))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestCreateTopicValidation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	body, _ := json.Marshal(map[string]string{"title": "옵션 없는 주제"})
	resp, err := app.Client.Post(app.Server.URL+"/api/topics", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}
