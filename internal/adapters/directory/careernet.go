// Package directory implements the external school-directory collaborator
// against the CareerNet open API. Responses are untrusted free text; the
// caller runs them through the normal resolution pipeline.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hanvote/regionvote/internal/core/domain"
	"github.com/hanvote/regionvote/internal/core/ports"
)

// schoolKinds are the directory categories searched per query, mapped to
// the domain school levels.
var schoolKinds = []struct {
	gubun string
	level domain.SchoolLevel
}{
	{"midd_list", domain.LevelMiddle},
	{"high_list", domain.LevelHigh},
	{"univ_list", domain.LevelUniv},
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) ports.SchoolDirectory {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type searchResponse struct {
	DataSearch struct {
		Content []struct {
			SchoolCode string `json:"schulCode"`
			SchoolName string `json:"schoolName"`
			CampusName string `json:"campusName"`
			Address    string `json:"adres"`
			Status     string `json:"status"`
		} `json:"content"`
	} `json:"dataSearch"`
}

func (c *Client) Search(ctx context.Context, query string) ([]ports.DirectorySchool, error) {
	var results []ports.DirectorySchool
	for _, kind := range schoolKinds {
		schools, err := c.searchKind(ctx, query, kind.gubun, kind.level)
		if err != nil {
			return nil, err
		}
		results = append(results, schools...)
	}
	return results, nil
}

func (c *Client) searchKind(ctx context.Context, query, gubun string, level domain.SchoolLevel) ([]ports.DirectorySchool, error) {
	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("svcType", "api")
	params.Set("svcCode", "SCHOOL")
	params.Set("contentType", "json")
	params.Set("gubun", gubun)
	params.Set("searchSchulNm", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build directory request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query school directory: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("school directory returned status %d", resp.StatusCode)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode directory response: %w", err)
	}

	schools := make([]ports.DirectorySchool, 0, len(payload.DataSearch.Content))
	for _, entry := range payload.DataSearch.Content {
		if entry.SchoolCode == "" || entry.SchoolName == "" {
			continue
		}
		schools = append(schools, ports.DirectorySchool{
			ExternalCode: entry.SchoolCode,
			Name:         entry.SchoolName,
			Level:        level,
			CampusType:   entry.CampusName,
			Address:      entry.Address,
			Status:       entry.Status,
		})
	}
	return schools, nil
}
