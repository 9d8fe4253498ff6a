package reportcache

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/heartmarshall/quotediary-backend/internal/domain"
	"github.com/heartmarshall/quotediary-backend/pkg/reportapi"
)

// HTTPFetcher fetches reports from the REST API.
type HTTPFetcher struct {
	baseURL string
	client  *http.Client
}

// NewHTTPFetcher creates a fetcher for the API at baseURL. A nil client
// gets a default one with timeout.
func NewHTTPFetcher(baseURL string, client *http.Client, timeout time.Duration) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPFetcher{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// Fetch calls GET /api/v1/reports/{period}.
func (f *HTTPFetcher) Fetch(ctx context.Context, id Identity, period domain.Period) (*Snapshot, error) {
	endpoint := f.baseURL + "/api/v1/reports/" + url.PathEscape(period.Key())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if id.Token != "" {
		req.Header.Set("Authorization", "Bearer "+id.Token)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, domain.StorageError("fetch report "+period.Key(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, domain.StorageError("read report "+period.Key(), err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, body, period)
	}

	var view reportapi.ReportView
	if err := json.Unmarshal(body, &view); err != nil {
		return nil, domain.StorageError("decode report "+period.Key(), err)
	}

	report, err := view.Report.ToDomain(id.UserID)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		Report:      *report,
		Delta:       domain.Delta(view.Delta),
		HasPrevious: view.HasPrevious,
	}, nil
}

func statusError(status int, body []byte, period domain.Period) error {
	var apiErr reportapi.Error
	_ = json.Unmarshal(body, &apiErr)

	switch {
	case status == http.StatusNotFound && apiErr.Code == reportapi.CodeReportNotGenerated:
		return fmt.Errorf("report %s: %w", period.Key(), domain.ErrReportNotFound)
	case status == http.StatusNotFound:
		return fmt.Errorf("report %s: %w", period.Key(), domain.ErrNotFound)
	case status == http.StatusUnauthorized:
		return fmt.Errorf("report %s: %w", period.Key(), domain.ErrUnauthorized)
	case status == http.StatusTooManyRequests || status >= 500:
		return fmt.Errorf("report %s: status %d %s: %w", period.Key(), status, apiErr.Code, domain.ErrStorageUnavailable)
	default:
		return fmt.Errorf("report %s: unexpected status %d %s", period.Key(), status, apiErr.Code)
	}
}
