package network

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"sales-dashboard/src/codec"
	"sales-dashboard/src/config"
	"sales-dashboard/src/helpers"
	"sales-dashboard/src/logger"
	"sales-dashboard/src/models"
)

// SessionHeader carries the agent session id on every backend request.
const SessionHeader = "X-Client-Session"

// BackendClient pulls snapshots and history from the dashboard backend.
type BackendClient struct {
	Config     *config.Config
	Client     *http.Client
	Logger     *logger.Logger
	SessionID  string
	RetryDelay time.Duration
}

// -----------------------------------------------------------------------------

func NewBackendClient(cfg *config.Config, sessionID string, log *logger.Logger) *BackendClient {
	return &BackendClient{
		Config:     cfg,
		Client:     &http.Client{Timeout: cfg.RequestTimeout()},
		Logger:     log,
		SessionID:  sessionID,
		RetryDelay: time.Second,
	}
}

// -----------------------------------------------------------------------------

// FetchSnapshot performs GET on the snapshot path and validates the payload.
func (bc *BackendClient) FetchSnapshot(ctx context.Context) (*models.MAcceptedSnapshot, error) {
	body, err := bc.Get(ctx, bc.Config.Backend.SnapshotPath, nil)
	if err != nil {
		return nil, err
	}

	snap, err := codec.ParseSnapshot(body)
	if err != nil {
		return nil, err
	}

	return &models.MAcceptedSnapshot{
		Snapshot:   snap,
		Origin:     models.OriginPull,
		ReceivedAt: time.Now(),
		Payload:    body,
	}, nil
}

// -----------------------------------------------------------------------------

// FetchHistory performs GET on the history path with ?limit=N.
func (bc *BackendClient) FetchHistory(ctx context.Context, limit int) ([]models.MHistoryPoint, error) {
	body, err := bc.Get(ctx, bc.Config.Backend.HistoryPath, map[string]string{"limit": strconv.Itoa(limit)})
	if err != nil {
		return nil, err
	}
	return codec.ParseHistory(body)
}

// -----------------------------------------------------------------------------

// Get performs a GET request against the backend, retrying transport failures.
func (bc *BackendClient) Get(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	reqUrl, err := url.Parse(bc.Config.Backend.BaseURL)
	if err != nil {
		return nil, helpers.NewNetworkError(err, "invalid base url")
	}
	reqUrl.Path = path

	q := reqUrl.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	reqUrl.RawQuery = q.Encode()

	finalUrl := reqUrl.String()
	maxRetries := bc.Config.Backend.MaxRetries
	attempt := 0

	return helpers.RetryWithBackoff(ctx, maxRetries, bc.RetryDelay, func() ([]byte, error) {
		attempt++
		body, err := bc.do(ctx, finalUrl)
		if err != nil && attempt <= maxRetries {
			bc.Logger.Info("Request failed (attempt %d/%d): %v", attempt, maxRetries+1, err)
		}
		return body, err
	})
}

// -----------------------------------------------------------------------------

func (bc *BackendClient) do(ctx context.Context, finalUrl string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalUrl, nil)
	if err != nil {
		return nil, helpers.NewNetworkError(err, "build request")
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", bc.Config.Backend.UserAgent)
	if bc.SessionID != "" {
		req.Header.Set(SessionHeader, bc.SessionID)
	}

	resp, err := bc.Client.Do(req)
	if err != nil {
		return nil, helpers.NewNetworkError(err, "GET %s", finalUrl)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, helpers.NewNetworkError(nil, "GET %s: bad status %d", finalUrl, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, helpers.NewNetworkError(err, "read body of %s", finalUrl)
	}

	return body, nil
}
