package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-lfg-client/internal/catalog"
	"github.com/goliatone/go-lfg-client/pkg/domain"
	"github.com/goliatone/go-lfg-client/pkg/interfaces/logger"
	"github.com/goliatone/go-lfg-client/pkg/interfaces/store"
)

// CredentialSource supplies the bearer credential for authenticated calls.
// The mechanism behind it (token storage, refresh) is opaque to this client.
type CredentialSource func() (token string, ok bool)

// Dependencies configures the REST client.
type Dependencies struct {
	BaseURL string
	// AssetsURL hosts the static datasets (dungeon names). Defaults to BaseURL.
	AssetsURL   string
	Credentials CredentialSource
	HTTPClient  *http.Client
	Logger      logger.Logger
}

// Client talks to the notification endpoints of the backing store. Every
// method is idempotent from the caller's perspective and maps transport
// failures onto the store sentinel errors.
type Client struct {
	baseURL     string
	assetsURL   string
	credentials CredentialSource
	httpClient  *http.Client
	logger      logger.Logger
}

var _ store.RemoteStore = (*Client)(nil)
var _ catalog.Loader = (*Client)(nil)

var errBaseURLRequired = errors.New("remote: base url is required")

// NewClient constructs the REST client.
func NewClient(deps Dependencies) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(deps.BaseURL), "/")
	if base == "" {
		return nil, errBaseURLRequired
	}
	assets := strings.TrimRight(strings.TrimSpace(deps.AssetsURL), "/")
	if assets == "" {
		assets = base
	}
	if deps.HTTPClient == nil {
		deps.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if deps.Credentials == nil {
		deps.Credentials = func() (string, bool) { return "", false }
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	return &Client{
		baseURL:     base,
		assetsURL:   assets,
		credentials: deps.Credentials,
		httpClient:  deps.HTTPClient,
		logger:      deps.Logger,
	}, nil
}

// FetchNotifications returns the subject's notification log.
func (c *Client) FetchNotifications(ctx context.Context) ([]domain.Notification, error) {
	var notifications []domain.Notification
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/notifications", &notifications); err != nil {
		return nil, fmt.Errorf("remote.FetchNotifications: %w", err)
	}
	return notifications, nil
}

// MarkAllRead acknowledges every notification.
func (c *Client) MarkAllRead(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/notifications/mark-read", nil); err != nil {
		return fmt.Errorf("remote.MarkAllRead: %w", err)
	}
	return nil
}

// MarkRead acknowledges a single notification.
func (c *Client) MarkRead(ctx context.Context, id string) error {
	endpoint := c.baseURL + "/notifications/" + url.PathEscape(id) + "/read"
	if err := c.do(ctx, http.MethodPatch, endpoint, nil); err != nil {
		return fmt.Errorf("remote.MarkRead: %w", err)
	}
	return nil
}

// Dismiss deletes a single notification.
func (c *Client) Dismiss(ctx context.Context, id string) error {
	endpoint := c.baseURL + "/notifications/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodDelete, endpoint, nil); err != nil {
		return fmt.Errorf("remote.Dismiss: %w", err)
	}
	return nil
}

// LoadDungeons fetches the static dungeon dataset.
func (c *Client) LoadDungeons(ctx context.Context) ([]catalog.Dungeon, error) {
	var dungeons []catalog.Dungeon
	if err := c.do(ctx, http.MethodGet, c.assetsURL+"/assets/data/mazmos.json", &dungeons); err != nil {
		return nil, fmt.Errorf("remote.LoadDungeons: %w", err)
	}
	return dungeons, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token, ok := c.credentials(); ok && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return store.ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return store.ErrNotFound
	case resp.StatusCode >= 400:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		var apiErr struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("remote: %s (status %d)", apiErr.Message, resp.StatusCode)
		}
		return fmt.Errorf("remote: unexpected status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("remote: decode response: %w", err)
		}
	}
	return nil
}
