package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"taskhub/internal/domain/models"
	"taskhub/internal/domain/services"
	"taskhub/internal/observability"
)

// client performs read-only checks against another service with the
// caller's own credentials. No retries and no verdict caching: every check is a
// fresh round trip.
type client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

func newClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) client {
	return client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// verdictFor maps a response status onto a verdict.
// 2xx grants; 401/403/404 deny; anything else means the answer is unknown.
func verdictFor(status int) services.Verdict {
	switch {
	case status >= 200 && status < 300:
		return services.VerdictGranted
	case status == http.StatusUnauthorized, status == http.StatusForbidden, status == http.StatusNotFound:
		return services.VerdictDenied
	default:
		return services.VerdictUnavailable
	}
}

// get issues the request and decodes a JSON body into dest when the
// verdict is granted and dest is non-nil.
func (c *client) get(ctx context.Context, check, path string, dest any) services.Verdict {
	start := time.Now()
	verdict := c.do(ctx, check, path, dest)
	c.metrics.ObserveRelay(check, verdict.String(), time.Since(start))
	return verdict
}

func (c *client) do(ctx context.Context, check, path string, dest any) services.Verdict {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		c.logger.Error("relay request build failed", "check", check, "error", err)
		return services.VerdictUnavailable
	}
	if header := AuthorizationFrom(ctx); header != "" {
		req.Header.Set("Authorization", header)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("relay check unavailable", "check", check, "path", path, "error", err)
		return services.VerdictUnavailable
	}
	defer resp.Body.Close()

	verdict := verdictFor(resp.StatusCode)
	if verdict == services.VerdictUnavailable {
		c.logger.Warn("relay check unavailable", "check", check, "path", path, "status", resp.StatusCode)
	}
	if verdict != services.VerdictGranted || dest == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return verdict
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(dest); err != nil {
		c.logger.Warn("relay response decode failed", "check", check, "path", path, "error", err)
		return services.VerdictUnavailable
	}
	return verdict
}

// ProjectClient asks the project service about projects and memberships.
type ProjectClient struct {
	client
}

// NewProjectClient creates a client for the project service at baseURL.
func NewProjectClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *ProjectClient {
	return &ProjectClient{client: newClient(baseURL, timeout, metrics, logger.With("relay", "project"))}
}

func (p *ProjectClient) ProjectExists(ctx context.Context, projectID int64) services.Verdict {
	return p.get(ctx, "exists", fmt.Sprintf("/api/projects/%d/exists", projectID), nil)
}

func (p *ProjectClient) UserHasAccess(ctx context.Context, userID string, projectID int64) services.Verdict {
	return p.get(ctx, "access", fmt.Sprintf("/api/projects/%d/members/%s/access", projectID, url.PathEscape(userID)), nil)
}

func (p *ProjectClient) UserHasRole(ctx context.Context, userID string, projectID int64, allowed models.RoleSet) services.Verdict {
	q := url.Values{"allowedRoles": {allowed.String()}}
	return p.get(ctx, "role", fmt.Sprintf("/api/projects/%d/members/%s/role?%s", projectID, url.PathEscape(userID), q.Encode()), nil)
}

func (p *ProjectClient) IsProjectMember(ctx context.Context, userID string, projectID int64) services.Verdict {
	return p.get(ctx, "member", fmt.Sprintf("/api/projects/%d/members/%s", projectID, url.PathEscape(userID)), nil)
}

// UserClient asks the auth service about users.
type UserClient struct {
	client
	names *lru.LRU[string, string]
}

// NewUserClient creates a client for the auth service at baseURL.
func NewUserClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *UserClient {
	return &UserClient{client: newClient(baseURL, timeout, metrics, logger.With("relay", "user"))}
}

type userRef struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// WithUsernameCache keeps up to size resolved usernames for ttl.
// Only display names are cached; existence checks always go to the auth service.
func (u *UserClient) WithUsernameCache(size int, ttl time.Duration) *UserClient {
	if size > 0 {
		u.names = lru.NewLRU[string, string](size, nil, ttl)
	}
	return u
}

func (u *UserClient) UserExists(ctx context.Context, userID string) services.Verdict {
	return u.get(ctx, "user_exists", "/api/users/"+url.PathEscape(userID)+"/exists", nil)
}

func (u *UserClient) Username(ctx context.Context, userID string) (string, bool) {
	if u.names != nil {
		if name, ok := u.names.Get(userID); ok {
			return name, true
		}
	}
	var ref userRef
	if v := u.get(ctx, "username", "/api/users/"+url.PathEscape(userID)+"/username", &ref); !v.Allowed() {
		return "", false
	}
	if ref.Username == "" {
		return "", false
	}
	if u.names != nil {
		u.names.Add(userID, ref.Username)
	}
	return ref.Username, true
}

func (u *UserClient) UserIDByUsername(ctx context.Context, username string) (string, services.Verdict) {
	var ref userRef
	v := u.get(ctx, "user_lookup", "/api/users/by-username/"+url.PathEscape(username)+"/id", &ref)
	if !v.Allowed() {
		return "", v
	}
	if ref.ID == "" {
		return "", services.VerdictUnavailable
	}
	return ref.ID, v
}

var (
	_ services.ProjectAuthorizer = (*ProjectClient)(nil)
	_ services.UserDirectory     = (*UserClient)(nil)
)
