// Package client is a typed Go client for the portfolio API with a
// namespace-invalidated query cache.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	helper "portfolio_backend/internals/helpers"

	"github.com/pkg/errors"
)

const defaultTimeout = 10 * time.Second

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithToken authenticates every request as the site administrator.
func WithToken(token string) Option { return func(c *Client) { c.token = token } }

func WithStaleTime(d time.Duration) Option { return func(c *Client) { c.staleTime = d } }

// WithoutCache disables the query cache; every read hits the server.
func WithoutCache() Option { return func(c *Client) { c.noCache = true } }

type Client struct {
	baseURL   string
	http      *http.Client
	staleTime time.Duration
	noCache   bool
	cache     *QueryCache

	mu    sync.RWMutex
	token string

	Auth       *AuthService
	Profile    *ProfileService
	Projects   *ProjectService
	Skills     *SkillService
	Experience *ExperienceService
	Education  *EducationService
	Contact    *ContactService
	Uploads    *UploadService
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if !c.noCache {
		c.cache = NewQueryCache(c.staleTime)
	}

	c.Auth = &AuthService{c: c}
	c.Profile = &ProfileService{c: c}
	c.Projects = &ProjectService{Resource: newResource[ProjectModel, CreateProjectRequest, UpdateProjectRequest](c, NSProjects, "/api/projects", "")}
	c.Skills = newResource[SkillModel, CreateSkillRequest, UpdateSkillRequest](c, NSSkills, "/api/skills", "category")
	c.Experience = &ExperienceService{Resource: newResource[ExperienceModel, CreateExperienceRequest, UpdateExperienceRequest](c, NSExperience, "/api/experience", "type")}
	c.Education = newResource[EducationModel, CreateEducationRequest, UpdateEducationRequest](c, NSEducation, "/api/education", "level")
	c.Contact = &ContactService{c: c}
	c.Uploads = &UploadService{c: c}
	return c
}

// Cache exposes the query cache, nil when disabled.
func (c *Client) Cache() *QueryCache { return c.cache }

// Close stops background cache refreshes.
func (c *Client) Close() {
	if c.cache != nil {
		c.cache.Close()
	}
}

func (c *Client) setToken(t string) {
	c.mu.Lock()
	c.token = t
	c.mu.Unlock()
}

func (c *Client) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// scoped marks cache params of privileged callers, who also see inactive
// records.
func (c *Client) scoped(v url.Values) url.Values {
	out := url.Values{}
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	if c.currentToken() != "" {
		out.Set("_scope", "admin")
	}
	return out
}

/* ===============================
   Errors
=================================*/

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
	Details    json.RawMessage
}

func (e *APIError) Error() string {
	return strconv.Itoa(e.StatusCode) + ": " + e.Message
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.StatusCode
	}
	return 0
}

func IsNotFound(err error) bool { return StatusOf(err) == http.StatusNotFound }

/* ===============================
   Transport
=================================*/

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
	Pagination *helper.Pagination `json:"pagination"`
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, in, out any) (*helper.Pagination, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return nil, errors.Wrap(err, "encode request")
		}
		body = bytes.NewReader(raw)
	}
	ct := ""
	if in != nil {
		ct = "application/json"
	}
	return c.do(ctx, method, path, query, body, ct, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) (*helper.Pagination, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, errors.Wrapf(err, "build %s %s", method, path)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if tok := c.currentToken(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 400 {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return nil, errors.Wrapf(err, "decode %s %s", method, path)
	}
	if resp.StatusCode >= 400 || !env.Success {
		ae := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		if env.Error != nil {
			ae.Message = env.Error.Message
			ae.Details = env.Error.Details
		}
		return nil, ae
	}
	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, errors.Wrapf(err, "decode data of %s %s", method, path)
		}
	}
	return env.Pagination, nil
}
