// Package client is the directory client: a remote store speaking the REST
// API, the client directory state and the bridge that keeps them in sync.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	e "github.com/gartstein/companies/internal/company/errors"
	"github.com/gartstein/companies/internal/company/models"
	"github.com/gartstein/companies/internal/company/query"
	"github.com/google/uuid"
	"github.com/gregjones/httpcache"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// fetchAllPageSize is the page size used to walk the whole set.
const fetchAllPageSize = 100

// Store is the remote record store as seen by the bridge.
type Store interface {
	List(ctx context.Context, spec query.Spec) (*models.CompanyPage, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Company, error)
	Create(ctx context.Context, in models.CompanyInput) (*models.Company, error)
	Update(ctx context.Context, id uuid.UUID, in models.CompanyInput) (*models.Company, error)
	Delete(ctx context.Context, id uuid.UUID) (*models.Company, error)
	Options(ctx context.Context) (models.Options, error)
}

// RemoteStore talks to the company REST API.
type RemoteStore struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

var _ Store = (*RemoteStore)(nil)

type RemoteOption func(*RemoteStore)

// WithHTTPClient replaces the default caching HTTP client.
func WithHTTPClient(c *http.Client) RemoteOption {
	return func(r *RemoteStore) { r.http = c }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) RemoteOption {
	return func(r *RemoteStore) { r.logger = l.Named("remote_store") }
}

// NewCachingHTTPClient returns an HTTP client with an in-memory response
// cache, so detail reads revalidate with If-None-Match.
func NewCachingHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: httpcache.NewMemoryCacheTransport(),
		Timeout:   timeout,
	}
}

// NewRemoteStore creates a store for the API rooted at baseURL, e.g.
// "http://localhost:8080".
func NewRemoteStore(baseURL string, opts ...RemoteOption) *RemoteStore {
	r := &RemoteStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    NewCachingHTTPClient(30 * time.Second),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RemoteStore) List(ctx context.Context, spec query.Spec) (*models.CompanyPage, error) {
	u := r.baseURL + "/api/companies"
	if v := spec.Values(); len(v) > 0 {
		u += "?" + v.Encode()
	}
	body, err := r.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	return decodePage(body, spec)
}

func (r *RemoteStore) Get(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	body, err := r.do(ctx, http.MethodGet, r.companyURL(id), nil)
	if err != nil {
		return nil, err
	}
	return decodeCompany(body)
}

func (r *RemoteStore) Create(ctx context.Context, in models.CompanyInput) (*models.Company, error) {
	body, err := r.do(ctx, http.MethodPost, r.baseURL+"/api/companies", in)
	if err != nil {
		return nil, err
	}
	return decodeCompany(body)
}

func (r *RemoteStore) Update(ctx context.Context, id uuid.UUID, in models.CompanyInput) (*models.Company, error) {
	body, err := r.do(ctx, http.MethodPut, r.companyURL(id), in)
	if err != nil {
		return nil, err
	}
	return decodeCompany(body)
}

// Delete removes the company. Servers that answer with an empty body yield
// a nil record and no error.
func (r *RemoteStore) Delete(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	body, err := r.do(ctx, http.MethodDelete, r.companyURL(id), nil)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	return decodeCompany(body)
}

func (r *RemoteStore) Options(ctx context.Context) (models.Options, error) {
	var opts models.Options
	body, err := r.do(ctx, http.MethodGet, r.baseURL+"/api/options", nil)
	if err != nil {
		return opts, err
	}
	if err := json.Unmarshal(body, &opts); err != nil {
		return opts, fmt.Errorf("%w: malformed options: %v", e.ErrRemote, err)
	}
	return opts, nil
}

func (r *RemoteStore) companyURL(id uuid.UUID) string {
	return r.baseURL + "/api/companies/" + url.PathEscape(id.String())
}

// do performs one round trip and maps failures onto the shared error taxonomy.
func (r *RemoteStore) do(ctx context.Context, method, u string, payload interface{}) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", e.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", e.ErrTransport, err)
	}
	r.logger.Debug("remote call",
		zap.String("method", method),
		zap.String("url", u),
		zap.Int("status", resp.StatusCode),
		zap.Bool("cached", resp.Header.Get(httpcache.XFromCache) != ""),
	)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}
	return nil, statusError(resp.StatusCode, body)
}

// statusError maps an unsuccessful status to a sentinel, keeping the
// server's message.
func statusError(code int, body []byte) error {
	var sentinel error
	switch code {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		sentinel = e.ErrInvalidInput
	case http.StatusNotFound:
		sentinel = e.ErrNotFound
	case http.StatusConflict:
		sentinel = e.ErrDuplicateName
	default:
		sentinel = e.ErrRemote
	}

	msg := gjson.GetBytes(body, "error").String()
	if msg == "" {
		msg = gjson.GetBytes(body, "message").String()
	}
	if msg == "" {
		msg = http.StatusText(code)
	}
	return fmt.Errorf("%w: %s (status %d)", sentinel, msg, code)
}

func decodeCompany(body []byte) (*models.Company, error) {
	var c models.Company
	if err := json.Unmarshal(body, &c); err != nil {
		return nil, fmt.Errorf("%w: malformed company: %v", e.ErrRemote, err)
	}
	return &c, nil
}

// decodePage accepts the paged envelope, the legacy
// {companies,total,currentPage,totalPages} envelope and a bare array.
func decodePage(body []byte, spec query.Spec) (*models.CompanyPage, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: list response is not JSON", e.ErrRemote)
	}
	root := gjson.ParseBytes(body)

	var (
		items gjson.Result
		page  = &models.CompanyPage{}
	)
	switch {
	case root.IsArray():
		items = root
	case root.Get("items").IsArray():
		items = root.Get("items")
		page.TotalCount = int(root.Get("totalCount").Int())
		page.Page = int(root.Get("page").Int())
		page.PageSize = int(root.Get("pageSize").Int())
		page.TotalPages = int(root.Get("totalPages").Int())
	case root.Get("companies").IsArray():
		items = root.Get("companies")
		page.TotalCount = int(root.Get("total").Int())
		page.Page = int(root.Get("currentPage").Int())
		page.TotalPages = int(root.Get("totalPages").Int())
	default:
		return nil, fmt.Errorf("%w: unrecognized list response", e.ErrRemote)
	}

	page.Items = make([]models.Company, 0, len(items.Array()))
	if err := json.Unmarshal([]byte(items.Raw), &page.Items); err != nil {
		return nil, fmt.Errorf("%w: malformed company list: %v", e.ErrRemote, err)
	}

	if root.IsArray() {
		page.TotalCount = len(page.Items)
		page.TotalPages = 1
	}
	if page.Page <= 0 {
		page.Page = max(spec.Page, 1)
	}
	if page.PageSize <= 0 {
		page.PageSize = spec.PageSize
		if page.PageSize <= 0 {
			page.PageSize = max(len(page.Items), 1)
		}
	}
	if page.TotalPages <= 0 {
		page.TotalPages = query.TotalPages(page.TotalCount, page.PageSize)
	}
	return page, nil
}

// ListAll walks every page of the unfiltered listing.
func ListAll(ctx context.Context, store Store) ([]models.Company, error) {
	var all []models.Company
	for page := 1; ; page++ {
		res, err := store.List(ctx, query.Spec{Page: page, PageSize: fetchAllPageSize})
		if err != nil {
			return nil, err
		}
		all = append(all, res.Items...)
		if len(res.Items) == 0 || page >= res.TotalPages {
			return all, nil
		}
	}
}

// IsSatisfiedDelete reports whether a delete error still leaves the record
// gone from the store.
func IsSatisfiedDelete(err error) bool {
	return err == nil || errors.Is(err, e.ErrNotFound)
}
