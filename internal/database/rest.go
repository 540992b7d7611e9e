// internal/database/rest.go
package database

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"stackit/internal/auth"
	"stackit/internal/config"
	"stackit/internal/logger"
	"stackit/internal/utils"
	"stackit/internal/validation"
)

const (
	mediaJSON         = "application/json"
	mediaSingleObject = "application/vnd.pgrst.object+json"

	preferRepresentation = "return=representation"
	preferMinimal        = "return=minimal"
	preferMergeDupes     = "resolution=merge-duplicates"
	preferExactCount     = "count=exact"

	// PostgREST code for a single-object request that matched no rows
	codeNoRows                = "PGRST116"
	// Postgres codes surfaced through the REST layer
	codeUniqueViolation       = "23505"
	codeInsufficientPrivilege = "42501"
)

var _ ContentStore = (*RESTClient)(nil)

// RESTClient is the Content Client for the hosted datastore's REST interface.
type RESTClient struct {
	baseURL  string
	apiKey   string
	bearer   string
	http     *http.Client
	logger   *zap.Logger
	metrics  *utils.MetricsCollector
	validate *validation.Validator
	now      func() time.Time
}

// NewRESTClient builds a client for cfg.URL. The service key, when configured, is sent as
// the bearer so administrative tools see every row; otherwise requests run as the anonymous
// role until WithSession attaches a user token.
func NewRESTClient(cfg *config.DatastoreConfig, logger *zap.Logger, metrics *utils.MetricsCollector) (*RESTClient, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, utils.NewInvalidInputError("datastore URL is required")
	}
	apiKey := cfg.AnonKey
	if apiKey == "" {
		apiKey = cfg.ServiceKey
	}
	if apiKey == "" {
		return nil, utils.NewInvalidInputError("datastore API key is required")
	}
	bearer := cfg.ServiceKey
	if bearer == "" {
		bearer = apiKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RESTClient{
		baseURL:  strings.TrimRight(cfg.URL, "/") + "/rest/v1",
		apiKey:   apiKey,
		bearer:   bearer,
		http:     &http.Client{Timeout: cfg.Timeout},
		logger:   logger.Named("datastore"),
		metrics:  metrics,
		validate: validation.New(),
		now:      time.Now,
	}, nil
}

// WithSession returns a copy of the client that acts as the session's user. A session
// carried by a request context (auth.WithSession) takes precedence for that request.
func (c *RESTClient) WithSession(session *auth.Session) *RESTClient {
	clone := *c
	if session != nil && session.AccessToken != "" {
		clone.bearer = session.AccessToken
		clone.logger = c.logger.With(zap.String("user_id", session.UserID.String()))
	}
	return &clone
}

// Close releases idle connections.
func (c *RESTClient) Close(ctx context.Context) error {
	c.http.CloseIdleConnections()
	return nil
}

// request describes one call against the REST interface.
type request struct {
	method string
	query  *query
	body   any
	single bool     // expect exactly one row as a bare object
	prefer []string // Prefer header values
}

// apiError is the error body returned by the REST interface.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
	Status  int    `json:"-"`
}

func (e *apiError) Error() string {
	msg := fmt.Sprintf("status %d", e.Status)
	if e.Code != "" {
		msg += " " + e.Code
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}
	return msg
}

// do executes req and decodes a successful body into out when out is non-nil.
func (c *RESTClient) do(ctx context.Context, op string, req request, out any) (resp http.Header, err error) {
	start := time.Now()
	defer func() {
		c.metrics.Observe(op, start, err)
		fields := []zap.Field{
			logger.Operation(op),
			logger.Table(req.query.table),
			zap.String("method", req.method),
			zap.Duration("duration", time.Since(start)),
		}
		if err != nil {
			c.logger.Warn("datastore request failed", append(fields, zap.Error(err))...)
			return
		}
		c.logger.Debug("datastore request", fields...)
	}()

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return nil, utils.NewAppError(utils.ErrInvalidInput, "failed to encode request body", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+"/"+req.query.Encode(), body)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrTransport, "failed to build request", err)
	}

	bearer := c.bearer
	if session, ok := auth.SessionFromContext(ctx); ok && session.AccessToken != "" {
		bearer = session.AccessToken
	}
	httpReq.Header.Set("apikey", c.apiKey)
	httpReq.Header.Set("Authorization", "Bearer "+bearer)
	if req.single {
		httpReq.Header.Set("Accept", mediaSingleObject)
	} else {
		httpReq.Header.Set("Accept", mediaJSON)
	}
	if req.body != nil {
		httpReq.Header.Set("Content-Type", mediaJSON)
	}
	if len(req.prefer) > 0 {
		httpReq.Header.Set("Prefer", strings.Join(req.prefer, ","))
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrTransport, op+" request failed", err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrTransport, op+" response could not be read", err)
	}

	if httpResp.StatusCode >= http.StatusBadRequest {
		return nil, statusError(op, httpResp.StatusCode, raw)
	}

	if out != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return nil, utils.NewAppError(utils.ErrDecode, op+" response is not the expected JSON", err)
		}
	}
	return httpResp.Header, nil
}

// statusError maps a failed response to an AppError carrying the decoded error body.
func statusError(op string, status int, raw []byte) error {
	apiErr := &apiError{Status: status}
	if err := json.Unmarshal(raw, apiErr); err != nil || (apiErr.Code == "" && apiErr.Message == "") {
		apiErr.Message = strings.TrimSpace(string(raw))
	}

	var code string
	switch {
	case status == http.StatusNotAcceptable || apiErr.Code == codeNoRows:
		code = utils.ErrNotFound
	case status == http.StatusUnauthorized:
		code = utils.ErrUnauthorized
	case status == http.StatusForbidden || apiErr.Code == codeInsufficientPrivilege:
		code = utils.ErrForbidden
	case status == http.StatusConflict || apiErr.Code == codeUniqueViolation:
		code = utils.ErrDuplicate
	case status >= http.StatusInternalServerError:
		code = utils.ErrDatabase
	default:
		code = utils.ErrInvalidInput
	}
	return utils.NewAppError(code, op+" rejected", apiErr)
}

// decodeRows checks every decoded row against its declared shape.
func decodeRows[T any](v *validation.Validator, table string, rows []*T) error {
	for _, row := range rows {
		if row == nil {
			return utils.NewAppError(utils.ErrDecode, fmt.Sprintf("null %s row", table), nil)
		}
		if err := v.ValidateRow(table, row); err != nil {
			return err
		}
	}
	return nil
}

// firstRow returns the single row a write asked to have echoed back.
func firstRow[T any](op string, rows []*T) (*T, error) {
	if len(rows) == 0 {
		return nil, utils.NewAppError(utils.ErrDatabase, op+" returned no rows", errors.New("empty representation"))
	}
	return rows[0], nil
}

// contentRangeTotal reads the total from a "0-24/3573" or "*/0" Content-Range header.
func contentRangeTotal(header string) (int, error) {
	_, total, ok := strings.Cut(header, "/")
	if !ok {
		return 0, fmt.Errorf("malformed range header %q", header)
	}
	n, err := strconv.Atoi(total)
	if err != nil {
		return 0, fmt.Errorf("range header %q has no exact total: %w", header, err)
	}
	return n, nil
}
