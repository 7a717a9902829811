package rdstation

import (
	"bytes"
	"context"
	"crmsync/cmd/internal/config"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/gommon/log"
)

var (
	ErrUnsupportedMethod = errors.New("unsupported http method")
	ErrInvalidPayload    = errors.New("invalid payload for query string")
)

// RequestError is returned for any call that did not end in a 2xx response,
// including transport failures where StatusCode is zero.
type RequestError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Body       string
	Err        error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("crm %s %s failed: %v", e.Method, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("crm %s %s failed with status code: %d", e.Method, e.Endpoint, e.StatusCode)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client

	contactFieldID string
	companyFieldID string
	scanLimit      int
}

func NewClient(cfg config.CRMConfig) *Client {
	return NewClientWithHTTP(cfg, &http.Client{})
}

func NewClientWithHTTP(cfg config.CRMConfig, httpClient *http.Client) *Client {
	limit := cfg.ScanLimit
	if limit <= 0 {
		limit = config.DefaultScanLimit
	}

	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		token:          cfg.Token,
		httpClient:     httpClient,
		contactFieldID: cfg.ContactCNPJFieldID,
		companyFieldID: cfg.CompanyCNPJFieldID,
		scanLimit:      limit,
	}
}

// Do sends one request to the CRM and decodes the JSON response into out (when not nil).
//
// For GET the payload becomes the query string and must be url.Values or
// map[string]string. For POST and PUT it is encoded as the JSON body.
func (c *Client) Do(ctx context.Context, method, endpoint string, payload, out any) error {
	req, err := c.newRequest(ctx, method, endpoint, payload)
	if err != nil {
		log.Errorf("crm %s %s: could not build request: %v", method, endpoint, err)
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Errorf("crm %s %s: request failed: %v", method, endpoint, err)
		return &RequestError{Method: method, Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Errorf("crm %s %s: failed to read response: %v", method, endpoint, err)
		return &RequestError{Method: method, Endpoint: endpoint, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Errorf("crm %s %s: status %d, response body: %s", method, endpoint, resp.StatusCode, body)
		return &RequestError{
			Method:     method,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	if err = json.Unmarshal(body, out); err != nil {
		log.Errorf("crm %s %s: malformed response body: %v", method, endpoint, err)
		return &RequestError{Method: method, Endpoint: endpoint, StatusCode: resp.StatusCode, Body: string(body), Err: err}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, payload any) (*http.Request, error) {
	target := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")

	var body io.Reader
	switch method {
	case http.MethodGet:
		query, err := toQuery(payload)
		if err != nil {
			return nil, err
		}
		if len(query) > 0 {
			target += "?" + query.Encode()
		}

	case http.MethodPost, http.MethodPut:
		if payload != nil {
			raw, err := json.Marshal(payload)
			if err != nil {
				return nil, err
			}
			body = bytes.NewReader(raw)
		}

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func toQuery(payload any) (url.Values, error) {
	switch p := payload.(type) {
	case nil:
		return nil, nil
	case url.Values:
		return p, nil
	case map[string]string:
		query := url.Values{}
		for k, v := range p {
			query.Set(k, v)
		}
		return query, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidPayload, payload)
	}
}
