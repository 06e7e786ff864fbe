package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

// HTTPRequest décrit un appel JSON vers un fournisseur externe.
type HTTPRequest struct {
	Method    string
	URL       string
	Body      any
	Headers   map[string]string
	BasicAuth [2]string
}

// StatusError est retournée pour toute réponse hors 2xx.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("statut HTTP %d: %s", e.Code, e.Body)
}

// HTTPClient envoie des requêtes JSON derrière un disjoncteur.
type HTTPClient struct {
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
}

func NewHTTPClient(name string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		breaker: NewBreaker[[]byte](name),
	}
}

// DoJSON exécute la requête et décode la réponse dans out (si non nil).
func (c *HTTPClient) DoJSON(ctx context.Context, req HTTPRequest, out any) error {
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.send(ctx, req)
	})
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("réponse illisible: %w", err)
	}
	return nil
}

func (c *HTTPClient) send(ctx context.Context, req HTTPRequest) ([]byte, error) {
	var payload io.Reader
	if req.Body != nil {
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return nil, err
		}
		payload = bytes.NewReader(raw)
	}

	request, err := http.NewRequestWithContext(ctx, req.Method, req.URL, payload)
	if err != nil {
		return nil, fmt.Errorf("requête invalide: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	for key, value := range req.Headers {
		request.Header.Set(key, value)
	}
	if req.BasicAuth[0] != "" {
		request.SetBasicAuth(req.BasicAuth[0], req.BasicAuth[1])
	}

	response, err := c.client.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, &StatusError{Code: response.StatusCode, Body: truncate(string(body), 300)}
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
