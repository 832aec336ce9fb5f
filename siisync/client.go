package siisync

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"bitbucket.org/australdata/gestion_backend/config"
	"bitbucket.org/australdata/gestion_backend/models"
)

const responsePreviewLen = 120

type Credentials struct {
	Rut   string
	Clave string
}

// ScrapeClient talks to the external SII scraping service. One endpoint per
// direction; both take the same credential body and answer raw DTE markup.
type ScrapeClient struct {
	baseURL       string
	recibidosPath string
	emitidosPath  string
	http          *http.Client
	maxRetries    int
}

func NewScrapeClient() *ScrapeClient {
	baseURL := strings.TrimSpace(os.Getenv("SII_SCRAPER_BASE_URL"))
	if baseURL == "" {
		baseURL = "http://localhost:9200"
	}
	recibidosPath := strings.TrimSpace(os.Getenv("SII_RECIBIDOS_PATH"))
	if recibidosPath == "" {
		recibidosPath = "/api/dte/recibidos"
	}
	emitidosPath := strings.TrimSpace(os.Getenv("SII_EMITIDOS_PATH"))
	if emitidosPath == "" {
		emitidosPath = "/api/dte/emitidos"
	}
	timeout := time.Duration(config.IntFromEnv("SII_SCRAPER_TIMEOUT_SECONDS", 30)) * time.Second

	return &ScrapeClient{
		baseURL:       strings.TrimRight(baseURL, "/"),
		recibidosPath: recibidosPath,
		emitidosPath:  emitidosPath,
		http:          &http.Client{Timeout: timeout},
		// Default 0 keeps the historical single-attempt behavior.
		maxRetries: config.IntFromEnv("SII_SCRAPER_MAX_RETRIES", 0),
	}
}

// Fetch POSTs the credentials to the direction's endpoint and returns the raw
// markup body. Transport failures and 5xx answers are retried up to
// maxRetries with backoff; a body that does not look like markup is returned
// as InvalidResponseFormatError without any retry.
func (c *ScrapeClient) Fetch(ctx context.Context, direction models.DteDirection, creds Credentials) (string, error) {
	path := c.recibidosPath
	if direction == models.DteDirectionOutgoing {
		path = c.emitidosPath
	}
	endpoint := c.baseURL + path

	payload, err := json.Marshal(map[string]string{
		"rut":   creds.Rut,
		"clave": creds.Clave,
	})
	if err != nil {
		return "", err
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		body, retryable, err := c.fetchOnce(ctx, endpoint, payload)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable || attempt >= c.maxRetries {
			return "", lastErr
		}
		select {
		case <-ctx.Done():
			return "", lastErr
		case <-time.After(time.Second * time.Duration(1<<attempt)):
		}
	}
}

func (c *ScrapeClient) fetchOnce(ctx context.Context, endpoint string, payload []byte) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/xml")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", true, &RemoteServiceError{StatusCode: 0, Reason: err.Error()}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reason := strings.TrimSpace(string(body))
		if reason == "" {
			reason = http.StatusText(resp.StatusCode)
		}
		return "", resp.StatusCode >= 500, &RemoteServiceError{StatusCode: resp.StatusCode, Reason: truncate(reason, responsePreviewLen)}
	}

	text := string(body)
	if !looksLikeMarkup(text) {
		return "", false, &InvalidResponseFormatError{Preview: truncate(strings.TrimSpace(text), responsePreviewLen)}
	}
	return text, false, nil
}

// The body must open with a markup declaration or tag; anything else (an
// error JSON body, an HTML login page) is scraper misbehavior, surfaced
// before the parser ever sees it.
func looksLikeMarkup(body string) bool {
	trimmed := strings.TrimLeft(body, " \t\r\n")
	return strings.HasPrefix(trimmed, "<")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
