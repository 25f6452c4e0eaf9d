// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package tlsengine

import (
	"bytes"
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/H0llyW00dzZ/tls-client-engine/src/internal/helper/gc"
	"github.com/H0llyW00dzZ/tls-client-engine/src/version"
	"github.com/pkg/errors"
)

// maxRedirects bounds redirect following for OCSP responder queries.
const maxRedirects = 5

// HTTPFetcher is the default Fetcher implementation. It keeps a single
// http.Client with a configurable timeout and follows at most
// maxRedirects redirects.
//
// Thread Safety: Safe for concurrent use.
type HTTPFetcher struct {
	Timeout   time.Duration // HTTP request timeout
	UserAgent string        // Custom User-Agent string, if empty a default is constructed

	mu     sync.Mutex
	client *http.Client
}

// NewHTTPFetcher creates an HTTPFetcher with a default timeout of 10 seconds.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{Timeout: 10 * time.Second}
}

func (f *HTTPFetcher) userAgent() string {
	if f.UserAgent != "" {
		return f.UserAgent
	}
	return "TLS-Client-Engine/" + version.Version
}

func (f *HTTPFetcher) httpClient() *http.Client {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.client == nil {
		f.client = &http.Client{
			Timeout: f.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) > maxRedirects {
					return errors.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		}
		return f.client
	}

	if f.client.Timeout != f.Timeout {
		f.client.Timeout = f.Timeout
	}

	return f.client
}

// Fetch performs the request and drains the body through a pooled buffer.
// A nil body issues a GET, otherwise a POST.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string, headers map[string]string, body []byte) ([]byte, int, error) {
	method := http.MethodGet
	var reader *bytes.Reader
	if body != nil {
		method = http.MethodPost
		reader = bytes.NewReader(body)
	}

	var req *http.Request
	var err error
	if reader != nil {
		req, err = http.NewRequestWithContext(ctx, method, url, reader)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, url, nil)
	}
	if err != nil {
		return nil, 0, errors.Wrap(err, "tlsengine: build request")
	}

	req.Header.Set("User-Agent", f.userAgent())
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := f.httpClient().Do(req)
	if err != nil {
		return nil, 0, errors.Wrap(err, "tlsengine: fetch")
	}
	defer resp.Body.Close()

	buf := gc.Default.Get()
	defer func() {
		buf.Reset()
		gc.Default.Put(buf)
	}()

	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, resp.StatusCode, errors.Wrap(err, "tlsengine: read response body")
	}

	data := append([]byte(nil), buf.Bytes()...)
	return data, resp.StatusCode, nil
}
