package transport

import (
	"compress/flate"
	"compress/gzip"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/richard-senior/podds/internal/logger"
)

var httpClient *http.Client

// extraCABundle loads an additional CA bundle when PODDS_CA_BUNDLE is
// set. Needed behind TLS-intercepting corporate proxies.
func extraCABundle() ([]byte, error) {
	bundlePath := os.Getenv("PODDS_CA_BUNDLE")
	if bundlePath == "" {
		return nil, nil
	}
	caCert, err := os.ReadFile(bundlePath)
	if err != nil {
		logger.Warn("Failed to read CA bundle", bundlePath, err)
		return nil, err
	}
	return caCert, nil
}

// GetHTTPClient returns the shared HTTP client, building it on first use
func GetHTTPClient() (*http.Client, error) {
	if httpClient != nil {
		return httpClient, nil
	}

	rootCAs, err := x509.SystemCertPool()
	if err != nil {
		logger.Warn("Failed to get system cert pool", err)
		rootCAs = x509.NewCertPool()
	}

	if caCert, err := extraCABundle(); err == nil && caCert != nil {
		if ok := rootCAs.AppendCertsFromPEM(caCert); !ok {
			logger.Warn("Failed to append extra CA certificate")
		} else {
			logger.Info("Added extra CA certificate to root CAs")
		}
	}

	httpClient = &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{RootCAs: rootCAs},
			Proxy:           http.ProxyFromEnvironment,
		},
		Timeout: 30 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("stopped after 10 redirects")
			}
			return nil
		},
	}
	return httpClient, nil
}

// GetBytes fetches a URL with browser-like headers and returns the
// decoded body. Handles gzip, deflate and brotli content encodings.
func GetBytes(url string) ([]byte, error) {
	client, err := GetHTTPClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Some score feeds refuse requests that don't look like a browser
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "application/json,text/html,application/xhtml+xml,*/*;q=0.8")
	req.Header.Set("Referer", "http://www.google.com/")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request returned error status %d", resp.StatusCode)
	}

	reader, err := decodeBody(resp)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}
	return data, nil
}

// decodeBody wraps the response body in the decoder the Content-Encoding
// header calls for
func decodeBody(resp *http.Response) (io.ReadCloser, error) {
	encoding := resp.Header.Get("Content-Encoding")
	switch encoding {
	case "gzip":
		logger.Debug("Handling gzip compressed content")
		reader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return reader, nil
	case "deflate":
		logger.Debug("Handling deflate compressed content")
		return flate.NewReader(resp.Body), nil
	case "br":
		logger.Debug("Handling brotli compressed content")
		return io.NopCloser(brotli.NewReader(resp.Body)), nil
	default:
		if encoding != "" {
			logger.Warn("Unknown content encoding:", encoding)
		}
		return resp.Body, nil
	}
}

// GetJSON fetches a URL and unmarshals the body into v
func GetJSON(url string, v interface{}) error {
	data, err := GetBytes(url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse response from %s: %w", url, err)
	}
	return nil
}
