package helpers

import (
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

// NewESClient creates an Elasticsearch client with basic auth when username is set.
// It returns (nil, nil) when addrs is empty so search can be switched off by config.
func NewESClient(addrs []string, username, password string, timeout time.Duration) (*elasticsearch.Client, error) {
	if len(addrs) == 0 {
		return nil, nil
	}
	if timeout <= 0 {
		return nil, errors.New("elasticsearch: timeout must be positive")
	}
	cfg := elasticsearch.Config{
		Addresses:  addrs,
		Username:   username,
		Password:   password,
		MaxRetries: 2,
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: timeout,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			DialContext:           (&net.Dialer{Timeout: timeout}).DialContext,
		},
	}
	return elasticsearch.NewClient(cfg)
}
