package util

import (
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/http/httpproxy"
)

// NewProxyFunc creates a proxy function based on configuration.
// Explicit values override HTTP_PROXY, HTTPS_PROXY and NO_PROXY from the environment;
// with nothing configured it falls back to the environment entirely.
func NewProxyFunc(httpProxy, httpsProxy, noProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" && noProxy == "" {
		return http.ProxyFromEnvironment
	}

	cfg := httpproxy.FromEnvironment()
	if httpProxy != "" {
		cfg.HTTPProxy = httpProxy
	}
	if httpsProxy != "" {
		cfg.HTTPSProxy = httpsProxy
	}
	if noProxy != "" {
		cfg.NoProxy = noProxy
	}

	proxyFor := cfg.ProxyFunc()
	return func(req *http.Request) (*url.URL, error) {
		return proxyFor(req.URL)
	}
}

// NewHTTPClient returns a client whose Timeout bounds each request
func NewHTTPClient(timeout time.Duration, httpProxy, httpsProxy, noProxy string) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = NewProxyFunc(httpProxy, httpsProxy, noProxy)

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
