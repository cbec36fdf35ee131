package ai

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/doeshing/nlsh/internal/domain"
)

// resolveEnv returns the first non-empty value among vars.
func resolveEnv(vars []string) string {
	for _, name := range vars {
		if value := strings.TrimSpace(os.Getenv(name)); value != "" {
			return value
		}
	}
	return ""
}

// resolveAPIKey reads the backend credential or returns an ErrAuth.
func resolveAPIKey(def domain.BackendDefinition) (string, error) {
	vars := def.AuthEnvVars()
	if key := resolveEnv(vars); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("%w: missing API key, set %s", domain.ErrAuth, strings.Join(vars, " or "))
}

// HasCredentials reports whether a cloud backend has a key available.
// Local backends always report true.
func HasCredentials(def domain.BackendDefinition) bool {
	if !def.Kind.IsCloud() {
		return true
	}
	return resolveEnv(def.AuthEnvVars()) != ""
}

// Pool sizing for a handful of provider hosts with one request in flight.
const (
	maxIdleConns        = 8
	maxIdleConnsPerHost = 2
	idleConnTimeout     = 90 * time.Second
	dialTimeout         = 10 * time.Second
)

// NewHTTPClient returns a client over a pooled transport shared by every
// backend. It sets no overall timeout: each Generate call carries its own
// deadline, and the header timeout only guards a server that accepts the
// connection and never answers.
func NewHTTPClient(opts Options) *http.Client {
	return &http.Client{Transport: newPooledTransport(max(opts.RequestTimeout, opts.LocalTimeout))}
}

func newPooledTransport(respTimeout time.Duration) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   dialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: respTimeout,
		MaxIdleConns:          maxIdleConns,
		MaxIdleConnsPerHost:   maxIdleConnsPerHost,
		IdleConnTimeout:       idleConnTimeout,
		ForceAttemptHTTP2:     true,
	}
}
