// Package httputil builds the HTTP clients creeper uses to reach the
// Mojang CDN and package-declared artifact URLs. Two profiles exist:
// a metadata client with an overall request deadline for small JSON
// and TOML documents, and a download client with no whole-request
// timeout, since artifact bodies can be tens of megabytes and their
// lifetime is governed by the caller's context instead. Both validate
// redirect targets so a hostile registry entry can't bounce a fetch
// into a private network.
package httputil

import (
	"fmt"
	"net"
	"net/http"
	"time"
)

// Options configures a client profile.
type Options struct {
	// Timeout bounds the whole request, body included. Zero means no
	// overall deadline; cancellation then comes from the request
	// context alone.
	Timeout time.Duration

	// DialTimeout bounds TCP connection establishment.
	DialTimeout time.Duration

	// TLSHandshakeTimeout bounds the TLS handshake.
	TLSHandshakeTimeout time.Duration

	// ResponseHeaderTimeout bounds the wait for response headers after
	// the request is written.
	ResponseHeaderTimeout time.Duration

	// MaxRedirects caps the redirect chain length.
	MaxRedirects int
}

// MetadataOptions is the profile for manifest and registry documents:
// small bodies, so a hard overall deadline is safe.
func MetadataOptions(timeout time.Duration) Options {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return Options{
		Timeout:               timeout,
		DialTimeout:           30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		MaxRedirects:          10,
	}
}

// DownloadOptions is the profile for artifact bodies. No overall
// timeout: a client jar on a slow link can legitimately take minutes,
// and the artifact store's context handles cancellation.
func DownloadOptions() Options {
	return Options{
		DialTimeout:           30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		MaxRedirects:          10,
	}
}

// NewClient builds an *http.Client from opts. Compression is left
// disabled so a response body's length stays comparable to the
// Content-Length the artifact store reports progress against, and
// redirects are checked for scheme downgrades and blocked IP ranges.
func NewClient(opts Options) *http.Client {
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 30 * time.Second
	}
	if opts.TLSHandshakeTimeout == 0 {
		opts.TLSHandshakeTimeout = 10 * time.Second
	}
	if opts.ResponseHeaderTimeout == 0 {
		opts.ResponseHeaderTimeout = 10 * time.Second
	}
	if opts.MaxRedirects == 0 {
		opts.MaxRedirects = 10
	}

	return &http.Client{
		Timeout: opts.Timeout,
		Transport: &http.Transport{
			DisableCompression: true,
			DialContext: (&net.Dialer{
				Timeout:   opts.DialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   opts.TLSHandshakeTimeout,
			ResponseHeaderTimeout: opts.ResponseHeaderTimeout,
			ExpectContinueTimeout: 1 * time.Second,
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
		},
		CheckRedirect: checkRedirect(opts.MaxRedirects),
	}
}

// checkRedirect rejects scheme downgrades, over-long chains, and
// redirect targets in blocked IP ranges. The initial request URL is
// deliberately not validated here: local registries and tests point
// creeper at loopback servers directly, and only a server-controlled
// redirect can steer an in-flight request somewhere the caller never
// named.
func checkRedirect(maxRedirects int) func(req *http.Request, via []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if req.URL.Scheme != "https" {
			return fmt.Errorf("httputil: refusing redirect to non-HTTPS URL %s", req.URL)
		}
		if len(via) >= maxRedirects {
			return fmt.Errorf("httputil: redirect chain exceeds %d hops", maxRedirects)
		}

		host := req.URL.Hostname()
		if ip := net.ParseIP(host); ip != nil {
			return ValidateIP(ip, host)
		}

		// Resolve the hostname and validate every address it maps to,
		// so a rebinding DNS entry can't smuggle one blocked IP in
		// among public ones.
		ips, err := net.LookupIP(host)
		if err != nil {
			return fmt.Errorf("httputil: resolve redirect host %s: %w", host, err)
		}
		for _, ip := range ips {
			if err := ValidateIP(ip, host); err != nil {
				return err
			}
		}
		return nil
	}
}
