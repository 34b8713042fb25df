package network

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
)

const dialTimeout = 15 * time.Second

// TLSClient presents a Chrome ClientHello. Some mirrors reject the Go TLS
// fingerprint outright, which would make them look unreachable.
//
// Requests go over HTTP/2 first and are retried once over HTTP/1.1 when the
// server does not negotiate h2.
var TLSClient = &http.Client{
	Timeout:   30 * time.Second,
	Transport: &fallback{primary: h2Transport, secondary: h1Transport},
}

var h2Transport = &http2.Transport{
	DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
		return dialChrome(ctx, network, addr, nil)
	},
}

var h1Transport = &http.Transport{
	DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
		return dialChrome(ctx, network, addr, []string{"http/1.1"})
	},
	ForceAttemptHTTP2: false,
}

// fallback retries bodiless requests on secondary when primary fails.
type fallback struct {
	primary, secondary http.RoundTripper
}

func (f *fallback) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme != "https" {
		return f.secondary.RoundTrip(req)
	}

	resp, err := f.primary.RoundTrip(req)
	if err == nil || req.Body != nil && req.GetBody == nil {
		return resp, err
	}

	retry := req.Clone(req.Context())
	if req.GetBody != nil {
		if retry.Body, err = req.GetBody(); err != nil {
			return nil, err
		}
	}
	return f.secondary.RoundTrip(retry)
}

func dialChrome(ctx context.Context, network, addr string, protos []string) (net.Conn, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	dialer := &net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	tlsConn := utls.UClient(conn, &utls.Config{
		ServerName: host,
		MinVersion: tls.VersionTLS12,
		NextProtos: protos,
	}, utls.HelloChrome_120)

	if err := tlsConn.Handshake(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("tls handshake with %s: %w", host, err)
	}

	return tlsConn, nil
}
