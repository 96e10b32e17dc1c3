// Copyright (c) 2026 Certrix. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package proxy implements the edge shim that fronts the certificate platform
backend.

It forwards /api and /auth traffic byte-for-byte to the upstream origin,
rewrites the forwarding headers, and converts upstream unreachability into
the API's envelope shape so console clients decode every failure uniformly.
The proxy adds no semantics of its own: whatever the upstream answers —
success or failure — is streamed back verbatim.
*/
package proxy

import (
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/taibuivan/certrix/internal/platform/constants"
	"github.com/taibuivan/certrix/internal/platform/ctxutil"
	"github.com/taibuivan/certrix/internal/platform/middleware"
	"github.com/taibuivan/certrix/internal/platform/obs"
)

// Connection-level headers never forwarded across the hop.
var hopByHopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Proxy-Connection",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Forwarder streams requests to the upstream origin and responses back.
//
// # Concurrency
//
// Forwarder is immutable after construction and safe for concurrent use.
type Forwarder struct {
	upstream  *url.URL
	transport http.RoundTripper
	log       *slog.Logger
}

// NewForwarder constructs a Forwarder targeting the given upstream origin.
func NewForwarder(upstreamURL string, log *slog.Logger) (*Forwarder, error) {
	upstream, err := url.Parse(upstreamURL)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &Forwarder{
		upstream: upstream,
		transport: &http.Transport{
			MaxIdleConns:          50,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			ResponseHeaderTimeout: 30 * time.Second,
		},
		log: log,
	}, nil
}

// ServeHTTP forwards one request. The upstream response — status, headers,
// body — is relayed untouched. Only a request that never produced an upstream
// response gets a proxy-originated 502; once body bytes have flowed, a broken
// stream is terminated as-is because the status line is already gone.
func (f *Forwarder) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	logger := ctxutil.GetLogger(request.Context())

	outbound, err := f.buildOutbound(request)
	if err != nil {
		logger.Error("outbound request build failed", slog.Any("error", err))
		writeBadGateway(writer)
		return
	}

	response, err := f.transport.RoundTrip(outbound)
	if err != nil {
		obs.UpstreamFailure()
		logger.Error("upstream unreachable",
			slog.String("upstream", f.upstream.Host),
			slog.Any("error", err))
		writeBadGateway(writer)
		return
	}
	defer func() { _ = response.Body.Close() }()

	copyHeaders(writer.Header(), response.Header)
	writer.WriteHeader(response.StatusCode)

	if _, err := io.Copy(writer, response.Body); err != nil {
		// Status and some bytes are already on the wire; all we can do is
		// drop the connection.
		logger.Warn("upstream stream terminated mid-flight", slog.Any("error", err))
	}
}

// buildOutbound clones the inbound request onto the upstream origin,
// preserving method, path, query, and body, and rewriting the hop headers.
func (f *Forwarder) buildOutbound(request *http.Request) (*http.Request, error) {
	target := *f.upstream
	target.Path = request.URL.Path
	target.RawPath = request.URL.RawPath
	target.RawQuery = request.URL.RawQuery

	outbound, err := http.NewRequestWithContext(request.Context(), request.Method, target.String(), request.Body)
	if err != nil {
		return nil, err
	}
	outbound.ContentLength = request.ContentLength

	copyHeaders(outbound.Header, request.Header)
	for _, header := range hopByHopHeaders {
		outbound.Header.Del(header)
	}

	// Forwarding identity: the upstream sees its own host, with the original
	// edge coordinates preserved in the X-Forwarded chain.
	outbound.Host = f.upstream.Host
	outbound.Header.Set(constants.HeaderXForwardedHost, request.Host)
	outbound.Header.Set(constants.HeaderXForwardedProto, schemeOf(request))
	appendForwardedFor(outbound.Header, request)

	return outbound, nil
}

func schemeOf(request *http.Request) string {
	if request.TLS != nil {
		return "https"
	}
	return "http"
}

// appendForwardedFor extends the X-Forwarded-For chain with the direct peer,
// preserving any hops already recorded.
func appendForwardedFor(header http.Header, request *http.Request) {
	peer := middleware.RealIP(request)
	if prior := request.Header.Get(constants.HeaderXForwardedFor); prior != "" {
		peer = prior + ", " + directPeer(request)
	}
	header.Set(constants.HeaderXForwardedFor, peer)
}

func directPeer(request *http.Request) string {
	host, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return request.RemoteAddr
	}
	return host
}

func copyHeaders(dst, src http.Header) {
	for key, values := range src {
		for _, value := range values {
			dst.Add(key, value)
		}
	}
}

// writeBadGateway emits the envelope-shaped unreachability answer.
func writeBadGateway(writer http.ResponseWriter) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(http.StatusBadGateway)
	_, _ = writer.Write([]byte(`{"success":false,"message":"Upstream API unreachable"}`))
}
