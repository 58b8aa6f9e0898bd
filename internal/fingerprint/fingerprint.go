package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strings"
)

// Header carries a client-computed fingerprint (e.g. a canvas-rendering
// hash). When present it is preferred over the server-side heuristic.
const Header = "X-Device-Fingerprint"

// Provider derives a device fingerprint from a request. The technique is a
// weak heuristic for duplicate-registration prevention, not an identity
// mechanism, and is pluggable so deployments can substitute their own.
type Provider interface {
	Fingerprint(r *http.Request) string
}

// RequestHasher is the default provider: it honors the client-supplied
// fingerprint header and otherwise hashes stable request attributes.
type RequestHasher struct{}

// NewRequestHasher creates the default fingerprint provider.
func NewRequestHasher() *RequestHasher {
	return &RequestHasher{}
}

// Fingerprint returns an fp_-prefixed fingerprint for the request.
func (RequestHasher) Fingerprint(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get(Header)); v != "" {
		return normalize(v)
	}

	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		host = h
	}

	seed := strings.Join([]string{
		host,
		r.UserAgent(),
		r.Header.Get("Accept-Language"),
	}, "|")
	sum := sha256.Sum256([]byte(seed))
	return "fp_" + hex.EncodeToString(sum[:6])
}

// normalize hashes overly long client values and prefixes bare ones so all
// fingerprint keys share the fp_ form.
func normalize(v string) string {
	if len(v) > 64 {
		sum := sha256.Sum256([]byte(v))
		return "fp_" + hex.EncodeToString(sum[:6])
	}
	if !strings.HasPrefix(v, "fp_") {
		return "fp_" + v
	}
	return v
}
