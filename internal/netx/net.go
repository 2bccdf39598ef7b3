// Package netx holds small HTTP helpers shared by the vendor proxies.
package netx

import (
	"errors"
	"io"
	"net/url"
	"strings"
)

// ChunkSize is the read size used when relaying a streamed body.
const ChunkSize = 8192

// HostAllowed reports whether u is an http(s) URL whose host equals one of
// hosts or is a subdomain of one.
func HostAllowed(u *url.URL, hosts []string) bool {
	if u == nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" {
			continue
		}
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// CopyChunks relays src to dst in ChunkSize pieces, calling flush after each
// write so the receiver sees data as it arrives. flush may be nil. It returns
// the number of bytes written.
func CopyChunks(dst io.Writer, src io.Reader, flush func()) (int64, error) {
	buf := make([]byte, ChunkSize)
	var total int64
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			w, err := dst.Write(buf[:n])
			total += int64(w)
			if err != nil {
				return total, err
			}
			if flush != nil {
				flush()
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return total, nil
			}
			return total, readErr
		}
	}
}
