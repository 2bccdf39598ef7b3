package netx

import (
	"bytes"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostAllowed(t *testing.T) {
	hosts := []string{"heygen.com", " Media.Example "}
	tests := []struct {
		raw  string
		want bool
	}{
		{"https://heygen.com/stream", true},
		{"https://api.heygen.com/v1/x", true},
		{"http://media.example:8080/a.mp4", true},
		{"https://evilheygen.com/x", false},
		{"https://heygen.com.evil.net/x", false},
		{"ftp://heygen.com/x", false},
		{"https:///nohost", false},
		{"https://169.254.169.254/latest", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			u, err := url.Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, HostAllowed(u, hosts))
		})
	}
	assert.False(t, HostAllowed(nil, hosts))
}

type countingWriter struct {
	bytes.Buffer
	writes int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.writes++
	return w.Buffer.Write(p)
}

func TestCopyChunks(t *testing.T) {
	payload := strings.Repeat("a", ChunkSize*2+10)
	dst := &countingWriter{}
	flushes := 0

	n, err := CopyChunks(dst, strings.NewReader(payload), func() { flushes++ })
	require.NoError(t, err)
	assert.EqualValues(t, len(payload), n)
	assert.Equal(t, payload, dst.String())
	assert.Equal(t, 3, dst.writes)
	assert.Equal(t, 3, flushes)
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestCopyChunks_ReadError(t *testing.T) {
	boom := errors.New("boom")
	_, err := CopyChunks(io.Discard, failingReader{err: boom}, nil)
	assert.ErrorIs(t, err, boom)
}
