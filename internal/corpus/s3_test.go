package corpus

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBucket answers the HEAD, GET and ListObjectsV2 requests the S3 driver
// issues, for a single path-style bucket.
type fakeBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeBucket) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}
	if req.Method == http.MethodGet && req.URL.Query().Get("list-type") == "2" {
		prefix := req.URL.Query().Get("prefix")
		var keys []string
		for k := range f.objects {
			if strings.HasPrefix(k, prefix) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		var b strings.Builder
		b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><ListBucketResult><Name>adas</Name><IsTruncated>false</IsTruncated>`)
		for _, k := range keys {
			fmt.Fprintf(&b, "<Contents><Key>%s</Key><Size>%d</Size><LastModified>2024-01-01T00:00:00Z</LastModified></Contents>", k, len(f.objects[k]))
		}
		b.WriteString("</ListBucketResult>")
		return xmlResponse(http.StatusOK, b.String()), nil
	}

	body, ok := f.objects[key]
	switch req.Method {
	case http.MethodHead:
		if !ok {
			return &http.Response{StatusCode: http.StatusNotFound, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}, nil
		}
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{
			"Content-Length": {fmt.Sprintf("%d", len(body))},
			"Last-Modified":  {time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Format(http.TimeFormat)},
		}}, nil
	case http.MethodGet:
		if !ok {
			return xmlResponse(http.StatusNotFound, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`), nil
		}
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(body)), Header: http.Header{
			"Content-Length": {fmt.Sprintf("%d", len(body))},
		}}, nil
	}
	return xmlResponse(http.StatusNotImplemented, ""), nil
}

func xmlResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": {"application/xml"}},
	}
}

func newFakeS3(t *testing.T, prefix string, objects map[string][]byte) *S3 {
	t.Helper()
	t.Setenv("AWS_CONFIG_FILE", "/dev/null")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/dev/null")
	store, err := NewS3(context.Background(), S3Config{
		Bucket:          "adas",
		Prefix:          prefix,
		Endpoint:        "https://s3.test.local",
		PathStyle:       true,
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
		HTTPClient:      &http.Client{Transport: &fakeBucket{objects: objects}},
	})
	require.NoError(t, err)
	return store
}

func TestS3StoreReadsObjects(t *testing.T) {
	ctx := context.Background()
	store := newFakeS3(t, "mirror", map[string][]byte{
		"mirror/adf21/bms97_c6.dat": []byte("stopping"),
		"mirror/adf22/bme10_h1.dat": []byte("emission"),
	})
	assert.Equal(t, DriverS3, store.Driver())

	ok, err := store.Exists(ctx, "adf21/bms97_c6.dat")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Exists(ctx, "adf21/missing.dat")
	require.NoError(t, err)
	assert.False(t, ok)

	rc, err := store.Open(ctx, "adf22/bme10_h1.dat")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "emission", string(data))

	_, err = store.Open(ctx, "adf22/missing.dat")
	assert.ErrorIs(t, err, ErrNotFound)

	infos, err := store.List(ctx, "adf2")
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "adf21/bms97_c6.dat", infos[0].Name)
	assert.EqualValues(t, len("stopping"), infos[0].Size)
}

func TestNewS3RequiresBucket(t *testing.T) {
	_, err := NewS3(context.Background(), S3Config{})
	assert.Error(t, err)
}
