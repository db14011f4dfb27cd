package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopscout/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedRandom always picks the same header index and jitter fraction
type fixedRandom struct {
	index    int
	fraction float64
}

func (r fixedRandom) Intn(n int) int   { return r.index % n }
func (r fixedRandom) Float64() float64 { return r.fraction }

// sleepRecorder captures requested delays without blocking
type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return ctx.Err()
}

func (s *sleepRecorder) recorded() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}

func newTestClient(t *testing.T) (*Client, *sleepRecorder) {
	t.Helper()

	client := NewClient(Config{
		Timeout: 2 * time.Second,
		Policy:  DefaultRetryPolicy(),
	})
	t.Cleanup(client.Close)

	recorder := &sleepRecorder{}
	client.SetSleeper(recorder.sleep)
	client.SetRandom(fixedRandom{index: 0, fraction: 0.5})
	return client, recorder
}

func TestNewClient(t *testing.T) {
	client := NewClient(Config{})
	defer client.Close()

	assert.NotNil(t, client.httpClient)
	assert.Equal(t, 15*time.Second, client.httpClient.Timeout)
	assert.Equal(t, DefaultRetryPolicy(), client.policy)
	assert.Equal(t, int64(defaultMaxBodyBytes), client.maxBody)
	assert.Len(t, client.headers, 5)
	assert.False(t, client.throttle.Limited())
}

func TestNewClient_TLSFingerprint(t *testing.T) {
	plain := NewClient(Config{TLSFingerprint: false})
	defer plain.Close()
	fingerprinted := NewClient(Config{TLSFingerprint: true})
	defer fingerprinted.Close()

	plainTransport := plain.httpClient.Transport.(*http.Transport)
	assert.Nil(t, plainTransport.DialTLSContext)

	fpTransport := fingerprinted.httpClient.Transport.(*http.Transport)
	assert.NotNil(t, fpTransport.DialTLSContext)
	assert.False(t, fpTransport.ForceAttemptHTTP2)
}

func TestChromeH1Spec(t *testing.T) {
	spec, err := chromeH1Spec()
	require.NoError(t, err)
	require.NotNil(t, spec)
}

func TestFetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer server.Close()

	client, recorder := newTestClient(t)

	body, err := client.Fetch(context.Background(), server.URL+"/search?keyword=shoes")

	require.NoError(t, err)
	assert.Equal(t, "<html><body>ok</body></html>", string(body))
	// Only the pacing delay: 1s + 0.5 * 2s
	assert.Equal(t, []time.Duration{2 * time.Second}, recorder.recorded())
}

func TestFetch_SendsRotatedHeaders(t *testing.T) {
	var gotUA, gotLang string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client, _ := newTestClient(t)
	client.SetRandom(fixedRandom{index: 1})

	_, err := client.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	want := DefaultHeaderPool()[1]
	assert.Equal(t, want["User-Agent"], gotUA)
	assert.Contains(t, gotUA, "Firefox")
	assert.Equal(t, want["Accept-Language"], gotLang)
}

func TestFetch_CustomHeaderPool(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client, _ := newTestClient(t)
	client.SetHeaderPool([]HeaderSet{{"User-Agent": "probe/1.0"}})
	client.SetHeaderPool(nil)

	_, err := client.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "probe/1.0", gotUA)
}

func TestFetch_BlockedThenSuccess(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		switch attempts {
		case 1:
			w.WriteHeader(http.StatusForbidden)
		case 2:
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			w.Write([]byte("listing"))
		}
	}))
	defer server.Close()

	client, recorder := newTestClient(t)

	body, err := client.Fetch(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "listing", string(body))
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []time.Duration{
		1500 * time.Millisecond, // 2^0 s + jitter
		2500 * time.Millisecond, // 2^1 s + jitter
		2 * time.Second,         // pacing
	}, recorder.recorded())
}

func TestFetch_BlockedExhausted(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, recorder := newTestClient(t)

	body, err := client.Fetch(context.Background(), server.URL)

	assert.Nil(t, body)
	assert.ErrorIs(t, err, domain.ErrFetchExhausted)
	assert.ErrorIs(t, err, domain.ErrUpstreamBlocked)
	assert.Equal(t, 3, attempts)
	// No backoff after the final attempt
	assert.Len(t, recorder.recorded(), 2)
}

func TestFetch_OtherStatus_NoRetry(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError, http.StatusBadGateway} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			attempts := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				attempts++
				w.WriteHeader(status)
			}))
			defer server.Close()

			client, recorder := newTestClient(t)

			body, err := client.Fetch(context.Background(), server.URL)

			assert.Nil(t, body)
			assert.ErrorIs(t, err, domain.ErrUpstreamStatus)
			assert.NotErrorIs(t, err, domain.ErrFetchExhausted)
			assert.Equal(t, 1, attempts)
			assert.Empty(t, recorder.recorded())
		})
	}
}

func TestFetch_NetworkErrorRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	target := server.URL
	server.Close()

	client, recorder := newTestClient(t)

	body, err := client.Fetch(context.Background(), target)

	assert.Nil(t, body)
	assert.ErrorIs(t, err, domain.ErrFetchExhausted)
	assert.NotErrorIs(t, err, domain.ErrUpstreamBlocked)
	assert.Equal(t, []time.Duration{1500 * time.Millisecond, 2500 * time.Millisecond}, recorder.recorded())
}

func TestFetch_TimeoutRetries(t *testing.T) {
	attempts := 0
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		current := attempts
		mu.Unlock()
		if current == 1 {
			time.Sleep(300 * time.Millisecond)
		}
		w.Write([]byte("late but fine"))
	}))
	defer server.Close()

	client, _ := newTestClient(t)
	client.httpClient.Timeout = 100 * time.Millisecond

	body, err := client.Fetch(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "late but fine", string(body))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, attempts)
}

func TestFetch_ContextCancelled(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.Write([]byte("never read"))
	}))
	defer server.Close()

	client, _ := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	body, err := client.Fetch(ctx, server.URL)

	assert.Nil(t, body)
	assert.ErrorIs(t, err, domain.ErrFetchExhausted)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, attempts)
}

func TestFetch_DecodesCharset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		w.Write([]byte("<p>caf\xe9</p>"))
	}))
	defer server.Close()

	client, _ := newTestClient(t)

	body, err := client.Fetch(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "<p>café</p>", string(body))
}

func TestFetch_CapsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(strings.Repeat("a", 100)))
	}))
	defer server.Close()

	client, _ := newTestClient(t)
	client.maxBody = 10

	body, err := client.Fetch(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Len(t, body, 10)
}

func TestHostOf(t *testing.T) {
	assert.Equal(t, "www.snapdeal.com", hostOf("https://www.snapdeal.com/search?keyword=a"))
	assert.Equal(t, "127.0.0.1:8080", hostOf("http://127.0.0.1:8080/x"))
	assert.Equal(t, "not a url", hostOf("not a url"))
}
