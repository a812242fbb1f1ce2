package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/akeren/waitlist-api/internal/log"
	apperrors "github.com/akeren/waitlist-api/pkg/errors"
	"github.com/akeren/waitlist-api/pkg/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func mountTestController(rs *RouterService) {
	ctrl := NewRESTController("TestController", "/", func(rs *RouterService, c *RESTController) {
		rs.AddGetHandler(c, nil, "ip", func(ctx *RequestContext) *ServiceResult {
			return OKResult(ctx.ClientIP(), "ok")
		})

		rs.AddPostHandler(c, nil, "echo", func(ctx *RequestContext) *ServiceResult {
			var payload map[string]any
			if err := ctx.ShouldBindJSON(&payload); err != nil {
				return BadRequestResult("bad", nil)
			}
			return OKResult(payload, "ok")
		})

		limited := rs.NewRateLimiter(2, time.Minute, ratelimit.SlidingWindow)
		rs.AddPostHandler(c, limited, "limited", func(ctx *RequestContext) *ServiceResult {
			return RawResult(http.StatusOK, map[string]string{"message": "sent"})
		})

		rs.AddGetHandler(c, nil, "conflict", func(ctx *RequestContext) *ServiceResult {
			return AppErrorResult(ctx, apperrors.NewConflictError("You're already on the waitlist.", nil))
		})

		rs.AddGetHandler(c, nil, "boom", func(ctx *RequestContext) *ServiceResult {
			return AppErrorResult(ctx, errors.New("pq: connection refused"))
		})
	})

	rs.MountController(ctrl)
}

func newTestRouterService(t *testing.T) *RouterService {
	t.Helper()

	logger := log.NewLoggerWithJSONOutput()
	return CreateRouterService(logger, nil, &RouterConfig{
		RateLimitRequests: 1000,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    5 * time.Second,
	})
}

func serve(rs *RouterService, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var resp envelope
	require.NoError(t, json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&resp))
	return resp
}

func TestTrustedProxies_DisabledByDefault(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "")

	rs := newTestRouterService(t)
	mountTestController(rs)

	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	req.Header.Set("X-Forwarded-For", "1.1.1.1")

	w := serve(rs, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var ip string
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &ip))
	assert.Equal(t, "10.0.0.2", ip, "ClientIP must use RemoteAddr when trusted proxies are disabled")
}

func TestTrustedProxies_StarTrustsForwardedFor(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "*")

	rs := newTestRouterService(t)
	mountTestController(rs)

	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	req.Header.Set("X-Forwarded-For", "1.1.1.1")

	w := serve(rs, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var ip string
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &ip))
	assert.Equal(t, "1.1.1.1", ip)
}

func TestMaxBodySize_Returns413(t *testing.T) {
	t.Setenv("MAX_REQUEST_BODY_BYTES", "10")

	rs := newTestRouterService(t)
	mountTestController(rs)

	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewReader(bytes.Repeat([]byte{'a'}, 50)))
	req.Header.Set("Content-Type", "application/json")

	w := serve(rs, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code, w.Body.String())
}

func TestHandlerRateLimit_ThirdRequestIs429(t *testing.T) {
	rs := newTestRouterService(t)
	mountTestController(rs)

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/limited", nil)
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		return serve(rs, req)
	}

	first := send("203.0.113.9")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))
	assert.JSONEq(t, `{"message":"sent"}`, first.Body.String())

	require.Equal(t, http.StatusOK, send("203.0.113.9").Code)

	third := send("203.0.113.9")
	require.Equal(t, http.StatusTooManyRequests, third.Code)
	assert.Equal(t, "0", third.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, third.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusTooManyRequests, decodeEnvelope(t, third).Code)

	assert.Equal(t, http.StatusOK, send("198.51.100.4").Code, "other clients keep their own window")
}

type unavailableLimiter struct{}

func (unavailableLimiter) GetLimitDetails() (int, time.Duration) { return 2, time.Minute }

func (unavailableLimiter) Allow(context.Context, string) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, errors.New("rate limiter Redis error: connection refused")
}

func (unavailableLimiter) Close() error { return nil }

func TestHandlerRateLimit_StoreErrorLetsRequestThrough(t *testing.T) {
	rs := newTestRouterService(t)
	ctrl := NewRESTController("DownController", "/", func(rs *RouterService, c *RESTController) {
		rs.AddPostHandler(c, unavailableLimiter{}, "down", func(ctx *RequestContext) *ServiceResult {
			return RawResult(http.StatusOK, map[string]string{"message": "sent"})
		})
	})
	rs.MountController(ctrl)

	for i := 0; i < 3; i++ {
		w := serve(rs, httptest.NewRequest(http.MethodPost, "/down", nil))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
		assert.Empty(t, w.Header().Get("X-RateLimit-Remaining"))
	}
}

func TestHandlerRateLimit_DoesNotConsumeGlobalBudget(t *testing.T) {
	rs := CreateRouterService(log.NewLoggerWithJSONOutput(), nil, &RouterConfig{
		RateLimitRequests: 1,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    time.Second,
	})
	mountTestController(rs)

	req := httptest.NewRequest(http.MethodPost, "/limited", nil)
	require.Equal(t, http.StatusOK, serve(rs, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/ip", nil)
	assert.Equal(t, http.StatusOK, serve(rs, req).Code)
}

func TestAppErrorResult(t *testing.T) {
	rs := newTestRouterService(t)
	mountTestController(rs)

	w := serve(rs, httptest.NewRequest(http.MethodGet, "/conflict", nil))
	require.Equal(t, http.StatusConflict, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, "You're already on the waitlist.", resp.Message)
	assert.Equal(t, "null", string(resp.Data))

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(log.CorrelationHeader, "corr-42")
	w = serve(rs, req)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	resp = decodeEnvelope(t, w)
	assert.Equal(t, "An unexpected error occurred", resp.Message)
	assert.JSONEq(t, `{"correlation_id":"corr-42"}`, string(resp.Data))
	assert.Equal(t, "corr-42", w.Header().Get(log.CorrelationHeader))
}

func TestUnknownRoute_Returns404Envelope(t *testing.T) {
	rs := newTestRouterService(t)
	mountTestController(rs)

	w := serve(rs, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, http.StatusNotFound, decodeEnvelope(t, w).Code)
}

func TestDuplicateHandlerRegistrationPanics(t *testing.T) {
	rs := newTestRouterService(t)
	mountTestController(rs)

	assert.Panics(t, func() {
		rs.MountController(NewRESTController("Other", "/", func(rs *RouterService, c *RESTController) {
			rs.AddGetHandler(c, nil, "ip", func(ctx *RequestContext) *ServiceResult { return OKResult(nil, "") })
		}))
	})
}

func TestClientIPFromRequest(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"first forwarded value", map[string]string{"X-Forwarded-For": " 1.2.3.4 , 5.6.7.8"}, "10.0.0.1:80", "1.2.3.4"},
		{"real ip", map[string]string{"X-Real-IP": " 9.9.9.9 "}, "10.0.0.1:80", "9.9.9.9"},
		{"forwarded wins over real ip", map[string]string{"X-Forwarded-For": "1.1.1.1", "X-Real-IP": "2.2.2.2"}, "", "1.1.1.1"},
		{"peer address", nil, "10.0.0.1:80", "10.0.0.1"},
		{"fallback", nil, "", "127.0.0.1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, ClientIPFromRequest(req))
		})
	}
}

func TestParseTrustedProxiesEnv(t *testing.T) {
	assert.Nil(t, parseTrustedProxiesEnv(" "))
	assert.Equal(t, []string{"0.0.0.0/0", "::/0"}, parseTrustedProxiesEnv("*"))
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.0.1"}, parseTrustedProxiesEnv("10.0.0.0/8, ,192.168.0.1"))
}

func TestMetrics_CountsRateLimitedRequests(t *testing.T) {
	t.Setenv("METRICS_ENABLED", "")

	rs := newTestRouterService(t)
	mountTestController(rs)

	for range 3 {
		serve(rs, httptest.NewRequest(http.MethodPost, "/limited", nil))
	}

	w := serve(rs, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `http_rate_limited_total{scope="POST-/limited"} 1`)
	assert.Contains(t, w.Body.String(), `http_requests_total{method="POST",route="/limited",status="429"} 1`)
}

func TestMetrics_DisabledByEnv(t *testing.T) {
	t.Setenv("METRICS_ENABLED", "false")

	rs := newTestRouterService(t)
	mountTestController(rs)

	w := serve(rs, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotPanics(t, func() { rs.observeRateLimited("global") })
}
