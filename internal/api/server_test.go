package api_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/composable-com/ct-connect-akeneo/internal/api"
	"github.com/composable-com/ct-connect-akeneo/internal/jobstatus"
	"github.com/composable-com/ct-connect-akeneo/internal/service"
	"github.com/composable-com/ct-connect-akeneo/internal/service/mocks"
)

func serve(t *testing.T, server http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	var err error
	if body == "" {
		req, err = http.NewRequest(method, path, nil)
	} else {
		req, err = http.NewRequest(method, path, strings.NewReader(body))
	}
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	// No expectations needed - health check doesn't call service
	server := api.NewServer(mocks.NewMockService(ctrl))
	rr := serve(t, server, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"healthy"}`, rr.Body.String())
}

func TestReadinessEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		setupMock      func(*mocks.MockService)
		expectedStatus int
		expectedKey    string
	}{
		{
			name: "service ready",
			setupMock: func(m *mocks.MockService) {
				m.EXPECT().CheckReadiness(gomock.Any()).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedKey:    "status",
		},
		{
			name: "service not ready",
			setupMock: func(m *mocks.MockService) {
				m.EXPECT().CheckReadiness(gomock.Any()).Return(fmt.Errorf("store not ready: connection refused"))
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedKey:    "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)

			mockSvc := mocks.NewMockService(ctrl)
			tt.setupMock(mockSvc)

			rr := serve(t, api.NewServer(mockSvc), http.MethodGet, "/readiness", "")
			assert.Equal(t, tt.expectedStatus, rr.Code)

			var response map[string]string
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
			assert.Contains(t, response, tt.expectedKey)
		})
	}
}

func TestVersionEndpoint(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	rr := serve(t, api.NewServer(mocks.NewMockService(ctrl)), http.MethodGet, "/version", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	for _, key := range []string{"version", "commit", "build_date", "go_version", "platform"} {
		assert.Contains(t, response, key)
	}
}

func TestServiceEndpoint(t *testing.T) {
	t.Parallel()

	const mapping = `{"familyMapping":{}}`

	tests := []struct {
		name           string
		body           string
		setupMock      func(*mocks.MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "save with inline config",
			body: `{"action":"save","syncType":"all","config":` + mapping + `}`,
			setupMock: func(m *mocks.MockService) {
				m.EXPECT().SaveConfig(gomock.Any(), []byte(mapping)).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"success"}`,
		},
		{
			name: "save with config sent as a string",
			body: `{"action":"save","config":"{\"familyMapping\":{}}"}`,
			setupMock: func(m *mocks.MockService) {
				m.EXPECT().SaveConfig(gomock.Any(), []byte(mapping)).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"success"}`,
		},
		{
			name:           "save without config",
			body:           `{"action":"save","syncType":"all"}`,
			setupMock:      func(*mocks.MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"config is required"}`,
		},
		{
			name: "save rejected by validation",
			body: `{"action":"save","config":{"familyMapping":[]}}`,
			setupMock: func(m *mocks.MockService) {
				m.EXPECT().SaveConfig(gomock.Any(), gomock.Any()).
					Return(fmt.Errorf("%w: familyMapping must be an object", service.ErrInvalidConfig))
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "start full sync",
			body: `{"action":"start","syncType":"full"}`,
			setupMock: func(m *mocks.MockService) {
				m.EXPECT().LaunchIfReady(gomock.Any(), jobstatus.KindFull).Return(jobstatus.StateScheduled, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"scheduled"}`,
		},
		{
			name: "stop delta sync",
			body: `{"action":"stop","syncType":"delta"}`,
			setupMock: func(m *mocks.MockService) {
				m.EXPECT().RequestStop(gomock.Any(), jobstatus.KindDelta).Return(jobstatus.StateToStop, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"to-stop"}`,
		},
		{
			name: "start the config record",
			body: `{"action":"start","syncType":"all"}`,
			setupMock: func(m *mocks.MockService) {
				m.EXPECT().LaunchIfReady(gomock.Any(), jobstatus.KindAll).Return(jobstatus.State(""), service.ErrNotAJob)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "get job status",
			body: `{"action":"get","syncType":"full"}`,
			setupMock: func(m *mocks.MockService) {
				total := 10
				m.EXPECT().CheckStatus(gomock.Any(), jobstatus.KindFull).
					Return(&jobstatus.JobStatus{Status: jobstatus.StateRunning, TotalToSync: &total}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"running","totalToSync":10}`,
		},
		{
			name: "get unknown job status",
			body: `{"action":"get","syncType":"delta"}`,
			setupMock: func(m *mocks.MockService) {
				m.EXPECT().CheckStatus(gomock.Any(), jobstatus.KindDelta).Return(nil, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":""}`,
		},
		{
			name: "get config record",
			body: `{"action":"get","syncType":"all"}`,
			setupMock: func(m *mocks.MockService) {
				m.EXPECT().LoadConfig(gomock.Any()).
					Return(&jobstatus.SyncConfigRecord{URL: "https://connector.example.com", Config: json.RawMessage(mapping)}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"url":"https://connector.example.com","config":{"familyMapping":{}}}`,
		},
		{
			name: "get missing config record",
			body: `{"action":"get","syncType":"all"}`,
			setupMock: func(m *mocks.MockService) {
				m.EXPECT().LoadConfig(gomock.Any()).Return(nil, nil)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "store failure",
			body: `{"action":"start","syncType":"delta"}`,
			setupMock: func(m *mocks.MockService) {
				m.EXPECT().LaunchIfReady(gomock.Any(), jobstatus.KindDelta).Return(jobstatus.State(""), errors.New("unavailable"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"Failed to start sync"}`,
		},
		{
			name:           "unknown sync type",
			body:           `{"action":"start","syncType":"weekly"}`,
			setupMock:      func(*mocks.MockService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown action",
			body:           `{"action":"pause","syncType":"full"}`,
			setupMock:      func(*mocks.MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Unknown action pause"}`,
		},
		{
			name:           "malformed body",
			body:           `{"action":`,
			setupMock:      func(*mocks.MockService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)

			mockSvc := mocks.NewMockService(ctrl)
			tt.setupMock(mockSvc)

			rr := serve(t, api.NewServer(mockSvc), http.MethodPost, "/service", tt.body)
			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, rr.Body.String())
			}
		})
	}
}

func TestJobsEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		method         string
		path           string
		withLauncher   bool
		setupMocks     func(*mocks.MockService, *mocks.MockLauncher)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:         "trigger delta sync",
			method:       http.MethodPost,
			path:         "/jobs/delta",
			withLauncher: true,
			setupMocks: func(_ *mocks.MockService, l *mocks.MockLauncher) {
				l.EXPECT().Trigger(jobstatus.KindDelta).Return(true)
			},
			expectedStatus: http.StatusAccepted,
			expectedBody:   `{"kind":"delta","triggered":true}`,
		},
		{
			name:         "trigger while a run is in flight",
			method:       http.MethodPost,
			path:         "/jobs/full",
			withLauncher: true,
			setupMocks: func(_ *mocks.MockService, l *mocks.MockLauncher) {
				l.EXPECT().Trigger(jobstatus.KindFull).Return(false)
			},
			expectedStatus: http.StatusAccepted,
			expectedBody:   `{"kind":"full","triggered":false}`,
		},
		{
			name:           "trigger without a launcher",
			method:         http.MethodPost,
			path:           "/jobs/full",
			setupMocks:     func(*mocks.MockService, *mocks.MockLauncher) {},
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:           "trigger the config record",
			method:         http.MethodPost,
			path:           "/jobs/all",
			withLauncher:   true,
			setupMocks:     func(*mocks.MockService, *mocks.MockLauncher) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "trigger unknown kind",
			method:         http.MethodPost,
			path:           "/jobs/weekly",
			withLauncher:   true,
			setupMocks:     func(*mocks.MockService, *mocks.MockLauncher) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "job status",
			method: http.MethodGet,
			path:   "/jobs/delta",
			setupMocks: func(s *mocks.MockService, _ *mocks.MockLauncher) {
				s.EXPECT().CheckStatus(gomock.Any(), jobstatus.KindDelta).
					Return(&jobstatus.JobStatus{Status: jobstatus.StateScheduled}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"scheduled"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)

			mockSvc := mocks.NewMockService(ctrl)
			launcher := mocks.NewMockLauncher(ctrl)
			tt.setupMocks(mockSvc, launcher)

			var opts []api.ServerOption
			if tt.withLauncher {
				opts = append(opts, api.WithLauncher(launcher))
			}

			rr := serve(t, api.NewServer(mockSvc, opts...), tt.method, tt.path, "")
			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, rr.Body.String())
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	mockSvc := mocks.NewMockService(ctrl)

	rr := serve(t, api.NewServer(mockSvc), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("akeneo_sync_items_total 3\n"))
	})
	rr = serve(t, api.NewServer(mockSvc, api.WithMetricsHandler(metrics)), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "akeneo_sync_items_total")
}

func TestLoggingMiddleware(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	server := api.NewServer(mocks.NewMockService(ctrl), api.WithMiddlewares(api.LoggingMiddleware))
	rr := serve(t, server, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}
