package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"trainnames/internal"
	"trainnames/internal/config"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetTrainByTz(tz int) (*internal.TrainView, error) {
	args := m.Called(tz)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*internal.TrainView), args.Error(1)
}

func (m *MockStore) SearchTrains(query string, limit int) ([]internal.TrainView, error) {
	args := m.Called(query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]internal.TrainView), args.Error(1)
}

func (m *MockStore) ListTrains(limit int) ([]internal.TrainView, error) {
	args := m.Called(limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]internal.TrainView), args.Error(1)
}

func (m *MockStore) ListTrainsByClass(classID int) ([]internal.TrainView, error) {
	args := m.Called(classID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]internal.TrainView), args.Error(1)
}

func newTestMux(store *MockStore) *http.ServeMux {
	cfg := config.Config{SearchLimit: 50, ListLimit: 100}
	return SetupRoutes(NewTrainService(store, cfg, nil))
}

func do(mux *http.ServeMux, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	return body["error"]
}

func sampleTrain() internal.TrainView {
	className := "ICE 1"
	return internal.TrainView{
		ID:        "abc",
		Tz:        7,
		Name:      "Falke",
		ClassID:   401,
		IsActive:  true,
		NameSince: time.Date(2003, time.June, 1, 0, 0, 0, 0, time.UTC),
		ClassName: &className,
	}
}

func TestGetTrain(t *testing.T) {
	t.Run("should return the train with its class name", func(t *testing.T) {
		store := new(MockStore)
		train := sampleTrain()
		store.On("GetTrainByTz", 7).Return(&train, nil).Once()

		rr := do(newTestMux(store), "/api/v1/trains/7")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.Equal(t, "Falke", body["name"])
		assert.Equal(t, "ICE 1", body["className"])
		assert.Equal(t, "2003-06-01T00:00:00Z", body["nameSince"])
		assert.Nil(t, body["nameUntil"])
		store.AssertExpectations(t)
	})

	t.Run("should reject a non-numeric tz", func(t *testing.T) {
		store := new(MockStore)
		rr := do(newTestMux(store), "/api/v1/trains/abc")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid tz parameter", decodeError(t, rr))
		store.AssertNotCalled(t, "GetTrainByTz", mock.Anything)
	})

	t.Run("should return 404 for an unknown tz", func(t *testing.T) {
		store := new(MockStore)
		store.On("GetTrainByTz", 999).Return(nil, nil).Once()

		rr := do(newTestMux(store), "/api/v1/trains/999")

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "Train not found", decodeError(t, rr))
	})

	t.Run("should return 500 on store failure", func(t *testing.T) {
		store := new(MockStore)
		store.On("GetTrainByTz", 7).Return(nil, errors.New("disk on fire")).Once()

		rr := do(newTestMux(store), "/api/v1/trains/7")

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, "Internal server error", decodeError(t, rr))
	})
}

func TestSearchTrains(t *testing.T) {
	t.Run("should list with the list limit when no query is given", func(t *testing.T) {
		store := new(MockStore)
		store.On("ListTrains", 100).Return([]internal.TrainView{sampleTrain()}, nil).Once()

		rr := do(newTestMux(store), "/api/v1/trains")

		assert.Equal(t, http.StatusOK, rr.Code)
		var body []internal.TrainView
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		require.Len(t, body, 1)
		assert.Equal(t, 7, body[0].Tz)
		store.AssertExpectations(t)
	})

	t.Run("should search with the search limit", func(t *testing.T) {
		store := new(MockStore)
		store.On("SearchTrains", "Fal", 50).Return(nil, nil).Once()

		rr := do(newTestMux(store), "/api/v1/trains?query=Fal")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, "[]", rr.Body.String())
		store.AssertExpectations(t)
	})
}

func TestListClassTrains(t *testing.T) {
	t.Run("should list the trains of a class", func(t *testing.T) {
		store := new(MockStore)
		store.On("ListTrainsByClass", 401).Return([]internal.TrainView{sampleTrain()}, nil).Once()

		rr := do(newTestMux(store), "/api/v1/classes/401/trains")

		assert.Equal(t, http.StatusOK, rr.Code)
		store.AssertExpectations(t)
	})

	t.Run("should reject a non-numeric classId", func(t *testing.T) {
		store := new(MockStore)
		rr := do(newTestMux(store), "/api/v1/classes/ice/trains")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid classId parameter", decodeError(t, rr))
	})
}

func TestServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, "127.0.0.1:0", http.NewServeMux(), nil) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
