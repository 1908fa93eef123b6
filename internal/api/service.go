package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"trainnames/internal"
	"trainnames/internal/config"
)

// TrainStore is the read side of the train database.
type TrainStore interface {
	GetTrainByTz(tz int) (*internal.TrainView, error)
	SearchTrains(query string, limit int) ([]internal.TrainView, error)
	ListTrains(limit int) ([]internal.TrainView, error)
	ListTrainsByClass(classID int) ([]internal.TrainView, error)
}

type TrainService struct {
	Store       TrainStore
	searchLimit int
	listLimit   int
	log         *zap.Logger
}

func NewTrainService(store TrainStore, cfg config.Config, log *zap.Logger) *TrainService {
	if log == nil {
		log = zap.NewNop()
	}
	return &TrainService{
		Store:       store,
		searchLimit: cfg.SearchLimit,
		listLimit:   cfg.ListLimit,
		log:         log,
	}
}

func (s *TrainService) GetTrain(w http.ResponseWriter, r *http.Request) {
	tz, err := strconv.Atoi(r.PathValue("tz"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid tz parameter")
		return
	}

	train, err := s.Store.GetTrainByTz(tz)
	if err != nil {
		s.fail(w, "get train", err)
		return
	}
	if train == nil {
		writeError(w, http.StatusNotFound, "Train not found")
		return
	}
	writeJSON(w, http.StatusOK, train)
}

// SearchTrains lists trains; with ?query= it matches names, and a query
// starting with a number also matches that Tz.
func (s *TrainService) SearchTrains(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))

	var (
		trains []internal.TrainView
		err    error
	)
	if query == "" {
		trains, err = s.Store.ListTrains(s.listLimit)
	} else {
		trains, err = s.Store.SearchTrains(query, s.searchLimit)
	}
	if err != nil {
		s.fail(w, "search trains", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(trains))
}

func (s *TrainService) ListClassTrains(w http.ResponseWriter, r *http.Request) {
	classID, err := strconv.Atoi(r.PathValue("classId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid classId parameter")
		return
	}

	trains, err := s.Store.ListTrainsByClass(classID)
	if err != nil {
		s.fail(w, "list class trains", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(trains))
}

func (s *TrainService) fail(w http.ResponseWriter, op string, err error) {
	s.log.Error(op+" failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

func nonNil(trains []internal.TrainView) []internal.TrainView {
	if trains == nil {
		return []internal.TrainView{}
	}
	return trains
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Serve runs the API on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, handler http.Handler, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("api listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
