// Package robots exposes the simulated fleet over HTTP: a read-only status
// view and a command endpoint equivalent to the MQTT command topic.
package robots

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/kilianp07/robotsim/core/robot"
	"github.com/kilianp07/robotsim/core/world"
	"github.com/kilianp07/robotsim/infra/logger"
)

// Fleet is the part of the world the API needs.
type Fleet interface {
	Status() world.Status
	Dispatch(id int, cmd robot.Command) error
}

const maxCommandBytes = 1 << 10

// NewStatusHandler returns an HTTP handler exposing the world status via
// GET /api/robots/status. The optional robot_id query parameter keeps a
// single robot.
func NewStatusHandler(f Fleet) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		st := f.Status()
		if raw := r.URL.Query().Get("robot_id"); raw != "" {
			id, err := strconv.Atoi(raw)
			if err != nil {
				http.Error(w, "invalid robot_id", http.StatusBadRequest)
				return
			}
			var kept []robot.Status
			for _, s := range st.Robots {
				if s.RobotID == id {
					kept = append(kept, s)
				}
			}
			if len(kept) == 0 {
				http.Error(w, "unknown robot", http.StatusNotFound)
				return
			}
			st.Robots = kept
		}
		writeJSON(w, http.StatusOK, st)
	})
}

// NewCommandHandler accepts POST /api/robots/command?robot_id=k with the
// same payloads as the command topic.
func NewCommandHandler(f Fleet) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		id, err := strconv.Atoi(r.URL.Query().Get("robot_id"))
		if err != nil {
			http.Error(w, "invalid robot_id", http.StatusBadRequest)
			return
		}
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCommandBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				http.Error(w, "command too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		cmd, err := robot.ParseCommand(body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		switch err := f.Dispatch(id, cmd); {
		case errors.Is(err, world.ErrUnknownRobot):
			http.Error(w, err.Error(), http.StatusNotFound)
		case err != nil:
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			writeJSON(w, http.StatusAccepted, map[string]any{"robot_id": id, "kind": cmd.Kind()})
		}
	})
}

// NewMux routes the API endpoints.
func NewMux(f Fleet) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/api/robots/status", NewStatusHandler(f))
	mux.Handle("/api/robots/command", NewCommandHandler(f))
	return mux
}

// Serve runs the API on addr until ctx is canceled.
func Serve(ctx context.Context, addr string, f Fleet) error {
	log := logger.New("api")
	srv := &http.Server{Addr: addr, Handler: NewMux(f), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warnf("api shutdown: %v", err)
		}
		cancel()
	}()
	log.Infof("serving robot API on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
