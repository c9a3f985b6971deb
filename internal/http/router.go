package http

import (
	"context"
	"net/http"
	"strings"
)

// RouterConfig wires handlers and middleware into the router. Nil handlers
// leave their routes unregistered.
type RouterConfig struct {
	Conventions *ConventionHandler
	Schedules   *ScheduleHandler
	Health      func(ctx context.Context) error
	Middleware  []func(http.Handler) http.Handler
}

// NewRouter builds the HTTP handler for the convention API.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Health != nil {
		responder := newResponder(nil)
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			if err := cfg.Health(r.Context()); err != nil {
				responder.writeError(r.Context(), w, http.StatusServiceUnavailable, nil)
				return
			}
			responder.writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
		})
	}

	if cfg.Conventions != nil {
		mux.HandleFunc("/conventions", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Conventions.List(w, r)
			case http.MethodPost:
				cfg.Conventions.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/conventions/", func(w http.ResponseWriter, r *http.Request) {
			segments := pathSegments(strings.TrimPrefix(r.URL.Path, "/conventions/"))
			if len(segments) == 0 {
				http.NotFound(w, r)
				return
			}

			if len(segments) == 1 && segments[0] == "validate" {
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Conventions.Validate(w, r)
				return
			}

			r = r.WithContext(ContextWithConventionID(r.Context(), segments[0]))
			switch {
			case len(segments) == 1:
				switch r.Method {
				case http.MethodGet:
					cfg.Conventions.Get(w, r)
				case http.MethodPut:
					cfg.Conventions.Update(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPut)
				}
			case len(segments) == 2 && segments[1] == "status":
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Conventions.Transition(w, r)
			case len(segments) == 3 && segments[1] == "signatures":
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Conventions.Sign(w, r, segments[2])
			default:
				http.NotFound(w, r)
			}
		})
	}

	if cfg.Schedules != nil {
		mux.HandleFunc("/schedules/expand", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Schedules.Expand(w, r)
		})
		mux.HandleFunc("/schedules/validate", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Schedules.Validate(w, r)
		})
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func pathSegments(path string) []string {
	var segments []string
	for _, segment := range strings.Split(path, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
