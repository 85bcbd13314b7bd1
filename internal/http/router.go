package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Auth        *AuthHandler
	Users       *UserHandler
	Planning    *PlanningHandler
	Allocations *AllocationHandler
	Sessions    *SessionHandler
	Speakers    *SpeakerHandler
	Suggestions *SuggestionHandler
	Middleware  []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Auth != nil {
		mux.HandleFunc("/auth/sessions", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.CreateSession(w, r)
		})
		mux.HandleFunc("/auth/sessions/current", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				methodNotAllowed(w, http.MethodDelete)
				return
			}
			cfg.Auth.DeleteCurrentSession(w, r)
		})
	}

	if cfg.Users != nil {
		mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Users.List(w, r)
			case http.MethodPost:
				cfg.Users.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/users/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			switch r.Method {
			case http.MethodGet:
				cfg.Users.Get(w, r, id)
			case http.MethodPut:
				cfg.Users.Update(w, r, id)
			case http.MethodDelete:
				cfg.Users.Delete(w, r, id)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		})
	}

	if cfg.Sessions != nil {
		mux.HandleFunc("/sessions/", func(w http.ResponseWriter, r *http.Request) {
			segments := pathSegments(strings.TrimPrefix(r.URL.Path, "/sessions/"))
			switch {
			case len(segments) == 1:
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Sessions.Get(w, r, segments[0])
			case len(segments) == 2 && segments[1] == "status":
				if r.Method != http.MethodPatch {
					methodNotAllowed(w, http.MethodPatch)
					return
				}
				cfg.Sessions.UpdateStatus(w, r, segments[0])
			default:
				http.NotFound(w, r)
			}
		})
	}

	if cfg.Allocations != nil {
		mux.HandleFunc("/allocations/clear", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Allocations.ClearMany(w, r)
		})
		mux.HandleFunc("/allocations/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/allocations/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodDelete {
				methodNotAllowed(w, http.MethodDelete)
				return
			}
			cfg.Allocations.Clear(w, r, id)
		})
	}

	mux.HandleFunc("/conferences", func(w http.ResponseWriter, r *http.Request) {
		if cfg.Planning == nil {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		cfg.Planning.List(w, r)
	})
	mux.HandleFunc("/conferences/", func(w http.ResponseWriter, r *http.Request) {
		routeConference(cfg, w, r, pathSegments(strings.TrimPrefix(r.URL.Path, "/conferences/")))
	})

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}

// routeConference dispatches everything nested under /conferences/{id}.
func routeConference(cfg RouterConfig, w http.ResponseWriter, r *http.Request, segments []string) {
	if len(segments) == 0 {
		http.NotFound(w, r)
		return
	}
	conferenceID := segments[0]
	rest := segments[1:]

	if len(rest) == 0 {
		if cfg.Planning == nil {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		cfg.Planning.Get(w, r, conferenceID)
		return
	}

	switch rest[0] {
	case "sessions":
		if cfg.Sessions == nil || len(rest) != 1 {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		cfg.Sessions.List(w, r, conferenceID)

	case "speakers":
		if cfg.Speakers == nil {
			http.NotFound(w, r)
			return
		}
		switch {
		case len(rest) == 1:
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Speakers.List(w, r, conferenceID)
		case len(rest) == 2:
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Speakers.Get(w, r, conferenceID, rest[1])
		case len(rest) == 3 && rest[2] == "availability":
			if r.Method != http.MethodPut {
				methodNotAllowed(w, http.MethodPut)
				return
			}
			cfg.Speakers.ReplaceAvailability(w, r, conferenceID, rest[1])
		default:
			http.NotFound(w, r)
		}

	case "allocations":
		if cfg.Allocations == nil || len(rest) != 1 {
			http.NotFound(w, r)
			return
		}
		switch r.Method {
		case http.MethodGet:
			cfg.Allocations.List(w, r, conferenceID)
		case http.MethodPost:
			cfg.Allocations.Assign(w, r, conferenceID)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodPost)
		}

	case "suggestions":
		if cfg.Suggestions == nil {
			http.NotFound(w, r)
			return
		}
		switch {
		case len(rest) == 1:
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Suggestions.Suggest(w, r, conferenceID)
		case len(rest) == 2 && rest[1] == "apply":
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Suggestions.Apply(w, r, conferenceID)
		default:
			http.NotFound(w, r)
		}

	case "days":
		if cfg.Planning == nil || len(rest) < 3 {
			http.NotFound(w, r)
			return
		}
		routeDay(cfg, w, r, conferenceID, rest[1], rest[2:])

	default:
		http.NotFound(w, r)
	}
}

// routeDay dispatches /conferences/{id}/days/{dayId}/... paths.
func routeDay(cfg RouterConfig, w http.ResponseWriter, r *http.Request, conferenceID, dayID string, rest []string) {
	switch rest[0] {
	case "copy":
		if len(rest) != 1 {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}
		cfg.Planning.Copy(w, r, conferenceID, dayID)

	case "slots":
		switch {
		case len(rest) == 1:
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Planning.CreateSlot(w, r, conferenceID, dayID)
		case len(rest) == 2 && rest[1] == "validate":
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Planning.ValidateSlot(w, r, conferenceID, dayID)
		case len(rest) == 2 && rest[1] == "bulk":
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Planning.BulkCreateSlots(w, r, conferenceID, dayID)
		case len(rest) == 2:
			switch r.Method {
			case http.MethodPut:
				cfg.Planning.UpdateSlot(w, r, conferenceID, dayID, rest[1])
			case http.MethodDelete:
				cfg.Planning.DeleteSlot(w, r, conferenceID, dayID, rest[1])
			default:
				methodNotAllowed(w, http.MethodPut, http.MethodDelete)
			}
		default:
			http.NotFound(w, r)
		}

	default:
		http.NotFound(w, r)
	}
}

// pathSegments splits a trailing path into segments, rejecting empty ones by
// returning nil so callers fall through to a 404.
func pathSegments(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	segments := strings.Split(path, "/")
	for _, segment := range segments {
		if segment == "" {
			return nil
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
