package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/BrandonDHaskell/accesshub/internal/access"
	"github.com/BrandonDHaskell/accesshub/internal/accesshub/types"
)

// queryLimit reads ?limit=.  Missing or malformed values fall back to the
// service default.
func queryLimit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		return 0
	}
	return n
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, status int, v any, err error) {
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, status, v)
}

// ── Dashboard ────────────────────────────────────────────────────────────────

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, p access.Principal) {
	var window time.Duration
	if raw := r.URL.Query().Get("window"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_window", "window must be a duration such as 24h")
			return
		}
		window = d
	}
	dash, err := s.dashboard.Dashboard(r.Context(), p, window)
	s.respond(w, r, http.StatusOK, dash, err)
}

// ── Hubs ─────────────────────────────────────────────────────────────────────

func (s *Server) handleListHubs(w http.ResponseWriter, r *http.Request, p access.Principal) {
	hubs, err := s.hubs.List(r.Context(), p)
	s.respond(w, r, http.StatusOK, hubs, err)
}

func (s *Server) handleGetHub(w http.ResponseWriter, r *http.Request, p access.Principal) {
	hub, err := s.hubs.Get(r.Context(), p, mux.Vars(r)["hubId"])
	s.respond(w, r, http.StatusOK, hub, err)
}

func (s *Server) handleUpdateHub(w http.ResponseWriter, r *http.Request, p access.Principal) {
	var in types.HubInput
	if err := decodeJSON(w, r, maxManagementBody, &in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}
	hub, err := s.hubs.Update(r.Context(), p, mux.Vars(r)["hubId"], in)
	s.respond(w, r, http.StatusOK, hub, err)
}

func (s *Server) handleHubActivity(w http.ResponseWriter, r *http.Request, p access.Principal) {
	entries, err := s.hubs.Activity(r.Context(), p, mux.Vars(r)["hubId"], queryLimit(r))
	s.respond(w, r, http.StatusOK, entries, err)
}

// ── Access points ────────────────────────────────────────────────────────────

func (s *Server) handleListPoints(w http.ResponseWriter, r *http.Request, p access.Principal) {
	points, err := s.points.List(r.Context(), p)
	s.respond(w, r, http.StatusOK, points, err)
}

func (s *Server) handleGetPoint(w http.ResponseWriter, r *http.Request, p access.Principal) {
	point, err := s.points.Get(r.Context(), p, mux.Vars(r)["pointId"])
	s.respond(w, r, http.StatusOK, point, err)
}

func (s *Server) handleUpdatePoint(w http.ResponseWriter, r *http.Request, p access.Principal) {
	var in types.PointInput
	if err := decodeJSON(w, r, maxManagementBody, &in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}
	point, err := s.points.Update(r.Context(), p, mux.Vars(r)["pointId"], in)
	s.respond(w, r, http.StatusOK, point, err)
}

func (s *Server) handlePointAvailableUsers(w http.ResponseWriter, r *http.Request, p access.Principal) {
	users, err := s.points.AvailableUsers(r.Context(), p, mux.Vars(r)["pointId"])
	s.respond(w, r, http.StatusOK, users, err)
}

func (s *Server) handlePointAddUsers(w http.ResponseWriter, r *http.Request, p access.Principal) {
	var in types.IDsRequest
	if err := decodeJSON(w, r, maxManagementBody, &in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}
	err := s.points.AddUsers(r.Context(), p, mux.Vars(r)["pointId"], in.IDs)
	s.respond(w, r, http.StatusNoContent, nil, err)
}

func (s *Server) handlePointRemoveUser(w http.ResponseWriter, r *http.Request, p access.Principal) {
	vars := mux.Vars(r)
	err := s.points.RemoveUser(r.Context(), p, vars["pointId"], vars["accessUserId"])
	s.respond(w, r, http.StatusNoContent, nil, err)
}

// ── Access users ─────────────────────────────────────────────────────────────

func (s *Server) handleListAccessUsers(w http.ResponseWriter, r *http.Request, p access.Principal) {
	users, err := s.accessUsers.List(r.Context(), p)
	s.respond(w, r, http.StatusOK, users, err)
}

func (s *Server) handleCreateAccessUser(w http.ResponseWriter, r *http.Request, p access.Principal) {
	var in types.AccessUserInput
	if err := decodeJSON(w, r, maxManagementBody, &in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}
	u, err := s.accessUsers.Create(r.Context(), p, in)
	s.respond(w, r, http.StatusCreated, u, err)
}

func (s *Server) handleGetAccessUser(w http.ResponseWriter, r *http.Request, p access.Principal) {
	u, err := s.accessUsers.Get(r.Context(), p, mux.Vars(r)["accessUserId"])
	s.respond(w, r, http.StatusOK, u, err)
}

func (s *Server) handleUpdateAccessUser(w http.ResponseWriter, r *http.Request, p access.Principal) {
	var in types.AccessUserInput
	if err := decodeJSON(w, r, maxManagementBody, &in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}
	u, err := s.accessUsers.Update(r.Context(), p, mux.Vars(r)["accessUserId"], in)
	s.respond(w, r, http.StatusOK, u, err)
}

func (s *Server) handleDeleteAccessUser(w http.ResponseWriter, r *http.Request, p access.Principal) {
	err := s.accessUsers.Delete(r.Context(), p, mux.Vars(r)["accessUserId"])
	s.respond(w, r, http.StatusNoContent, nil, err)
}

func (s *Server) handleAccessUserAvailablePoints(w http.ResponseWriter, r *http.Request, p access.Principal) {
	points, err := s.accessUsers.AvailablePoints(r.Context(), p, mux.Vars(r)["accessUserId"])
	s.respond(w, r, http.StatusOK, points, err)
}

func (s *Server) handleAccessUserAddPoints(w http.ResponseWriter, r *http.Request, p access.Principal) {
	var in types.IDsRequest
	if err := decodeJSON(w, r, maxManagementBody, &in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}
	err := s.accessUsers.AddPoints(r.Context(), p, mux.Vars(r)["accessUserId"], in.IDs)
	s.respond(w, r, http.StatusNoContent, nil, err)
}

func (s *Server) handleAccessUserRemovePoint(w http.ResponseWriter, r *http.Request, p access.Principal) {
	vars := mux.Vars(r)
	err := s.accessUsers.RemovePoint(r.Context(), p, vars["accessUserId"], vars["pointId"])
	s.respond(w, r, http.StatusNoContent, nil, err)
}
