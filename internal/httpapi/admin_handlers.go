package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/BrandonDHaskell/accesshub/internal/access"
)

func (s *Server) handleAdminCustomers(w http.ResponseWriter, r *http.Request, p access.Principal) {
	customers, err := s.admin.Customers(r.Context(), p)
	s.respond(w, r, http.StatusOK, customers, err)
}

func (s *Server) handleAdminCustomer(w http.ResponseWriter, r *http.Request, p access.Principal) {
	c, err := s.admin.Customer(r.Context(), p, mux.Vars(r)["customerId"])
	s.respond(w, r, http.StatusOK, c, err)
}

func (s *Server) handleAdminResetPassword(w http.ResponseWriter, r *http.Request, p access.Principal) {
	reset, err := s.auth.IssuePasswordReset(r.Context(), p, mux.Vars(r)["customerId"])
	s.respond(w, r, http.StatusCreated, reset, err)
}

func (s *Server) handleAdminHub(w http.ResponseWriter, r *http.Request, p access.Principal) {
	vars := mux.Vars(r)
	hub, err := s.admin.Hub(r.Context(), p, vars["customerId"], vars["hubId"])
	s.respond(w, r, http.StatusOK, hub, err)
}

func (s *Server) handleAdminHubActivity(w http.ResponseWriter, r *http.Request, p access.Principal) {
	vars := mux.Vars(r)
	entries, err := s.admin.HubActivity(r.Context(), p, vars["customerId"], vars["hubId"], queryLimit(r))
	s.respond(w, r, http.StatusOK, entries, err)
}

func (s *Server) handleAdminPoint(w http.ResponseWriter, r *http.Request, p access.Principal) {
	vars := mux.Vars(r)
	point, err := s.admin.Point(r.Context(), p, vars["customerId"], vars["hubId"], vars["pointId"])
	s.respond(w, r, http.StatusOK, point, err)
}

func (s *Server) handleAdminAccessUser(w http.ResponseWriter, r *http.Request, p access.Principal) {
	vars := mux.Vars(r)
	u, err := s.admin.AccessUser(r.Context(), p, vars["customerId"], vars["accessUserId"])
	s.respond(w, r, http.StatusOK, u, err)
}
