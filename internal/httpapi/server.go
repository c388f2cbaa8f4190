package httpapi

import (
	"context"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/BrandonDHaskell/accesshub/internal/accesshub/service"
	"github.com/BrandonDHaskell/accesshub/internal/metrics"
)

type Dependencies struct {
	Logger  *log.Logger
	Addr    string
	Metrics *metrics.Metrics

	Auth        *service.AuthService
	Hubs        *service.HubService
	Points      *service.PointService
	AccessUsers *service.AccessUserService
	Dashboard   *service.DashboardService
	Admin       *service.AdminService
	Devices     *service.DeviceService

	// LoginRatePerMinute throttles login and password reset per client IP.
	// 0 disables throttling.
	LoginRatePerMinute int

	// SecureCookies marks the session cookie Secure.  Off in dev so the
	// cookie works over plain http://localhost.
	SecureCookies bool

	// Ready, if set, backs /healthz.
	Ready func(ctx context.Context) error
}

type Server struct {
	httpServer *http.Server
	logger     *log.Logger
	router     *mux.Router
	metrics    *metrics.Metrics
	limiter    *ipLimiter

	auth          *service.AuthService
	hubs          *service.HubService
	points        *service.PointService
	accessUsers   *service.AccessUserService
	dashboard     *service.DashboardService
	admin         *service.AdminService
	devices       *service.DeviceService
	secureCookies bool
	ready         func(ctx context.Context) error
}

func NewServer(d Dependencies) *Server {
	if d.Logger == nil {
		d.Logger = log.New(io.Discard, "", 0)
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}

	s := &Server{
		logger:        d.Logger,
		router:        mux.NewRouter(),
		metrics:       d.Metrics,
		limiter:       newIPLimiter(d.LoginRatePerMinute),
		auth:          d.Auth,
		hubs:          d.Hubs,
		points:        d.Points,
		accessUsers:   d.AccessUsers,
		dashboard:     d.Dashboard,
		admin:         d.Admin,
		devices:       d.Devices,
		secureCookies: d.SecureCookies,
		ready:         d.Ready,
	}
	s.routes()

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           loggingMiddleware(d.Logger, s.router),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(s.metricsMiddleware)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	// Hubs
	hub := r.PathPrefix("/v1/hub").Subrouter()
	hub.HandleFunc("/heartbeat", s.handleHeartbeat).Methods(http.MethodPost)
	hub.HandleFunc("/access_events", s.handleAccessEvent).Methods(http.MethodPost)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Sessions
	api.HandleFunc("/login", s.throttle(s.handleLogin)).Methods(http.MethodPost)
	api.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)
	api.HandleFunc("/resetpassword", s.throttle(s.handleResetPassword)).Methods(http.MethodPost)

	// Customer
	c := api.PathPrefix("/access").Subrouter()
	c.HandleFunc("/dashboard", s.authed(s.handleDashboard)).Methods(http.MethodGet)

	c.HandleFunc("/hubs", s.authed(s.handleListHubs)).Methods(http.MethodGet)
	c.HandleFunc("/hubs/{hubId}", s.authed(s.handleGetHub)).Methods(http.MethodGet)
	c.HandleFunc("/hubs/{hubId}", s.authed(s.handleUpdateHub)).Methods(http.MethodPut)
	c.HandleFunc("/hubs/{hubId}/activity", s.authed(s.handleHubActivity)).Methods(http.MethodGet)

	c.HandleFunc("/points", s.authed(s.handleListPoints)).Methods(http.MethodGet)
	c.HandleFunc("/points/{pointId}", s.authed(s.handleGetPoint)).Methods(http.MethodGet)
	c.HandleFunc("/points/{pointId}", s.authed(s.handleUpdatePoint)).Methods(http.MethodPut)
	c.HandleFunc("/points/{pointId}/users/available", s.authed(s.handlePointAvailableUsers)).Methods(http.MethodGet)
	c.HandleFunc("/points/{pointId}/users", s.authed(s.handlePointAddUsers)).Methods(http.MethodPost)
	c.HandleFunc("/points/{pointId}/users/{accessUserId}", s.authed(s.handlePointRemoveUser)).Methods(http.MethodDelete)

	c.HandleFunc("/users", s.authed(s.handleListAccessUsers)).Methods(http.MethodGet)
	c.HandleFunc("/users", s.authed(s.handleCreateAccessUser)).Methods(http.MethodPost)
	c.HandleFunc("/users/{accessUserId}", s.authed(s.handleGetAccessUser)).Methods(http.MethodGet)
	c.HandleFunc("/users/{accessUserId}", s.authed(s.handleUpdateAccessUser)).Methods(http.MethodPut)
	c.HandleFunc("/users/{accessUserId}", s.authed(s.handleDeleteAccessUser)).Methods(http.MethodDelete)
	c.HandleFunc("/users/{accessUserId}/points/available", s.authed(s.handleAccessUserAvailablePoints)).Methods(http.MethodGet)
	c.HandleFunc("/users/{accessUserId}/points", s.authed(s.handleAccessUserAddPoints)).Methods(http.MethodPost)
	c.HandleFunc("/users/{accessUserId}/points/{pointId}", s.authed(s.handleAccessUserRemovePoint)).Methods(http.MethodDelete)

	// Admin
	api.HandleFunc("/admin/customers", s.authed(s.handleAdminCustomers)).Methods(http.MethodGet)
	api.HandleFunc("/admin/customers/{customerId}", s.authed(s.handleAdminCustomer)).Methods(http.MethodGet)
	a := api.PathPrefix("/admin/customers/{customerId}").Subrouter()
	a.HandleFunc("/resetpassword", s.authed(s.handleAdminResetPassword)).Methods(http.MethodPost)
	a.HandleFunc("/hubs/{hubId}", s.authed(s.handleAdminHub)).Methods(http.MethodGet)
	a.HandleFunc("/hubs/{hubId}/activity", s.authed(s.handleAdminHubActivity)).Methods(http.MethodGet)
	a.HandleFunc("/hubs/{hubId}/points/{pointId}", s.authed(s.handleAdminPoint)).Methods(http.MethodGet)
	a.HandleFunc("/users/{accessUserId}", s.authed(s.handleAdminAccessUser)).Methods(http.MethodGet)
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			s.logger.Printf("healthz: %v", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
