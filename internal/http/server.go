package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Imanalii/yitiflow-dashboard/internal/auth"
	"github.com/Imanalii/yitiflow-dashboard/internal/config"
	"github.com/Imanalii/yitiflow-dashboard/internal/model"
	"github.com/Imanalii/yitiflow-dashboard/internal/store"
)

// Server exposes the dashboard's namespaced procedure surface. Every
// procedure validates its input shape before touching the store and
// delegates 1:1 to a store operation.
type Server struct {
	cfg      config.Config
	store    *store.Store
	sessions *auth.SessionRevoker
	logger   *zap.Logger
}

func NewServer(cfg config.Config, st *store.Store, sessions *auth.SessionRevoker, logger *zap.Logger) *Server {
	return &Server{
		cfg:      cfg,
		store:    st,
		sessions: sessions,
		logger:   logger,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/auth.me", s.handleAuthMe)
		r.Post("/auth.session", s.handleAuthSession)
		r.Post("/auth.logout", s.handleAuthLogout)

		r.Get("/vehicles.list", s.handleVehiclesList)
		r.Post("/vehicles.getById", s.handleVehiclesGetByID)
		r.With(s.requireAdmin).Post("/vehicles.create", s.handleVehiclesCreate)
		r.With(s.requireAdmin).Post("/vehicles.updateLocation", s.handleVehiclesUpdateLocation)

		r.Get("/trips.list", s.handleTripsList)
		r.Post("/trips.getById", s.handleTripsGetByID)
		r.With(s.requireAdmin).Post("/trips.create", s.handleTripsCreate)
		r.With(s.requireAdmin).Post("/trips.updateStatus", s.handleTripsUpdateStatus)

		r.Post("/sensors.save", s.handleSensorsSave)
		r.Post("/sensors.getLatestByVehicle", s.handleSensorsLatest)

		r.Get("/rewards.list", s.handleRewardsList)
		r.Post("/rewards.getByUser", s.handleRewardsByUser)
		r.Post("/rewards.getTotalBalance", s.handleRewardsBalance)
		r.With(s.requireAdmin).Post("/rewards.create", s.handleRewardsCreate)
	})

	return r
}

// Auth

// sessionUser resolves the cookie to a stored user. Any failure along the
// way (no cookie, bad token, revoked session, degraded store) yields nil,
// matching the original "me() -> user | null" contract.
func (s *Server) sessionUser(r *http.Request) *model.User {
	cookie, err := r.Cookie(s.cfg.SessionCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}
	claims, err := auth.ParseSessionToken(s.cfg.JWTSecret, cookie.Value)
	if err != nil {
		return nil
	}
	revoked, err := s.sessions.Revoked(r.Context(), claims.ID)
	if err != nil {
		s.logger.Warn("session revocation check failed", zap.Error(err))
		return nil
	}
	if revoked {
		return nil
	}
	user, err := s.store.GetUserByOpenID(r.Context(), claims.OpenID)
	if err != nil {
		s.logger.Error("session user lookup failed", zap.Error(err))
		return nil
	}
	return user
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := s.sessionUser(r)
		if user == nil {
			writeError(w, http.StatusUnauthorized, "missing_session")
			return
		}
		if user.Role != model.RoleAdmin {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleAuthMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sessionUser(r))
}

// handleAuthSession is the login entry point behind the OAuth gateway: it
// upserts the user by openId and sets the session cookie. The owner openId
// is promoted to admin on first upsert inside the store.
func (s *Server) handleAuthSession(w http.ResponseWriter, r *http.Request) {
	_, body, err := validateInput(r, shape{"openId": kindString}, "{ openId: string }")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var upsert model.UserUpsert
	if err := json.Unmarshal(body, &upsert); err != nil {
		writeError(w, http.StatusBadRequest, "invalid input: expected { openId: string }")
		return
	}

	if err := s.store.UpsertUser(r.Context(), upsert); err != nil {
		if errors.Is(err, store.ErrOpenIDRequired) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("upsert user failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	role := model.RoleUser
	user, err := s.store.GetUserByOpenID(r.Context(), upsert.OpenID)
	if err != nil {
		s.logger.Error("user lookup after upsert failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if user != nil {
		role = user.Role
	}

	token, err := auth.NewSessionToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.SessionTTL, upsert.OpenID, string(role))
	if err != nil {
		s.logger.Error("session token issue failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	http.SetCookie(w, s.sessionCookie(token, int(s.cfg.SessionTTL.Seconds())))
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleAuthLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(s.cfg.SessionCookie); err == nil && cookie.Value != "" {
		if claims, err := auth.ParseSessionToken(s.cfg.JWTSecret, cookie.Value); err == nil {
			if err := s.sessions.Revoke(r.Context(), claims.ID); err != nil {
				s.logger.Warn("session revoke failed", zap.Error(err))
			}
		}
	}
	http.SetCookie(w, s.sessionCookie("", -1))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     s.cfg.SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// Utilities

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeStoreError maps a failed write to the documented taxonomy: a missing
// store is 503, anything else is logged and surfaced as 500.
func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrStoreUnavailable) {
		writeError(w, http.StatusServiceUnavailable, "store_unavailable")
		return
	}
	s.logger.Error("store operation failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "server_error")
}
