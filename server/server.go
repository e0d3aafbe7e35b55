package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickassako/triomphe-immobilier/services"
)

// Server wires the HTTP API over the service layer.
type Server struct {
	listings  *services.ListingService
	favorites *services.FavoriteService
	contacts  *services.ContactService
	users     *services.UserService
	activity  *services.ActivityService
	analytics *services.AnalyticsService
	audit     *services.AuditService
	locations LocationLister
}

func New(
	listings *services.ListingService,
	favorites *services.FavoriteService,
	contacts *services.ContactService,
	users *services.UserService,
	activity *services.ActivityService,
	analytics *services.AnalyticsService,
	audit *services.AuditService,
	locations LocationLister,
) *Server {
	return &Server{
		listings:  listings,
		favorites: favorites,
		contacts:  contacts,
		users:     users,
		activity:  activity,
		analytics: analytics,
		audit:     audit,
		locations: locations,
	}
}

// Router builds the chi mux with the full API surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/properties", func(r chi.Router) {
			r.Get("/", s.handleSearchProperties)
			r.Post("/", s.handleCreateProperty)
			r.Get("/featured", s.handleFeaturedProperties)
			r.Get("/slug/{slug}", s.handleGetPropertyBySlug)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetProperty)
				r.Put("/", s.handleUpdateProperty)
				r.Patch("/", s.handleUpdateProperty)
				r.Delete("/", s.handleDeleteProperty)
				r.Get("/likes", s.handleGetLikes)
				r.Post("/likes", s.handleToggleLike)
				r.Get("/shares", s.handleGetShares)
				r.Post("/shares", s.handleRecordShare)
				r.Put("/images", s.handleReplaceImages)
				r.Put("/features", s.handleReplaceFeatures)
			})
		})

		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", s.handleListContacts)
			r.Post("/", s.handleSubmitContact)
			r.Get("/stats", s.handleContactStats)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetContact)
				r.Put("/", s.handleUpdateContact)
				r.Patch("/", s.handleUpdateContact)
				r.Delete("/", s.handleDeleteContact)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", s.handleListUsers)
			r.Post("/", s.handleCreateUser)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetUser)
				r.Put("/", s.handleUpdateUser)
				r.Patch("/", s.handleUpdateUser)
				r.Delete("/", s.handleDeleteUser)
			})
		})

		r.Get("/locations", s.handleListLocations)
		r.Get("/dashboard/activity", s.handleActivity)

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/", s.handleAnalytics)
			r.Get("/overview", s.handleAnalyticsOverview)
			r.Get("/properties", s.handleAnalyticsProperties)
			r.Get("/users", s.handleAnalyticsUsers)
			r.Get("/contacts", s.handleAnalyticsContacts)
		})

		r.Get("/admin/audit", s.handleAuditLog)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
