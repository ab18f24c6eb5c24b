// README: API gateway; builds the gin engine and delegates to module services.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"

	"fria/internal/http/handlers"
	"fria/internal/http/middleware"
	"fria/internal/infra"
	"fria/internal/modules/form"
	"fria/internal/modules/intake"
	"fria/internal/modules/towrequest"
	"fria/internal/speech"
)

// ServerDeps wires the handlers. A nil Verifier disables auth.
type ServerDeps struct {
	Intake      *intake.Service
	Forms       *form.Service
	Geocoder    handlers.AddressLookup
	Tows        *towrequest.Service
	Transcriber speech.Transcriber
	Verifier    infra.TokenVerifier
	CORSOrigins []string
	Log         *slog.Logger
}

type Server struct {
	intake      *handlers.IntakeHandler
	forms       *handlers.FormHandler
	location    *handlers.LocationHandler
	tows        *handlers.TowRequestHandler
	verifier    infra.TokenVerifier
	corsOrigins []string
	log         *slog.Logger
}

func NewServer(deps ServerDeps) *Server {
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}
	origins := deps.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Server{
		intake:      handlers.NewIntakeHandler(deps.Intake, deps.Transcriber),
		forms:       handlers.NewFormHandler(deps.Intake, deps.Forms),
		location:    handlers.NewLocationHandler(deps.Geocoder),
		tows:        handlers.NewTowRequestHandler(deps.Tows),
		verifier:    deps.Verifier,
		corsOrigins: origins,
		log:         log,
	}
}

// Routes returns the gin engine wrapped in the CORS handler.
func (s *Server) Routes() http.Handler {
	if gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.Recovery(s.log), middleware.Logging(s.log))
	s.register(r)

	return cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	})(r)
}
