package router

import (
	"net/http"

	"candle-labels/internal/handler"
	"candle-labels/internal/middleware"

	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers served by the API.
type Handlers struct {
	Auth     *handler.AuthHandler
	Candle   *handler.CandleHandler
	Category *handler.CategoryHandler
	Label    *handler.LabelHandler
	File     *handler.FileHandler
}

// Options configures the middleware chain.
type Options struct {
	Tokens         middleware.TokenValidator
	AllowedOrigins []string
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, opts Options, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)

	mux.HandleFunc("GET /api/categories", h.Category.GetAll)
	mux.HandleFunc("POST /api/categories", h.Category.Create)

	mux.HandleFunc("GET /api/candles", h.Candle.List)
	mux.HandleFunc("POST /api/candles", h.Candle.Create)
	mux.HandleFunc("GET /api/candles/{id}", h.Candle.GetByID)
	mux.HandleFunc("PUT /api/candles/{id}", h.Candle.Update)
	mux.HandleFunc("PATCH /api/candles/{id}/quantity", h.Candle.ChangeQuantity)
	mux.HandleFunc("DELETE /api/candles/{id}", h.Candle.Delete)
	mux.HandleFunc("POST /api/candles/import", h.File.Import)
	mux.HandleFunc("GET /api/candles/template/csv", h.File.Template)

	mux.HandleFunc("GET /api/label-sets", h.Label.ListSets)
	mux.HandleFunc("POST /api/label-sets", h.Label.CreateSet)
	mux.HandleFunc("GET /api/label-sets/{id}", h.Label.GetSet)
	mux.HandleFunc("POST /api/label-sets/{id}/labels", h.Label.GenerateForSet)
	mux.HandleFunc("POST /api/generate-labels", h.Label.Generate)

	mux.HandleFunc("POST /api/upload/{kind}", h.File.Upload)
	mux.HandleFunc("GET /uploads/{dir}/{filename}", h.File.Serve)

	// Apply middleware in order: RequestID -> Recovery -> Logging -> CORS -> BearerAuth
	var handler http.Handler = mux
	handler = middleware.BearerAuth(opts.Tokens, logger)(handler)
	handler = middleware.CORS(opts.AllowedOrigins)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Recovery(logger)(handler)
	handler = middleware.RequestID(handler)

	return handler
}
