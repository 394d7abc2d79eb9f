// Package httpserver exposes the placeshare REST API.
package httpserver

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/placeshare/placeshare/internal/service"
)

// maxUploadBytes caps multipart request memory for image uploads.
const maxUploadBytes = 8 << 20

// Server wires services into HTTP handlers.
type Server struct {
	users    service.UserService
	places   service.PlaceService
	blobs    service.BlobStore
	verifier Verifier
	log      *zap.Logger
}

// New constructs a Server with injected services.
func New(users service.UserService, places service.PlaceService, blobs service.BlobStore, verifier Verifier, log *zap.Logger) *Server {
	return &Server{users: users, places: places, blobs: blobs, verifier: verifier, log: log}
}

// Handler returns the routed handler wrapped in recover, logging and CORS
// middleware. Mutating place routes sit behind the authorization guard.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	auth := RequireAuth(s.verifier)

	mux.HandleFunc("GET /api/users", s.listUsers)
	mux.HandleFunc("POST /api/users/signup", s.signup)
	mux.HandleFunc("POST /api/users/login", s.login)

	mux.HandleFunc("GET /api/places/{pid}", s.getPlace)
	mux.HandleFunc("GET /api/places/user/{uid}", s.listPlacesByUser)
	mux.Handle("POST /api/places", auth(http.HandlerFunc(s.createPlace)))
	mux.Handle("PATCH /api/places/{pid}", auth(http.HandlerFunc(s.updatePlace)))
	mux.Handle("DELETE /api/places/{pid}", auth(http.HandlerFunc(s.deletePlace)))

	return Recover(s.log)(Logging(s.log)(CORS(mux)))
}
