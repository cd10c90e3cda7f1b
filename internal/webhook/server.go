package webhook

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const deletionPath = "/ebay-deletion-notify"

// deletionNotice is the body eBay posts to the marketplace-account-deletion
// endpoint registered in the developer portal.
type deletionNotice struct {
	VerificationToken string `json:"verification_token"`
}

// Server hosts the account-deletion notification endpoint eBay requires
// before it grants production API keys. It runs beside the bot and shares
// nothing with it.
type Server struct {
	token  string
	router *chi.Mux
	srv    *http.Server
}

func New(addr, verificationToken string) *Server {
	s := &Server{token: verificationToken}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get(deletionPath, s.handlePing)
	r.Post(deletionPath, s.handleDeletionNotice)
	s.router = r

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler exposes the route tree, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown. A closed server is not an error.
func (s *Server) Start() error {
	log.Printf("webhook: listening on %s", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("webhook server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "eBay webhook endpoint active")
}

func (s *Server) handleDeletionNotice(w http.ResponseWriter, r *http.Request) {
	var notice deletionNotice
	if err := json.NewDecoder(r.Body).Decode(&notice); err != nil {
		http.Error(w, "Invalid body", http.StatusBadRequest)
		return
	}

	if subtle.ConstantTimeCompare([]byte(notice.VerificationToken), []byte(s.token)) != 1 {
		log.Println("webhook: account deletion verification failed")
		http.Error(w, "Invalid token", http.StatusBadRequest)
		return
	}

	log.Println("webhook: account deletion verification successful")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "Token verified")
}
