package keyserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ZilDuck/crafted-market/internal/pinata"
	"github.com/gorilla/mux"
	uuid "github.com/nu7hatch/gouuid"
	"go.uber.org/zap"
)

type KeyIssuer interface {
	GenerateKey(ctx context.Context, adminJwt, keyName string, maxUses int) (pinata.KeyResponse, error)
}

// Server hands out pin-only content store keys so the admin credential never leaves this process.
type Server struct {
	issuer   KeyIssuer
	adminJwt string
	maxUses  int
}

func NewServer(issuer KeyIssuer, adminJwt string, maxUses int) Server {
	if maxUses <= 0 {
		maxUses = 2
	}

	return Server{issuer, adminJwt, maxUses}
}

func (s Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.HandleFunc("/api/key", s.handleKey).Methods("GET")
	r.NotFoundHandler = notFoundHandler()

	return r
}

func (s Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_, _ = fmt.Fprintf(w, "OK")
}

func (s Server) handleKey(w http.ResponseWriter, r *http.Request) {
	keyName, err := newKeyName()
	if err != nil {
		zap.L().With(zap.Error(err)).Error("KeyServer: Failed to name key")
		http.Error(w, "Failed to issue key", http.StatusInternalServerError)
		return
	}

	key, err := s.issuer.GenerateKey(r.Context(), s.adminJwt, keyName, s.maxUses)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("key", keyName)).Warn("KeyServer: Failed to issue key")
		http.Error(w, "Failed to issue key", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(pinata.KeyResponse{JWT: key.JWT}); err != nil {
		zap.L().With(zap.Error(err)).Warn("KeyServer: Failed to write key")
		return
	}

	zap.L().With(zap.String("key", keyName), zap.Int("maxUses", s.maxUses)).Info("KeyServer: Issued key")
}

func newKeyName() (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}

	return "upload-" + id.String(), nil
}

func notFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
		_, _ = fmt.Fprintf(w, "Page not found")
	})
}
