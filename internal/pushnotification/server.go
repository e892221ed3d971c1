package pushnotification

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/iehaus/buildboard/internal/config"
	"github.com/iehaus/buildboard/internal/pushsubscription"
	"github.com/iehaus/buildboard/pkg/cerr"
)

type Server struct {
	vapidEnv *config.VAPIDEnv
	repo     pushsubscription.Repository
	sender   *Sender
}

func NewServer(vapidEnv *config.VAPIDEnv, repo pushsubscription.Repository, sender *Sender) *Server {
	return &Server{
		vapidEnv: vapidEnv,
		repo:     repo,
		sender:   sender,
	}
}

func (s *Server) Routes(r chi.Router) {
	r.Get("/push/vapid-public-key", s.vapidPublicKey)
	r.Post("/push/subscriptions", s.register)
	r.Delete("/push/subscriptions", s.unregister)
	r.Post("/push/test", s.sendTest)
}

func (s *Server) vapidPublicKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.vapidEnv.VAPIDPublicKey == "" {
		cerr.SetNewJSONError(ctx, cerr.FailedPrecondition, "VAPID keys not configured", nil)
		return
	}
	cerr.SetJSONResponse(ctx, map[string]any{"public_key": s.vapidEnv.VAPIDPublicKey})
}

type subscriptionRequest struct {
	Endpoint  string `json:"endpoint"`
	P256dhKey string `json:"p256dh_key"`
	AuthKey   string `json:"auth_key"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req subscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	if req.Endpoint == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "endpoint is required", nil)
		return
	}
	if req.P256dhKey == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "p256dh_key is required", nil)
		return
	}
	if req.AuthKey == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "auth_key is required", nil)
		return
	}

	// Idempotent: re-registering an endpoint refreshes its keys.
	existing, err := s.repo.FindByEndpoint(ctx, req.Endpoint)
	if err == nil && existing != nil {
		existing.P256dhKey = req.P256dhKey
		existing.AuthKey = req.AuthKey
		if delErr := s.repo.Delete(ctx, existing.ID); delErr != nil {
			cerr.SetJSONError(ctx, delErr)
			return
		}
		if crErr := s.repo.Create(ctx, existing); crErr != nil {
			cerr.SetJSONError(ctx, crErr)
			return
		}
		cerr.SetJSONResponse(ctx, map[string]any{"subscription": existing})
		return
	}

	sub := &pushsubscription.Subscription{
		ID:        ulid.Make().String(),
		Endpoint:  req.Endpoint,
		P256dhKey: req.P256dhKey,
		AuthKey:   req.AuthKey,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, map[string]any{"subscription": sub})
}

type unregisterRequest struct {
	Endpoint string `json:"endpoint"`
}

func (s *Server) unregister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req unregisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	if req.Endpoint == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "endpoint is required", nil)
		return
	}
	if err := s.repo.DeleteByEndpoint(ctx, req.Endpoint); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, map[string]any{})
}

func (s *Server) sendTest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s.sender.SendToAll(ctx, &NotificationPayload{
		Title: "buildboard test",
		Body:  "Push notifications are working!",
	})
	cerr.SetJSONResponse(ctx, map[string]any{})
}
