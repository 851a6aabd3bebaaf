package web

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/softmembers/soft-members/pkg/backend"
	"github.com/softmembers/soft-members/pkg/proto"
)

// AuthController registers the registration and session routes.
func AuthController(_ context.Context, r *mux.Router) {
	s := r.PathPrefix("/auth").Subrouter()
	s.HandleFunc("/register", postRegister).Methods(http.MethodPost)
	s.HandleFunc("/login", postLogin).Methods(http.MethodPost)
	s.HandleFunc("/me", withAuth(getMe)).Methods(http.MethodGet)
}

// authenticate returns the user of the request's bearer token.
func authenticate(r *http.Request) (proto.User, error) {
	ctx := r.Context()
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, proto.ErrNoToken
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return nil, proto.ErrInvalidToken
	}

	be := backend.FromContext(ctx)
	return be.UserFromToken(ctx, strings.TrimSpace(token))
}

// withAuth rejects requests without a valid bearer token and stores the
// authenticated user in the request context.
func withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := authenticate(r)
		if err != nil {
			renderError(w, r, err)
			return
		}

		log.FromContext(r.Context()).Debug("authenticated", "user", user.ID(), "role", user.Role())
		next(w, r.WithContext(proto.WithUserContext(r.Context(), user)))
	}
}

// withOptionalAuth stores the authenticated user in the request context
// when the request carries a valid bearer token. Requests without one are
// served anonymously.
func withOptionalAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := authenticate(r)
		switch {
		case err == nil:
			r = r.WithContext(proto.WithUserContext(r.Context(), user))
		case errors.Is(err, proto.ErrNoToken):
		default:
			renderError(w, r, err)
			return
		}

		next(w, r)
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func postRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)

	var opts backend.RegisterOptions
	if err := decodeJSON(w, r, &opts); err != nil {
		renderError(w, r, err)
		return
	}

	user, m, err := be.Register(ctx, opts)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, r, http.StatusCreated, object{
		"message":    "Registration successful. Your application is pending approval.",
		"user":       userJSON(user),
		"membership": m,
	})
}

func postLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		renderError(w, r, err)
		return
	}

	token, user, err := be.Login(ctx, req.Email, req.Password)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, r, http.StatusOK, object{
		"token": token,
		"user":  userJSON(user),
	})
}

func getMe(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, r, http.StatusOK, object{"user": userJSON(proto.UserFromContext(r.Context()))})
}

// userJSON returns the public representation of a user.
func userJSON(u proto.User) interface{} {
	if m, ok := backend.UserModel(u); ok {
		return m
	}
	return object{
		"id":              u.ID(),
		"organization_id": u.OrganizationID(),
		"email":           u.Email(),
		"first_name":      u.FirstName(),
		"last_name":       u.LastName(),
		"role":            u.Role(),
	}
}
