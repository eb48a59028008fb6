package http

import (
	"errors"
	"net/http"

	"github.com/kyralabs/iamcore/internal/iam/domain"
	"github.com/kyralabs/iamcore/internal/iam/service"
	"github.com/kyralabs/iamcore/internal/iam/store"
	"github.com/kyralabs/iamcore/pkg/httpx"
	"github.com/kyralabs/iamcore/pkg/slogx"
)

// MeHandler returns the authenticated subject's own profile. The password
// hash is stripped unconditionally by domain.User.Profile.
type MeHandler struct {
	Users *service.UserService
}

func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	subject := httpx.SubjectFromContext(ctx)
	if subject == "" {
		httpx.WriteUnauthorized(w)
		return
	}

	profile, err := h.Users.GetProfile(ctx, subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteNotFound(w)
			return
		}
		log.Error("profile load failed", "user_id", subject, "err", err)
		httpx.WriteServerError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]domain.Profile{"user": profile})
}

// ProfileGetHandler reads a profile: the subject's own, or another user's
// when an {id} path value is present (the router gates that variant behind a
// role requirement).
type ProfileGetHandler struct {
	Users *service.UserService
}

func (h *ProfileGetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	target := r.PathValue("id")
	if target == "" {
		target = httpx.SubjectFromContext(ctx)
	}
	if target == "" {
		httpx.WriteUnauthorized(w)
		return
	}

	profile, err := h.Users.GetProfile(ctx, target)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteNotFound(w)
			return
		}
		log.Error("profile load failed", "user_id", target, "err", err)
		httpx.WriteServerError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]domain.Profile{"user": profile})
}

// ProfileUpdateHandler applies a partial patch to the subject's profile.
type ProfileUpdateHandler struct {
	Users *service.UserService
}

func (h *ProfileUpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	subject := httpx.SubjectFromContext(ctx)
	if subject == "" {
		httpx.WriteUnauthorized(w)
		return
	}

	var patch domain.ProfilePatch
	if err := httpx.DecodeValid(r, &patch); err != nil {
		httpx.WriteInvalidPayload(w, err)
		return
	}

	if err := h.Users.UpdateProfile(ctx, subject, patch); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteNotFound(w)
			return
		}
		log.Error("profile update failed", "user_id", subject, "err", err)
		httpx.WriteServerError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "profile updated"})
}

// ProfileDeleteHandler removes the subject's account.
type ProfileDeleteHandler struct {
	Users *service.UserService
}

func (h *ProfileDeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	subject := httpx.SubjectFromContext(ctx)
	if subject == "" {
		httpx.WriteUnauthorized(w)
		return
	}

	if err := h.Users.DeleteProfile(ctx, subject); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteNotFound(w)
			return
		}
		log.Error("profile delete failed", "user_id", subject, "err", err)
		httpx.WriteServerError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "profile deleted"})
}
