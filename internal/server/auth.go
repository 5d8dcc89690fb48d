package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/campusquest/api/internal/campus"
	"github.com/campusquest/api/internal/docstore"
	"github.com/campusquest/api/internal/users"
)

type sessionDoc struct {
	UserID    string `json:"userId"`
	CreatedAt string `json:"createdAt"`
}

// createSession issues a bearer token for the user.
func createSession(ctx context.Context, docs *docstore.Store, userID string) (string, error) {
	token := docstore.NewID()
	err := docs.Set(ctx, docstore.Sessions, token, sessionDoc{
		UserID:    userID,
		CreatedAt: docstore.NowUTC(),
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

// userFromRequest resolves the Authorization bearer token to the
// calling user.
func userFromRequest(r *http.Request, docs *docstore.Store, us *users.Store) (campus.User, error) {
	auth := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(auth, "Bearer ")
	if !found || token == "" {
		return campus.User{}, campus.ErrUnauthenticated
	}

	var sess sessionDoc
	if err := docs.Get(r.Context(), docstore.Sessions, token, &sess); err != nil {
		return campus.User{}, campus.ErrUnauthenticated
	}
	u, err := us.Get(r.Context(), sess.UserID)
	if err != nil {
		return campus.User{}, campus.ErrUnauthenticated
	}
	return u, nil
}
