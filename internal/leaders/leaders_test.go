package leaders

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripdesk/tripdesk/internal/auth"
	"github.com/tripdesk/tripdesk/internal/platform/docstore"
	"github.com/tripdesk/tripdesk/internal/shared"
)

func leader(email string) Leader {
	return Leader{
		FullName:    "Lead " + email,
		Email:       email,
		PhoneNumber: "+91-9000000000",
		Area:        "North",
		GroupID:     "G1",
		Position:    "Area Leader",
	}
}

func TestRegisterBulkIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	svc := NewService(store)

	ids, err := svc.RegisterBulk(ctx, []Leader{leader("a@x.com"), leader("b@x.com")})
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	_, err = svc.RegisterBulk(ctx, []Leader{leader("c@x.com"), leader("A@x.com")})
	assert.ErrorIs(t, err, shared.ErrConflict)

	_, err = svc.RegisterBulk(ctx, []Leader{leader("d@x.com"), leader("d@x.com")})
	assert.ErrorIs(t, err, shared.ErrConflict)

	docs, err := store.List(ctx, Collection)
	require.NoError(t, err)
	assert.Len(t, docs, 2, "rejected batches must not insert anything")

	_, err = svc.RegisterBulk(ctx, nil)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestDeleteLeader(t *testing.T) {
	ctx := context.Background()
	svc := NewService(docstore.NewMemoryStore())
	ids, err := svc.RegisterBulk(ctx, []Leader{leader("a@x.com")})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, ids[0]))
	assert.ErrorIs(t, svc.Delete(ctx, ids[0]), shared.ErrNotFound)

	_, err = svc.RegisterBulk(ctx, []Leader{leader("a@x.com")})
	assert.NoError(t, err, "email is free again after delete")
}

func TestLeaderRoutes(t *testing.T) {
	codec, err := auth.NewCodec("leaders-secret-with-at-least-32-bytes", time.Hour)
	require.NoError(t, err)
	adminToken, _, err := codec.Encode("root@x.com", auth.RoleAdmin)
	require.NoError(t, err)
	leaderToken, _, err := codec.Encode("lead@x.com", auth.RoleLeader)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	r.Route("/leaders", NewHandler(logger, NewService(docstore.NewMemoryStore()), auth.NewGuard(codec, logger, nil)).MountRoutes)

	send := func(method, path, body, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		res := httptest.NewRecorder()
		r.ServeHTTP(res, req)
		return res
	}

	payload, err := json.Marshal([]Leader{leader("a@x.com"), leader("b@x.com")})
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, send(http.MethodPost, "/leaders/bulk", string(payload), leaderToken).Code)

	res := send(http.MethodPost, "/leaders/bulk", string(payload), adminToken)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	var body struct {
		LeaderIDs []string `json:"leader_ids"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.Len(t, body.LeaderIDs, 2)

	assert.Equal(t, http.StatusConflict, send(http.MethodPost, "/leaders/bulk", string(payload), adminToken).Code)
	assert.Equal(t, http.StatusBadRequest, send(http.MethodPost, "/leaders/bulk", `[]`, adminToken).Code)
	assert.Equal(t, http.StatusBadRequest, send(http.MethodPost, "/leaders/bulk", `[{"email":"x"}]`, adminToken).Code)

	assert.Equal(t, http.StatusOK, send(http.MethodDelete, "/leaders/"+body.LeaderIDs[0], "", adminToken).Code)
	assert.Equal(t, http.StatusNotFound, send(http.MethodDelete, "/leaders/"+body.LeaderIDs[0], "", adminToken).Code)
}
