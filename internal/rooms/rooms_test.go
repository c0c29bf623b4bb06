package rooms

import (
	"context"
	"errors"
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
	"github.com/tripdesk/tripdesk/jobs"
)

type recordingNotifier struct {
	sent []jobs.Notification
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, msg jobs.Notification) error {
	n.sent = append(n.sent, msg)
	return n.err
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func sampleAllotment() Allotment {
	return Allotment{
		Email:           "alice@x.com",
		TripID:          "trip-1",
		Destination:     "Hampi",
		Building:        "Heritage Inn",
		RoomNumber:      "101",
		AllottedMembers: []string{"Alice", "Bob"},
	}
}

func TestAllotRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	svc := NewService(docstore.NewMemoryStore(), notifier, quietLogger())

	got, err := svc.Allot(ctx, sampleAllotment(), "lead@x.com")
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "lead@x.com", got.AllottedBy)

	_, err = svc.Allot(ctx, sampleAllotment(), "lead@x.com")
	assert.ErrorIs(t, err, shared.ErrConflict)

	other := sampleAllotment()
	other.RoomNumber = "102"
	_, err = svc.Allot(ctx, other, "lead@x.com")
	assert.NoError(t, err)

	require.Len(t, notifier.sent, 2)
	assert.Equal(t, jobs.KindRoomAllotted, notifier.sent[0].Kind)
	assert.Equal(t, "alice@x.com", notifier.sent[0].Recipient)
}

func TestAllotSurvivesNotifierFailure(t *testing.T) {
	svc := NewService(docstore.NewMemoryStore(), &recordingNotifier{err: errors.New("down")}, quietLogger())
	_, err := svc.Allot(context.Background(), sampleAllotment(), "root@x.com")
	assert.NoError(t, err)
}

func TestAllotEndpointRoles(t *testing.T) {
	codec, err := auth.NewCodec("rooms-secret-with-at-least-32-bytes", time.Hour)
	require.NoError(t, err)
	token := func(role auth.Role) string {
		tok, _, err := codec.Encode(string(role)+"@x.com", role)
		require.NoError(t, err)
		return tok
	}

	r := chi.NewRouter()
	svc := NewService(docstore.NewMemoryStore(), nil, quietLogger())
	r.Route("/rooms", NewHandler(quietLogger(), svc, auth.NewGuard(codec, quietLogger(), nil)).MountRoutes)

	body := `{"email":"alice@x.com","trip_id":"trip-1","destination":"Hampi","building":"Inn","room_number":"%s","allotted_members":["Alice"]}`
	send := func(room, tok string) int {
		req := httptest.NewRequest(http.MethodPost, "/rooms/allot", strings.NewReader(strings.Replace(body, "%s", room, 1)))
		req.Header.Set("Content-Type", "application/json")
		if tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
		res := httptest.NewRecorder()
		r.ServeHTTP(res, req)
		return res.Code
	}

	assert.Equal(t, http.StatusUnauthorized, send("1", ""))
	assert.Equal(t, http.StatusForbidden, send("1", token(auth.RoleUser)))
	assert.Equal(t, http.StatusCreated, send("1", token(auth.RoleLeader)))
	assert.Equal(t, http.StatusCreated, send("2", token(auth.RoleAdmin)))
	assert.Equal(t, http.StatusConflict, send("2", token(auth.RoleLeader)))
	assert.Equal(t, http.StatusBadRequest, send("", token(auth.RoleAdmin)))
}
