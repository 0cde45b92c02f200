package integrationtests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	processor "auction-market/internal/auctionProcessor"
	bidding "auction-market/internal/biddingService"
	"auction-market/internal/clock"
	"auction-market/internal/ledger"
	model "auction-market/internal/models"
	"auction-market/internal/notifier"
	"auction-market/internal/repository"
	"auction-market/internal/scheduler"
	"auction-market/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const operatorToken = "integration-token"

var start = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

type sent struct {
	UserID  int64
	Kind    notifier.Kind
	Payload notifier.Payload
}

// recordingNotifier keeps every notification in memory
type recordingNotifier struct {
	mu   sync.Mutex
	sent []sent
}

func (r *recordingNotifier) Notify(ctx context.Context, userID int64, kind notifier.Kind, payload notifier.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sent{UserID: userID, Kind: kind, Payload: payload})
	return nil
}

func (r *recordingNotifier) For(userID int64, kind notifier.Kind) []sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sent
	for _, s := range r.sent {
		if s.UserID == userID && s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

// testApp wires the full stack over an in-memory repository
type testApp struct {
	repo     *repository.MemoryRepo
	clock    *clock.Fake
	notifier *recordingNotifier
	router   *gin.Engine
	users    []model.User
}

// SetupTestApp initializes the router with an in-memory repository and three users
func SetupTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app := &testApp{
		repo:     repository.NewMemoryRepo(),
		clock:    clock.NewFake(start),
		notifier: &recordingNotifier{},
	}
	l := ledger.New(app.repo)
	service := bidding.NewBiddingService(l, bidding.WithClock(app.clock), bidding.WithNotifier(app.notifier))
	proc := processor.NewAuctionProcessor(l, processor.WithClock(app.clock), processor.WithNotifier(app.notifier))
	sched := scheduler.New(proc, time.Minute)
	app.router = server.SetupRouter(service, proc, sched, operatorToken)

	for i := 1; i <= 3; i++ {
		u := model.User{FirstName: fmt.Sprintf("User%d", i), LastName: "Test", Email: fmt.Sprintf("u%d@example.com", i)}
		require.NoError(t, app.repo.CreateUser(context.Background(), &u))
		app.users = append(app.users, u)
	}
	return app
}

// AddAuction stores an active auction that ends after d
func (a *testApp) AddAuction(t *testing.T, name string, startingPrice int64, d time.Duration) model.Auction {
	t.Helper()
	auction := model.Auction{
		Name:           name,
		Type:           model.ProductTypeAuction,
		StartingPrice:  decimal.NewFromInt(startingPrice),
		AuctionEndTime: start.Add(d),
		IsActive:       true,
	}
	require.NoError(t, a.repo.CreateAuction(context.Background(), &auction))
	return auction
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// Do executes an HTTP request as the given user (0 for none) and parses the envelope
func (a *testApp) Do(t *testing.T, method, url string, userID int64, body any, headers ...string) (int, envelope) {
	t.Helper()

	var reqBody []byte
	switch v := body.(type) {
	case nil:
	case string:
		reqBody = []byte(v)
	default:
		var err error
		reqBody, err = json.Marshal(v)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set("X-User-ID", fmt.Sprint(userID))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w.Code, env
}

// Decode unmarshals the envelope data into v
func Decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}
