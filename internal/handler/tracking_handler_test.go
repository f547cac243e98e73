package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"rackleblock/racklerush/internal/config"
	"rackleblock/racklerush/internal/model"
	"rackleblock/racklerush/internal/repository"
	"rackleblock/racklerush/internal/service"
	"rackleblock/racklerush/pkg/flutterwave"
	jwtpkg "rackleblock/racklerush/pkg/jwt"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	// One connection keeps the shared-cache memory DB alive and serializes writes.
	sqlDB.SetMaxOpenConns(1)
	if err := model.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := newTestDB(t)
	stateStore := repository.NewMemoryStateStore()

	userRepo := repository.NewPGUserRepository(db)
	businessRepo := repository.NewPGBusinessRepository(db)
	contestRepo := repository.NewPGContestRepository(db)
	participantRepo := repository.NewPGParticipantRepository(db)
	waitlistRepo := repository.NewPGWaitlistRepository(db)
	paymentRepo := repository.NewPGPaymentRepository(db)

	jwtManager := jwtpkg.NewManager("test-signing-key", "racklerush-test", 15*time.Minute, time.Hour)
	logger := zap.NewNop()

	cfg := &config.Config{}
	cfg.Server.Mode = "test"
	cfg.CORS.AllowedOrigins = []string{"http://localhost:3000"}
	cfg.CORS.AllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	cfg.CORS.AllowedHeaders = []string{"Authorization", "Content-Type"}

	router := SetupRouter(
		cfg, logger, jwtManager,
		NewAuthHandler(service.NewAuthService(userRepo, stateStore, jwtManager)),
		NewBusinessHandler(service.NewBusinessService(businessRepo, stateStore)),
		NewContestHandler(service.NewContestService(businessRepo, contestRepo, participantRepo)),
		NewParticipantHandler(service.NewParticipantService(businessRepo, contestRepo, participantRepo)),
		NewWaitlistHandler(service.NewWaitlistService(waitlistRepo)),
		NewBillingHandler(service.NewBillingService(businessRepo, paymentRepo, flutterwave.NewClient("http://invalid", "", time.Second))),
		NewTrackingHandler(service.NewTrackingService(businessRepo, participantRepo, stateStore, time.Minute), logger),
	)
	return router, db
}

type trackingFixture struct {
	business    model.Business
	contest     model.Contest
	participant model.Participant
}

func seedTracking(t *testing.T, db *gorm.DB) trackingFixture {
	t.Helper()
	user := model.User{Email: "owner@example.com", PasswordHash: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	business := model.Business{
		UserID:           user.ID,
		Name:             "Ada Cakes",
		Slug:             "ada-cakes",
		APIKey:           "rr_test_key_1",
		SubscriptionTier: model.TierSpark,
	}
	if err := db.Create(&business).Error; err != nil {
		t.Fatalf("seed business: %v", err)
	}
	contest := model.Contest{
		BusinessID:      business.ID,
		Title:           "Launch Giveaway",
		EndDate:         time.Now().Add(30 * 24 * time.Hour),
		Active:          true,
		ReferralEnabled: true,
	}
	if err := db.Create(&contest).Error; err != nil {
		t.Fatalf("seed contest: %v", err)
	}
	participant := model.Participant{
		ContestID:     contest.ID,
		Email:         "fan@example.com",
		ReferralCode:  "abc123",
		ReferralCount: 5,
		JoinedContest: true,
	}
	if err := db.Create(&participant).Error; err != nil {
		t.Fatalf("seed participant: %v", err)
	}
	return trackingFixture{business: business, contest: contest, participant: participant}
}

func doTrack(router *gin.Engine, apiKey string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(http.MethodPost, "/functions/track-referral", &buf)
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("x-api-key", apiKey)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return body
}

func TestTrack_IncrementsAndReturnsNewCount(t *testing.T) {
	router, db := newTestServer(t)
	fx := seedTracking(t, db)

	w := doTrack(router, "rr_test_key_1", gin.H{"referral_code": "abc123"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["success"] != true {
		t.Errorf("success = %v", body["success"])
	}
	if body["referral_code"] != "abc123" {
		t.Errorf("referral_code = %v", body["referral_code"])
	}
	if body["new_count"] != float64(6) {
		t.Errorf("new_count = %v, want 6", body["new_count"])
	}

	var stored model.Participant
	if err := db.First(&stored, "id = ?", fx.participant.ID).Error; err != nil {
		t.Fatalf("reload participant: %v", err)
	}
	if stored.ReferralCount != 6 {
		t.Errorf("stored referral_count = %d, want 6", stored.ReferralCount)
	}
}

// Tracking is deliberately not idempotent: the same body counts every time.
func TestTrack_ReplayIncrementsAgain(t *testing.T) {
	router, db := newTestServer(t)
	seedTracking(t, db)

	first := doTrack(router, "rr_test_key_1", gin.H{"referral_code": "abc123"})
	second := doTrack(router, "rr_test_key_1", gin.H{"referral_code": "abc123"})
	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("statuses = %d, %d", first.Code, second.Code)
	}
	if got := decodeBody(t, second)["new_count"]; got != float64(7) {
		t.Errorf("second new_count = %v, want 7", got)
	}
}

func TestTrack_ConcurrentCallsLoseNoIncrements(t *testing.T) {
	router, db := newTestServer(t)
	fx := seedTracking(t, db)

	const calls = 20
	var wg sync.WaitGroup
	codes := make(chan int, calls)
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := doTrack(router, "rr_test_key_1", gin.H{"referral_code": "abc123"})
			codes <- w.Code
		}()
	}
	wg.Wait()
	close(codes)
	for code := range codes {
		if code != http.StatusOK {
			t.Fatalf("status = %d", code)
		}
	}

	var stored model.Participant
	if err := db.First(&stored, "id = ?", fx.participant.ID).Error; err != nil {
		t.Fatalf("reload participant: %v", err)
	}
	if stored.ReferralCount != 5+calls {
		t.Errorf("referral_count = %d, want %d", stored.ReferralCount, 5+calls)
	}
}

func TestTrack_MissingAPIKey(t *testing.T) {
	router, db := newTestServer(t)
	seedTracking(t, db)

	w := doTrack(router, "", gin.H{"referral_code": "abc123"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
	if got := decodeBody(t, w)["error"]; got != "Missing x-api-key header" {
		t.Errorf("error = %v", got)
	}
}

func TestTrack_InvalidAPIKey(t *testing.T) {
	router, db := newTestServer(t)
	seedTracking(t, db)

	w := doTrack(router, "rr_wrong_key", gin.H{"referral_code": "abc123"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
	if got := decodeBody(t, w)["error"]; got != "Invalid API key" {
		t.Errorf("error = %v", got)
	}
}

func TestTrack_MissingReferralCode(t *testing.T) {
	router, db := newTestServer(t)
	seedTracking(t, db)

	for _, body := range []any{gin.H{}, gin.H{"referral_code": ""}, "not json"} {
		w := doTrack(router, "rr_test_key_1", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %v: status = %d", body, w.Code)
		}
		if got := decodeBody(t, w)["error"]; got != "Missing referral_code in request body" {
			t.Errorf("body %v: error = %v", body, got)
		}
	}
}

func TestTrack_UnknownOrInactiveCode(t *testing.T) {
	router, db := newTestServer(t)
	fx := seedTracking(t, db)

	// Signed up but never completed the contest action.
	pending := model.Participant{
		ContestID:    fx.contest.ID,
		Email:        "pending@example.com",
		ReferralCode: "pend01",
	}
	if err := db.Create(&pending).Error; err != nil {
		t.Fatalf("seed pending participant: %v", err)
	}

	for _, code := range []string{"nosuch", "pend01"} {
		w := doTrack(router, "rr_test_key_1", gin.H{"referral_code": code})
		if w.Code != http.StatusNotFound {
			t.Fatalf("code %q: status = %d", code, w.Code)
		}
		if got := decodeBody(t, w)["error"]; got != "Referral code not found or not active for this business" {
			t.Errorf("code %q: error = %v", code, got)
		}
	}
}

// A valid code presented with another business's API key must be
// indistinguishable from a code that does not exist.
func TestTrack_CrossTenantCodeIsNotFound(t *testing.T) {
	router, db := newTestServer(t)
	seedTracking(t, db)

	otherUser := model.User{Email: "other@example.com", PasswordHash: "x"}
	if err := db.Create(&otherUser).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	other := model.Business{
		UserID: otherUser.ID,
		Name:   "Bode Fitness",
		Slug:   "bode-fitness",
		APIKey: "rr_test_key_2",
	}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("seed business: %v", err)
	}

	w := doTrack(router, "rr_test_key_2", gin.H{"referral_code": "abc123"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestTrack_ContestScoping(t *testing.T) {
	router, db := newTestServer(t)
	fx := seedTracking(t, db)

	w := doTrack(router, "rr_test_key_1", gin.H{"referral_code": "abc123", "contest_id": fx.contest.ID.String()})
	if w.Code != http.StatusOK {
		t.Fatalf("matching contest: status = %d, body %s", w.Code, w.Body.String())
	}

	w = doTrack(router, "rr_test_key_1", gin.H{"referral_code": "abc123", "contest_id": uuid.NewString()})
	if w.Code != http.StatusNotFound {
		t.Fatalf("other contest: status = %d", w.Code)
	}

	w = doTrack(router, "rr_test_key_1", gin.H{"referral_code": "abc123", "contest_id": "not-a-uuid"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("garbage contest id: status = %d", w.Code)
	}
}

// The Spark referral quota is a dashboard concern; the endpoint keeps
// counting past it.
func TestTrack_CountsPastPlanQuota(t *testing.T) {
	router, db := newTestServer(t)
	fx := seedTracking(t, db)

	if err := db.Model(&model.Participant{}).
		Where("id = ?", fx.participant.ID).
		UpdateColumn("referral_count", 500).Error; err != nil {
		t.Fatalf("set count: %v", err)
	}

	w := doTrack(router, "rr_test_key_1", gin.H{"referral_code": "abc123"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if got := decodeBody(t, w)["new_count"]; got != float64(501) {
		t.Errorf("new_count = %v, want 501", got)
	}
}

func TestTrack_MethodNotAllowed(t *testing.T) {
	router, db := newTestServer(t)
	seedTracking(t, db)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodTrace} {
		req := httptest.NewRequest(method, "/functions/track-referral", nil)
		req.Header.Set("x-api-key", "rr_test_key_1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s: status = %d", method, w.Code)
		}
		if got := decodeBody(t, w)["error"]; got != "Method not allowed" {
			t.Errorf("%s: error = %v", method, got)
		}
	}
}

func TestTrack_PreflightAllowsAnyOrigin(t *testing.T) {
	router, db := newTestServer(t)
	seedTracking(t, db)

	req := httptest.NewRequest(http.MethodOptions, "/functions/track-referral", nil)
	req.Header.Set("Origin", "https://widgets.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "x-api-key")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
