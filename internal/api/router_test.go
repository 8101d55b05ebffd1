package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/recordlink/registrar/internal/api/handler"
	"github.com/recordlink/registrar/internal/core/domain"
	"github.com/recordlink/registrar/internal/core/service"
	redisdb "github.com/recordlink/registrar/internal/infrastructure/db/redis"
)

type memoryAccounts struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
}

func (m *memoryAccounts) FindByUsername(_ context.Context, username string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Username == username {
			c := *a
			return &c, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *memoryAccounts) FindByID(_ context.Context, id string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	c := *a
	return &c, nil
}

func (m *memoryAccounts) Create(_ context.Context, a *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.accounts {
		if existing.Username == a.Username {
			return domain.ErrDuplicateAccount
		}
	}
	c := *a
	m.accounts[a.ID] = &c
	return nil
}

func (m *memoryAccounts) AttachLedgerReference(_ context.Context, id string, ref domain.LedgerReference) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.Ledger = &ref
	return nil
}

func (m *memoryAccounts) ListUnlinked(_ context.Context, limit int) ([]*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Account
	for _, a := range m.accounts {
		if !a.Linked() && len(out) < limit {
			c := *a
			out = append(out, &c)
		}
	}
	return out, nil
}

type memoryPublisher struct {
	mu    sync.Mutex
	calls int
}

func (p *memoryPublisher) Publish(context.Context, []byte, string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return "bafkreigh2akiscaildcqabsyg3dfr6chu3fgpregiymsck7e7aqa4s52zy", nil
}

type memoryLedger struct {
	mu      sync.Mutex
	cids    map[string]string
	records []string
}

func (l *memoryLedger) SubmitAndConfirm(_ context.Context, accountID, cid string, _ uint64) (*domain.LedgerReceipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cids[accountID] = cid
	return &domain.LedgerReceipt{TxHash: "0x" + strings.Repeat("ab", 32), BlockNumber: 1}, nil
}

func (l *memoryLedger) LookupCID(_ context.Context, accountID string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cid, ok := l.cids[accountID]
	if !ok {
		return "", domain.ErrLedgerRecordAbsent
	}
	return cid, nil
}

func (l *memoryLedger) RegisterCriminal(_ context.Context, subject string) (*domain.LedgerReceipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, "criminal:"+subject)
	return &domain.LedgerReceipt{TxHash: "0x" + strings.Repeat("cd", 32), BlockNumber: 2}, nil
}

func (l *memoryLedger) AddCrime(_ context.Context, record domain.CrimeRecord) (*domain.LedgerReceipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, "crime:"+record.RecordID)
	return &domain.LedgerReceipt{TxHash: "0x" + strings.Repeat("ef", 32), BlockNumber: 3}, nil
}

type countingLimiter struct {
	mu    sync.Mutex
	limit int
	seen  map[string]int
}

func (l *countingLimiter) Allow(_ context.Context, key string) (redisdb.Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen[key]++
	remaining := l.limit - l.seen[key]
	return redisdb.Decision{
		Allowed:   remaining >= 0,
		Limit:     l.limit,
		Remaining: max(remaining, 0),
		ResetAt:   time.Now().Add(time.Minute),
	}, nil
}

type acceptAllQueue struct{}

func (acceptAllQueue) Enqueue(string) bool { return true }

type testServer struct {
	e         *echo.Echo
	publisher *memoryPublisher
	ledger    *memoryLedger
}

func newTestServer(t *testing.T, limiter *countingLimiter, trustedProxies ...*net.IPNet) *testServer {
	t.Helper()
	accounts := &memoryAccounts{accounts: map[string]*domain.Account{}}
	publisher := &memoryPublisher{}
	ledger := &memoryLedger{cids: map[string]string{}}
	tokens := service.NewTokenService("test-secret", "registrar", time.Hour)
	registration := service.NewRegistrationService(accounts, tokens, publisher, ledger,
		service.PipelineConfig{BcryptCost: bcrypt.MinCost}, zerolog.Nop())

	ok := handler.Check{Name: "mongodb", Probe: func(context.Context) error { return nil }}
	deps := Dependencies{
		Registration: registration,
		Linkage:      registration,
		Tokens:       tokens,
		Publisher:    publisher,
		Ledger:       ledger,
		Records:      ledger,
		RelinkQueue:  acceptAllQueue{},
		Health:       handler.NewHealthHandler(handler.HealthOptions{Log: zerolog.Nop()}, ok, "registrar"),
	}
	if limiter != nil {
		deps.Limiter = limiter
	}
	return &testServer{
		e:         NewRouter(deps, Options{Log: zerolog.Nop(), BodyLimit: "1M", TrustedProxies: trustedProxies}),
		publisher: publisher,
		ledger:    ledger,
	}
}

func (s *testServer) do(t *testing.T, method, path, body, token string) (int, map[string]any) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func TestRouter_RegistrationAndAccess(t *testing.T) {
	s := newTestServer(t, nil)

	code, body := s.do(t, http.MethodPost, "/auth/register", `{"username":"alice","password":"s3cret!","role":"registrar"}`, "")
	require.Equal(t, http.StatusCreated, code, body)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	user := body["user"].(map[string]any)
	accountID := user["id"].(string)
	assert.Equal(t, "bafkreigh2akiscaildcqabsyg3dfr6chu3fgpregiymsck7e7aqa4s52zy", user["ipfsHash"])
	assert.NotEmpty(t, user["blockchainTx"])

	code, body = s.do(t, http.MethodPost, "/auth/register", `{"username":"alice","password":"another","role":"admin"}`, "")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, string(domain.KindDuplicateAccount), body["kind"])
	assert.Equal(t, 1, s.publisher.calls, "duplicate must not publish")

	code, body = s.do(t, http.MethodGet, "/auth/me", "", token)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, accountID, body["id"])
	assert.Equal(t, "registrar", body["role"])

	code, body = s.do(t, http.MethodGet, "/ledger/accounts/"+accountID, "", token)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "bafkreigh2akiscaildcqabsyg3dfr6chu3fgpregiymsck7e7aqa4s52zy", body["cid"])

	code, body = s.do(t, http.MethodGet, "/admin/accounts/unlinked", "", token)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, string(domain.KindForbidden), body["kind"])
}

func TestRouter_Login(t *testing.T) {
	s := newTestServer(t, nil)
	code, _ := s.do(t, http.MethodPost, "/auth/register", `{"username":"bob","password":"hunter22","role":"viewer"}`, "")
	require.Equal(t, http.StatusCreated, code)

	code, body := s.do(t, http.MethodPost, "/auth/login", `{"username":"bob","password":"hunter22"}`, "")
	require.Equal(t, http.StatusOK, code)
	token := body["token"].(string)

	code, wrongPassword := s.do(t, http.MethodPost, "/auth/login", `{"username":"bob","password":"nope-nope"}`, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	code, unknownUser := s.do(t, http.MethodPost, "/auth/login", `{"username":"nobody","password":"nope-nope"}`, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, wrongPassword, unknownUser)

	// Viewers may read but not upload.
	req := httptest.NewRequest(http.MethodPost, "/ipfs/upload", strings.NewReader(""))
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_RecordWrites(t *testing.T) {
	s := newTestServer(t, nil)

	register := func(username, role string) string {
		code, body := s.do(t, http.MethodPost, "/auth/register",
			`{"username":"`+username+`","password":"s3cret!","role":"`+role+`"}`, "")
		require.Equal(t, http.StatusCreated, code, body)
		return body["token"].(string)
	}
	registrar := register("carol", "registrar")
	viewer := register("dave", "viewer")

	criminal := `{"criminalAddress":"0x00000000000000000000000000000000deadbeef"}`
	crime := `{"recordId":"rec-1","description":"burglary","ipfsHash":"bafkreigh2akiscaildcqabsyg3dfr6chu3fgpregiymsck7e7aqa4s52zy"}`

	code, _ := s.do(t, http.MethodPost, "/contract/register-criminal", criminal, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	code, body := s.do(t, http.MethodPost, "/contract/add-crime", crime, viewer)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, string(domain.KindForbidden), body["kind"])

	code, body = s.do(t, http.MethodPost, "/contract/register-criminal", criminal, registrar)
	assert.Equal(t, http.StatusOK, code, body)
	code, body = s.do(t, http.MethodPost, "/contract/add-crime", crime, registrar)
	assert.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "0x"+strings.Repeat("ef", 32), body["tx_hash"])

	s.ledger.mu.Lock()
	defer s.ledger.mu.Unlock()
	assert.Equal(t, []string{"criminal:0x00000000000000000000000000000000deadbeef", "crime:rec-1"}, s.ledger.records)
}

func TestRouter_TokenRejections(t *testing.T) {
	s := newTestServer(t, nil)

	code, body := s.do(t, http.MethodGet, "/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, string(domain.KindMissingToken), body["kind"])

	code, body = s.do(t, http.MethodGet, "/auth/me", "", "garbage")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, string(domain.KindMalformedToken), body["kind"])
}

func TestRouter_UnknownRoute(t *testing.T) {
	s := newTestServer(t, nil)
	code, body := s.do(t, http.MethodGet, "/does-not-exist", "", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, string(domain.KindNotFound), body["kind"])
}

func TestRouter_RateLimitOnAuth(t *testing.T) {
	s := newTestServer(t, &countingLimiter{limit: 2, seen: map[string]int{}})

	for i := 0; i < 2; i++ {
		code, _ := s.do(t, http.MethodPost, "/auth/login", `{"username":"x","password":"y"}`, "")
		assert.Equal(t, http.StatusUnauthorized, code)
	}
	code, body := s.do(t, http.MethodPost, "/auth/login", `{"username":"x","password":"y"}`, "")
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, string(domain.KindRateLimited), body["kind"])

	code, _ = s.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, code, "health is not rate limited")
}

func loginFrom(s *testServer, remoteAddr, forwardedFor string) int {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"x","password":"y"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.RemoteAddr = remoteAddr
	if forwardedFor != "" {
		req.Header.Set(echo.HeaderXForwardedFor, forwardedFor)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec.Code
}

func TestRouter_RateLimitIgnoresForwardedHeadersFromClients(t *testing.T) {
	limiter := &countingLimiter{limit: 1, seen: map[string]int{}}
	s := newTestServer(t, limiter)

	codes := []int{
		loginFrom(s, "198.51.100.9:40000", "10.0.0.1"),
		loginFrom(s, "198.51.100.9:40001", "10.0.0.2"),
		loginFrom(s, "198.51.100.9:40002", "10.0.0.3"),
	}
	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
	assert.Equal(t, map[string]int{"auth:198.51.100.9": 3}, limiter.seen)
}

func TestRouter_RateLimitHonoursTrustedProxy(t *testing.T) {
	_, proxies, err := net.ParseCIDR("198.51.100.0/24")
	require.NoError(t, err)
	limiter := &countingLimiter{limit: 1, seen: map[string]int{}}
	s := newTestServer(t, limiter, proxies)

	assert.Equal(t, http.StatusUnauthorized, loginFrom(s, "198.51.100.9:40000", "203.0.113.5"))
	assert.Equal(t, http.StatusUnauthorized, loginFrom(s, "198.51.100.9:40001", "203.0.113.6"))
	assert.Equal(t, http.StatusTooManyRequests, loginFrom(s, "198.51.100.9:40002", "203.0.113.5"))

	// An untrusted peer cannot pick its bucket.
	assert.Equal(t, http.StatusUnauthorized, loginFrom(s, "192.0.2.7:40003", "203.0.113.6"))
	assert.Equal(t, http.StatusTooManyRequests, loginFrom(s, "192.0.2.7:40004", "203.0.113.99"))

	assert.Equal(t, map[string]int{
		"auth:203.0.113.5": 2,
		"auth:203.0.113.6": 1,
		"auth:192.0.2.7":   2,
	}, limiter.seen)
}
