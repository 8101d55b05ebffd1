package service

import (
	"context"
	"sort"
	"sync"

	"github.com/recordlink/registrar/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Account repository stub: enforces username uniqueness on Create the way a
// unique index would.
// ---------------------------------------------------------------------------

type stubAccountRepo struct {
	mu         sync.Mutex
	byUsername map[string]*domain.Account
	findErr    error
	createErr  error
	attachErr  error
	creates    int
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{byUsername: make(map[string]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	c := *a
	if a.Ledger != nil {
		ref := *a.Ledger
		c.Ledger = &ref
	}
	return &c
}

func (r *stubAccountRepo) FindByUsername(_ context.Context, username string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	a, ok := r.byUsername[username]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

func (r *stubAccountRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byUsername {
		if a.ID == id {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) Create(_ context.Context, a *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if _, exists := r.byUsername[a.Username]; exists {
		return domain.ErrDuplicateAccount
	}
	r.creates++
	r.byUsername[a.Username] = cloneAccount(a)
	return nil
}

func (r *stubAccountRepo) AttachLedgerReference(_ context.Context, id string, ref domain.LedgerReference) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.attachErr != nil {
		return r.attachErr
	}
	for _, a := range r.byUsername {
		if a.ID == id {
			a.Ledger = &ref
			return nil
		}
	}
	return domain.ErrAccountNotFound
}

func (r *stubAccountRepo) ListUnlinked(_ context.Context, limit int) ([]*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Account
	for _, a := range r.byUsername {
		if !a.Linked() {
			out = append(out, cloneAccount(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *stubAccountRepo) get(username string) *domain.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneAccount(r.byUsername[username])
}

// ---------------------------------------------------------------------------
// Content publisher stub
// ---------------------------------------------------------------------------

type stubPublisher struct {
	mu    sync.Mutex
	cid   string
	err   error
	calls int
	docs  [][]byte
	names []string
}

func (p *stubPublisher) Publish(_ context.Context, content []byte, name string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.docs = append(p.docs, content)
	p.names = append(p.names, name)
	if p.err != nil {
		return "", p.err
	}
	return p.cid, nil
}

func (p *stubPublisher) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// ---------------------------------------------------------------------------
// Ledger client stub
// ---------------------------------------------------------------------------

type ledgerCall struct {
	accountID string
	cid       string
	gas       uint64
}

type stubLedger struct {
	mu      sync.Mutex
	receipt *domain.LedgerReceipt
	err     error
	calls   []ledgerCall
	cids    map[string]string
}

func (l *stubLedger) SubmitAndConfirm(_ context.Context, accountID, cid string, gas uint64) (*domain.LedgerReceipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, ledgerCall{accountID: accountID, cid: cid, gas: gas})
	if l.err != nil {
		return nil, l.err
	}
	if l.cids == nil {
		l.cids = make(map[string]string)
	}
	l.cids[accountID] = cid
	return l.receipt, nil
}

func (l *stubLedger) LookupCID(_ context.Context, accountID string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cid, ok := l.cids[accountID]
	if !ok {
		return "", domain.ErrLedgerRecordAbsent
	}
	return cid, nil
}

func (l *stubLedger) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.calls)
}

// ---------------------------------------------------------------------------
// Token issuer stub (used to force issuance failures)
// ---------------------------------------------------------------------------

type failingIssuer struct{ err error }

func (f failingIssuer) Mint(*domain.Account) (*domain.Token, error) { return nil, f.err }
