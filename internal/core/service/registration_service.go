package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/recordlink/registrar/internal/core/domain"
	"github.com/recordlink/registrar/internal/core/ports"
	"github.com/recordlink/registrar/internal/pkg/metrics"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 64
	MinPasswordLength = 6
	// bcrypt ignores (and x/crypto rejects) input beyond 72 bytes.
	MaxPasswordBytes = 72

	defaultPublishTimeout = 15 * time.Second
	defaultGasCeiling     = 500_000
)

// PipelineConfig holds the tunables of the registration pipeline.
type PipelineConfig struct {
	BcryptCost     int
	PublishTimeout time.Duration
	GasCeiling     uint64
}

func (c PipelineConfig) withDefaults() PipelineConfig {
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		c.BcryptCost = bcrypt.DefaultCost
	}
	if c.PublishTimeout <= 0 {
		c.PublishTimeout = defaultPublishTimeout
	}
	if c.GasCeiling == 0 {
		c.GasCeiling = defaultGasCeiling
	}
	return c
}

// RegistrationService sequences account creation, token issuance, content
// publication and ledger commit. Side effects are strictly additive: a
// failure at one stage never undoes the effect of an earlier stage.
type RegistrationService struct {
	accounts  ports.AccountRepository
	tokens    ports.TokenIssuer
	publisher ports.ContentPublisher
	ledger    ports.LedgerClient
	cfg       PipelineConfig
	log       zerolog.Logger
	now       func() time.Time

	// dummyHash is compared against when the username is unknown so that
	// both login failure paths cost one bcrypt comparison.
	dummyHash []byte
}

func NewRegistrationService(
	accounts ports.AccountRepository,
	tokens ports.TokenIssuer,
	publisher ports.ContentPublisher,
	ledger ports.LedgerClient,
	cfg PipelineConfig,
	log zerolog.Logger,
) *RegistrationService {
	cfg = cfg.withDefaults()
	dummy, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), cfg.BcryptCost)
	if err != nil {
		// Only fails for out-of-range costs, which withDefaults rules out.
		panic(fmt.Sprintf("registration service: dummy hash: %v", err))
	}
	return &RegistrationService{
		accounts:  accounts,
		tokens:    tokens,
		publisher: publisher,
		ledger:    ledger,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
		dummyHash: dummy,
	}
}

// Register runs the four-stage pipeline. Validation and duplicate errors are
// returned before any mutation. Any failure after the account was persisted
// is a *domain.PipelineError naming the failed and completed stages.
func (s *RegistrationService) Register(ctx context.Context, in ports.RegisterInput) (*ports.RegistrationResult, error) {
	result, err := s.register(ctx, in)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(string(domain.KindOf(err))).Inc()
		return nil, err
	}
	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	return result, nil
}

func (s *RegistrationService) register(ctx context.Context, in ports.RegisterInput) (*ports.RegistrationResult, error) {
	if err := validateRegistration(in); err != nil {
		return nil, err
	}
	log := s.log.With().Str("username", in.Username).Logger()

	// 1. Uniqueness check + account creation.
	account, err := s.createAccount(ctx, in)
	if err != nil {
		log.Info().Err(err).Msg("registration rejected")
		return nil, err
	}
	log = log.With().Str("account_id", account.ID).Logger()
	log.Info().Msg("account created")
	completed := []domain.Stage{domain.StageAccount}

	// 2. Token issuance.
	start := time.Now()
	token, err := s.tokens.Mint(account)
	observeStage(domain.StageToken, start, err)
	if err != nil {
		log.Error().Err(err).Msg("token issuance failed after account creation")
		return nil, &domain.PipelineError{
			Stage:     domain.StageToken,
			AccountID: account.ID,
			Completed: completed,
			Err:       domain.As(domain.ErrInternal, err),
		}
	}
	completed = append(completed, domain.StageToken)

	// 3 + 4. The external stages run detached from request cancellation: a
	// client disconnect does not abort an in-flight publish or commit.
	ref, err := s.link(context.WithoutCancel(ctx), account, completed, log)
	if err != nil {
		return nil, err
	}

	return &ports.RegistrationResult{
		Token:       token,
		Account:     account.Summary(),
		Publication: ref,
	}, nil
}

func (s *RegistrationService) createAccount(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
	start := time.Now()
	account, err := s.persistAccount(ctx, in)
	observeStage(domain.StageAccount, start, err)
	return account, err
}

func (s *RegistrationService) persistAccount(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
	// Fast path only; the unique index is what actually guarantees uniqueness.
	_, err := s.accounts.FindByUsername(ctx, in.Username)
	switch {
	case err == nil:
		return nil, domain.ErrDuplicateAccount
	case !errors.Is(err, domain.ErrAccountNotFound):
		return nil, fmt.Errorf("%w: lookup account: %w", domain.ErrInternal, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("%w: hash password: %w", domain.ErrInternal, err)
	}

	account := &domain.Account{
		ID:           uuid.NewString(),
		Username:     in.Username,
		PasswordHash: string(hash),
		Role:         domain.Role(in.Role),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, domain.ErrDuplicateAccount) {
			return nil, domain.ErrDuplicateAccount
		}
		return nil, fmt.Errorf("%w: create account: %w", domain.ErrInternal, err)
	}
	return account, nil
}

// link publishes the account document and anchors its CID on the ledger,
// then records the reference on the account.
func (s *RegistrationService) link(ctx context.Context, account *domain.Account, completed []domain.Stage, log zerolog.Logger) (*domain.LedgerReference, error) {
	fail := func(stage domain.Stage, err error) error {
		metrics.UnlinkedAccountsTotal.WithLabelValues(string(stage)).Inc()
		log.Error().Err(err).Str("stage", string(stage)).Msg("registration pipeline stage failed; account left unlinked")
		return &domain.PipelineError{
			Stage:     stage,
			AccountID: account.ID,
			Completed: append([]domain.Stage(nil), completed...),
			Err:       err,
		}
	}

	// 3. Content publication: single attempt, explicit timeout.
	doc, err := json.Marshal(account.PublicDocument())
	if err != nil {
		return nil, fail(domain.StagePublication, fmt.Errorf("%w: encode document: %w", domain.ErrInternal, err))
	}
	start := time.Now()
	pubCtx, cancel := context.WithTimeout(ctx, s.cfg.PublishTimeout)
	cid, err := s.publisher.Publish(pubCtx, doc, documentName(account))
	cancel()
	observeStage(domain.StagePublication, start, err)
	if err != nil {
		return nil, fail(domain.StagePublication, domain.As(domain.ErrPublicationFailed, err))
	}
	log.Info().Str("cid", cid).Msg("account document published")
	completed = append(completed, domain.StagePublication)

	// 4. Ledger commit: the client owns the submit and confirm timeouts.
	start = time.Now()
	receipt, err := s.ledger.SubmitAndConfirm(ctx, account.ID, cid, s.cfg.GasCeiling)
	observeStage(domain.StageLedger, start, err)
	if err != nil {
		if !errors.Is(err, domain.ErrLedgerRejected) {
			err = domain.As(domain.ErrLedgerUnavailable, err)
		}
		return nil, fail(domain.StageLedger, err)
	}
	log.Info().Str("cid", cid).Str("tx_hash", receipt.TxHash).Uint64("block", receipt.BlockNumber).Msg("ledger commit confirmed")

	ref := domain.LedgerReference{
		CID:         cid,
		TxHash:      receipt.TxHash,
		BlockNumber: receipt.BlockNumber,
		LinkedAt:    s.now().UTC(),
	}
	// The ledger is the record of truth here; a failed write-back is left
	// for reconciliation instead of failing an already-anchored registration.
	if err := s.accounts.AttachLedgerReference(ctx, account.ID, ref); err != nil {
		log.Warn().Err(err).Str("tx_hash", ref.TxHash).Msg("failed to attach ledger reference to account")
	} else {
		account.Ledger = &ref
	}
	return &ref, nil
}

// Login authenticates username/password. Unknown usernames and wrong
// passwords return the same domain.ErrInvalidCredentials.
func (s *RegistrationService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	res, err := s.login(ctx, username, password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(string(domain.KindOf(err))).Inc()
		return nil, err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return res, nil
}

func (s *RegistrationService) login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	if username == "" || password == "" {
		return nil, domain.Validationf("username and password are required")
	}

	account, err := s.accounts.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, fmt.Errorf("%w: lookup account: %w", domain.ErrInternal, err)
	}

	hash := s.dummyHash
	if account != nil {
		hash = []byte(account.PasswordHash)
	}
	match := bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
	if account == nil || !match {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Mint(account)
	if err != nil {
		return nil, domain.As(domain.ErrInternal, err)
	}
	s.log.Info().Str("account_id", account.ID).Msg("login succeeded")

	return &ports.LoginResult{Token: token, Account: account.Summary()}, nil
}

// Relink re-runs publication and ledger commit for an account that has no
// ledger reference. Already linked accounts are returned unchanged.
func (s *RegistrationService) Relink(ctx context.Context, accountID string) (*domain.LedgerReference, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		metrics.RelinksTotal.WithLabelValues(string(domain.KindOf(err))).Inc()
		return nil, err
	}
	if account.Linked() {
		metrics.RelinksTotal.WithLabelValues("already_linked").Inc()
		return account.Ledger, nil
	}

	log := s.log.With().Str("account_id", account.ID).Str("op", "relink").Logger()
	ref, err := s.link(ctx, account, []domain.Stage{domain.StageAccount}, log)
	if err != nil {
		metrics.RelinksTotal.WithLabelValues(string(domain.KindOf(err))).Inc()
		return nil, err
	}
	metrics.RelinksTotal.WithLabelValues("linked").Inc()
	return ref, nil
}

// ListUnlinked returns summaries of accounts that still lack a ledger reference.
func (s *RegistrationService) ListUnlinked(ctx context.Context, limit int) ([]domain.AccountSummary, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	accounts, err := s.accounts.ListUnlinked(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list unlinked: %w", err)
	}
	out := make([]domain.AccountSummary, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.Summary())
	}
	return out, nil
}

func validateRegistration(in ports.RegisterInput) error {
	n := utf8.RuneCountInString(in.Username)
	switch {
	case n < MinUsernameLength:
		return domain.Validationf("username must be at least %d characters", MinUsernameLength)
	case n > MaxUsernameLength:
		return domain.Validationf("username must be at most %d characters", MaxUsernameLength)
	case utf8.RuneCountInString(in.Password) < MinPasswordLength:
		return domain.Validationf("password must be at least %d characters", MinPasswordLength)
	case len(in.Password) > MaxPasswordBytes:
		return domain.Validationf("password must be at most %d bytes", MaxPasswordBytes)
	case !domain.Role(in.Role).Valid():
		return domain.Validationf("role must be one of: admin, registrar, viewer")
	}
	return nil
}

func documentName(a *domain.Account) string {
	return "account-" + a.ID + ".json"
}

func observeStage(stage domain.Stage, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.StageDuration.WithLabelValues(string(stage), result).Observe(time.Since(start).Seconds())
}
