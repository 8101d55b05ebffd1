// Package ledger anchors account document CIDs and criminal records on the
// registry smart contract through an EVM JSON-RPC node.
package ledger

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/rs/zerolog"

	"github.com/recordlink/registrar/internal/core/domain"
)

const (
	defaultSubmitTimeout  = 30 * time.Second
	defaultConfirmTimeout = 2 * time.Minute
	defaultGasLimit       = 500000
)

var privateKeyPattern = regexp.MustCompile(`^(0x)?[0-9a-fA-F]{64}$`)

// Config holds the node endpoint, signer and contract settings. GasLimit
// caps record writes; account anchoring passes its own ceiling.
type Config struct {
	RPCURL          string
	ChainID         int64
	PrivateKey      string
	ContractAddress string
	GasLimit        uint64
	SubmitTimeout   time.Duration
	ConfirmTimeout  time.Duration
}

// contract is the part of *bind.BoundContract the client uses.
type contract interface {
	Transact(opts *bind.TransactOpts, method string, params ...interface{}) (*types.Transaction, error)
	Call(opts *bind.CallOpts, results *[]interface{}, method string, params ...interface{}) error
}

// backend is the part of *ethclient.Client the client uses beyond the
// bound contract.
type backend interface {
	bind.DeployBackend
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// Client implements ports.LedgerClient and ports.RecordLedger. It is built once at startup and
// shared by all requests.
type Client struct {
	contract       contract
	backend        backend
	key            *ecdsa.PrivateKey
	from           common.Address
	chainID        *big.Int
	gasLimit       uint64
	submitTimeout  time.Duration
	confirmTimeout time.Duration
	log            zerolog.Logger
	closeFn        func()

	nonceMu     sync.Mutex
	nextNonce   uint64
	nonceSynced bool
}

// Dial validates cfg, connects to the node, checks the chain id and binds
// the registry contract.
func Dial(ctx context.Context, cfg Config, log zerolog.Logger) (*Client, error) {
	key, err := parsePrivateKey(cfg.PrivateKey)
	if err != nil {
		return nil, err
	}
	addr := strings.TrimSpace(cfg.ContractAddress)
	if !common.IsHexAddress(addr) {
		return nil, fmt.Errorf("ledger: invalid contract address %q", addr)
	}
	if strings.TrimSpace(cfg.RPCURL) == "" {
		return nil, errors.New("ledger: rpc url is required")
	}

	eth, err := ethclient.DialContext(ctx, strings.TrimSpace(cfg.RPCURL))
	if err != nil {
		return nil, fmt.Errorf("ledger: dial %s: %w", cfg.RPCURL, err)
	}

	chainID, err := eth.ChainID(ctx)
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("ledger: read chain id: %w", err)
	}
	if cfg.ChainID != 0 && chainID.Int64() != cfg.ChainID {
		eth.Close()
		return nil, fmt.Errorf("ledger: node reports chain id %s, expected %d", chainID, cfg.ChainID)
	}

	parsed, err := abi.JSON(strings.NewReader(registryABI))
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("ledger: parse abi: %w", err)
	}
	bound := bind.NewBoundContract(common.HexToAddress(addr), parsed, eth, eth, eth)

	c := newClient(bound, eth, key, chainID, cfg, log)
	c.closeFn = eth.Close

	log.Info().
		Str("chain_id", chainID.String()).
		Str("contract", common.HexToAddress(addr).Hex()).
		Str("signer", c.from.Hex()).
		Msg("ledger client initialised")
	return c, nil
}

func newClient(ct contract, be backend, key *ecdsa.PrivateKey, chainID *big.Int, cfg Config, log zerolog.Logger) *Client {
	submit := cfg.SubmitTimeout
	if submit <= 0 {
		submit = defaultSubmitTimeout
	}
	confirm := cfg.ConfirmTimeout
	if confirm <= 0 {
		confirm = defaultConfirmTimeout
	}
	gas := cfg.GasLimit
	if gas == 0 {
		gas = defaultGasLimit
	}
	return &Client{
		contract:       ct,
		backend:        be,
		key:            key,
		from:           crypto.PubkeyToAddress(key.PublicKey),
		chainID:        chainID,
		gasLimit:       gas,
		submitTimeout:  submit,
		confirmTimeout: confirm,
		log:            log,
		closeFn:        func() {},
	}
}

func parsePrivateKey(raw string) (*ecdsa.PrivateKey, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("ledger: private key is required")
	}
	if !privateKeyPattern.MatchString(raw) {
		prefix := raw
		if len(prefix) > 8 {
			prefix = prefix[:8]
		}
		return nil, fmt.Errorf("ledger: invalid private key format: %s...", prefix)
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(raw, "0x"))
	if err != nil {
		return nil, fmt.Errorf("ledger: parse private key: %w", err)
	}
	return key, nil
}

// SubmitAndConfirm sends registerUser(accountID, cid) and waits for one
// block confirmation. Submission and confirmation have separate timeouts.
func (c *Client) SubmitAndConfirm(ctx context.Context, accountID, cid string, gasCeiling uint64) (*domain.LedgerReceipt, error) {
	log := c.log.With().Str("account_id", accountID).Str("cid", cid).Logger()
	return c.transact(ctx, log, gasCeiling, methodRegisterUser, accountID, cid)
}

// RegisterCriminal sends registerCriminal(subject).
func (c *Client) RegisterCriminal(ctx context.Context, subject string) (*domain.LedgerReceipt, error) {
	if !common.IsHexAddress(subject) {
		return nil, domain.Validationf("criminalAddress must be a hex encoded 20 byte address")
	}
	addr := common.HexToAddress(subject)
	log := c.log.With().Str("criminal", addr.Hex()).Logger()
	return c.transact(ctx, log, c.gasLimit, methodRegisterCriminal, addr)
}

// AddCrime sends addCrime(recordId, description, ipfsHash).
func (c *Client) AddCrime(ctx context.Context, record domain.CrimeRecord) (*domain.LedgerReceipt, error) {
	log := c.log.With().Str("record_id", record.RecordID).Str("cid", record.CID).Logger()
	return c.transact(ctx, log, c.gasLimit, methodAddCrime, record.RecordID, record.Description, record.CID)
}

func (c *Client) transact(ctx context.Context, log zerolog.Logger, gasCeiling uint64, method string, args ...interface{}) (*domain.LedgerReceipt, error) {
	log = log.With().Str("method", method).Logger()

	tx, err := c.submit(ctx, gasCeiling, method, args...)
	if err != nil {
		c.resyncNonce()
		log.Warn().Err(err).Msg("ledger submission failed")
		return nil, err
	}
	log = log.With().Str("tx_hash", tx.Hash().Hex()).Logger()
	log.Info().Uint64("nonce", tx.Nonce()).Msg("transaction sent, waiting for confirmation")

	confirmCtx, cancel := context.WithTimeout(ctx, c.confirmTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(confirmCtx, c.backend, tx)
	if err != nil {
		return nil, fmt.Errorf("%w: awaiting confirmation of %s: %w", domain.ErrLedgerUnavailable, tx.Hash().Hex(), err)
	}

	var block uint64
	if receipt.BlockNumber != nil {
		block = receipt.BlockNumber.Uint64()
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		log.Warn().Uint64("block", block).Msg("transaction reverted")
		return nil, fmt.Errorf("%w: transaction %s reverted in block %d", domain.ErrLedgerRejected, tx.Hash().Hex(), block)
	}

	return &domain.LedgerReceipt{
		TxHash:      tx.Hash().Hex(),
		BlockNumber: block,
		GasUsed:     receipt.GasUsed,
	}, nil
}

func (c *Client) submit(ctx context.Context, gasCeiling uint64, method string, args ...interface{}) (*types.Transaction, error) {
	submitCtx, cancel := context.WithTimeout(ctx, c.submitTimeout)
	defer cancel()

	opts, err := bind.NewKeyedTransactorWithChainID(c.key, c.chainID)
	if err != nil {
		return nil, fmt.Errorf("%w: build transactor: %w", domain.ErrLedgerUnavailable, err)
	}
	nonce, err := c.reserveNonce(submitCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: read pending nonce: %w", domain.ErrLedgerUnavailable, err)
	}
	opts.Context = submitCtx
	opts.GasLimit = gasCeiling
	opts.Nonce = new(big.Int).SetUint64(nonce)

	tx, err := c.contract.Transact(opts, method, args...)
	if err != nil {
		return nil, classifySubmitError(err)
	}
	return tx, nil
}

// classifySubmitError separates refusals by the node (a JSON-RPC error
// response) from transport failures.
func classifySubmitError(err error) error {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return fmt.Errorf("%w: %w", domain.ErrLedgerRejected, err)
	}
	return fmt.Errorf("%w: %w", domain.ErrLedgerUnavailable, err)
}

// reserveNonce hands out sequential nonces so concurrent registrations
// sharing the signer do not collide. The mutex is never held across the
// node round-trip.
func (c *Client) reserveNonce(ctx context.Context) (uint64, error) {
	c.nonceMu.Lock()
	if c.nonceSynced {
		n := c.nextNonce
		c.nextNonce++
		c.nonceMu.Unlock()
		return n, nil
	}
	c.nonceMu.Unlock()

	pending, err := c.backend.PendingNonceAt(ctx, c.from)
	if err != nil {
		return 0, err
	}

	c.nonceMu.Lock()
	defer c.nonceMu.Unlock()
	if !c.nonceSynced || pending > c.nextNonce {
		c.nextNonce = pending
		c.nonceSynced = true
	}
	n := c.nextNonce
	c.nextNonce++
	return n, nil
}

func (c *Client) resyncNonce() {
	c.nonceMu.Lock()
	c.nonceSynced = false
	c.nonceMu.Unlock()
}

// LookupCID reads the CID the contract holds for accountID.
func (c *Client) LookupCID(ctx context.Context, accountID string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.submitTimeout)
	defer cancel()

	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: callCtx}, &out, methodUserHashes, accountID); err != nil {
		return "", fmt.Errorf("%w: userHashes: %w", domain.ErrLedgerUnavailable, err)
	}
	if len(out) == 0 {
		return "", domain.ErrLedgerRecordAbsent
	}
	cid, ok := out[0].(string)
	if !ok {
		return "", fmt.Errorf("%w: userHashes returned %T", domain.ErrInternal, out[0])
	}
	if cid == "" {
		return "", domain.ErrLedgerRecordAbsent
	}
	return cid, nil
}

// Ping checks the node answers.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.backend.BlockNumber(ctx)
	return err
}

// Close releases the node connection.
func (c *Client) Close() {
	c.closeFn()
}
