package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/recordlink/registrar/internal/core/domain"
)

const accountsCollection = "accounts"

// AccountRepository implements ports.AccountRepository using MongoDB.
// Username uniqueness is guaranteed by a unique index created in EnsureIndexes.
type AccountRepository struct {
	coll *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{coll: db.Collection(accountsCollection)}
}

type mongoLedgerRef struct {
	CID         string    `bson:"cid"`
	TxHash      string    `bson:"tx_hash"`
	BlockNumber int64     `bson:"block_number"`
	LinkedAt    time.Time `bson:"linked_at"`
}

type mongoAccount struct {
	ID           string          `bson:"_id"`
	Username     string          `bson:"username"`
	PasswordHash string          `bson:"password_hash"`
	Role         string          `bson:"role"`
	CreatedAt    time.Time       `bson:"created_at"`
	Ledger       *mongoLedgerRef `bson:"ledger,omitempty"`
}

func toDocument(a *domain.Account) mongoAccount {
	doc := mongoAccount{
		ID:           a.ID,
		Username:     a.Username,
		PasswordHash: a.PasswordHash,
		Role:         string(a.Role),
		CreatedAt:    a.CreatedAt.UTC(),
	}
	if a.Ledger != nil {
		doc.Ledger = toLedgerDocument(*a.Ledger)
	}
	return doc
}

func toLedgerDocument(ref domain.LedgerReference) *mongoLedgerRef {
	return &mongoLedgerRef{
		CID:         ref.CID,
		TxHash:      ref.TxHash,
		BlockNumber: int64(ref.BlockNumber),
		LinkedAt:    ref.LinkedAt.UTC(),
	}
}

func (m mongoAccount) toDomain() *domain.Account {
	a := &domain.Account{
		ID:           m.ID,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		Role:         domain.Role(m.Role),
		CreatedAt:    m.CreatedAt.UTC(),
	}
	if m.Ledger != nil {
		a.Ledger = &domain.LedgerReference{
			CID:         m.Ledger.CID,
			TxHash:      m.Ledger.TxHash,
			BlockNumber: uint64(m.Ledger.BlockNumber),
			LinkedAt:    m.Ledger.LinkedAt.UTC(),
		}
	}
	return a
}

// Create inserts a new account. A unique-index violation on username is
// reported as domain.ErrDuplicateAccount.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, toDocument(account)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateAccount
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// FindByUsername matches the username exactly (case-sensitive, no collation).
func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoAccount
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return doc.toDomain(), nil
}

// AttachLedgerReference records the CID and transaction hash on the account.
func (r *AccountRepository) AttachLedgerReference(ctx context.Context, id string, ref domain.LedgerReference) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"ledger": toLedgerDocument(ref)}},
	)
	if err != nil {
		return fmt.Errorf("attach ledger reference: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// ListUnlinked returns accounts without a ledger reference, oldest first.
func (r *AccountRepository) ListUnlinked(ctx context.Context, limit int) ([]*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(int64(limit))

	cur, err := r.coll.Find(ctx, bson.M{"ledger": bson.M{"$exists": false}}, opts)
	if err != nil {
		return nil, fmt.Errorf("list unlinked accounts: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoAccount
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode unlinked accounts: %w", err)
	}

	out := make([]*domain.Account, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// EnsureIndexes creates the unique username index that backs the
// uniqueness guarantee for concurrent registrations.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("username_unique"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetName("created_at"),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
