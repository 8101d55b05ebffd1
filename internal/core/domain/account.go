package domain

import "time"

// Role is the authorization role assigned to an account at creation.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleRegistrar Role = "registrar"
	RoleViewer    Role = "viewer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleRegistrar, RoleViewer:
		return true
	}
	return false
}

// LedgerReference links an account to its published document and the
// transaction that anchored it on the ledger.
type LedgerReference struct {
	CID         string    `json:"ipfsHash" bson:"cid"`
	TxHash      string    `json:"blockchainTx" bson:"tx_hash"`
	BlockNumber uint64    `json:"blockNumber,omitempty" bson:"block_number"`
	LinkedAt    time.Time `json:"linkedAt" bson:"linked_at"`
}

// Account is a registered identity. Username and Role never change after
// creation; Ledger is only set once publication and ledger commit succeed.
type Account struct {
	ID           string           `json:"id"`
	Username     string           `json:"username"`
	PasswordHash string           `json:"-"`
	Role         Role             `json:"role"`
	CreatedAt    time.Time        `json:"created_at"`
	Ledger       *LedgerReference `json:"ledger,omitempty"`
}

// AccountSummary is the caller-safe view of an account.
type AccountSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

func (a *Account) Summary() AccountSummary {
	return AccountSummary{ID: a.ID, Username: a.Username, Role: a.Role}
}

// Linked reports whether the account already carries a ledger reference.
func (a *Account) Linked() bool {
	return a.Ledger != nil && a.Ledger.CID != "" && a.Ledger.TxHash != ""
}

// PublicDocument is the projection published to the content store. It must
// never carry the credential hash.
type PublicDocument struct {
	User PublicUser `json:"user"`
}

type PublicUser struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Role      Role   `json:"role"`
	CreatedAt string `json:"createdAt"`
}

func (a *Account) PublicDocument() PublicDocument {
	return PublicDocument{User: PublicUser{
		ID:        a.ID,
		Username:  a.Username,
		Role:      a.Role,
		CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339),
	}}
}
