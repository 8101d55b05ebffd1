package domain

import "time"

// Token is a minted or verified session credential. The role is the one the
// account had at mint time and is never re-read.
type Token struct {
	Value     string
	ID        string
	Subject   string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}
