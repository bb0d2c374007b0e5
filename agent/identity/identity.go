// Package identity owns caller-identity lookup. Identities are resolved per
// request and never cached across requests.
package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"

	contractx "github.com/vinayakrana/Hotel-Chat-BE/agent/contract"
)

type record struct {
	bun.BaseModel `bun:"table:identities,alias:i"`

	Email string         `bun:"email,pk"`
	Name  string         `bun:"name,notnull"`
	Role  contractx.Role `bun:"role,notnull"`
}

type Resolver struct {
	db *bun.DB
}

var _ contractx.IdentityResolver = (*Resolver)(nil)

func NewResolver(db *bun.DB) *Resolver {
	return &Resolver{db: db}
}

// Resolve looks up the caller by email, case-insensitively.
func (r *Resolver) Resolve(ctx context.Context, email string) (contractx.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return contractx.Identity{}, fmt.Errorf("%w: empty caller identifier", contractx.ErrUnauthorized)
	}

	rec := new(record)
	err := r.db.NewSelect().Model(rec).Where("email = ?", email).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return contractx.Identity{}, fmt.Errorf("%w: %s", contractx.ErrUnauthorized, email)
	}
	if err != nil {
		return contractx.Identity{}, fmt.Errorf("resolve identity %s: %w", email, err)
	}

	return contractx.Identity{
		Email: rec.Email,
		Name:  rec.Name,
		Role:  rec.Role,
	}, nil
}

var demoIdentities = []record{
	{Email: "guest@hotel.com", Name: "Guest User", Role: contractx.RoleGuest},
	{Email: "john@email.com", Name: "John Doe", Role: contractx.RoleGuest},
	{Email: "staff@hotel.com", Name: "Staff Member", Role: contractx.RoleStaff},
	{Email: "admin@hotel.com", Name: "Admin User", Role: contractx.RoleStaff},
	{Email: "manager@hotel.com", Name: "Hotel Manager", Role: contractx.RoleStaff},
}

// Migrate creates the identities table and seeds the demo users when empty.
func Migrate(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().Model((*record)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create identities table: %w", err)
	}

	count, err := db.NewSelect().Model((*record)(nil)).Count(ctx)
	if err != nil {
		return fmt.Errorf("count identities: %w", err)
	}
	if count > 0 {
		return nil
	}

	records := make([]record, len(demoIdentities))
	copy(records, demoIdentities)
	if _, err := db.NewInsert().Model(&records).Exec(ctx); err != nil {
		return fmt.Errorf("seed identities: %w", err)
	}
	log.Info().Int("identities", len(records)).Msg("seeded identity records")
	return nil
}
