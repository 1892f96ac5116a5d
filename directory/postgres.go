package directory

import (
	"context"
	"database/sql"
	"errors"

	"github.com/orbitlms/authgate"
)

var _ authgate.IdentityDirectory = (*Postgres)(nil)

// Postgres resolves identities from the platform's users/roles tables.
// The caller owns the *sql.DB (typically opened with the pgx stdlib
// driver) and its pool settings.
type Postgres struct {
	db *sql.DB
}

// NewPostgres wraps an open database handle.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// FindByUsernameOrEmail implements [authgate.IdentityDirectory]. Unknown
// identifiers return (nil, nil); errors are infrastructure failures only.
func (p *Postgres) FindByUsernameOrEmail(ctx context.Context, identifier string) (*authgate.Identity, error) {
	row := p.db.QueryRowContext(ctx,
		`select id, username, coalesce(email, ''), password, is_enabled, is_locked
		   from users
		  where username = $1 or email = $1`,
		identifier,
	)

	var identity authgate.Identity
	if err := row.Scan(
		&identity.ID,
		&identity.Username,
		&identity.Email,
		&identity.PasswordHash,
		&identity.Enabled,
		&identity.Locked,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	roles, err := p.rolesFor(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	identity.Roles = roles

	return &identity, nil
}

func (p *Postgres) rolesFor(ctx context.Context, userID int64) ([]string, error) {
	rows, err := p.db.QueryContext(ctx,
		`select r.role_code
		   from roles r
		   join user_roles ur on ur.role_id = r.id
		  where ur.user_id = $1
		  order by r.id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}
