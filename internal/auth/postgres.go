package auth

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"tenantgate.org/internal/ids"
	"tenantgate.org/internal/store"
)

const pgErrUniqueViolation = "23505"

var _ UserStore = (*PGUserStore)(nil)

// PGUserStore implements UserStore on PostgreSQL. Every operation acquires its
// handle through the router, so it always talks to the database of the tenant
// bound on ctx and fails loudly when no tenant is bound.
type PGUserStore struct {
	router *store.Router
}

// NewPGUserStore wraps the tenant router.
func NewPGUserStore(router *store.Router) *PGUserStore {
	return &PGUserStore{router: router}
}

func (s *PGUserStore) Create(ctx context.Context, u *User) error {
	db, err := s.router.DB(ctx)
	if err != nil {
		return err
	}
	if u.ID == "" {
		u.ID = ids.New()
	}
	_, err = db.ExecContext(ctx,
		`insert into users(id, username, password_hash, tenant_id, enabled) values($1,$2,$3,$4,$5)`,
		u.ID, u.Username, u.PasswordHash, u.TenantID, u.Enabled,
	)
	if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
		return ErrAlreadyExists
	}
	return err
}

func maybePgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

func (s *PGUserStore) Find(ctx context.Context, id string) (*User, error) {
	db, err := s.router.DB(ctx)
	if err != nil {
		return nil, err
	}
	row := db.QueryRowContext(ctx,
		`select id, username, password_hash, tenant_id, enabled, created_at, updated_at
		 from users where id=$1`, id)
	return scanUser(row)
}

func (s *PGUserStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	db, err := s.router.DB(ctx)
	if err != nil {
		return nil, err
	}
	row := db.QueryRowContext(ctx,
		`select id, username, password_hash, tenant_id, enabled, created_at, updated_at
		 from users where username=$1 and enabled=true`, username)
	return scanUser(row)
}

func (s *PGUserStore) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	db, err := s.router.DB(ctx)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx,
		`update users set password_hash=$2, updated_at=now() where id=$1`,
		userID, passwordHash,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.TenantID, &u.Enabled, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
