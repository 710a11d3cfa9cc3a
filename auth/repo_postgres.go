package auth

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

type postgresAccountRepository struct {
	db *pgxpool.Pool
}

func NewPostgresAccountRepository(db *pgxpool.Pool) Repository {
	return &postgresAccountRepository{db: db}
}

// OpenPostgres connects to dsn and verifies the connection.
func OpenPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	const op = "auth.OpenPostgres"

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return db, nil
}

// MigratePostgres applies the embedded schema migrations.
func MigratePostgres(ctx context.Context, pool *pgxpool.Pool) error {
	const op = "auth.MigratePostgres"

	dir, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	// closing db leaves the pool open
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, dir)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *postgresAccountRepository) Store(ctx context.Context, acc *Account) error {
	const op = "auth.postgres.Store"

	query := `
		INSERT INTO accounts(id, username, nickname, password, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	c := acc.Credentials
	_, err := r.db.Exec(ctx, query, string(acc.ID), c.Username, c.Nickname, c.Password, acc.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrDuplicate
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *postgresAccountRepository) FindByID(ctx context.Context, id ID) (*Account, error) {
	return r.findAccountBy(ctx, "id", string(id))
}

func (r *postgresAccountRepository) FindByName(ctx context.Context, username string) (*Account, error) {
	return r.findAccountBy(ctx, "username", username)
}

func (r *postgresAccountRepository) FindByNickname(ctx context.Context, nickname string) (*Account, error) {
	return r.findAccountBy(ctx, "nickname", nickname)
}

// column is always one of the fixed names above, never user input.
func (r *postgresAccountRepository) findAccountBy(ctx context.Context, column string, val string) (*Account, error) {
	const op = "auth.postgres.findAccountBy"

	query := `
		SELECT id, username, nickname, password, created_at
		FROM accounts
		WHERE ` + column + ` = $1
	`

	var (
		acc Account
		id  string
	)
	err := r.db.QueryRow(ctx, query, val).Scan(
		&id,
		&acc.Credentials.Username,
		&acc.Credentials.Nickname,
		&acc.Credentials.Password,
		&acc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	acc.ID = ID(id)
	return &acc, nil
}
