package promo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/SebastianDabkowski/mercato-1-sub013/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(cred *Credentials) (*PostgresRepository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "promo_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

func (r *PostgresRepository) FindByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	query := `SELECT id, code, description, kind, value, minimum_order_amount, max_discount_amount,
	                 scope, store_id, starts_at, ends_at, usage_limit, usage_count, active,
	                 created_at, updated_at
	          FROM promo_codes WHERE lower(code) = lower($1)`

	var p domain.PromoCode
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&p.ID,
		&p.Code,
		&p.Description,
		&p.Kind,
		&p.Value,
		&p.MinimumOrderAmount,
		&p.MaxDiscountAmount,
		&p.Scope,
		&p.StoreID,
		&p.StartsAt,
		&p.EndsAt,
		&p.UsageLimit,
		&p.UsageCount,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query promo code: %w", err)
	}

	return &p, nil
}

// IncrementUsage is the conditional form: the guard lives in the WHERE clause
// so two concurrent confirmations cannot both take the last use of a capped
// code. Validity (active flag, time window) was already checked when the code
// was applied; only the cap guard belongs here, the order was confirmed
// either way.
func (r *PostgresRepository) IncrementUsage(ctx context.Context, id int64) error {
	query := `UPDATE promo_codes
	          SET usage_count = usage_count + 1, updated_at = NOW()
	          WHERE id = $1
	            AND (usage_limit IS NULL OR usage_count < usage_limit)`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("increment promo usage: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment promo usage rows affected: %w", err)
	}
	if affected == 0 {
		return ErrUsageExhausted
	}

	return nil
}

func (r *PostgresRepository) Close() error {
	return r.db.Close()
}
