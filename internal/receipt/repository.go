package receipt

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// Ledger records completed checkouts.
type Ledger interface {
	Save(ctx context.Context, r domain.Receipt) error
	ListBySession(ctx context.Context, sessionID string) ([]domain.Receipt, error)
}

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// every connection to :memory: is its own database
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(migrationsPath string) error {
	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func (r *Repository) Save(ctx context.Context, rc domain.Receipt) error {
	lines, err := json.Marshal(rc.Lines)
	if err != nil {
		return fmt.Errorf("failed to marshal receipt lines: %w", err)
	}

	query := `
		INSERT INTO receipts (id, session_id, lines, total_items, total_price, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.db.ExecContext(ctx, query,
		rc.ID,
		rc.SessionID,
		string(lines),
		rc.TotalItems,
		rc.TotalPrice.String(),
		rc.CompletedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert receipt: %w", err)
	}
	return nil
}

// ListBySession returns the session's receipts, newest first.
func (r *Repository) ListBySession(ctx context.Context, sessionID string) ([]domain.Receipt, error) {
	query := `
		SELECT id, session_id, lines, total_items, total_price, completed_at
		FROM receipts
		WHERE session_id = $1
		ORDER BY completed_at DESC, id
	`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query receipts: %w", err)
	}
	defer rows.Close()

	receipts := []domain.Receipt{}
	for rows.Next() {
		var (
			rc          domain.Receipt
			lines       string
			totalPrice  string
			completedAt time.Time
		)
		if err := rows.Scan(&rc.ID, &rc.SessionID, &lines, &rc.TotalItems, &totalPrice, &completedAt); err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}
		if err := json.Unmarshal([]byte(lines), &rc.Lines); err != nil {
			return nil, fmt.Errorf("failed to unmarshal receipt lines: %w", err)
		}
		if rc.TotalPrice, err = decimal.NewFromString(totalPrice); err != nil {
			return nil, fmt.Errorf("failed to parse receipt total: %w", err)
		}
		rc.CompletedAt = completedAt.UTC()
		receipts = append(receipts, rc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return receipts, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
