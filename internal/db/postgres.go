package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog"

	"github.com/atharvakonge/edustocks/internal/models"
	"github.com/atharvakonge/edustocks/internal/progress"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id           TEXT PRIMARY KEY,
    email        TEXT NOT NULL DEFAULT '',
    cash_balance DOUBLE PRECISION NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS portfolios (
    user_id            TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    stock_symbol       TEXT NOT NULL,
    quantity           INTEGER NOT NULL,
    avg_purchase_price DOUBLE PRECISION NOT NULL,
    updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (user_id, stock_symbol)
);
CREATE TABLE IF NOT EXISTS trades (
    id           TEXT PRIMARY KEY,
    user_id      TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    stock_symbol TEXT NOT NULL,
    trade_type   TEXT NOT NULL,
    quantity     INTEGER NOT NULL,
    price        DOUBLE PRECISION NOT NULL,
    total_amount DOUBLE PRECISION NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS progress (
    user_id           TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
    xp                INTEGER NOT NULL DEFAULT 0,
    level             TEXT NOT NULL DEFAULT 'beginner',
    completed_lessons TEXT[] NOT NULL DEFAULT '{}'
);`

// PostgresStore is the ledger on PostgreSQL
type PostgresStore struct {
	db              *sql.DB
	startingBalance float64
	log             zerolog.Logger
}

// OpenPostgres connects, tunes the pool and creates the schema.
func OpenPostgres(ctx context.Context, url string, startingBalance float64, log zerolog.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating schema: %w", err)
	}

	log.Info().Msg("Database connected successfully")
	return &PostgresStore{db: db, startingBalance: startingBalance, log: log}, nil
}

// DB exposes the underlying pool
func (s *PostgresStore) DB() *sql.DB { return s.db }

func (s *PostgresStore) Close() error {
	err := s.db.Close()
	s.log.Info().Msg("Database connection closed")
	return err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *PostgresStore) ensure(ctx context.Context, ex execer, userID, email string) error {
	_, err := ex.ExecContext(ctx, `
        INSERT INTO users (id, email, cash_balance) VALUES ($1, $2, $3)
        ON CONFLICT (id) DO UPDATE SET email = CASE WHEN $2 = '' THEN users.email ELSE $2 END
    `, userID, email, s.startingBalance)
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	_, err = ex.ExecContext(ctx,
		"INSERT INTO progress (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING", userID)
	if err != nil {
		return fmt.Errorf("ensure progress: %w", err)
	}
	return nil
}

func (s *PostgresStore) EnsureUser(ctx context.Context, userID, email string) error {
	return s.ensure(ctx, s.db, userID, email)
}

func (s *PostgresStore) Account(ctx context.Context, userID string) (*Account, error) {
	if err := s.ensure(ctx, s.db, userID, ""); err != nil {
		return nil, err
	}

	acct := &Account{UserID: userID, Positions: []Position{}}
	err := s.db.QueryRowContext(ctx, "SELECT cash_balance FROM users WHERE id = $1", userID).Scan(&acct.Balance)
	if err != nil {
		return nil, fmt.Errorf("load balance: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
        SELECT stock_symbol, quantity, avg_purchase_price
        FROM portfolios
        WHERE user_id = $1 AND quantity > 0
        ORDER BY stock_symbol
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("load positions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p Position
		if err := rows.Scan(&p.Symbol, &p.Quantity, &p.AveragePrice); err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		acct.Positions = append(acct.Positions, p)
	}
	return acct, rows.Err()
}

func (s *PostgresStore) ApplyTrade(ctx context.Context, t models.Trade) error {
	if err := validateTrade(t); err != nil {
		return err
	}
	if err := s.ensure(ctx, s.db, t.UserID, ""); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin trade: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	total := t.Price * float64(t.Quantity)

	var cashBalance float64
	err = tx.QueryRowContext(ctx,
		"SELECT cash_balance FROM users WHERE id = $1 FOR UPDATE", t.UserID,
	).Scan(&cashBalance)
	if err != nil {
		return fmt.Errorf("lock balance: %w", err)
	}

	switch t.Side {
	case models.Buy:
		if cashBalance < total {
			return ErrInsufficientBalance
		}
		if _, err = tx.ExecContext(ctx,
			"UPDATE users SET cash_balance = cash_balance - $1 WHERE id = $2", total, t.UserID,
		); err != nil {
			return fmt.Errorf("update balance: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
            INSERT INTO portfolios (user_id, stock_symbol, quantity, avg_purchase_price)
            VALUES ($1, $2, $3, $4)
            ON CONFLICT (user_id, stock_symbol)
            DO UPDATE SET
                quantity = portfolios.quantity + $3,
                avg_purchase_price = (
                    (portfolios.avg_purchase_price * portfolios.quantity) + ($4 * $3)
                ) / (portfolios.quantity + $3),
                updated_at = NOW()
        `, t.UserID, t.Symbol, t.Quantity, t.Price)
		if err != nil {
			return fmt.Errorf("update portfolio: %w", err)
		}

	case models.Sell:
		var held int
		err = tx.QueryRowContext(ctx,
			"SELECT quantity FROM portfolios WHERE user_id = $1 AND stock_symbol = $2 FOR UPDATE",
			t.UserID, t.Symbol,
		).Scan(&held)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && held < t.Quantity) {
			return ErrInsufficientShares
		}
		if err != nil {
			return fmt.Errorf("lock position: %w", err)
		}
		if held == t.Quantity {
			_, err = tx.ExecContext(ctx,
				"DELETE FROM portfolios WHERE user_id = $1 AND stock_symbol = $2", t.UserID, t.Symbol)
		} else {
			_, err = tx.ExecContext(ctx,
				"UPDATE portfolios SET quantity = quantity - $1, updated_at = NOW() WHERE user_id = $2 AND stock_symbol = $3",
				t.Quantity, t.UserID, t.Symbol)
		}
		if err != nil {
			return fmt.Errorf("update portfolio: %w", err)
		}
		if _, err = tx.ExecContext(ctx,
			"UPDATE users SET cash_balance = cash_balance + $1 WHERE id = $2", total, t.UserID,
		); err != nil {
			return fmt.Errorf("update balance: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
        INSERT INTO trades (id, user_id, stock_symbol, trade_type, quantity, price, total_amount, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `, t.ID, t.UserID, t.Symbol, string(t.Side), t.Quantity, t.Price, total, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("record trade: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit trade: %w", err)
	}
	return nil
}

func (s *PostgresStore) Trades(ctx context.Context, userID string, limit int) ([]models.Trade, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, user_id, stock_symbol, trade_type, quantity, price, total_amount, created_at
        FROM trades
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2
    `, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("load trades: %w", err)
	}
	defer rows.Close()

	trades := []models.Trade{}
	for rows.Next() {
		var t models.Trade
		var side string
		if err := rows.Scan(&t.ID, &t.UserID, &t.Symbol, &side, &t.Quantity, &t.Price, &t.Total, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		t.Side = models.Side(side)
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func loadProgress(ctx context.Context, q queryRower, userID string, forUpdate bool) (*models.UserProgress, error) {
	query := "SELECT xp, level, completed_lessons FROM progress WHERE user_id = $1"
	if forUpdate {
		query += " FOR UPDATE"
	}
	p := &models.UserProgress{UserID: userID}
	var level string
	var completed pq.StringArray
	if err := q.QueryRowContext(ctx, query, userID).Scan(&p.XP, &level, &completed); err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	p.Level = models.Level(level)
	p.CompletedLessons = []string(completed)
	if p.CompletedLessons == nil {
		p.CompletedLessons = []string{}
	}
	p.Rank = progress.RankOf(p.XP)
	return p, nil
}

func (s *PostgresStore) Progress(ctx context.Context, userID string) (*models.UserProgress, error) {
	if err := s.ensure(ctx, s.db, userID, ""); err != nil {
		return nil, err
	}
	return loadProgress(ctx, s.db, userID, false)
}

func (s *PostgresStore) CompleteLesson(ctx context.Context, userID, lessonID string, score float64) (*models.UserProgress, bool, error) {
	if err := s.ensure(ctx, s.db, userID, ""); err != nil {
		return nil, false, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("begin completion: %w", err)
	}
	defer tx.Rollback()

	p, err := loadProgress(ctx, tx, userID, true)
	if err != nil {
		return nil, false, err
	}
	if !award(p, lessonID, score) {
		return p, false, nil
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE progress SET xp = $1, level = $2, completed_lessons = $3 WHERE user_id = $4",
		p.XP, string(p.Level), pq.Array(p.CompletedLessons), userID)
	if err != nil {
		return nil, false, fmt.Errorf("update progress: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit completion: %w", err)
	}
	return p, true, nil
}
