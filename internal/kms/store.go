// Package kms is the demo knowledge backend: a SQLite article store
// and an HTTP server implementing the console's upstream contracts
// (knowledge search, embedded-app search, config documents). It lets
// the console run end to end without a real knowledge platform.
// Matching is plain substring; relevance ranking is out of scope.
package kms

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

// Article is one knowledge-base document.
type Article struct {
	ID       string
	Title    string
	URL      string
	Snippet  string
	Category string
	Product  string
}

// Store keeps knowledge articles in SQLite.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens (creating if needed) the article database at path. Use
// ":memory:" for an ephemeral store.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open article db: %w", err)
	}
	s := &Store{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS articles (
			id       TEXT PRIMARY KEY,
			title    TEXT NOT NULL,
			url      TEXT NOT NULL,
			snippet  TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			product  TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_articles_title ON articles(title);
	`)
	if err != nil {
		return fmt.Errorf("migrate article db: %w", err)
	}
	return nil
}

// Seed inserts or replaces articles.
func (s *Store) Seed(ctx context.Context, articles []Article) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO articles (id, title, url, snippet, category, product)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range articles {
		if _, err := stmt.ExecContext(ctx, a.ID, a.Title, a.URL, a.Snippet, a.Category, a.Product); err != nil {
			return fmt.Errorf("seed article %s: %w", a.ID, err)
		}
	}
	return tx.Commit()
}

// Search returns articles whose title or snippet contains q, plus the
// total match count before paging.
func (s *Store) Search(ctx context.Context, q string, topK, offset int) ([]Article, int, error) {
	if topK <= 0 {
		topK = 20
	}
	if offset < 0 {
		offset = 0
	}
	pattern := "%" + q + "%"

	var total int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM articles
		WHERE title LIKE ? COLLATE NOCASE OR snippet LIKE ? COLLATE NOCASE
	`, pattern, pattern).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count articles: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, url, snippet, category, product FROM articles
		WHERE title LIKE ? COLLATE NOCASE OR snippet LIKE ? COLLATE NOCASE
		ORDER BY title
		LIMIT ? OFFSET ?
	`, pattern, pattern, topK, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var out []Article
	for rows.Next() {
		var a Article
		if err := rows.Scan(&a.ID, &a.Title, &a.URL, &a.Snippet, &a.Category, &a.Product); err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

// Count returns the number of stored articles.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&n)
	return n, err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SampleArticles is a starter corpus for `agentdesk serve --seed`.
var SampleArticles = []Article{
	{ID: "kb-1001", Title: "Reset a card PIN", URL: "/kb/1001", Snippet: "Customers can reset a <b>card PIN</b> in the mobile app under Cards, Manage PIN.", Category: "cards", Product: "debit-card"},
	{ID: "kb-1002", Title: "Dispute a card transaction", URL: "/kb/1002", Snippet: "Open a dispute within 60 days of the statement date. Collect the merchant name and amount first.", Category: "cards", Product: "credit-card"},
	{ID: "kb-1003", Title: "Unlock an online banking profile", URL: "/kb/1003", Snippet: "Profiles lock after five failed attempts. Verify identity before unlocking.", Category: "digital", Product: "online-banking"},
	{ID: "kb-1004", Title: "Report a lost or stolen card", URL: "/kb/1004", Snippet: "Freeze the card immediately, then order a replacement. Emergency cash rules apply for premier customers.", Category: "cards"},
	{ID: "kb-1005", Title: "Understand overdraft fees", URL: "/kb/1005", Snippet: "Overdraft fees post the next business day and appear on the monthly statement.", Category: "accounts"},
	{ID: "kb-1006", Title: "Update contact details", URL: "/kb/1006", Snippet: "Address changes need one proof of residence issued in the last 90 days.", Category: "accounts"},
	{ID: "kb-1007", Title: "Mobile app crash troubleshooting", URL: "/kb/1007", Snippet: "Clear the app cache, confirm the OS version, then reinstall. Capture the error code if it persists.", Category: "digital", Product: "mobile-app"},
	{ID: "kb-1008", Title: "International transfer cutoffs", URL: "/kb/1008", Snippet: "Same-day transfers must be submitted before 15:30 local time.", Category: "payments"},
}
