package shopping

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Repository handles persistence of delivered shopping lists.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new shopping list repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Save records a delivered shopping list.
func (r *Repository) Save(ctx context.Context, list *ShoppingList) (int64, error) {
	itemsJSON, err := json.Marshal(list.Items)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal shopping list items: %w", err)
	}

	createdAt := list.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO shopping_lists (week_start, channel, items, created_at) VALUES (?, ?, ?, ?)`,
		list.WeekStart.UTC(), list.Channel, string(itemsJSON), createdAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert shopping list: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read shopping list id: %w", err)
	}
	list.ID = id
	return id, nil
}

// GetByWeek returns the latest list delivered for the week starting at
// weekStart, or nil when none was sent.
func (r *Repository) GetByWeek(ctx context.Context, weekStart time.Time) (*ShoppingList, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, week_start, channel, items, created_at FROM shopping_lists
		 WHERE week_start = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		weekStart.UTC(),
	)
	list, err := scanList(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get shopping list by week: %w", err)
	}
	return list, nil
}

// ListRecent returns the most recent delivered lists, newest first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]ShoppingList, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, week_start, channel, items, created_at FROM shopping_lists
		 ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list shopping lists: %w", err)
	}
	defer rows.Close()

	var lists []ShoppingList
	for rows.Next() {
		list, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shopping list: %w", err)
		}
		lists = append(lists, *list)
	}
	return lists, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanList(s scanner) (*ShoppingList, error) {
	var (
		list  ShoppingList
		items string
	)
	if err := s.Scan(&list.ID, &list.WeekStart, &list.Channel, &items, &list.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(items), &list.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shopping list items: %w", err)
	}
	return &list, nil
}
