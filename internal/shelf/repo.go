// Package shelf tracks each user's personal reading list: which books they
// added, how far they got, and whether they finished.
package shelf

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"readinghub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// ShelfBook is a shelf row joined with the book columns the shelf page
// renders, so one query serves the whole view.
type ShelfBook struct {
	models.ShelfItem
	Title     string `json:"title"`
	Author    string `json:"author,omitempty"`
	Cover     string `json:"cover,omitempty"`
	Level     string `json:"level,omitempty"`
	WordCount int    `json:"word_count"`
	Chapters  int    `json:"chapters"`
}

func (r *Repo) Upsert(ctx context.Context, item models.ShelfItem) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO user_shelf (user_id, book_id, current_chapter, status, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id, book_id) DO UPDATE SET
			current_chapter = excluded.current_chapter,
			status = excluded.status,
			updated_at = CURRENT_TIMESTAMP
	`, item.UserID, item.BookID, item.CurrentChapter, item.Status)
	if err != nil {
		return fmt.Errorf("upsert shelf item: %w", err)
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, userID, bookID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM user_shelf
		WHERE user_id = ? AND book_id = ?
	`, userID, bookID)
	if err != nil {
		return false, fmt.Errorf("delete shelf item: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *Repo) Get(ctx context.Context, userID, bookID string) (*models.ShelfItem, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT user_id, book_id, current_chapter, status, updated_at
		FROM user_shelf
		WHERE user_id = ? AND book_id = ?
	`, userID, bookID)

	var it models.ShelfItem
	var updated time.Time
	if err := row.Scan(&it.UserID, &it.BookID, &it.CurrentChapter, &it.Status, &updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get shelf item: %w", err)
	}
	it.UpdatedAt = updated
	return &it, nil
}

// List returns the user's shelf with book details, newest activity first.
// Books deleted by an admin drop out via the cascade, so the join is inner.
func (r *Repo) List(ctx context.Context, userID, status string, limit, offset int) ([]ShelfBook, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	countSQL := `SELECT COUNT(*) FROM user_shelf WHERE user_id = ?`
	countArgs := []any{userID}
	if status != "" {
		countSQL += ` AND status = ?`
		countArgs = append(countArgs, status)
	}
	var total int
	if err := r.DB.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count shelf: %w", err)
	}

	listSQL := `
		SELECT s.user_id, s.book_id, s.current_chapter, s.status, s.updated_at,
		       b.title, b.author, b.cover, b.level, b.word_count,
		       (SELECT COUNT(*) FROM chapters c WHERE c.book_id = b.id)
		FROM user_shelf s
		JOIN books b ON b.id = s.book_id
		WHERE s.user_id = ?`
	args := []any{userID}
	if status != "" {
		listSQL += ` AND s.status = ?`
		args = append(args, status)
	}
	listSQL += `
		ORDER BY s.updated_at DESC
		LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.DB.QueryContext(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list shelf: %w", err)
	}
	defer rows.Close()

	out := make([]ShelfBook, 0, limit)
	for rows.Next() {
		var (
			sb      ShelfBook
			updated time.Time
			author  sql.NullString
			cover   sql.NullString
			level   sql.NullString
		)
		if err := rows.Scan(
			&sb.UserID, &sb.BookID, &sb.CurrentChapter, &sb.Status, &updated,
			&sb.Title, &author, &cover, &level, &sb.WordCount, &sb.Chapters,
		); err != nil {
			return nil, 0, fmt.Errorf("scan shelf row: %w", err)
		}
		sb.UpdatedAt = updated
		sb.Author = author.String
		sb.Cover = cover.String
		sb.Level = level.String
		out = append(out, sb)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows err: %w", err)
	}
	return out, total, nil
}
