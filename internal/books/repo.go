package books

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"readinghub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

type ListQuery struct {
	Q      string // keyword search in title/author
	Level  string
	Limit  int
	Offset int
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

const bookColumns = `id, title, author, cover, level, lexile, series, category, word_count, description, epub_path, created_at`

func (r *Repo) GetByID(ctx context.Context, id string) (*models.Book, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+bookColumns+`
		FROM books
		WHERE id = ?
	`, id)
	b, err := scanBook(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan getByID: %w", err)
	}
	return b, nil
}

func (r *Repo) Count(ctx context.Context, q ListQuery) (int, error) {
	sqlStr, args := buildListSQL(q, true)
	var total int
	if err := r.DB.QueryRowContext(ctx, sqlStr, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count scan: %w", err)
	}
	return total, nil
}

func (r *Repo) List(ctx context.Context, q ListQuery) ([]models.Book, error) {
	sqlStr, args := buildListSQL(q, false)

	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	out := make([]models.Book, 0, q.Limit)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("list scan: %w", err)
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// Chapters returns a book's chapters ordered by chapter_number, without
// content. Content is big; detail pages fetch one chapter at a time.
func (r *Repo) Chapters(ctx context.Context, bookID string) ([]models.Chapter, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, book_id, chapter_number, title, word_count
		FROM chapters
		WHERE book_id = ?
		ORDER BY chapter_number ASC
	`, bookID)
	if err != nil {
		return nil, fmt.Errorf("chapters query: %w", err)
	}
	defer rows.Close()

	var out []models.Chapter
	for rows.Next() {
		var (
			ch    models.Chapter
			title sql.NullString
		)
		if err := rows.Scan(&ch.ID, &ch.BookID, &ch.ChapterNumber, &title, &ch.WordCount); err != nil {
			return nil, fmt.Errorf("chapters scan: %w", err)
		}
		ch.Title = title.String
		out = append(out, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) ChapterByNumber(ctx context.Context, bookID string, number int) (*models.Chapter, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, book_id, chapter_number, title, content, word_count
		FROM chapters
		WHERE book_id = ? AND chapter_number = ?
	`, bookID, number)

	var (
		ch      models.Chapter
		title   sql.NullString
		content sql.NullString
	)
	if err := row.Scan(&ch.ID, &ch.BookID, &ch.ChapterNumber, &title, &content, &ch.WordCount); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("chapter scan: %w", err)
	}
	ch.Title = title.String
	ch.Content = content.String
	return &ch, nil
}

func (r *Repo) Vocabulary(ctx context.Context, bookID string, limit int) ([]models.VocabularyEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, book_id, word, frequency, phonetic, definition
		FROM book_vocabulary
		WHERE book_id = ?
		ORDER BY frequency DESC
		LIMIT ?
	`, bookID, limit)
	if err != nil {
		return nil, fmt.Errorf("vocabulary query: %w", err)
	}
	defer rows.Close()

	var out []models.VocabularyEntry
	for rows.Next() {
		var (
			v          models.VocabularyEntry
			phonetic   sql.NullString
			definition sql.NullString
		)
		if err := rows.Scan(&v.ID, &v.BookID, &v.Word, &v.Frequency, &phonetic, &definition); err != nil {
			return nil, fmt.Errorf("vocabulary scan: %w", err)
		}
		v.Phonetic = phonetic.String
		v.Definition = definition.String
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// Save writes a complete import in one transaction. Either the book, all of
// its chapters, and all vocabulary entries commit together, or the database
// keeps none of them.
func (r *Repo) Save(ctx context.Context, book *models.Book, chapters []models.Chapter, vocab []models.VocabularyEntry) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO books (`+bookColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, book.ID, book.Title, book.Author, book.Cover, book.Level, book.Lexile,
		book.Series, book.Category, book.WordCount, book.Description,
		book.EpubPath, book.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}

	for _, ch := range chapters {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO chapters (id, book_id, chapter_number, title, content, word_count)
			VALUES (?, ?, ?, ?, ?, ?)
		`, ch.ID, ch.BookID, ch.ChapterNumber, ch.Title, ch.Content, ch.WordCount)
		if err != nil {
			return fmt.Errorf("insert chapter %d: %w", ch.ChapterNumber, err)
		}
	}

	for _, v := range vocab {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO book_vocabulary (id, book_id, word, frequency, phonetic, definition)
			VALUES (?, ?, ?, ?, ?, ?)
		`, v.ID, v.BookID, v.Word, v.Frequency, v.Phonetic, v.Definition)
		if err != nil {
			return fmt.Errorf("insert vocabulary %q: %w", v.Word, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Delete removes a book; chapters and vocabulary go with it via ON DELETE
// CASCADE. Returns false when no such book existed.
func (r *Repo) Delete(ctx context.Context, bookID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, bookID)
	if err != nil {
		return false, fmt.Errorf("delete book: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete rows affected: %w", err)
	}
	return n > 0, nil
}

func scanBook(row interface{ Scan(...any) error }) (*models.Book, error) {
	var (
		b           models.Book
		author      sql.NullString
		cover       sql.NullString
		level       sql.NullString
		lexile      sql.NullString
		series      sql.NullString
		category    sql.NullString
		description sql.NullString
		epubPath    sql.NullString
		createdAt   sql.NullString
	)
	if err := row.Scan(
		&b.ID, &b.Title, &author, &cover, &level, &lexile, &series, &category,
		&b.WordCount, &description, &epubPath, &createdAt,
	); err != nil {
		return nil, err
	}
	b.Author = author.String
	b.Cover = cover.String
	b.Level = level.String
	b.Lexile = lexile.String
	b.Series = series.String
	b.Category = category.String
	b.Description = description.String
	b.EpubPath = epubPath.String
	if createdAt.Valid {
		if t, err := time.Parse(time.RFC3339, createdAt.String); err == nil {
			b.CreatedAt = t
		}
	}
	return &b, nil
}

func buildListSQL(q ListQuery, countOnly bool) (string, []any) {
	baseSelect := `
		SELECT ` + bookColumns + `
		FROM books
	`
	if countOnly {
		baseSelect = `SELECT COUNT(*) FROM books`
	}

	var where []string
	var args []any

	if strings.TrimSpace(q.Q) != "" {
		where = append(where, "(LOWER(title) LIKE ? OR LOWER(author) LIKE ?)")
		kw := "%" + strings.ToLower(strings.TrimSpace(q.Q)) + "%"
		args = append(args, kw, kw)
	}

	if strings.TrimSpace(q.Level) != "" {
		where = append(where, "level = ?")
		args = append(args, strings.TrimSpace(q.Level))
	}

	sqlStr := baseSelect
	if len(where) > 0 {
		sqlStr += " WHERE " + strings.Join(where, " AND ")
	}

	if !countOnly {
		sqlStr += " ORDER BY created_at DESC"
		sqlStr += " LIMIT ? OFFSET ?"
		limit := q.Limit
		if limit <= 0 || limit > 100 {
			limit = 20
		}
		offset := q.Offset
		if offset < 0 {
			offset = 0
		}
		args = append(args, limit, offset)
	}

	return sqlStr, args
}
