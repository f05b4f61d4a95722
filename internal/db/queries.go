package db

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"
	"time"

	"github.com/hpungsan/pastedock/internal/clip"
	"github.com/hpungsan/pastedock/internal/errors"
)

// Totals summarizes the stored history.
type Totals struct {
	Count      int
	TotalBytes int64
	Pinned     int
}

const itemColumns = `id, created_at, kind, preview_text, content_hash, byte_size, is_pinned, source_bundle_id, payload_path`

// Insert stores a new item.
func Insert(ctx context.Context, q Querier, it *clip.Item) error {
	query := `
		INSERT INTO clipboard_items (` + itemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := q.ExecContext(ctx, query,
		it.ID, it.CreatedAt.UnixNano(), string(it.Kind), it.PreviewText, it.ContentHash,
		it.ByteSize, boolToInt(it.IsPinned), toNullString(it.SourceBundleID), it.PayloadPath,
	)
	if err != nil {
		return errors.NewStoreFailed("save", err)
	}
	return nil
}

// GetByID retrieves an item by its ULID. Returns a NOT_FOUND error when absent.
func GetByID(ctx context.Context, q Querier, id string) (*clip.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM clipboard_items WHERE id = ?`

	it, err := scanItem(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFound(id)
		}
		return nil, errors.NewStoreFailed("item", err)
	}
	return it, nil
}

// Search returns up to limit items, newest first, whose preview contains
// query case-insensitively. A blank query matches everything; any other
// query is matched as given, surrounding whitespace included.
// Matching runs in Go because SQLite's LIKE and lower() only fold ASCII.
func Search(ctx context.Context, q Querier, query string, limit int) ([]*clip.Item, error) {
	if limit <= 0 {
		return []*clip.Item{}, nil
	}

	needle := ""
	if strings.TrimSpace(query) != "" {
		needle = strings.ToLower(query)
	}

	sqlQuery := `SELECT ` + itemColumns + ` FROM clipboard_items ORDER BY created_at DESC, id DESC`
	args := []any{}
	if needle == "" {
		sqlQuery += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := q.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, errors.NewStoreFailed("search", err)
	}
	defer rows.Close()

	items := make([]*clip.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, errors.NewStoreFailed("search", err)
		}
		if needle != "" && !strings.Contains(strings.ToLower(it.PreviewText), needle) {
			continue
		}
		items = append(items, it)
		if len(items) >= limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreFailed("search", err)
	}
	return items, nil
}

// SetPinned sets the pin flag. Returns false when no such item exists.
func SetPinned(ctx context.Context, q Querier, id string, pinned bool) (bool, error) {
	result, err := q.ExecContext(ctx, `UPDATE clipboard_items SET is_pinned = ? WHERE id = ?`, boolToInt(pinned), id)
	if err != nil {
		return false, errors.NewStoreFailed("pin", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, errors.NewStoreFailed("pin", err)
	}
	return n > 0, nil
}

// DeleteByID removes an item and returns its payload path.
// found is false when no such item exists.
func DeleteByID(ctx context.Context, q Querier, id string) (payloadPath string, found bool, err error) {
	err = q.QueryRowContext(ctx, `SELECT payload_path FROM clipboard_items WHERE id = ?`, id).Scan(&payloadPath)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, errors.NewStoreFailed("delete", err)
	}

	if _, err := q.ExecContext(ctx, `DELETE FROM clipboard_items WHERE id = ?`, id); err != nil {
		return "", false, errors.NewStoreFailed("delete", err)
	}
	return payloadPath, true, nil
}

// DeleteAll removes every item and returns their payload paths.
func DeleteAll(ctx context.Context, q Querier) ([]string, error) {
	rows, err := q.QueryContext(ctx, `SELECT payload_path FROM clipboard_items`)
	if err != nil {
		return nil, errors.NewStoreFailed("clear", err)
	}

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			rows.Close()
			return nil, errors.NewStoreFailed("clear", err)
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, errors.NewStoreFailed("clear", err)
	}
	rows.Close()

	if _, err := q.ExecContext(ctx, `DELETE FROM clipboard_items`); err != nil {
		return nil, errors.NewStoreFailed("clear", err)
	}
	return paths, nil
}

// LatestHash returns the content hash of the most recent item.
func LatestHash(ctx context.Context, q Querier) (string, bool, error) {
	var hash string
	err := q.QueryRowContext(ctx,
		`SELECT content_hash FROM clipboard_items ORDER BY created_at DESC, id DESC LIMIT 1`,
	).Scan(&hash)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, errors.NewStoreFailed("last_hash", err)
	}
	return hash, true, nil
}

// Stats returns item count, total bytes and pinned count.
func Stats(ctx context.Context, q Querier) (Totals, error) {
	var t Totals
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(byte_size), 0), COALESCE(SUM(is_pinned), 0)
		FROM clipboard_items
	`).Scan(&t.Count, &t.TotalBytes, &t.Pinned)
	if err != nil {
		return Totals{}, errors.NewStoreFailed("stats", err)
	}
	return t, nil
}

// OldestUnpinned returns the oldest unpinned item, or nil if every item is pinned.
func OldestUnpinned(ctx context.Context, q Querier) (*clip.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM clipboard_items
		WHERE is_pinned = 0
		ORDER BY created_at ASC, id ASC
		LIMIT 1`

	it, err := scanItem(q.QueryRowContext(ctx, query))
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.NewStoreFailed("enforce_limits", err)
	}
	return it, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanItem scans a single row into an Item.
func scanItem(row rowScanner) (*clip.Item, error) {
	var (
		it        clip.Item
		createdAt int64
		kind      string
		pinned    int
		source    sql.NullString
	)

	err := row.Scan(
		&it.ID, &createdAt, &kind, &it.PreviewText, &it.ContentHash,
		&it.ByteSize, &pinned, &source, &it.PayloadPath,
	)
	if err != nil {
		return nil, err
	}

	it.CreatedAt = time.Unix(0, createdAt)
	it.Kind = clip.Kind(kind)
	it.IsPinned = pinned != 0
	it.SourceBundleID = fromNullString(source)

	return &it, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// toNullString converts a *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// fromNullString converts a sql.NullString to *string.
func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
