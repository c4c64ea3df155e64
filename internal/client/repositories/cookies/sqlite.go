// Package cookies persists the client's cookies. The session cookie written
// here is what the route guard reads before every navigation.
package cookies

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
)

var errNoExpiry = errors.New("cookie without expiry")

// SQLiteRepository stores cookies by name in the cookies table. Reads treat
// an expired row as absent.
type SQLiteRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

func sameSiteName(s http.SameSite) string {
	switch s {
	case http.SameSiteStrictMode:
		return "strict"
	case http.SameSiteNoneMode:
		return "none"
	default:
		return "lax"
	}
}

func parseSameSite(s string) http.SameSite {
	switch s {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// Set inserts or replaces the cookie with c.Name. c.Expires is required.
func (r *SQLiteRepository) Set(ctx context.Context, c *http.Cookie) error {
	if c.Expires.IsZero() {
		return fmt.Errorf("failed to set cookie[%s]: %w", c.Name, errNoExpiry)
	}
	path := c.Path
	if path == "" {
		path = "/"
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cookies (name, value, path, same_site, secure, http_only, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value,
			path = excluded.path,
			same_site = excluded.same_site,
			secure = excluded.secure,
			http_only = excluded.http_only,
			expires_at = excluded.expires_at
	`, c.Name, c.Value, path, sameSiteName(c.SameSite), c.Secure, c.HttpOnly, c.Expires.UTC().Unix())
	if err != nil {
		return fmt.Errorf("failed to set cookie[%s]: %w", c.Name, err)
	}
	return nil
}

// Get returns the cookie, or common.ErrorNotFound when it is absent or
// already expired.
func (r *SQLiteRepository) Get(ctx context.Context, name string) (*http.Cookie, error) {
	var (
		c        = &http.Cookie{Name: name}
		sameSite string
		expires  int64
	)

	err := r.db.QueryRowContext(ctx,
		`SELECT value, path, same_site, secure, http_only, expires_at FROM cookies WHERE name = ?`, name).
		Scan(&c.Value, &c.Path, &sameSite, &c.Secure, &c.HttpOnly, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cookie[%s]: %w", name, err)
	}

	c.SameSite = parseSameSite(sameSite)
	c.Expires = time.Unix(expires, 0).UTC()

	if !c.Expires.After(r.now()) {
		return nil, common.ErrorNotFound
	}
	return c, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, name string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cookies WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to delete cookie[%s]: %w", name, err)
	}
	return nil
}
