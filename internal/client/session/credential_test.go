package session

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

type nopNavigator struct{}

func (nopNavigator) Navigate(context.Context, string) {}

// setFailingCookieStore refuses writes but still reads and deletes.
type setFailingCookieStore struct {
	*MemoryCookieStore
	fail error
}

func (s *setFailingCookieStore) Set(ctx context.Context, c *http.Cookie) error {
	if s.fail != nil {
		return s.fail
	}
	return s.MemoryCookieStore.Set(ctx, c)
}

func newTestManager(t *testing.T, opts Options) (*Manager, *MemoryTokenStore, *MemoryCookieStore) {
	t.Helper()
	tokens := NewMemoryTokenStore()
	cookies := NewMemoryCookieStore()
	cookies.Now = func() time.Time { return fixedNow }
	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	return New(tokens, cookies, nopNavigator{}, nil, logging.Nop(), opts), tokens, cookies
}

func TestCredential_RoundTrip(t *testing.T) {
	ctx := context.Background()
	cases := []string{
		"abc",
		"eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxIn0.sig",
		"tøkën-with-ünicode",
		" padded ",
	}

	for _, tok := range cases {
		t.Run(tok, func(t *testing.T) {
			m, _, cookies := newTestManager(t, Options{})
			m.SetCredential(ctx, tok)

			got, ok := m.GetCredential(ctx)
			require.True(t, ok)
			assert.Equal(t, tok, got)
			assert.Equal(t, StateAuthenticated, m.State(ctx))

			c, err := cookies.Get(ctx, common.TokenCookieName)
			require.NoError(t, err)
			assert.Equal(t, tok, c.Value)
		})
	}
}

func TestCredential_OverwriteKeepsLatest(t *testing.T) {
	ctx := context.Background()
	m, _, cookies := newTestManager(t, Options{})

	m.SetCredential(ctx, "first")
	m.SetCredential(ctx, "second")

	got, ok := m.GetCredential(ctx)
	require.True(t, ok)
	assert.Equal(t, "second", got)

	c, err := cookies.Get(ctx, common.TokenCookieName)
	require.NoError(t, err)
	assert.Equal(t, "second", c.Value)
}

func TestCredential_EmptyTokenIgnored(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager(t, Options{})

	assert.False(t, m.Adopt(ctx, ""))
	assert.False(t, m.Adopt(ctx, "   "))

	_, ok := m.GetCredential(ctx)
	assert.False(t, ok)
	assert.Equal(t, StateAnonymous, m.State(ctx))
}

func TestCredential_CookieAttributes(t *testing.T) {
	ctx := context.Background()

	t.Run("http backend", func(t *testing.T) {
		m, _, cookies := newTestManager(t, Options{})
		m.SetCredential(ctx, "abc")

		c, err := cookies.Get(ctx, common.TokenCookieName)
		require.NoError(t, err)
		assert.Equal(t, "/", c.Path)
		assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
		assert.False(t, c.Secure)
		assert.True(t, c.Expires.Equal(fixedNow.Add(7*24*time.Hour)))
	})

	t.Run("https backend", func(t *testing.T) {
		m, _, cookies := newTestManager(t, Options{SecureCookie: true})
		m.SetCredential(ctx, "abc")

		c, err := cookies.Get(ctx, common.TokenCookieName)
		require.NoError(t, err)
		assert.True(t, c.Secure)
	})
}

func TestCredential_CookieExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	m, _, cookies := newTestManager(t, Options{})
	m.SetCredential(ctx, "abc")

	cookies.Now = func() time.Time { return fixedNow.Add(7*24*time.Hour + time.Second) }
	_, err := cookies.Get(ctx, common.TokenCookieName)
	require.ErrorIs(t, err, common.ErrorNotFound)

	// the durable copy has no client-side expiry
	_, ok := m.GetCredential(ctx)
	assert.True(t, ok)
}

func TestClearCredential_Idempotent(t *testing.T) {
	ctx := context.Background()
	m, _, cookies := newTestManager(t, Options{})

	m.ClearCredential(ctx)
	_, ok := m.GetCredential(ctx)
	assert.False(t, ok)

	m.SetCredential(ctx, "abc")
	m.ClearCredential(ctx)
	m.ClearCredential(ctx)

	_, ok = m.GetCredential(ctx)
	assert.False(t, ok)
	_, err := cookies.Get(ctx, common.TokenCookieName)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Equal(t, StateAnonymous, m.State(ctx))
}

func TestCredential_StorageFailures(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("quota exceeded")

	t.Run("durable write fails", func(t *testing.T) {
		m, tokens, cookies := newTestManager(t, Options{})
		m.SetCredential(ctx, "old")
		tokens.Fail = boom

		require.NotPanics(t, func() { m.SetCredential(ctx, "new") })
		assert.False(t, m.Adopt(ctx, "new"))

		// the cookie must not advertise a session the HTTP layer cannot read
		_, err := cookies.Get(ctx, common.TokenCookieName)
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("read fails", func(t *testing.T) {
		m, tokens, _ := newTestManager(t, Options{})
		m.SetCredential(ctx, "abc")
		tokens.Fail = boom

		_, ok := m.GetCredential(ctx)
		assert.False(t, ok)
		assert.Equal(t, StateAnonymous, m.State(ctx))
	})

	t.Run("cookie write fails", func(t *testing.T) {
		m, _, cookies := newTestManager(t, Options{})
		cookies.Fail = boom

		assert.True(t, m.Adopt(ctx, "abc"))
		got, ok := m.GetCredential(ctx)
		require.True(t, ok)
		assert.Equal(t, "abc", got)
	})

	t.Run("cookie write fails on overwrite", func(t *testing.T) {
		tokens := NewMemoryTokenStore()
		cookies := &setFailingCookieStore{MemoryCookieStore: NewMemoryCookieStore()}
		cookies.Now = func() time.Time { return fixedNow }
		m := New(tokens, cookies, nopNavigator{}, nil, logging.Nop(), Options{Now: func() time.Time { return fixedNow }})

		m.SetCredential(ctx, "old")
		cookies.fail = boom
		m.SetCredential(ctx, "new")

		got, ok := m.GetCredential(ctx)
		require.True(t, ok)
		assert.Equal(t, "new", got)

		// a stale cookie would let the guard see a token the HTTP layer dropped
		_, err := cookies.Get(ctx, common.TokenCookieName)
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("clear fails", func(t *testing.T) {
		m, tokens, cookies := newTestManager(t, Options{})
		m.SetCredential(ctx, "abc")
		tokens.Fail = boom
		cookies.Fail = boom

		require.NotPanics(t, func() { m.ClearCredential(ctx) })
	})
}

func TestCredential_StoresStayInStep(t *testing.T) {
	ctx := context.Background()
	m, _, cookies := newTestManager(t, Options{})

	check := func() {
		t.Helper()
		tok, ok := m.GetCredential(ctx)
		c, err := cookies.Get(ctx, common.TokenCookieName)
		if !ok {
			assert.ErrorIs(t, err, common.ErrorNotFound)
			return
		}
		require.NoError(t, err)
		assert.Equal(t, tok, c.Value)
	}

	check()
	m.SetCredential(ctx, "a")
	check()
	m.SetCredential(ctx, "b")
	check()
	m.ClearCredential(ctx)
	check()
}
