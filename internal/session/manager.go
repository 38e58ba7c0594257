package session

import (
	"context"
	"fmt"
	"log/slog"

	"lireddit/internal/middleware"

	"github.com/google/uuid"
)

// CookieAction tells the transport what to do with the session cookie after
// mutations have been applied.
type CookieAction int

const (
	CookieKeep CookieAction = iota
	CookieSet
	CookieClear
)

// Manager ties the store to the cookie codec.
type Manager struct {
	store Store
	codec *Codec
}

func NewManager(store Store, codec *Codec) *Manager {
	return &Manager{store: store, codec: codec}
}

// FromCookie resolves a cookie value to a session. Missing, forged or expired
// cookies yield an empty session; only store failures are returned.
func (m *Manager) FromCookie(ctx context.Context, value string) (*Session, error) {
	if value == "" {
		return &Session{}, nil
	}
	id, err := m.codec.Decode(value)
	if err != nil {
		middleware.Logger.DebugContext(ctx, "Ignoring invalid session cookie")
		return &Session{}, nil
	}
	return m.store.Load(ctx, id)
}

// Apply persists mutations in order against sess and reports the resulting
// cookie action together with the cookie value for CookieSet.
func (m *Manager) Apply(ctx context.Context, sess *Session, mutations []Mutation) (CookieAction, string, error) {
	action := CookieKeep
	for _, mut := range mutations {
		switch mut.Kind {
		case MutationSetUserID:
			if sess.ID == "" {
				sess.ID = uuid.NewString()
			}
			userID := mut.UserID
			sess.Data.UserID = &userID
			if err := m.store.Save(ctx, sess); err != nil {
				return CookieKeep, "", err
			}
			action = CookieSet
		case MutationClear:
			if sess.ID != "" {
				if err := m.store.Delete(ctx, sess.ID); err != nil {
					return CookieKeep, "", err
				}
			}
			*sess = Session{}
			action = CookieClear
		}
	}

	if action != CookieSet {
		return action, "", nil
	}
	value, err := m.codec.Encode(sess.ID)
	if err != nil {
		return CookieKeep, "", fmt.Errorf("encode session cookie: %w", err)
	}
	middleware.Logger.DebugContext(ctx, "Session updated", slog.String("session_id", sess.ID))
	return action, value, nil
}
