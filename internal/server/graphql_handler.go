package server

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"lireddit/internal/graph"
	"lireddit/internal/middleware"
	"lireddit/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql/gqlerrors"
)

// GraphQL executes a single operation. The session is resolved from the
// cookie before execution and any recorded session mutations are applied
// afterwards.
func (s *Server) GraphQL(c *fiber.Ctx) error {
	var req graph.Request
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": []fiber.Map{{"message": "request body must be JSON with a non-empty query"}},
		})
	}

	ctx := c.UserContext()
	sess, err := s.sessions.FromCookie(ctx, c.Cookies(s.config.SessionCookieName))
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "Failed to load session", slog.String("error", err.Error()))
		sess = &session.Session{}
	}

	rc := graph.NewRequestContext(sess, c.IP())
	if userID := rc.UserID(); userID != nil {
		ctx = middleware.WithUserID(ctx, *userID)
	}

	result := graph.Execute(ctx, s.schema, rc, req)

	action, value, err := s.sessions.Apply(ctx, rc.Session, rc.Mutations())
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "Failed to persist session", slog.String("error", err.Error()))
		result.Errors = append(result.Errors, gqlerrors.FormatError(errors.New("internal server error")))
	}

	switch action {
	case session.CookieSet:
		c.Cookie(s.sessionCookie(value, time.Now().Add(session.MaxAge)))
	case session.CookieClear:
		c.Cookie(s.sessionCookie("", time.Unix(0, 0)))
	}

	return c.JSON(result)
}

func (s *Server) sessionCookie(value string, expires time.Time) *fiber.Cookie {
	cookie := &fiber.Cookie{
		Name:     s.config.SessionCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   s.config.IsProduction(),
	}
	if value != "" {
		cookie.MaxAge = int(session.MaxAge / time.Second)
	}
	return cookie
}
