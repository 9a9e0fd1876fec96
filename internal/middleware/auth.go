package middleware

import (
	"crypto/sha256"
	"encoding/base64"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
)

// sessionUserKey is the session entry carrying the authenticated user id.
const sessionUserKey = "user_id"

// NewSessionStore creates the server-side session store backing the auth
// gate. Session ids are random UUIDs carried in an http-only cookie.
func NewSessionStore() *session.Store {
	return session.New(session.Config{
		KeyLookup:      "cookie:epms_session",
		Expiration:     12 * time.Hour,
		KeyGenerator:   uuid.NewString,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})
}

// CookieKey derives the 32-byte base64 key for cookie encryption from the
// configured session secret.
func CookieKey(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// AuthRequired gates protected routes. Anonymous callers are redirected to
// the login entry point instead of receiving an error.
func AuthRequired(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return c.Redirect("/login", fiber.StatusFound)
		}

		userID := sess.Get(sessionUserKey)
		if userID == nil {
			return c.Redirect("/login", fiber.StatusFound)
		}

		// Thread the authenticated user id through the handler chain
		c.Locals(sessionUserKey, userID)

		return c.Next()
	}
}

// Login records the authenticated user id in the caller's session.
func Login(store *session.Store, c *fiber.Ctx, userID uint) error {
	sess, err := store.Get(c)
	if err != nil {
		return err
	}
	sess.Set(sessionUserKey, userID)
	return sess.Save()
}

// Logout destroys the caller's session, returning it to the anonymous state.
func Logout(store *session.Store, c *fiber.Ctx) error {
	sess, err := store.Get(c)
	if err != nil {
		return err
	}
	return sess.Destroy()
}
