// Package sessioncookie signs browser session ids so that a client cannot
// pick its own.
package sessioncookie

import (
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
)

const (
	Name    = "wishlist_session"
	purpose = "session"

	// Sessions never expire, so neither does the cookie in practice.
	maxAge = 10 * 365 * 24 * 60 * 60
)

func Sign(sessionID, secret string) (string, error) {
	claims := jwt.MapClaims{
		"sub":     sessionID,
		"purpose": purpose,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(secret))
}

// Parse returns the session id carried by a value produced by Sign.
func Parse(tokenStr, secret string) (string, error) {
	const op = "sessioncookie.Parse"

	claims := jwt.MapClaims{}

	parsedToken, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%s: unexpected signing method", op)
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", fmt.Errorf("%s: failed to parse token: %w", op, err)
	}

	if !parsedToken.Valid {
		return "", fmt.Errorf("%s: invalid token", op)
	}

	if p, ok := claims["purpose"].(string); !ok || p != purpose {
		return "", fmt.Errorf("%s: invalid token purpose", op)
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", fmt.Errorf("%s: missing sub claim", op)
	}

	return sub, nil
}

// Read returns the session id from r's cookie, or "" when there is none or
// it does not verify.
func Read(r *http.Request, secret string) string {
	c, err := r.Cookie(Name)
	if err != nil {
		return ""
	}
	id, err := Parse(c.Value, secret)
	if err != nil {
		return ""
	}
	return id
}

func Write(w http.ResponseWriter, sessionID, secret string, secure bool) error {
	value, err := Sign(sessionID, secret)
	if err != nil {
		return fmt.Errorf("sessioncookie.Write: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     Name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}
