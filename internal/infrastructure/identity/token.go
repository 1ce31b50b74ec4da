package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// claims are the session token contents: the identity id (sub), the email it
// was issued for, and a unique jti used for revocation.
type claims struct {
	UID   string
	Email string
	JTI   string
	Exp   time.Time
}

func signToken(secret, uid, email string, ttl time.Duration) (string, claims, error) {
	c := claims{
		UID:   uid,
		Email: email,
		JTI:   uuid.NewString(),
		Exp:   time.Now().Add(ttl),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   c.UID,
		"email": c.Email,
		"jti":   c.JTI,
		"exp":   c.Exp.Unix(),
	})
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return "", claims{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, c, nil
}

func parseToken(secret, token string) (claims, error) {
	mc := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, mc, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return claims{}, err
	}
	if !tkn.Valid {
		return claims{}, jwt.ErrTokenSignatureInvalid
	}

	c := claims{}
	c.UID, _ = mc["sub"].(string)
	c.Email, _ = mc["email"].(string)
	c.JTI, _ = mc["jti"].(string)
	if exp, ok := mc["exp"].(float64); ok {
		c.Exp = time.Unix(int64(exp), 0)
	}
	return c, nil
}
