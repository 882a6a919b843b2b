package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const tokenTTL = 24 * 7 * time.Hour

type jwtClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type JWTMiddleware struct {
	secret []byte
}

func NewJWTMiddleware(secret string) *JWTMiddleware {
	return &JWTMiddleware{secret: []byte(secret)}
}

func (m *JWTMiddleware) signToken(email string) (string, error) {
	claims := &jwtClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *JWTMiddleware) validateToken(tokenString string) (jwtClaims, error) {
	var claims jwtClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return jwtClaims{}, err
	}
	if !token.Valid {
		return jwtClaims{}, errors.New("invalid token")
	}
	if claims.Email == "" {
		return jwtClaims{}, errors.New("email not found in claims")
	}

	return claims, nil
}

func authSession(c echo.Context) (jwtClaims, error) {
	u := c.Get("user")
	if u == nil {
		return jwtClaims{}, errors.New("missing session")
	}

	user, ok := u.(jwtClaims)
	if !ok {
		return jwtClaims{}, errors.New("invalid session")
	}

	return user, nil
}

func (m *JWTMiddleware) ValidateJWT(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return c.JSON(401, response{
				Success: false,
				Message: "authorization token is required",
			})
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			return c.JSON(401, response{
				Success: false,
				Message: "token is malformed",
			})
		}

		user, err := m.validateToken(token)
		if err != nil {
			return c.JSON(401, response{
				Success: false,
				Message: "cannot validate token: " + err.Error(),
			})
		}

		c.Set("user", user)

		return next(c)
	}
}
