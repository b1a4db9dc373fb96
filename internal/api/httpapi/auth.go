package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

type contextKey string

const subjectKey contextKey = "subject"

// Auth проверяет bearer-токены: подписанный JWT для операций записи,
// анонимный ключ допустим только для чтения трекинга.
type Auth struct {
	secret  []byte
	anonKey string
}

func NewAuth(secret, anonKey string) *Auth {
	return &Auth{secret: []byte(secret), anonKey: anonKey}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func (a *Auth) parse(token string) (string, error) {
	tok, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return "", errors.Wrap(err, "parse token")
	}
	if !tok.Valid {
		return "", errors.New("invalid token")
	}
	sub, err := tok.Claims.GetSubject()
	if err != nil {
		return "", errors.Wrap(err, "token subject")
	}
	return sub, nil
}

// Middleware пускает только с валидным JWT; субъект кладётся в контекст.
func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			respondError(w, http.StatusUnauthorized, "authorization required")
			return
		}
		sub, err := a.parse(token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), subjectKey, sub)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AllowAnon пускает валидный JWT либо анонимный ключ; явно предъявленный,
// но невалидный JWT всё равно отклоняется.
func (a *Auth) AllowAnon(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		switch {
		case token == "" || token == a.anonKey:
			next.ServeHTTP(w, r)
		default:
			sub, err := a.parse(token)
			if err != nil {
				respondError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			ctx := context.WithValue(r.Context(), subjectKey, sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
	})
}

// Subject возвращает идентификатор пользователя из контекста запроса.
func Subject(ctx context.Context) (string, bool) {
	sub, ok := ctx.Value(subjectKey).(string)
	return sub, ok
}
