// Package middleware HTTP middleware сервиса
package middleware

import (
	"context"
	"net/http"
	"strconv"
)

type contextKey string

const userIDKey contextKey = "userID"

// Auth извлекает ID гостя из заголовка X-User-ID и кладет его в контекст
// Аутентификация выполняется на API-гейтвее, сюда приходит уже
// проверенный идентификатор
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("X-User-ID")
		if header == "" {
			http.Error(w, `{"code":401,"message":"отсутствует заголовок X-User-ID"}`, http.StatusUnauthorized)
			return
		}

		userID, err := strconv.ParseInt(header, 10, 64)
		if err != nil || userID <= 0 {
			http.Error(w, `{"code":401,"message":"некорректный заголовок X-User-ID"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID возвращает ID гостя из контекста запроса
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}
