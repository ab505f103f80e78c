package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/m04kA/agenda-core/internal/api/handlers"
)

type contextKey string

// OwnerKeyContextKey ключ контекста с ключом владельца
const OwnerKeyContextKey contextKey = "ownerKey"

// Auth проверяет наличие заголовка X-Owner-Key на защищенных маршрутах.
// Проверку подлинности ключа выполняет вышестоящий шлюз, здесь достаточно
// непустого значения.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ownerKey := strings.TrimSpace(r.Header.Get("X-Owner-Key"))
		if ownerKey == "" {
			handlers.RespondError(w, http.StatusUnauthorized, "требуется заголовок X-Owner-Key")
			return
		}

		ctx := context.WithValue(r.Context(), OwnerKeyContextKey, ownerKey)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
