package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// CartSessionMiddleware resolves the caller's cart id. The cart is a
// client-held namespace: the client presents its id in X-Cart-ID and gets one
// minted when it has none. Authentication itself is delegated to the external
// identity provider in front of this service.
func CartSessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cartID := r.Header.Get("X-Cart-ID")
		if cartID == "" {
			cartID = uuid.NewString()
		}

		w.Header().Set("X-Cart-ID", cartID)
		ctx := context.WithValue(r.Context(), "cart_id", cartID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = fmt.Sprintf("req-%d", time.Now().UnixNano())
		}

		ctx := context.WithValue(r.Context(), "request_id", requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getCartIDFromContext(ctx context.Context) string {
	if cartID, ok := ctx.Value("cart_id").(string); ok {
		return cartID
	}
	return ""
}
