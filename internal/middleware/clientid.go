package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
)

type contextKey string

const (
	clientIPKey          contextKey = "client_ip"
	clientFingerprintKey contextKey = "client_fingerprint"
)

// ClientIdentifier resolves the real client IP and derives a stable browser
// fingerprint. Tracking endpoints use the fingerprint as a session fallback
// when the storefront script sends no sessionId of its own.
func ClientIdentifier(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		ctx := context.WithValue(r.Context(), clientIPKey, ip)
		ctx = context.WithValue(ctx, clientFingerprintKey, fingerprint(r, ip))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// clientIP walks the usual proxy headers before falling back to RemoteAddr.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if cfip := r.Header.Get("CF-Connecting-IP"); cfip != "" {
		return cfip
	}
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}

func fingerprint(r *http.Request, ip string) string {
	data := strings.Join([]string{
		r.Header.Get("User-Agent"),
		r.Header.Get("Accept-Language"),
		r.Header.Get("Accept-Encoding"),
		ip,
	}, "|")
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:16])
}

// GetClientIP retrieves the client IP placed on the context by ClientIdentifier.
func GetClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey).(string); ok {
		return ip
	}
	return "unknown"
}

// GetClientFingerprint retrieves the derived session fingerprint.
func GetClientFingerprint(ctx context.Context) string {
	if fp, ok := ctx.Value(clientFingerprintKey).(string); ok {
		return fp
	}
	return "unknown"
}
