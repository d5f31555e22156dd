package rateLimit

import (
	"net/http"
	"time"

	httprate "github.com/go-chi/httprate"
)

func Login() func(http.Handler) http.Handler {
	return limitByIP(10, 5*time.Minute)
}

func Register() func(http.Handler) http.Handler {
	return limitByIP(5, time.Hour)
}

func UpdatePassword() func(http.Handler) http.Handler {
	return limitByIP(5, 15*time.Minute)
}

func SendOTP() func(http.Handler) http.Handler {
	return limitByIP(3, 10*time.Minute)
}

func VerifyOTP() func(http.Handler) http.Handler {
	return limitByIP(10, 10*time.Minute)
}

func SendTestEmail() func(http.Handler) http.Handler {
	return limitByIP(10, time.Hour)
}

func Upload() func(http.Handler) http.Handler {
	return limitByIP(30, 10*time.Minute)
}

// Noop is used in place of a limit when rate limiting is disabled.
func Noop() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler { return next }
}

func limitByIP(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.LimitByIP(limit, window)
}
