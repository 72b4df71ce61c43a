package rateLimit

import (
	"net/http"
	"time"

	httprate "github.com/go-chi/httprate"
)

func Add() func(http.Handler) http.Handler {
	return limitByIP(10, time.Hour)
}

func Share() func(http.Handler) http.Handler {
	return limitByIP(20, 10*time.Minute)
}

func Recover() func(http.Handler) http.Handler {
	return limitByIP(3, time.Hour)
}

func Mark() func(http.Handler) http.Handler {
	return limitByIP(60, time.Minute)
}

func Manage() func(http.Handler) http.Handler {
	return limitByIP(60, time.Minute)
}

func limitByIP(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.LimitByIP(limit, window)
}
