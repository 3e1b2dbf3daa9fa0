package handler

import (
	"net/http"

	"github.com/soulparadise/web/internal/auth"
	"github.com/soulparadise/web/internal/middleware"
)

// RegisterRoutes registers every page and form route on the mux.
//
// All page handlers run behind WithUser so navigation reflects session
// state. Auth-only pages additionally get the authenticated-user redirect,
// the account page requires a session, and every form POST sits behind its
// rate limiter.
func (h *Handler) RegisterRoutes(mux *http.ServeMux, authMw *middleware.AuthMiddleware) {
	withUser := authMw.WithUser
	guest := middleware.Stack(authMw.WithUser, authMw.RedirectAuthenticated)
	requireUser := middleware.Stack(authMw.WithUser, authMw.RequireUser)

	// Marketing pages
	mux.Handle("GET /", withUser(http.HandlerFunc(h.Home)))
	mux.Handle("GET /about", withUser(http.HandlerFunc(h.About)))
	mux.Handle("GET /services", withUser(http.HandlerFunc(h.Services)))
	mux.Handle("GET /hall-of-fame", withUser(http.HandlerFunc(h.HallOfFame)))
	mux.Handle("GET /contact", withUser(http.HandlerFunc(h.ShowContact)))
	mux.Handle("POST /contact", h.limiter.LimitEnquiry(http.HandlerFunc(h.Contact)))

	// Booking enquiries
	mux.Handle("POST /enquiries/flight", h.limiter.LimitEnquiry(withUser(http.HandlerFunc(h.FlightEnquiry))))
	mux.Handle("POST /enquiries/hotel", h.limiter.LimitEnquiry(withUser(http.HandlerFunc(h.HotelEnquiry))))
	mux.Handle("POST /enquiries/package", h.limiter.LimitEnquiry(withUser(http.HandlerFunc(h.PackageEnquiry))))
	mux.Handle("POST /enquiries/visa", h.limiter.LimitEnquiry(withUser(http.HandlerFunc(h.VisaEnquiry))))
	mux.Handle("POST /enquiries/insurance", h.limiter.LimitEnquiry(withUser(http.HandlerFunc(h.InsuranceEnquiry))))

	// Auth pages
	mux.Handle("GET /login", guest(http.HandlerFunc(h.ShowLogin)))
	mux.Handle("POST /login", h.limiter.LimitLogin(http.HandlerFunc(h.Login)))
	mux.Handle("GET /register", guest(http.HandlerFunc(h.ShowRegister)))
	mux.Handle("POST /register", h.limiter.LimitRegister(http.HandlerFunc(h.Register)))
	mux.Handle("GET /forgot-password", guest(http.HandlerFunc(h.ShowForgotPassword)))
	mux.Handle("POST /forgot-password", h.limiter.LimitPasswordReset(http.HandlerFunc(h.ForgotPassword)))
	mux.HandleFunc("GET /reset-password", h.ShowResetPassword)
	mux.Handle("POST /reset-password", h.limiter.LimitPasswordReset(http.HandlerFunc(h.ResetPassword)))
	mux.HandleFunc("GET /verify-email", h.VerifyEmail)
	mux.HandleFunc("GET /resend-verification", h.ShowResendVerification)
	mux.Handle("POST /resend-verification", h.limiter.LimitPasswordReset(http.HandlerFunc(h.ResendVerification)))
	mux.HandleFunc("POST /logout", h.Logout)
	mux.HandleFunc("POST /logout-all", h.LogoutAll)
	mux.Handle("GET /account", requireUser(http.HandlerFunc(h.Account)))

	// Google sign-in
	if h.google != nil {
		mux.HandleFunc("GET /auth/google", h.GoogleLogin)
		mux.HandleFunc("GET "+auth.GoogleCallbackPath, h.GoogleCallback)
	}
}
