// Package handler contains the HTTP handlers for the Soul Paradise web
// front-end.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/soulparadise/web/internal/api"
	"github.com/soulparadise/web/internal/auth"
	"github.com/soulparadise/web/internal/csrf"
	"github.com/soulparadise/web/internal/domain"
	"github.com/soulparadise/web/internal/middleware"
)

// TemplateRenderer is the interface for rendering HTML templates.
// This interface allows for mocking in tests.
type TemplateRenderer interface {
	RenderHTTP(w http.ResponseWriter, status int, name string, data interface{})
}

// SessionService manages the authenticated session bound to a request.
// Implemented by the auth controller.
type SessionService interface {
	Login(ctx context.Context, w http.ResponseWriter, r *http.Request, creds domain.Credentials) (*domain.User, error)
	Register(ctx context.Context, w http.ResponseWriter, r *http.Request, params domain.RegisterParams) (*domain.User, error)
	GoogleAuth(ctx context.Context, w http.ResponseWriter, r *http.Request, idToken string) (*domain.User, error)
	Logout(ctx context.Context, w http.ResponseWriter, r *http.Request)
	LogoutAll(ctx context.Context, w http.ResponseWriter, r *http.Request)
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, email string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
}

// ContentService provides backend content operations.
type ContentService interface {
	SubmitContact(ctx context.Context, msg domain.ContactMessage) (*api.ContactResult, error)
}

// TestimonialSource provides cached testimonials for page rendering.
type TestimonialSource interface {
	Latest() []domain.Testimonial
}

// Handler holds the dependencies shared by all HTTP handlers.
type Handler struct {
	sessions     SessionService
	content      ContentService
	testimonials TestimonialSource
	renderer     TemplateRenderer
	google       *auth.GoogleOAuth // nil when Google sign-in is not configured
	limiter      *middleware.FormRateLimiter
	logger       *slog.Logger
	isSecure     bool
}

// New creates a Handler with the required dependencies. google may be nil
// when Google sign-in is not configured; the login and register pages then
// omit the Google button.
func New(
	sessions SessionService,
	content ContentService,
	testimonials TestimonialSource,
	renderer TemplateRenderer,
	google *auth.GoogleOAuth,
	limiter *middleware.FormRateLimiter,
	logger *slog.Logger,
	isSecure bool,
) *Handler {
	return &Handler{
		sessions:     sessions,
		content:      content,
		testimonials: testimonials,
		renderer:     renderer,
		google:       google,
		limiter:      limiter,
		logger:       logger,
		isSecure:     isSecure,
	}
}

// Flash represents a one-off message to display to the user.
// The Type field determines styling in templates: "success", "error", or
// "info".
type Flash struct {
	Type    string
	Message string
}

// PageData is the template data shared by every page, with optional
// per-page fields.
type PageData struct {
	Title       string
	CurrentPath string
	User        *domain.User
	CSRFToken   string
	Form        map[string]string
	Errors      map[string]string
	Flash       *Flash
	ReturnTo    string

	// Page-specific fields
	Message       string
	Email         string
	GoogleEnabled bool
	Testimonials  []domain.Testimonial
	EnquiryRef    string
}

// pageData fills the common fields of a PageData from the request.
func (h *Handler) pageData(r *http.Request, data PageData) PageData {
	data.CurrentPath = r.URL.Path
	if data.User == nil {
		data.User = middleware.GetUser(r.Context())
	}
	data.GoogleEnabled = h.google != nil
	if data.Form == nil {
		data.Form = make(map[string]string)
	}
	if data.Errors == nil {
		data.Errors = make(map[string]string)
	}
	return data
}

// csrfToken ensures a CSRF cookie exists and returns its token for the
// rendered form.
func (h *Handler) csrfToken(w http.ResponseWriter, r *http.Request) string {
	token, err := csrf.EnsureToken(w, r, h.isSecure)
	if err != nil {
		h.logger.Error("csrf token generation failed", "error", err)
		return ""
	}
	return token
}

// checkCSRF parses the form and validates the double-submit token. On
// failure it renders a 400 page and returns false.
func (h *Handler) checkCSRF(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		h.badRequest(w, r, h.logger, "The submitted form could not be read.")
		return false
	}
	if !csrf.ValidateRequest(r) {
		h.badRequest(w, r, h.logger, "Your session has expired. Please try again.")
		return false
	}
	return true
}
