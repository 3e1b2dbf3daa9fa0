package handler

import (
	"log/slog"
	"net/http"

	"github.com/soulparadise/web/internal/domain"
)

// ErrorCodeToHTTPStatus maps application error codes to HTTP status codes.
func ErrorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest
	case domain.EUNAUTHORIZED:
		return http.StatusUnauthorized
	case domain.EFORBIDDEN:
		return http.StatusForbidden
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.ECONFLICT:
		return http.StatusConflict
	case domain.ERATELIMIT:
		return http.StatusTooManyRequests
	case domain.EUNAVAILABLE:
		return http.StatusBadGateway
	case domain.EINTERNAL:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// errorPage renders the shared error page with an appropriate status.
func (h *Handler) errorPage(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.ErrorCode(err)
	status := ErrorCodeToHTTPStatus(code)

	attrs := []any{
		"error", err.Error(),
		"code", code,
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
	}
	if status >= 500 {
		h.logger.Error("server error", attrs...)
	} else {
		h.logger.Info("client error", attrs...)
	}

	data := h.pageData(r, PageData{
		Title:     "Something went wrong",
		CSRFToken: h.csrfToken(w, r),
		Message:   domain.ErrorMessage(err),
	})
	h.renderer.RenderHTTP(w, status, "public/error", data)
}

// notFound renders the 404 page.
func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	h.errorPage(w, r, domain.Errorf(domain.ENOTFOUND, "", "The page you are looking for does not exist."))
}

// badRequest is used for malformed form submissions and failed CSRF checks.
func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, logger *slog.Logger, message string) {
	logger.Info("bad request", "path", r.URL.Path, "reason", message)
	h.errorPage(w, r, domain.Invalid("", message))
}
