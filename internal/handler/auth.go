// Authentication handlers: sign-in, registration, Google sign-in, email
// verification, and password recovery. Every POST validates the
// double-submit CSRF token and follows post-redirect-get.
package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/soulparadise/web/internal/domain"
)

const googleStateCookie = "sp_oauth_state"

// ShowLogin renders the sign-in form.
//
// Query parameters:
//   - registered=true&email=... shows the post-registration verification notice
//   - reset=1 confirms a completed password reset
//   - verified=1 confirms a completed email verification
//   - return_to carries the destination for after sign-in
func (h *Handler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var flash *Flash
	switch {
	case q.Get("registered") == "true":
		flash = &Flash{
			Type:    "success",
			Message: "Account created! Please check your email to verify your account before signing in.",
		}
	case q.Get("reset") == "1":
		flash = &Flash{Type: "success", Message: "Your password has been reset. You can sign in now."}
	case q.Get("verified") == "1":
		flash = &Flash{Type: "success", Message: "Your email has been verified. You can sign in now."}
	}

	h.renderer.RenderHTTP(w, http.StatusOK, "auth/login", h.pageData(r, PageData{
		Title:     "Sign In",
		CSRFToken: h.csrfToken(w, r),
		Flash:     flash,
		Email:     q.Get("email"),
		ReturnTo:  q.Get("return_to"),
	}))
}

// Login processes the sign-in form.
//
// On success the session cookies are set before the redirect is written,
// so the very next request renders signed in. An unverified email renders
// the form again with a resend-verification link.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.checkCSRF(w, r) {
		return
	}

	creds := domain.Credentials{
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
	}
	returnTo := safeReturnTo(r.FormValue("return_to"))

	if creds.Email == "" || creds.Password == "" {
		h.renderLoginError(w, r, creds.Email, returnTo, "Please enter your email and password.", false)
		return
	}

	user, err := h.sessions.Login(r.Context(), w, r, creds)
	if err != nil {
		if apiErr, ok := domain.AsAPIError(err); ok && apiErr.EmailNotVerified() {
			h.renderLoginError(w, r, creds.Email, returnTo, apiErr.Message, true)
			return
		}
		h.renderLoginError(w, r, creds.Email, returnTo, domain.ErrorMessage(err), false)
		return
	}

	if h.limiter != nil {
		h.limiter.ResetLogin(clientIP(r))
	}
	h.logger.Info("user signed in", "user_id", user.ID)
	http.Redirect(w, r, returnTo, http.StatusSeeOther)
}

func (h *Handler) renderLoginError(w http.ResponseWriter, r *http.Request, email, returnTo, message string, unverified bool) {
	data := h.pageData(r, PageData{
		Title:     "Sign In",
		CSRFToken: h.csrfToken(w, r),
		Flash:     &Flash{Type: "error", Message: message},
		Email:     email,
		ReturnTo:  returnTo,
	})
	if unverified {
		data.Errors["unverified"] = email
	}
	h.renderer.RenderHTTP(w, http.StatusUnauthorized, "auth/login", data)
}

// ShowRegister renders the registration form.
func (h *Handler) ShowRegister(w http.ResponseWriter, r *http.Request) {
	h.renderer.RenderHTTP(w, http.StatusOK, "auth/register", h.pageData(r, PageData{
		Title:     "Create Account",
		CSRFToken: h.csrfToken(w, r),
	}))
}

// Register processes the registration form.
//
// On success the user is sent to /login?registered=true&email=<email> so
// they see the verification notice. The session cookies are already set at
// that point; the login page keeps rendering because of the registered
// exemption in the route guard.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if !h.checkCSRF(w, r) {
		return
	}

	params := domain.RegisterParams{
		Name:     strings.TrimSpace(r.FormValue("name")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
	}
	confirm := r.FormValue("password_confirmation")

	errs := make(map[string]string)
	if params.Name == "" {
		errs["name"] = "Please enter your name"
	}
	if !validEmail(params.Email) {
		errs["email"] = "Please enter a valid email address"
	}
	if len(params.Password) < 8 {
		errs["password"] = "Password must be at least 8 characters"
	}
	if confirm != params.Password {
		errs["password_confirmation"] = "Passwords do not match"
	}

	if len(errs) > 0 {
		h.renderer.RenderHTTP(w, http.StatusUnprocessableEntity, "auth/register", h.pageData(r, PageData{
			Title:     "Create Account",
			CSRFToken: h.csrfToken(w, r),
			Form:      map[string]string{"name": params.Name, "email": params.Email},
			Errors:    errs,
		}))
		return
	}

	user, err := h.sessions.Register(r.Context(), w, r, params)
	if err != nil {
		h.renderer.RenderHTTP(w, ErrorCodeToHTTPStatus(domain.ErrorCode(err)), "auth/register", h.pageData(r, PageData{
			Title:     "Create Account",
			CSRFToken: h.csrfToken(w, r),
			Form:      map[string]string{"name": params.Name, "email": params.Email},
			Flash:     &Flash{Type: "error", Message: domain.ErrorMessage(err)},
		}))
		return
	}

	h.logger.Info("user registered", "user_id", user.ID)
	http.Redirect(w, r, "/login?registered=true&email="+url.QueryEscape(params.Email), http.StatusSeeOther)
}

// Logout signs the user out. Session cookies are always cleared, even when
// the backend call fails, and the user lands on the login page.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if !h.checkCSRF(w, r) {
		return
	}
	h.sessions.Logout(r.Context(), w, r)
	http.Redirect(w, r, "/login?logged_out=1", http.StatusSeeOther)
}

// LogoutAll revokes every session for the user, then clears local cookies.
func (h *Handler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	if !h.checkCSRF(w, r) {
		return
	}
	h.sessions.LogoutAll(r.Context(), w, r)
	http.Redirect(w, r, "/login?logged_out=1", http.StatusSeeOther)
}

// Account renders the signed-in account page. Wrapped by RequireUser.
func (h *Handler) Account(w http.ResponseWriter, r *http.Request) {
	h.renderer.RenderHTTP(w, http.StatusOK, "public/account", h.pageData(r, PageData{
		Title:     "My Account",
		CSRFToken: h.csrfToken(w, r),
	}))
}

// VerifyEmail handles the verification link from the email.
//
// GET /verify-email?token=...
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		h.renderer.RenderHTTP(w, http.StatusOK, "auth/verify_email", h.pageData(r, PageData{
			Title: "Verify Email",
			Flash: &Flash{Type: "error", Message: "The verification link is missing its token."},
		}))
		return
	}

	if err := h.sessions.VerifyEmail(r.Context(), token); err != nil {
		h.logger.Info("email verification failed", "error", err)
		h.renderer.RenderHTTP(w, ErrorCodeToHTTPStatus(domain.ErrorCode(err)), "auth/verify_email", h.pageData(r, PageData{
			Title: "Verify Email",
			Flash: &Flash{Type: "error", Message: domain.ErrorMessage(err)},
		}))
		return
	}

	http.Redirect(w, r, "/login?verified=1", http.StatusSeeOther)
}

// ShowResendVerification renders the resend-verification form, optionally
// pre-filled from ?email=.
func (h *Handler) ShowResendVerification(w http.ResponseWriter, r *http.Request) {
	h.renderer.RenderHTTP(w, http.StatusOK, "auth/resend_verification", h.pageData(r, PageData{
		Title:     "Resend Verification",
		CSRFToken: h.csrfToken(w, r),
		Email:     r.URL.Query().Get("email"),
	}))
}

// ResendVerification requests a new verification email. The response is
// the same whether or not the address exists.
func (h *Handler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	if !h.checkCSRF(w, r) {
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	if !validEmail(email) {
		h.renderer.RenderHTTP(w, http.StatusUnprocessableEntity, "auth/resend_verification", h.pageData(r, PageData{
			Title:     "Resend Verification",
			CSRFToken: h.csrfToken(w, r),
			Errors:    map[string]string{"email": "Please enter a valid email address"},
		}))
		return
	}

	if err := h.sessions.ResendVerification(r.Context(), email); err != nil {
		h.logger.Warn("resend verification failed", "error", err)
	}

	h.renderer.RenderHTTP(w, http.StatusOK, "auth/resend_verification", h.pageData(r, PageData{
		Title:     "Resend Verification",
		CSRFToken: h.csrfToken(w, r),
		Flash:     &Flash{Type: "success", Message: "If an account exists for that address, a verification email is on its way."},
	}))
}

// ShowForgotPassword renders the forgot-password form.
func (h *Handler) ShowForgotPassword(w http.ResponseWriter, r *http.Request) {
	h.renderer.RenderHTTP(w, http.StatusOK, "auth/forgot_password", h.pageData(r, PageData{
		Title:     "Forgot Password",
		CSRFToken: h.csrfToken(w, r),
	}))
}

// ForgotPassword requests a password reset email. Like resend, the
// response never reveals whether the address exists.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	if !h.checkCSRF(w, r) {
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	if !validEmail(email) {
		h.renderer.RenderHTTP(w, http.StatusUnprocessableEntity, "auth/forgot_password", h.pageData(r, PageData{
			Title:     "Forgot Password",
			CSRFToken: h.csrfToken(w, r),
			Errors:    map[string]string{"email": "Please enter a valid email address"},
		}))
		return
	}

	if err := h.sessions.ForgotPassword(r.Context(), email); err != nil {
		h.logger.Warn("forgot password request failed", "error", err)
	}

	h.renderer.RenderHTTP(w, http.StatusOK, "auth/forgot_password", h.pageData(r, PageData{
		Title:     "Forgot Password",
		CSRFToken: h.csrfToken(w, r),
		Flash:     &Flash{Type: "success", Message: "If an account exists for that address, a reset link is on its way."},
	}))
}

// ShowResetPassword renders the reset form for the token in the link.
func (h *Handler) ShowResetPassword(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Redirect(w, r, "/forgot-password", http.StatusSeeOther)
		return
	}

	h.renderer.RenderHTTP(w, http.StatusOK, "auth/reset_password", h.pageData(r, PageData{
		Title:     "Reset Password",
		CSRFToken: h.csrfToken(w, r),
		Form:      map[string]string{"token": token},
	}))
}

// ResetPassword sets the new password using the emailed token.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	if !h.checkCSRF(w, r) {
		return
	}

	token := r.FormValue("token")
	password := r.FormValue("password")
	confirm := r.FormValue("password_confirmation")

	errs := make(map[string]string)
	if token == "" {
		errs["token"] = "The reset link is invalid. Request a new one."
	}
	if len(password) < 8 {
		errs["password"] = "Password must be at least 8 characters"
	}
	if confirm != password {
		errs["password_confirmation"] = "Passwords do not match"
	}

	if len(errs) > 0 {
		h.renderer.RenderHTTP(w, http.StatusUnprocessableEntity, "auth/reset_password", h.pageData(r, PageData{
			Title:     "Reset Password",
			CSRFToken: h.csrfToken(w, r),
			Form:      map[string]string{"token": token},
			Errors:    errs,
		}))
		return
	}

	if err := h.sessions.ResetPassword(r.Context(), token, password); err != nil {
		h.renderer.RenderHTTP(w, ErrorCodeToHTTPStatus(domain.ErrorCode(err)), "auth/reset_password", h.pageData(r, PageData{
			Title:     "Reset Password",
			CSRFToken: h.csrfToken(w, r),
			Form:      map[string]string{"token": token},
			Flash:     &Flash{Type: "error", Message: domain.ErrorMessage(err)},
		}))
		return
	}

	http.Redirect(w, r, "/login?reset=1", http.StatusSeeOther)
}

// GoogleLogin starts the Google sign-in flow by redirecting to the consent
// screen with a state cookie for callback validation.
func (h *Handler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		h.notFound(w, r)
		return
	}

	state, err := h.google.StateToken()
	if err != nil {
		h.logger.Error("oauth state generation failed", "error", err)
		h.errorPage(w, r, domain.Internal(err, "auth.google", "Could not start Google sign-in."))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     googleStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.isSecure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.google.AuthURL(state), http.StatusSeeOther)
}

// GoogleCallback completes the Google sign-in flow: it validates state,
// exchanges the code for an ID token, and hands that token to the backend.
func (h *Handler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		h.notFound(w, r)
		return
	}

	stateCookie, err := r.Cookie(googleStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		h.logger.Warn("oauth state mismatch", "ip", clientIP(r))
		h.badRequest(w, r, h.logger, "The sign-in request could not be validated. Please try again.")
		return
	}

	// One-shot cookie
	http.SetCookie(w, &http.Cookie{
		Name:     googleStateCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.isSecure,
		SameSite: http.SameSiteLaxMode,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	idToken, err := h.google.ExchangeIDToken(r.Context(), code)
	if err != nil {
		h.logger.Warn("oauth code exchange failed", "error", err)
		h.renderLoginError(w, r, "", "/", "Google sign-in failed. Please try again.", false)
		return
	}

	user, err := h.sessions.GoogleAuth(r.Context(), w, r, idToken)
	if err != nil {
		h.renderLoginError(w, r, "", "/", domain.ErrorMessage(err), false)
		return
	}

	h.logger.Info("user signed in with google", "user_id", user.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// safeReturnTo only allows site-relative redirect targets. Browsers
// normalize backslashes to slashes when following Location headers, so a
// backslash anywhere in the path would let /\evil.com escape the origin.
func safeReturnTo(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return "/"
	}
	path := target
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if strings.ContainsRune(path, '\\') {
		return "/"
	}
	return target
}

// clientIP mirrors the extraction the rate limiter uses so limiter resets
// hit the same key.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		return host[:i]
	}
	return host
}
