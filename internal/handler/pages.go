package handler

import (
	"net/http"
	"strings"

	"github.com/soulparadise/web/internal/domain"
	"github.com/soulparadise/web/internal/metrics"
)

// Home renders the landing page with the booking enquiry tabs and the
// latest testimonials.
//
// Template: public/home
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	// ServeMux routes every unmatched path to "/"
	if r.URL.Path != "/" {
		h.notFound(w, r)
		return
	}

	h.renderer.RenderHTTP(w, http.StatusOK, "public/home", h.pageData(r, PageData{
		Title:        "Soul Paradise Tours & Travels",
		CSRFToken:    h.csrfToken(w, r),
		Flash:        flashFromQuery(r),
		Testimonials: h.testimonials.Latest(),
	}))
}

// About renders the about page.
func (h *Handler) About(w http.ResponseWriter, r *http.Request) {
	h.renderer.RenderHTTP(w, http.StatusOK, "public/about", h.pageData(r, PageData{
		Title:     "About Us",
		CSRFToken: h.csrfToken(w, r),
	}))
}

// Services renders the services overview page.
func (h *Handler) Services(w http.ResponseWriter, r *http.Request) {
	h.renderer.RenderHTTP(w, http.StatusOK, "public/services", h.pageData(r, PageData{
		Title:     "Our Services",
		CSRFToken: h.csrfToken(w, r),
	}))
}

// HallOfFame renders the testimonials page.
func (h *Handler) HallOfFame(w http.ResponseWriter, r *http.Request) {
	h.renderer.RenderHTTP(w, http.StatusOK, "public/hall_of_fame", h.pageData(r, PageData{
		Title:        "Hall of Fame",
		CSRFToken:    h.csrfToken(w, r),
		Testimonials: h.testimonials.Latest(),
	}))
}

// ShowContact renders the contact form.
func (h *Handler) ShowContact(w http.ResponseWriter, r *http.Request) {
	h.renderer.RenderHTTP(w, http.StatusOK, "public/contact", h.pageData(r, PageData{
		Title:     "Contact Us",
		CSRFToken: h.csrfToken(w, r),
		Flash:     flashFromQuery(r),
	}))
}

// Contact submits the contact form to the backend.
//
// Form fields: full_name, email, phone_number, subject, message.
func (h *Handler) Contact(w http.ResponseWriter, r *http.Request) {
	if !h.checkCSRF(w, r) {
		return
	}

	form := map[string]string{
		"full_name":    strings.TrimSpace(r.FormValue("full_name")),
		"email":        strings.TrimSpace(r.FormValue("email")),
		"phone_number": strings.TrimSpace(r.FormValue("phone_number")),
		"subject":      strings.TrimSpace(r.FormValue("subject")),
		"message":      strings.TrimSpace(r.FormValue("message")),
	}

	errs := make(map[string]string)
	if form["full_name"] == "" {
		errs["full_name"] = "Please enter your name"
	}
	if !validEmail(form["email"]) {
		errs["email"] = "Please enter a valid email address"
	}
	if form["message"] == "" {
		errs["message"] = "Please enter a message"
	}

	if len(errs) > 0 {
		h.renderer.RenderHTTP(w, http.StatusUnprocessableEntity, "public/contact", h.pageData(r, PageData{
			Title:     "Contact Us",
			CSRFToken: h.csrfToken(w, r),
			Form:      form,
			Errors:    errs,
		}))
		return
	}

	msg := contactMessageFromForm(form)
	if _, err := h.content.SubmitContact(r.Context(), msg); err != nil {
		metrics.ContactSubmissions.WithLabelValues("error").Inc()
		h.logger.Warn("contact submission failed", "error", err)
		h.renderer.RenderHTTP(w, http.StatusBadGateway, "public/contact", h.pageData(r, PageData{
			Title:     "Contact Us",
			CSRFToken: h.csrfToken(w, r),
			Form:      form,
			Flash:     &Flash{Type: "error", Message: "We could not send your message. Please try again."},
		}))
		return
	}

	metrics.ContactSubmissions.WithLabelValues("success").Inc()
	h.logger.Info("contact message submitted", "subject", form["subject"])
	http.Redirect(w, r, "/contact?sent=1", http.StatusSeeOther)
}

func contactMessageFromForm(form map[string]string) domain.ContactMessage {
	return domain.ContactMessage{
		FullName:    form["full_name"],
		Email:       form["email"],
		PhoneNumber: form["phone_number"],
		Subject:     form["subject"],
		Message:     form["message"],
	}
}

// flashFromQuery builds a flash message from well-known query parameters
// set by post-redirect-get handlers.
func flashFromQuery(r *http.Request) *Flash {
	q := r.URL.Query()
	switch {
	case q.Get("sent") == "1":
		return &Flash{Type: "success", Message: "Thank you! Your message has been sent."}
	case q.Get("enquiry") != "":
		return &Flash{Type: "success", Message: "Thank you! Your enquiry has been received. Reference: " + q.Get("enquiry")}
	case q.Get("logged_out") == "1":
		return &Flash{Type: "info", Message: "You have been signed out."}
	}
	return nil
}

// validEmail performs a light sanity check; the backend does the real
// validation.
func validEmail(s string) bool {
	at := strings.Index(s, "@")
	return at > 0 && strings.Contains(s[at+1:], ".")
}
