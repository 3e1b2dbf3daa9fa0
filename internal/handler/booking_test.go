package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestEnquiry_Success(t *testing.T) {
	h, _ := newPagesHandler(nil, nil)

	w := httptest.NewRecorder()
	h.FlightEnquiry(w, postForm("/enquiries/flight", url.Values{
		"trip_type":      {"round"},
		"from":           {"BOM"},
		"to":             {"DPS"},
		"departure_date": {"2026-10-01"},
		"passengers":     {"2"},
		"contact_name":   {"Amy"},
		"contact_email":  {"amy@example.com"},
	}))

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	loc := w.Header().Get("Location")
	if !strings.HasPrefix(loc, "/?enquiry=") || !strings.HasSuffix(loc, "#booking") {
		t.Errorf("Location = %q, want /?enquiry=<ref>#booking", loc)
	}
	ref := strings.TrimSuffix(strings.TrimPrefix(loc, "/?enquiry="), "#booking")
	if ref == "" {
		t.Error("redirect must carry the enquiry reference")
	}
}

func TestEnquiry_EachKind(t *testing.T) {
	h, _ := newPagesHandler(nil, nil)

	handlers := map[string]http.HandlerFunc{
		"/enquiries/flight":    h.FlightEnquiry,
		"/enquiries/hotel":     h.HotelEnquiry,
		"/enquiries/package":   h.PackageEnquiry,
		"/enquiries/visa":      h.VisaEnquiry,
		"/enquiries/insurance": h.InsuranceEnquiry,
	}

	for path, handler := range handlers {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler(w, postForm(path, url.Values{
				"contact_name":  {"Amy"},
				"contact_email": {"amy@example.com"},
			}))

			if w.Code != http.StatusSeeOther {
				t.Errorf("status = %d, want 303", w.Code)
			}
		})
	}
}

func TestEnquiry_InvalidContactEmail(t *testing.T) {
	h, renderer := newPagesHandler(nil, nil)

	w := httptest.NewRecorder()
	h.HotelEnquiry(w, postForm("/enquiries/hotel", url.Values{
		"destination":   {"Bali"},
		"contact_email": {"not-an-email"},
	}))

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	if renderer.name != "public/home" {
		t.Errorf("template = %q, want public/home", renderer.name)
	}
	if renderer.data.Errors["contact_email"] == "" {
		t.Error("expected a contact_email error")
	}
}

func TestEnquiry_CSRFRequired(t *testing.T) {
	h, _ := newPagesHandler(nil, nil)

	form := url.Values{"contact_email": {"amy@example.com"}}
	r := httptest.NewRequest(http.MethodPost, "/enquiries/visa", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	h.VisaEnquiry(w, r)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
