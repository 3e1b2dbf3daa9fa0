// Booking enquiry handlers. The booking backend is not live yet, so these
// record the enquiry with a reference number and confirm receipt to the
// customer.
package handler

import (
	"net/http"
	"strings"

	"github.com/soulparadise/web/internal/domain"
	"github.com/soulparadise/web/internal/metrics"
)

// enquiryFields lists the form fields captured for each enquiry kind.
var enquiryFields = map[domain.EnquiryKind][]string{
	domain.EnquiryFlight:    {"trip_type", "from", "to", "departure_date", "return_date", "passengers", "class"},
	domain.EnquiryHotel:     {"destination", "check_in", "check_out", "rooms", "guests"},
	domain.EnquiryPackage:   {"destination", "start_date", "nights", "travellers", "budget"},
	domain.EnquiryVisa:      {"country", "visa_type", "travel_date", "applicants"},
	domain.EnquiryInsurance: {"destination", "start_date", "end_date", "travellers", "plan"},
}

// FlightEnquiry handles POST /enquiries/flight.
func (h *Handler) FlightEnquiry(w http.ResponseWriter, r *http.Request) {
	h.enquiry(w, r, domain.EnquiryFlight)
}

// HotelEnquiry handles POST /enquiries/hotel.
func (h *Handler) HotelEnquiry(w http.ResponseWriter, r *http.Request) {
	h.enquiry(w, r, domain.EnquiryHotel)
}

// PackageEnquiry handles POST /enquiries/package.
func (h *Handler) PackageEnquiry(w http.ResponseWriter, r *http.Request) {
	h.enquiry(w, r, domain.EnquiryPackage)
}

// VisaEnquiry handles POST /enquiries/visa.
func (h *Handler) VisaEnquiry(w http.ResponseWriter, r *http.Request) {
	h.enquiry(w, r, domain.EnquiryVisa)
}

// InsuranceEnquiry handles POST /enquiries/insurance.
func (h *Handler) InsuranceEnquiry(w http.ResponseWriter, r *http.Request) {
	h.enquiry(w, r, domain.EnquiryInsurance)
}

// enquiry validates CSRF, collects the kind's fields plus contact details,
// assigns a reference, and redirects back to the booking section with a
// confirmation flash.
func (h *Handler) enquiry(w http.ResponseWriter, r *http.Request, kind domain.EnquiryKind) {
	if !h.checkCSRF(w, r) {
		return
	}

	fields := make(map[string]string)
	for _, name := range enquiryFields[kind] {
		if v := strings.TrimSpace(r.FormValue(name)); v != "" {
			fields[name] = v
		}
	}
	for _, name := range []string{"contact_name", "contact_email", "contact_phone"} {
		if v := strings.TrimSpace(r.FormValue(name)); v != "" {
			fields[name] = v
		}
	}

	if !validEmail(fields["contact_email"]) {
		h.renderer.RenderHTTP(w, http.StatusUnprocessableEntity, "public/home", h.pageData(r, PageData{
			Title:        "Soul Paradise Tours & Travels",
			CSRFToken:    h.csrfToken(w, r),
			Errors:       map[string]string{"contact_email": "Please enter a valid email address"},
			Testimonials: h.testimonials.Latest(),
		}))
		return
	}

	enq := domain.NewBookingEnquiry(kind, fields)

	// Until the booking API ships, the structured log line is the record
	// the agents work from.
	h.logger.Info("booking enquiry received",
		"reference", enq.Reference.String(),
		"kind", string(enq.Kind),
		"contact_email", fields["contact_email"],
		"field_count", len(enq.Fields),
	)
	metrics.BookingEnquiries.WithLabelValues(string(kind)).Inc()

	http.Redirect(w, r, "/?enquiry="+enq.Reference.String()+"#booking", http.StatusSeeOther)
}
