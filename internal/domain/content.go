package domain

import (
	"time"

	"github.com/google/uuid"
)

// Testimonial is a customer review, read-only from the front-end's
// perspective. Only approved testimonials are returned by the backend.
type Testimonial struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Review     string    `json:"review"`
	Rating     int       `json:"rating"` // 1-5
	Service    string    `json:"service"`
	IsApproved bool      `json:"isApproved"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ContactMessage is a contact form submission forwarded to the backend.
type ContactMessage struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Subject     string `json:"subject"`
	Message     string `json:"message"`
}

// EnquiryKind identifies which booking tab a search came from.
type EnquiryKind string

const (
	EnquiryFlight    EnquiryKind = "flight"
	EnquiryHotel     EnquiryKind = "hotel"
	EnquiryPackage   EnquiryKind = "package"
	EnquiryVisa      EnquiryKind = "visa"
	EnquiryInsurance EnquiryKind = "insurance"
)

// BookingEnquiry captures a booking-intent form submission. There is no
// booking backend: enquiries are logged with their reference and the user
// is shown a confirmation. Fields holds the raw form values per tab.
type BookingEnquiry struct {
	Reference uuid.UUID
	Kind      EnquiryKind
	Fields    map[string]string
	CreatedAt time.Time
}

// NewBookingEnquiry assigns a reference to a submitted enquiry.
func NewBookingEnquiry(kind EnquiryKind, fields map[string]string) BookingEnquiry {
	return BookingEnquiry{
		Reference: uuid.New(),
		Kind:      kind,
		Fields:    fields,
		CreatedAt: time.Now(),
	}
}
