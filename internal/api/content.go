package api

import (
	"context"
	"fmt"
	"time"

	"github.com/soulparadise/web/internal/domain"
)

// TestimonialList is the success shape of GET /testimonials.
type TestimonialList struct {
	Success bool                 `json:"success"`
	Data    []domain.Testimonial `json:"data"`
	Count   int                  `json:"count"`
}

// LatestTestimonials fetches the most recent approved testimonials.
// GET /testimonials?limit=N
func (c *Client) LatestTestimonials(ctx context.Context, limit int) ([]domain.Testimonial, error) {
	var resp TestimonialList
	if err := c.get(ctx, fmt.Sprintf("/testimonials?limit=%d", limit), "", &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// ContactResult is the acknowledgement returned for a contact submission.
type ContactResult struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// SubmitContact forwards a contact form submission to the backend.
// POST /contacts
func (c *Client) SubmitContact(ctx context.Context, msg domain.ContactMessage) (*ContactResult, error) {
	var resp struct {
		Success bool          `json:"success"`
		Message string        `json:"message"`
		Data    ContactResult `json:"data"`
	}
	if err := c.post(ctx, "/contacts", msg, "", &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}
