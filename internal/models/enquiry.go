package models

import "time"

const (
	EnquiryNameMaxLen  = 120
	EnquiryEmailMaxLen = 191
)

// Enquiry is a message submitted through the public contact form
type Enquiry struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Message    string    `json:"message"`
	IsRead     bool      `json:"is_read"`
	IsArchived bool      `json:"is_archived"`
	CreatedAt  time.Time `json:"created_at"`
}
