package models

// EmailMessage is an outbound notification. Text is the plain-text
// alternative of HTML.
type EmailMessage struct {
	To      string
	Subject string
	HTML    string
	Text    string
}
