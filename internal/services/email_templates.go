package services

import (
	"fmt"
	"html"
	"time"

	"github.com/kalindhi/kalindhi-api/internal/models"
)

const emailLayout = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #f4efe6; padding: 20px; text-align: center; border-radius: 4px; }
        .code { font-size: 28px; letter-spacing: 6px; font-weight: bold; text-align: center; margin: 24px 0; }
        .footer { color: #666; font-size: 12px; margin-top: 20px; padding-top: 20px; border-top: 1px solid #eee; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header"><h1>%s</h1></div>
        %s
        <div class="footer"><p>This is an automated message from Kalindhi Travels. Please do not reply.</p></div>
    </div>
</body>
</html>
`

func renderEmail(title, content string) string {
	return fmt.Sprintf(emailLayout, html.EscapeString(title), content)
}

func minutes(d time.Duration) int {
	return int(d.Round(time.Minute) / time.Minute)
}

// otpEmail builds the message carrying a one-time code for purpose
func otpEmail(to, code string, purpose models.OTPPurpose, expiry time.Duration) models.EmailMessage {
	subject := "Your Kalindhi verification code"
	title := "Verify your email"
	intro := "Use the code below to verify your Kalindhi Travels account."
	if purpose == models.OTPPurposeAdminLogin {
		subject = "Admin Dashboard Access Code"
		title = "Kalindhi Admin Dashboard"
		intro = "Use the code below to finish signing in to the admin dashboard."
	}

	content := fmt.Sprintf(`<p>%s</p>
        <div class="code">%s</div>
        <p>This code expires in %d minutes. If you did not request it, you can ignore this email.</p>`,
		intro, code, minutes(expiry))

	text := fmt.Sprintf("%s\n\nCode: %s\n\nThis code expires in %d minutes. If you did not request it, you can ignore this email.\n",
		intro, code, minutes(expiry))

	return models.EmailMessage{To: to, Subject: subject, HTML: renderEmail(title, content), Text: text}
}

// adminAccessRequestEmail notifies the operator that someone asked for dashboard access
func adminAccessRequestEmail(to string, admin *models.Admin) models.EmailMessage {
	phone := "-"
	if admin.Phone != nil && *admin.Phone != "" {
		phone = *admin.Phone
	}

	content := fmt.Sprintf(`<p>A new admin access request is waiting for approval.</p>
        <p><strong>Name:</strong> %s<br><strong>Email:</strong> %s<br><strong>Phone:</strong> %s</p>`,
		html.EscapeString(admin.Name), html.EscapeString(admin.Email), html.EscapeString(phone))

	text := fmt.Sprintf("A new admin access request is waiting for approval.\n\nName: %s\nEmail: %s\nPhone: %s\n",
		admin.Name, admin.Email, phone)

	return models.EmailMessage{
		To:      to,
		Subject: "New admin access request",
		HTML:    renderEmail("Admin access request", content),
		Text:    text,
	}
}

// enquiryEmail forwards a contact form submission to the operator
func enquiryEmail(to string, e *models.Enquiry) models.EmailMessage {
	content := fmt.Sprintf(`<p><strong>From:</strong> %s &lt;%s&gt;</p>
        <p>%s</p>`,
		html.EscapeString(e.Name), html.EscapeString(e.Email), html.EscapeString(e.Message))

	text := fmt.Sprintf("From: %s <%s>\n\n%s\n", e.Name, e.Email, e.Message)

	return models.EmailMessage{
		To:      to,
		Subject: fmt.Sprintf("New enquiry from %s", e.Name),
		HTML:    renderEmail("New enquiry", content),
		Text:    text,
	}
}
