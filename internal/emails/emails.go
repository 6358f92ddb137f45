// Package emails renders the transactional email bodies: attendee
// confirmations and the admin registration notice. Rendering is pure;
// all event metadata comes from injected config, never globals.
package emails

import (
	"fmt"
	"strings"
	"time"

	"github.com/dexabrain/event-backend/config"
	"github.com/dexabrain/event-backend/internal/calendar"
	"github.com/dexabrain/event-backend/internal/models"
)

// Renderer produces email subject/body pairs for one configured event.
type Renderer struct {
	event  config.EventConfig
	assets config.AssetConfig
	email  config.EmailConfig
}

// NewRenderer creates a renderer bound to the deployment's event config.
func NewRenderer(event config.EventConfig, assets config.AssetConfig, email config.EmailConfig) *Renderer {
	return &Renderer{event: event, assets: assets, email: email}
}

// ConfirmationSubject returns the attendee confirmation subject line.
func (r *Renderer) ConfirmationSubject() string {
	return "✅ Registration Confirmed - " + r.event.Name
}

func (r *Renderer) calendarLink() string {
	return calendar.GoogleLink(calendar.Event{
		Title:       r.event.Name,
		Description: r.event.Description,
		Location:    r.event.Location + ", " + r.event.Address,
		Start:       r.event.StartUTC,
		End:         r.event.EndUTC,
	})
}

// ConfirmationHTML renders the HTML confirmation body for one attendee.
// A primary attendee sees the names of co-registered attendees; an
// additional attendee sees only the group size. The group section is
// omitted entirely for single-person registrations.
func (r *Renderer) ConfirmationHTML(attendee models.Attendee, registrationID string, totalAttendees int, additionalAttendees []models.Attendee, isPrimary bool) string {
	var names strings.Builder
	if isPrimary {
		for _, a := range additionalAttendees {
			fmt.Fprintf(&names, `<div style="color: rgba(255, 255, 255, 0.8); margin: 4px 0; font-size: 16px;">&bull; %s</div>`, a.Name)
		}
	}

	groupSection := ""
	if totalAttendees > 1 {
		inner := fmt.Sprintf(`<div style="color: rgba(255, 255, 255, 0.7); font-size: 16px; font-weight: 300;">Part of group registration with %d attendees</div>`, totalAttendees)
		if isPrimary {
			inner = fmt.Sprintf(`<div style="color: rgba(255, 255, 255, 0.7); font-size: 16px; font-weight: 300; margin-bottom: 12px;">Group Registration (%d attendees)</div>%s`, totalAttendees, names.String())
		}
		groupSection = fmt.Sprintf(`
      <div style="margin: 24px 0; text-align: center;">
        <div style="width: 32px; height: 1px; background: rgba(255, 255, 255, 0.4); margin: 0 auto 16px auto;"></div>
        %s
      </div>`, inner)
	}

	logo := ""
	if r.assets.LogoURL != "" {
		logo = fmt.Sprintf(`<img src="%s" alt="Dexabrain" style="height: 100px; width: auto;">`, r.assets.LogoURL)
	}

	background := ""
	if r.assets.BackgroundURL != "" {
		background = fmt.Sprintf(` background-image: url('%s'); background-size: cover; background-position: center;`, r.assets.BackgroundURL)
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Registration Confirmed - %[1]s</title>
</head>
<body style="margin: 0; padding: 0;%[2]s font-family: 'Avenir Next', Avenir, 'Helvetica Neue', Helvetica, Arial, sans-serif;">
  <div style="max-width: 800px; margin: 0 auto; background: rgba(15, 23, 42, 0.92); color: white;">
    <div style="padding: 15px 40px; text-align: center;">
      <div style="padding: 20px 30px; border: 2px solid rgba(255, 255, 255, 0.3); border-radius: 24px;">
        <h2 style="font-weight: 300; font-size: 20px; letter-spacing: 0.15em; text-transform: uppercase; color: rgba(255, 255, 255, 0.9); margin: 0 0 12px 0;">Registration Confirmed</h2>
        <h1 style="font-family: 'Playfair Display', Georgia, serif; font-weight: 700; font-size: 36px; text-transform: uppercase; color: white; margin: 0 0 32px 0;">%[1]s</h1>
        <div style="margin: 24px 0; padding: 24px; background: rgba(255, 255, 255, 0.1); border-radius: 16px;">
          <p style="font-size: 18px; font-weight: 500; color: white; margin: 0 0 8px 0;">Dear %[3]s,</p>
          <p style="font-size: 16px; color: rgba(255, 255, 255, 0.9); margin: 0 0 16px 0; line-height: 1.6;">You are officially registered for this exclusive seminar.</p>
          <div style="font-family: 'Courier New', Courier, monospace; font-size: 14px; color: rgba(255, 255, 255, 0.7); margin: 0;">Registration ID: %[4]s</div>
        </div>
        %[5]s
        <div style="margin: 24px 0; font-size: 20px; font-weight: 300; color: white;">
          <div style="margin-bottom: 8px;">%[6]s</div>
          <div style="color: rgba(255, 255, 255, 0.9); font-size: 18px;">%[7]s</div>
        </div>
        <div style="margin: 24px 0; font-size: 18px; font-weight: 500; color: white;">
          <div style="margin-bottom: 4px;">%[8]s</div>
          <div style="color: rgba(255, 255, 255, 0.8); font-weight: 300; font-size: 16px;">%[9]s</div>
        </div>
        <div style="margin: 24px 0;">
          <p style="font-family: 'Playfair Display', Georgia, serif; font-size: 18px; color: rgba(255, 255, 255, 0.7); font-style: italic; margin: 0;">"Join us for an afternoon of science, healing, and discovery."</p>
        </div>
        <div style="margin: 40px 0 24px 0;">
          <a href="%[10]s" style="display: inline-block; padding: 16px 48px; background: white; color: #1f2937; font-weight: 700; font-size: 16px; text-decoration: none; border-radius: 50px;">Add to Calendar</a>
        </div>
      </div>
    </div>
    <div style="background: rgb(15, 23, 42); padding: 12px 8px; text-align: center;">
      %[11]s
      <p style="color: rgba(255, 255, 255, 0.7); font-size: 16px; font-weight: 300; margin: 0; line-height: 1.6;">Pioneering the future of neurological wellness through<br>innovative research and holistic care solutions.</p>
      <div style="color: rgba(255, 255, 255, 0.6); font-size: 14px; font-weight: 500; margin: 24px 0 12px 0;">Questions about your registration?</div>
      <div style="color: #1DE9B6; font-size: 16px; font-weight: 600;">%[12]s &bull; %[13]s</div>
      <div style="padding-top: 12px; border-top: 1px solid rgba(255, 255, 255, 0.1); margin-top: 24px;">
        <p style="color: rgba(255, 255, 255, 0.6); font-size: 14px; margin: 0;">&copy; 2025 Dexabrain. All rights reserved.</p>
      </div>
    </div>
  </div>
</body>
</html>`,
		r.event.Name,       // 1
		background,         // 2
		attendee.Name,      // 3
		registrationID,     // 4
		groupSection,       // 5
		r.event.Date,       // 6
		r.event.Time,       // 7
		r.event.Location,   // 8
		r.event.Address,    // 9
		r.calendarLink(),   // 10
		logo,               // 11
		r.email.ReplyTo,    // 12
		r.event.ContactTel, // 13
	)
}

// ConfirmationText renders the plain-text confirmation body.
func (r *Renderer) ConfirmationText(attendee models.Attendee, registrationID string, totalAttendees int, additionalAttendees []models.Attendee, isPrimary bool) string {
	additionalInfo := ""
	if totalAttendees > 1 {
		if isPrimary {
			var others []string
			for _, a := range additionalAttendees {
				others = append(others, fmt.Sprintf("- %s (%s)", a.Name, a.Email))
			}
			additionalInfo = fmt.Sprintf("\n\nOTHER ATTENDEES (%d):\n%s", len(additionalAttendees), strings.Join(others, "\n"))
		} else {
			additionalInfo = fmt.Sprintf("\n\nGROUP REGISTRATION:\nYou are part of a group registration with %d total attendees.", totalAttendees)
		}
	}

	return strings.TrimSpace(fmt.Sprintf(`
REGISTRATION CONFIRMED - %[1]s
========================================

Hello %[2]s!

Your registration for the %[1]s has been confirmed.
We're excited to have you join us for this premium experience!

REGISTRATION DETAILS:
========================================
Registration ID: %[3]s
Total Attendees: %[4]d
Your Email: %[5]s%[6]s

EVENT INFORMATION:
========================================
Date: %[7]s
Time: %[8]s
Location: %[9]s
Address: %[10]s

ADD TO CALENDAR:
========================================
Google Calendar: %[11]s

CONTACT INFORMATION:
========================================
Email: %[12]s
Phone: %[13]s

---
(c) 2025 Dexabrain. All rights reserved.
This email was sent because you registered for our premium event.`,
		r.event.Name,       // 1
		attendee.Name,      // 2
		registrationID,     // 3
		totalAttendees,     // 4
		attendee.Email,     // 5
		additionalInfo,     // 6
		r.event.Date,       // 7
		r.event.Time,       // 8
		r.event.Location,   // 9
		r.event.Address,    // 10
		r.calendarLink(),   // 11
		r.email.ReplyTo,    // 12
		r.event.ContactTel, // 13
	))
}

// AdminNotification renders the new-registration notice sent to the
// configured admin address: full attendee list, consent flag, referral
// code and event metadata.
func (r *Renderer) AdminNotification(primary models.Attendee, additional []models.Attendee, referralCode string, consentGiven bool, registrationID string, totalAttendees int, now time.Time) (subject, html, text string) {
	lines := []string{fmt.Sprintf("• %s (%s) - %s", primary.Name, primary.Email, primary.Phone)}
	for _, a := range additional {
		lines = append(lines, fmt.Sprintf("• %s (%s) - %s", a.Name, a.Email, a.Phone))
	}
	attendeeList := strings.Join(lines, "\n")

	referralInfo := ""
	referralHTML := ""
	if referralCode != "" {
		referralInfo = "\nReferral Code: " + referralCode
		referralHTML = "<p><strong>Referral Code:</strong> " + referralCode + "</p>"
	}
	consent := "No"
	if consentGiven {
		consent = "Yes"
	}

	subject = fmt.Sprintf("🎯 New Registration: %s - %s", primary.Name, registrationID)

	html = fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f8f9fa;">
  <div style="background: white; padding: 30px; border-radius: 10px; border-left: 5px solid #1DE9B6;">
    <h2 style="color: #2A72C4; margin-top: 0;">New Event Registration</h2>
    <div style="background: #f8f9fa; padding: 20px; border-radius: 8px; margin: 20px 0;">
      <h3 style="color: #333; margin-top: 0;">Registration Details</h3>
      <p><strong>Registration ID:</strong> %s</p>
      <p><strong>Registration Time:</strong> %s</p>
      <p><strong>Total Attendees:</strong> %d</p>
      <p><strong>Consent Given:</strong> %s</p>
      %s
    </div>
    <div style="background: #e8f5e8; padding: 20px; border-radius: 8px; margin: 20px 0;">
      <h3 style="color: #333; margin-top: 0;">Attendee Information</h3>
      <div style="font-family: monospace; font-size: 14px; line-height: 1.8;">%s</div>
    </div>
    <div style="background: #fff3cd; padding: 20px; border-radius: 8px; margin: 20px 0;">
      <h3 style="color: #333; margin-top: 0;">Event Information</h3>
      <p><strong>Event:</strong> %s</p>
      <p><strong>Date:</strong> %s</p>
      <p><strong>Time:</strong> %s</p>
      <p><strong>Location:</strong> %s</p>
    </div>
    <div style="text-align: center; margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee;">
      <p style="color: #666; font-size: 12px;">This notification was automatically generated by the %s</p>
    </div>
  </div>
</div>`,
		registrationID,
		now.Format("02/01/2006, 3:04:05 PM"),
		totalAttendees,
		consent,
		referralHTML,
		strings.ReplaceAll(attendeeList, "\n", "<br>"),
		r.event.Name,
		r.event.Date,
		r.event.Time,
		r.event.Location,
		r.email.SystemName,
	)

	text = strings.TrimSpace(fmt.Sprintf(`
NEW EVENT REGISTRATION NOTIFICATION
===================================

Registration ID: %s
Registration Time: %s
Total Attendees: %d
Consent Given: %s%s

ATTENDEE INFORMATION:
%s

EVENT INFORMATION:
Event: %s
Date: %s
Time: %s
Location: %s

---
This notification was automatically generated by the %s`,
		registrationID,
		now.Format("02/01/2006, 3:04:05 PM"),
		totalAttendees,
		consent,
		referralInfo,
		attendeeList,
		r.event.Name,
		r.event.Date,
		r.event.Time,
		r.event.Location,
		r.email.SystemName,
	))

	return subject, html, text
}
