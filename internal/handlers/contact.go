package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Rehtse11/Essence-Luxe/internal/mail"
	"github.com/Rehtse11/Essence-Luxe/internal/models"
	"github.com/Rehtse11/Essence-Luxe/internal/store"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
)

type ContactHandler struct {
	Store        *store.Store
	Templates    *TemplateCache
	SessionStore *sessions.CookieStore
	Mailer       mail.Mailer
	SiteName     string
	AdminEmail   string
}

func (h *ContactHandler) Form(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, SessionName)
	data := baseData(session)
	data["CsrfField"] = csrf.TemplateField(r)
	data["Values"] = map[string]string{}
	data["Errors"] = map[string]string{}
	session.Save(r, w)
	render(w, h.Templates, "contact.html", data)
}

// Submit stores the message and sends two best-effort mails: a copy to the
// shop inbox and a confirmation to the sender.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, SessionName)

	if err := r.ParseForm(); err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Invalid form data."})
		session.Save(r, w)
		http.Redirect(w, r, "/contact", http.StatusSeeOther)
		return
	}

	values := map[string]string{
		"first_name": r.FormValue("first_name"),
		"last_name":  r.FormValue("last_name"),
		"email":      r.FormValue("email"),
		"subject":    r.FormValue("subject"),
		"message":    r.FormValue("message"),
	}

	fieldErrors := make(map[string]string)
	if values["first_name"] == "" {
		fieldErrors["first_name"] = "First name is required"
	}
	if values["last_name"] == "" {
		fieldErrors["last_name"] = "Last name is required"
	}
	if values["email"] == "" {
		fieldErrors["email"] = "Email is required"
	} else if !isValidEmail(values["email"]) {
		fieldErrors["email"] = "Invalid email format"
	}
	if values["subject"] == "" {
		fieldErrors["subject"] = "Subject is required"
	}
	if values["message"] == "" {
		fieldErrors["message"] = "Message is required"
	}

	if len(fieldErrors) > 0 {
		data := baseData(session)
		data["CsrfField"] = csrf.TemplateField(r)
		data["Values"] = values
		data["Errors"] = fieldErrors
		session.Save(r, w)
		render(w, h.Templates, "contact.html", data)
		return
	}

	msg := &models.ContactMessage{
		FirstName: values["first_name"],
		LastName:  values["last_name"],
		Email:     values["email"],
		Subject:   values["subject"],
		Message:   values["message"],
	}
	if err := h.Store.CreateContactMessage(msg); err != nil {
		slog.Error("Failed to store contact message", "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Failed to send message. Please try again."})
		session.Save(r, w)
		http.Redirect(w, r, "/contact", http.StatusSeeOther)
		return
	}

	mail.SendAsync(h.Mailer, h.AdminEmail, "New Contact Message: "+msg.Subject,
		"<h3>New Contact Message</h3>"+
			"<p><strong>From:</strong> "+msg.FirstName+" "+msg.LastName+" ("+msg.Email+")</p>"+
			"<p><strong>Subject:</strong> "+msg.Subject+"</p>"+
			"<p>"+msg.Message+"</p>")
	mail.SendAsync(h.Mailer, msg.Email, "We received your message - "+h.SiteName,
		"<h2>Thank you for contacting us!</h2>"+
			"<p>Dear "+msg.FirstName+",</p>"+
			"<p>We've received your message and one of our team members will get back to you within 24 hours.</p>"+
			"<p>Best regards,<br>"+h.SiteName+" Team</p>")

	session.AddFlash(FlashMessage{Type: "success", Message: "Message sent! We'll be in touch within 24 hours."})
	session.Save(r, w)
	http.Redirect(w, r, "/contact", http.StatusSeeOther)
}
