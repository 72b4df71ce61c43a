// Package mail builds the notification emails the service sends and
// delivers them over SMTP.
package mail

import (
	"bytes"
	"embed"
	"fmt"
	"net/url"
	"strings"
	"text/template"

	"wishlist/internal/models"
)

type Message struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

const (
	SubjectVerify = "New Wishlist: Verify your Email"
	SubjectManage = "Manage your wishlist!"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Composer renders messages whose links point at location.
type Composer struct {
	from     string
	location string
	title    string
}

func NewComposer(from, location, title string) *Composer {
	return &Composer{from: from, location: location, title: title}
}

// Link is the address at which a wishlist is opened with token.
func (c *Composer) Link(w *models.Wishlist, token string) (string, error) {
	link, err := url.JoinPath(c.location, w.ID.String())
	if err != nil {
		return "", fmt.Errorf("mail.Link: %w", err)
	}
	return link + "?token=" + url.QueryEscape(token), nil
}

type listLink struct {
	Name string
	URL  string
}

// Verify asks the owner to confirm the address by opening the manage link.
func (c *Composer) Verify(w *models.Wishlist) (Message, error) {
	link, err := c.Link(w, w.OwnerToken)
	if err != nil {
		return Message{}, err
	}

	body, err := c.render("verify.tmpl", map[string]any{
		"Title":    c.title,
		"Name":     w.Name,
		"Username": w.Username,
		"URL":      link,
	})
	if err != nil {
		return Message{}, err
	}

	return Message{From: c.from, To: w.Email, Subject: SubjectVerify, Body: body}, nil
}

// Share sends the share link to recipient, lower-cased and trimmed.
func (c *Composer) Share(w *models.Wishlist, recipient string) (Message, error) {
	link, err := c.Link(w, w.ShareToken)
	if err != nil {
		return Message{}, err
	}

	body, err := c.render("share.tmpl", map[string]any{
		"Title":    c.title,
		"Name":     w.Name,
		"Username": w.Username,
		"URL":      link,
	})
	if err != nil {
		return Message{}, err
	}

	return Message{
		From:    c.from,
		To:      CanonicalAddress(recipient),
		Subject: ShareSubject(w),
		Body:    body,
	}, nil
}

// Manage lists the manage links of every wishlist registered to address.
func (c *Composer) Manage(address string, lists []models.Wishlist) (Message, error) {
	links := make([]listLink, 0, len(lists))
	for i := range lists {
		link, err := c.Link(&lists[i], lists[i].OwnerToken)
		if err != nil {
			return Message{}, err
		}
		links = append(links, listLink{Name: lists[i].Name, URL: link})
	}

	body, err := c.render("manage.tmpl", map[string]any{
		"Title": c.title,
		"Lists": links,
	})
	if err != nil {
		return Message{}, err
	}

	return Message{From: c.from, To: address, Subject: SubjectManage, Body: body}, nil
}

func (c *Composer) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("mail.render %s: %w", name, err)
	}
	return buf.String(), nil
}

func ShareSubject(w *models.Wishlist) string {
	who := w.Username
	if who == "" {
		who = "Someone"
	}
	return who + " has shared a wishlist with you!"
}

// CanonicalAddress is the form used both as the recipient and as the rate
// limit key.
func CanonicalAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
