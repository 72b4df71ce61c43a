package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"wishlist/internal/lib/errs"
	"wishlist/internal/lib/random"
	"wishlist/internal/lib/validator"
)

const DefaultWishlistName = "My Wishlist"

type Wishlist struct {
	ID            uuid.UUID
	Name          string
	Username      string
	Email         string
	EmailVerified bool
	OwnerToken    string
	ShareToken    string
	Items         []WishlistItem
}

type WishlistItem struct {
	ID          uuid.UUID
	WishlistID  uuid.UUID
	Name        string
	URL         string
	Description string
	Gotten      bool
	Getter      *string
}

type Session struct {
	ID        string
	IPAddress string
	Started   time.Time
}

type EmailRecord struct {
	Email           string
	SenderSessionID string
	SentTime        time.Time
}

type WishlistParams struct {
	ID            string
	Name          string
	Username      string
	Email         string
	EmailVerified bool
	OwnerToken    string
	ShareToken    string
}

type ItemParams struct {
	ID          string
	WishlistID  uuid.UUID
	Name        string
	URL         string
	Description string
}

// NewWishlist validates p and fills in the id and both tokens when they
// are not supplied.
func NewWishlist(p WishlistParams) (*Wishlist, error) {
	if p.Email == "" {
		return nil, errs.MissingRequiredParameter("Must supply an email address")
	}
	if !validator.IsEmail(p.Email) {
		return nil, errs.InvalidEmail("Invalid email address")
	}

	id, err := parseOrNewID(p.ID)
	if err != nil {
		return nil, err
	}

	name := validator.Normalize(p.Name)
	if name == "" {
		name = DefaultWishlistName
	}

	ownerToken, err := tokenOrNew(p.OwnerToken)
	if err != nil {
		return nil, err
	}
	shareToken, err := tokenOrNew(p.ShareToken)
	if err != nil {
		return nil, err
	}

	return &Wishlist{
		ID:            id,
		Name:          name,
		Username:      validator.Normalize(p.Username),
		Email:         p.Email,
		EmailVerified: p.EmailVerified,
		OwnerToken:    ownerToken,
		ShareToken:    shareToken,
	}, nil
}

func NewWishlistItem(p ItemParams) (*WishlistItem, error) {
	name := validator.Normalize(p.Name)
	if name == "" {
		return nil, errs.MissingRequiredParameter("Must supply an item name")
	}

	var itemURL string
	if p.URL != "" {
		normalized, err := validator.NormalizeURL(p.URL)
		if err != nil {
			return nil, err
		}
		itemURL = normalized
	}

	id, err := parseOrNewID(p.ID)
	if err != nil {
		return nil, err
	}

	return &WishlistItem{
		ID:          id,
		WishlistID:  p.WishlistID,
		Name:        name,
		URL:         itemURL,
		Description: validator.Normalize(p.Description),
	}, nil
}

func parseOrNewID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.New(), nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errs.InvalidParameter(fmt.Sprintf("Invalid id %q", raw))
	}
	return id, nil
}

func tokenOrNew(tok string) (string, error) {
	if tok != "" {
		return tok, nil
	}
	return random.Token()
}

// Item returns the item with the given id, or nil.
func (w *Wishlist) Item(id uuid.UUID) *WishlistItem {
	for i := range w.Items {
		if w.Items[i].ID == id {
			return &w.Items[i]
		}
	}
	return nil
}

// HeldBy reports whether sessionID holds the claim on the item.
func (i *WishlistItem) HeldBy(sessionID string) bool {
	return i.Gotten && i.Getter != nil && *i.Getter == sessionID
}

// Claim records sessionID as the getter, replacing any earlier claim.
func (i *WishlistItem) Claim(sessionID string) {
	s := sessionID
	i.Gotten = true
	i.Getter = &s
}

func (i *WishlistItem) Release() {
	i.Gotten = false
	i.Getter = nil
}
