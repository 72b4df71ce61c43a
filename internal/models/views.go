package models

import "github.com/google/uuid"

// ItemView is what a client is allowed to see of an item. Owners never learn
// whether something was gotten; share token holders learn whether it was
// gotten and whether by them, never by whom.
type ItemView struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	URL         string    `json:"url,omitempty"`
	Description string    `json:"description,omitempty"`
	Gotten      *bool     `json:"gotten,omitempty"`
	GottenByMe  *bool     `json:"gotten_by_me,omitempty"`
}

type WishlistView struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Username   string     `json:"username,omitempty"`
	Manage     bool       `json:"manage"`
	ShareToken string     `json:"share_token,omitempty"`
	Items      []ItemView `json:"items"`
}

func (i *WishlistItem) OwnerView() ItemView {
	return ItemView{
		ID:          i.ID,
		Name:        i.Name,
		URL:         i.URL,
		Description: i.Description,
	}
}

func (i *WishlistItem) ShareView(sessionID string) ItemView {
	v := i.OwnerView()
	gotten := i.Gotten
	byMe := i.HeldBy(sessionID)
	v.Gotten = &gotten
	v.GottenByMe = &byMe
	return v
}

// OwnerView includes the share token so the owner can pass the list on.
func (w *Wishlist) OwnerView() WishlistView {
	items := make([]ItemView, 0, len(w.Items))
	for i := range w.Items {
		items = append(items, w.Items[i].OwnerView())
	}
	return WishlistView{
		ID:         w.ID,
		Name:       w.Name,
		Username:   w.Username,
		Manage:     true,
		ShareToken: w.ShareToken,
		Items:      items,
	}
}

func (w *Wishlist) ShareView(sessionID string) WishlistView {
	items := make([]ItemView, 0, len(w.Items))
	for i := range w.Items {
		items = append(items, w.Items[i].ShareView(sessionID))
	}
	return WishlistView{
		ID:       w.ID,
		Name:     w.Name,
		Username: w.Username,
		Items:    items,
	}
}
