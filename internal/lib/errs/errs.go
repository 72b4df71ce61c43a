// Package errs holds the closed set of failures the wishlist core reports to
// its callers. Every failure carries a Kind; kinds form a shallow hierarchy so
// that, for example, an invalid email is also an invalid parameter.
package errs

import (
	"errors"
	"fmt"
)

type Kind uint8

const (
	KindUnknown Kind = iota
	KindMissingRequiredParameter
	KindInvalidParameter
	KindInvalidEmail
	KindInvalidToken
	KindInvalidManageToken
	KindInvalidShareToken
	KindUnverifiedWishlist
	KindWishlistNotFound
	KindItemNotFound
	KindReservationNotHeld
	KindRateLimitExceeded
	KindStorage
)

var kindNames = map[Kind]string{
	KindUnknown:                  "unknown",
	KindMissingRequiredParameter: "missing_required_parameter",
	KindInvalidParameter:         "invalid_parameter",
	KindInvalidEmail:             "invalid_email",
	KindInvalidToken:             "invalid_token",
	KindInvalidManageToken:       "invalid_manage_token",
	KindInvalidShareToken:        "invalid_share_token",
	KindUnverifiedWishlist:       "unverified_wishlist",
	KindWishlistNotFound:         "wishlist_not_found",
	KindItemNotFound:             "item_not_found",
	KindReservationNotHeld:       "reservation_not_held",
	KindRateLimitExceeded:        "rate_limit_exceeded",
	KindStorage:                  "storage_error",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Parent returns the broader kind k belongs to, or KindUnknown for roots.
func (k Kind) Parent() Kind {
	switch k {
	case KindInvalidEmail:
		return KindInvalidParameter
	case KindInvalidManageToken, KindInvalidShareToken:
		return KindInvalidToken
	default:
		return KindUnknown
	}
}

// Within reports whether k is parent or one of its descendants.
func (k Kind) Within(parent Kind) bool {
	for cur := k; cur != KindUnknown; cur = cur.Parent() {
		if cur == parent {
			return true
		}
	}
	return false
}

type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Detail != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	case e.Detail != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error when this error's kind falls within the target's
// kind. errors.Is(err, errs.ErrInvalidToken) therefore holds for manage and
// share token failures alike.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind.Within(t.Kind)
}

// Kind sentinels for errors.Is.
var (
	ErrMissingRequiredParameter = &Error{Kind: KindMissingRequiredParameter}
	ErrInvalidParameter         = &Error{Kind: KindInvalidParameter}
	ErrInvalidEmail             = &Error{Kind: KindInvalidEmail}
	ErrInvalidToken             = &Error{Kind: KindInvalidToken}
	ErrInvalidManageToken       = &Error{Kind: KindInvalidManageToken}
	ErrInvalidShareToken        = &Error{Kind: KindInvalidShareToken}
	ErrUnverifiedWishlist       = &Error{Kind: KindUnverifiedWishlist}
	ErrWishlistNotFound         = &Error{Kind: KindWishlistNotFound}
	ErrItemNotFound             = &Error{Kind: KindItemNotFound}
	ErrReservationNotHeld       = &Error{Kind: KindReservationNotHeld}
	ErrRateLimitExceeded        = &Error{Kind: KindRateLimitExceeded}
	ErrStorage                  = &Error{Kind: KindStorage}
)

func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

func Wrap(kind Kind, detail string, err error) *Error {
	return &Error{Kind: kind, Detail: detail, Err: err}
}

func MissingRequiredParameter(detail string) *Error {
	return New(KindMissingRequiredParameter, detail)
}

func InvalidParameter(detail string) *Error {
	return New(KindInvalidParameter, detail)
}

func InvalidEmail(detail string) *Error {
	return New(KindInvalidEmail, detail)
}

func Storage(err error) *Error {
	return Wrap(KindStorage, "storage failure", err)
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// DetailOf returns the human readable detail of the first *Error in err's
// chain, falling back to the kind name.
func DetailOf(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	if e.Detail != "" {
		return e.Detail
	}
	return e.Kind.String()
}
