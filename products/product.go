package products

import (
	"github.com/pkg/errors"
)

// ErrInvalidPayload is returned when serialized or imported products data is
// malformed.
var ErrInvalidPayload = errors.New("products: invalid payload")

// ErrNodeNotRegistered is returned by Plugin when the editor does not know
// the products node type.
var ErrNodeNotRegistered = errors.New("products: node not registered on editor")

// Product is a value object: one card of the embed.
type Product struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
	URL   string `json:"url"`
}

// Products is an ordered list of cards. Order is display order; ID is the
// rendering key.
type Products []Product

// Validate checks that every product has an ID and a name.
func Validate(ps Products) error {
	for i, p := range ps {
		if p.ID == "" {
			return errors.Wrapf(ErrInvalidPayload, "product %d: missing id", i)
		}
		if p.Name == "" {
			return errors.Wrapf(ErrInvalidPayload, "product %d (%s): missing name", i, p.ID)
		}
	}
	return nil
}

func (ps Products) clone() Products {
	if ps == nil {
		return nil
	}
	out := make(Products, len(ps))
	copy(out, ps)
	return out
}
