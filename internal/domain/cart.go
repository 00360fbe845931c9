package domain

import (
	"errors"
	"time"
)

var ErrInvalidQuantity = errors.New("quantity must be positive")

// CartLine is one entry in a cart. UnitPrice is the price the client last saw;
// it is used for display totals only and never for charging.
type CartLine struct {
	VariantID        string    `json:"variant_id" bson:"variant_id"`
	ProductSlug      string    `json:"product_slug" bson:"product_slug"`
	Name             string    `json:"name" bson:"name"`
	UnitPrice        int64     `json:"unit_price" bson:"unit_price"`
	ImageURL         string    `json:"image_url,omitempty" bson:"image_url,omitempty"`
	Quantity         int       `json:"quantity" bson:"quantity"`
	SelectedSize     string    `json:"selected_size,omitempty" bson:"selected_size,omitempty"`
	SelectedMaterial string    `json:"selected_material,omitempty" bson:"selected_material,omitempty"`
	AddedAt          time.Time `json:"added_at" bson:"added_at"`
}

// LineKey identifies a cart line. Size and material are part of the key:
// the same variant in two sizes is two lines.
type LineKey struct {
	VariantID string
	Size      string
	Material  string
}

func (l CartLine) Key() LineKey {
	return LineKey{VariantID: l.VariantID, Size: l.SelectedSize, Material: l.SelectedMaterial}
}

type Cart struct {
	CartID    string     `json:"cart_id" bson:"cart_id"`
	Lines     []CartLine `json:"lines" bson:"lines"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
}

// AddLine merges the line into the cart. A line whose key already exists has
// its quantity incremented; otherwise the line is appended, preserving
// insertion order.
func (c *Cart) AddLine(line CartLine) error {
	if line.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	key := line.Key()
	for i := range c.Lines {
		if c.Lines[i].Key() == key {
			c.Lines[i].Quantity += line.Quantity
			return nil
		}
	}
	c.Lines = append(c.Lines, line)
	return nil
}

// RemoveLine deletes the line matching the key. No-op if absent.
func (c *Cart) RemoveLine(variantID, size, material string) {
	key := LineKey{VariantID: variantID, Size: size, Material: material}
	for i := range c.Lines {
		if c.Lines[i].Key() == key {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

// UpdateQuantity sets the quantity on the matching line. A quantity of zero
// or less removes the line. No-op if absent.
func (c *Cart) UpdateQuantity(variantID string, quantity int, size, material string) {
	if quantity <= 0 {
		c.RemoveLine(variantID, size, material)
		return
	}
	key := LineKey{VariantID: variantID, Size: size, Material: material}
	for i := range c.Lines {
		if c.Lines[i].Key() == key {
			c.Lines[i].Quantity = quantity
			return
		}
	}
}

func (c *Cart) Clear() {
	c.Lines = nil
}

// Total is the display total: sum of advisory unit price times quantity.
func (c *Cart) Total() int64 {
	var total int64
	for _, l := range c.Lines {
		total += l.UnitPrice * int64(l.Quantity)
	}
	return total
}

// Count is the sum of quantities across all lines.
func (c *Cart) Count() int {
	var count int
	for _, l := range c.Lines {
		count += l.Quantity
	}
	return count
}
