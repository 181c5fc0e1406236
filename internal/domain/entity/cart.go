package entity

import "time"

type CartItem struct {
	ProductID  string  `json:"product_id" firestore:"productId" validate:"required"`
	Title      string  `json:"title" firestore:"title"`
	UnitPrice  float64 `json:"unit_price" firestore:"unitPrice" validate:"gt=0"`
	Quantity   int     `json:"quantity" firestore:"quantity" validate:"gte=1"`
	ImageRef   string  `json:"image_ref,omitempty" firestore:"imageRef,omitempty"`
	VendorID   string  `json:"vendor_id" firestore:"vendorId" validate:"required"`
	VendorName string  `json:"vendor_name" firestore:"vendorName"`
	MaxStock   int     `json:"max_stock" firestore:"maxStock" validate:"gte=1"`
}

func (i CartItem) Subtotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}

// Cart is the line-item list for one owner. Every mutation keeps at most
// one line per ProductID and every quantity within [1, MaxStock].
type Cart struct {
	OwnerID   string     `json:"owner_id" firestore:"ownerId" validate:"required"`
	Items     []CartItem `json:"items" firestore:"items" validate:"dive"`
	UpdatedAt time.Time  `json:"updated_at" firestore:"updatedAt"`
}

func NewCart(ownerID string, items []CartItem) *Cart {
	c := &Cart{OwnerID: ownerID, Items: []CartItem{}}
	for _, item := range items {
		c.put(item)
	}
	return c
}

// AddItem increments an existing line by one (no-op at MaxStock) or
// appends the item with quantity 1.
func (c *Cart) AddItem(item CartItem) {
	if idx := c.indexOf(item.ProductID); idx >= 0 {
		if c.Items[idx].Quantity < c.Items[idx].MaxStock {
			c.Items[idx].Quantity++
		}
		return
	}
	if item.MaxStock < 1 {
		return
	}
	item.Quantity = 1
	c.Items = append(c.Items, item)
}

// UpdateQuantity removes the line when qty <= 0, otherwise sets it to
// min(qty, MaxStock). Unknown products are ignored.
func (c *Cart) UpdateQuantity(productID string, qty int) {
	idx := c.indexOf(productID)
	if idx < 0 {
		return
	}
	if qty <= 0 {
		c.RemoveItem(productID)
		return
	}
	if qty > c.Items[idx].MaxStock {
		qty = c.Items[idx].MaxStock
	}
	c.Items[idx].Quantity = qty
}

func (c *Cart) RemoveItem(productID string) {
	idx := c.indexOf(productID)
	if idx < 0 {
		return
	}
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
}

func (c *Cart) Clear() {
	c.Items = []CartItem{}
}

// Merge appends the guest lines whose product is not already in the cart.
// Lines already present keep their own quantity; quantities are never summed.
func (c *Cart) Merge(guest []CartItem) {
	for _, item := range guest {
		if c.indexOf(item.ProductID) >= 0 {
			continue
		}
		c.put(item)
	}
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) Total() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.Subtotal()
	}
	return total
}

// Snapshot returns a copy of the lines safe to hand to other goroutines.
func (c *Cart) Snapshot() []CartItem {
	items := make([]CartItem, len(c.Items))
	copy(items, c.Items)
	return items
}

// VendorGroup is the set of cart lines sold by one vendor.
type VendorGroup struct {
	VendorID   string
	VendorName string
	Items      []CartItem
}

func (g VendorGroup) Total() float64 {
	var total float64
	for _, item := range g.Items {
		total += item.Subtotal()
	}
	return total
}

// GroupByVendor partitions the lines by VendorID, in order of first appearance.
func (c *Cart) GroupByVendor() []VendorGroup {
	var groups []VendorGroup
	index := make(map[string]int)
	for _, item := range c.Items {
		idx, ok := index[item.VendorID]
		if !ok {
			idx = len(groups)
			index[item.VendorID] = idx
			groups = append(groups, VendorGroup{VendorID: item.VendorID, VendorName: item.VendorName})
		}
		groups[idx].Items = append(groups[idx].Items, item)
	}
	return groups
}

// put inserts a stored line, normalising its quantity into range. Lines for
// a product already present are dropped.
func (c *Cart) put(item CartItem) {
	if item.ProductID == "" || item.MaxStock < 1 || c.indexOf(item.ProductID) >= 0 {
		return
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	if item.Quantity > item.MaxStock {
		item.Quantity = item.MaxStock
	}
	c.Items = append(c.Items, item)
}

func (c *Cart) indexOf(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}
