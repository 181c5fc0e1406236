package handler

import (
	"math"

	"vendora/internal/domain/entity"
)

type cartResponse struct {
	*entity.Cart
	ItemCount int     `json:"item_count"`
	Total     float64 `json:"total"`
}

func cartView(cart *entity.Cart) cartResponse {
	count := 0
	for _, item := range cart.Items {
		count += item.Quantity
	}
	return cartResponse{
		Cart:      cart,
		ItemCount: count,
		Total:     math.Round(cart.Total()*100) / 100,
	}
}
