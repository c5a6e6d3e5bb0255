package catalog

import "fmt"

// ProductView is the outward shape of a product, with money pre-formatted.
type ProductView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	InStock     bool   `json:"in_stock"`
}

// CartLine is one priced-out row of a cart summary.
type CartLine struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"line_total"`
}

// CartSummary is the outward shape of a user's cart.
type CartSummary struct {
	UserID     string     `json:"user_id"`
	Lines      []CartLine `json:"lines"`
	TotalCents int64      `json:"total_cents"`
	Total      string     `json:"total"`
}

// NewProductView shapes a product record for presentation.
func NewProductView(p Product) ProductView {
	return ProductView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       formatPrice(p.PriceCents, p.Currency),
		InStock:     p.Stock > 0,
	}
}

// NewCartSummary prices out the cart items for a user. All items are assumed
// to share one currency; mixed carts are out of scope here.
func NewCartSummary(userID string, items []CartItem) CartSummary {
	summary := CartSummary{UserID: userID, Lines: make([]CartLine, 0, len(items))}
	currency := ""
	if len(items) > 0 {
		currency = items[0].Currency
	}
	for _, item := range items {
		lineCents := item.UnitCents * int64(item.Quantity)
		summary.Lines = append(summary.Lines, CartLine{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			LineTotal: formatPrice(lineCents, currency),
		})
		summary.TotalCents += lineCents
	}
	summary.Total = formatPrice(summary.TotalCents, currency)
	return summary
}

func formatPrice(cents int64, currency string) string {
	if currency == "" {
		currency = "EUR"
	}
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s %s%d.%02d", currency, sign, cents/100, cents%100)
}
