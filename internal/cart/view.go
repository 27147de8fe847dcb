package cart

import (
	"strconv"

	"github.com/clockert/fram-backend/internal/app/model"
)

// emptyCartMessage is the placeholder shown instead of the item list.
const emptyCartMessage = "Your cart is empty"

// Row is one rendered cart line.
type Row struct {
	ProductID     model.ProductID `json:"id"`
	Name          string          `json:"name"`
	DisplayPrice  string          `json:"price"`
	Image         string          `json:"image"`
	Quantity      int             `json:"quantity"`
	Subtotal      float64         `json:"subtotal"`
	SubtotalLabel string          `json:"subtotal_label"`
}

// ViewData is a full render of the cart panel: display rows, totals and the
// formatted subtotal, or the empty placeholder.
type ViewData struct {
	Items         []Row   `json:"items"`
	Empty         bool    `json:"empty"`
	EmptyMessage  string  `json:"empty_message,omitempty"`
	TotalQuantity int     `json:"total_quantity"`
	Subtotal      float64 `json:"subtotal"`
	SubtotalLabel string  `json:"subtotal_label"`
}

// View renders ViewData from a Store's current state. It only reads; user
// intents (remove, quantity change) are dispatched into the Store by the
// controllers.
type View struct {
	store *Store
}

// NewView creates a View over a store.
func NewView(s *Store) *View {
	return &View{store: s}
}

// Render produces a complete ViewData from the store's current state. It is
// called afresh on every change notification; no incremental diffing at this
// scale.
func (v *View) Render() ViewData {
	lines := v.store.Items()

	data := ViewData{
		Items:         make([]Row, 0, len(lines)),
		TotalQuantity: 0,
	}

	for _, line := range lines {
		subtotal := line.UnitPrice * float64(line.Quantity)
		data.Items = append(data.Items, Row{
			ProductID:     line.ProductID,
			Name:          line.Name,
			DisplayPrice:  line.DisplayPrice,
			Image:         line.Image,
			Quantity:      line.Quantity,
			Subtotal:      subtotal,
			SubtotalLabel: FormatAmount(subtotal),
		})
		data.TotalQuantity += line.Quantity
		data.Subtotal += subtotal
	}

	data.SubtotalLabel = FormatAmount(data.Subtotal)
	if len(data.Items) == 0 {
		data.Empty = true
		data.EmptyMessage = emptyCartMessage
	}
	return data
}

// FormatAmount renders an amount the way the storefront displays prices,
// e.g. "120 kr".
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64) + " kr"
}
