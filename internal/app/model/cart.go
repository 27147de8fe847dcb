package model

import "encoding/json"

// ProductID keys cart lines. It is written to storage as a JSON string;
// carts written by earlier storefront revisions carried numeric ids, so both
// forms decode.
type ProductID string

func (id *ProductID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ProductID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ProductID(n.String())
	return nil
}

// CartProduct is the catalog data a product carries into the cart.
type CartProduct struct {
	ID           ProductID
	Name         string
	DisplayPrice string
	Image        string
}

// CartLine is one consolidated cart entry: at most one line exists per
// product id, carrying the summed quantity. UnitPrice is parsed from
// DisplayPrice when the line is created and not re-derived afterwards.
type CartLine struct {
	ProductID    ProductID `json:"id"`
	Name         string    `json:"name"`
	DisplayPrice string    `json:"price"`
	Image        string    `json:"image"`
	Quantity     int       `json:"quantity"`
	UnitPrice    float64   `json:"priceValue"`
}
