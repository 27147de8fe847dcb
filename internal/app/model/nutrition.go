package model

// FDCPayload mirrors the slice of a FoodData Central search response the
// storefront inspects. The full payload is cached and served untouched; this
// shape exists only to check that a response actually contains food data.
type FDCPayload struct {
	Foods []FDCFood `json:"foods"`
}

type FDCFood struct {
	Description   string        `json:"description,omitempty"`
	FoodNutrients []FDCNutrient `json:"foodNutrients"`
}

type FDCNutrient struct {
	NutrientID   int     `json:"nutrientId,omitempty"`
	NutrientName string  `json:"nutrientName,omitempty"`
	Value        float64 `json:"value"`
	UnitName     string  `json:"unitName,omitempty"`
}
