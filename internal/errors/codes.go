package errors

// Error code constants, CATEGORY_SPECIFIC_DETAIL. The storefront maps these
// to user-facing messages.

const (
	// Validation
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"
	ValidationRequired     = "VALIDATION_REQUIRED"

	// Products
	ProductNotFound = "PRODUCT_NOT_FOUND"

	// Cart
	CartItemNotFound    = "CART_ITEM_NOT_FOUND"
	CartInvalidQuantity = "CART_INVALID_QUANTITY"
	CartInvalidProduct  = "CART_INVALID_PRODUCT"

	// Nutrition
	NutritionUnavailable = "NUTRITION_UNAVAILABLE"

	// Chat
	ChatNotConfigured  = "CHAT_NOT_CONFIGURED"
	ChatUpstreamFailed = "CHAT_UPSTREAM_FAILED"

	// Generic resources
	ResourceNotFound = "RESOURCE_NOT_FOUND"

	// Internal
	InternalServerError = "INTERNAL_SERVER_ERROR"
	InternalExternalAPI = "INTERNAL_EXTERNAL_API"
)
