package graphstream

// RecommendationKind identifies which recommendation payload fired.
type RecommendationKind string

const (
	// RecommendationProduct is a retail product recommendation set
	RecommendationProduct RecommendationKind = "product"

	// RecommendationMenu is a restaurant menu recommendation set
	RecommendationMenu RecommendationKind = "menu"
)

// String returns the string representation of the recommendation kind
func (k RecommendationKind) String() string {
	return string(k)
}

// Item is the base shape shared by all recommended records.
type Item struct {
	Name        string   `json:"name"`
	Price       string   `json:"price"`
	Description string   `json:"description"`
	Reason      string   `json:"reason"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
}

// Product is a retail item with purchase links.
type Product struct {
	Item

	SKU        string `json:"sku"`
	ImageURL   string `json:"image_url"`
	ProductURL string `json:"product_url"`
	CartURL    string `json:"cart_url"`
}

// MenuItem is a restaurant item with a display icon.
type MenuItem struct {
	Item

	Icon string `json:"icon"`
}

// Recommendations is the closed set of recommendation payloads surfaced
// at chain completion. Implemented by ProductRecommendations and
// MenuRecommendations.
type Recommendations interface {
	// Kind discriminates the payload subtype
	Kind() RecommendationKind
}

// ProductRecommendations holds the ordered product set produced by the
// "generate" step, plus the query that originated it.
type ProductRecommendations struct {
	Recommendations []Product `json:"recommendations"`
	Query           string    `json:"query"`
}

// Kind implements Recommendations
func (*ProductRecommendations) Kind() RecommendationKind {
	return RecommendationProduct
}

// MenuRecommendations holds the ordered menu-item set produced by the
// "generate" step, plus the query that originated it.
type MenuRecommendations struct {
	Recommendations []MenuItem `json:"recommendations"`
	Query           string     `json:"query"`
}

// Kind implements Recommendations
func (*MenuRecommendations) Kind() RecommendationKind {
	return RecommendationMenu
}

// ChainOutput is the decoded output payload of a chain-end event for the
// "generate" step. Both payloads may be present on the same event and are
// surfaced independently, product first.
type ChainOutput struct {
	ProductRecommendations *ProductRecommendations `json:"product_recommendations,omitempty"`
	MenuRecommendations    *MenuRecommendations    `json:"menu_recommendations,omitempty"`
}
