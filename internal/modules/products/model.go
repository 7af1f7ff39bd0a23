package products

const Collection = "products"

// Categories is the fixed category set the storefront filters on.
var Categories = []string{"Tops", "Bottoms", "Outerwear", "Knitwear", "Accessories"}

// Product is one listing. Price is in whole currency units (no minor
// units). Tag and Stock are optional.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       int      `json:"price"`
	Image       string   `json:"image"`
	Gallery     []string `json:"gallery"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Tag         string   `json:"tag,omitempty"`
	Stock       *int     `json:"stock,omitempty"`
}

func (p Product) DocID() string { return p.ID }

func (p Product) WithID(id string) Product {
	p.ID = id
	return p
}

func ValidCategory(c string) bool {
	for _, known := range Categories {
		if known == c {
			return true
		}
	}
	return false
}
