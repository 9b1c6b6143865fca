// api/schemas/product.go
package schemas

// ProductInfo is the structured extraction result for a product page.
// Every field is optional because extraction may partially fail;
// RawLLMResponse is always retained for diagnosis.
type ProductInfo struct {
	Name           *string `json:"name,omitempty"`
	Description    *string `json:"description,omitempty"`
	Price          *string `json:"price,omitempty"`
	Availability   *string `json:"availability,omitempty"`
	Brand          *string `json:"brand,omitempty"`
	Rating         *string `json:"rating,omitempty"`
	ImageURL       *string `json:"image_url,omitempty"`
	RawData        *string `json:"raw_data,omitempty"`
	RawLLMResponse *string `json:"raw_llm_response,omitempty"`
}
