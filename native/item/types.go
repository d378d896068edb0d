package item

// TokenMetadata describes a token id. The presence of metadata for an id
// marks it as a unique-owner item class tracked in the owners map.
type TokenMetadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Media       string `json:"media,omitempty"`
	Reference   string `json:"reference,omitempty"`
}
