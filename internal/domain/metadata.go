package domain

// MetadataAttribute is one trait in the standard NFT metadata attribute list.
type MetadataAttribute struct {
	TraitType string `json:"trait_type" yaml:"trait_type"`
	Value     any    `json:"value" yaml:"value"`
}

// Metadata is the standard NFT metadata view of a token.
type Metadata struct {
	TokenID       string              `json:"token_id" yaml:"token_id"`
	Owner         string              `json:"owner" yaml:"owner"`
	Name          string              `json:"name" yaml:"name"`
	Description   string              `json:"description" yaml:"description"`
	Image         string              `json:"image" yaml:"image"`
	Attributes    []MetadataAttribute `json:"attributes" yaml:"attributes"`
	CreatedAt     int64               `json:"created_at" yaml:"created_at"`
	LastUpdated   int64               `json:"last_updated" yaml:"last_updated"`
	CreationPrice int64               `json:"creation_price" yaml:"creation_price"`
	UpdateCount   int                 `json:"update_count" yaml:"update_count"`
}
