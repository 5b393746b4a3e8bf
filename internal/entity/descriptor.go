package entity

// AssetDescriptor is the off-chain JSON document referenced by an item's token URI.
type AssetDescriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
	ExternalUrl string `json:"external_url,omitempty"`
}

// Published identifies content stored in the content-addressed store.
type Published struct {
	ContentId string `json:"contentId"`
	Locator   string `json:"locator"`
}
