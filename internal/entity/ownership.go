package entity

// OwnershipView is a snapshot of the items held by one account, partitioned by listing state.
type OwnershipView struct {
	Account  string       `json:"account"`
	Owned    []MarketItem `json:"owned"`
	Listed   []MarketItem `json:"listed"`
	Unlisted []MarketItem `json:"unlisted"`
}

func NewOwnershipView(account string, owned []MarketItem) OwnershipView {
	view := OwnershipView{
		Account:  account,
		Owned:    make([]MarketItem, 0, len(owned)),
		Listed:   make([]MarketItem, 0),
		Unlisted: make([]MarketItem, 0),
	}

	for _, item := range owned {
		view.Owned = append(view.Owned, item)
		if item.IsListed {
			view.Listed = append(view.Listed, item)
		} else {
			view.Unlisted = append(view.Unlisted, item)
		}
	}

	return view
}

func (v OwnershipView) Find(tokenId uint64) (MarketItem, bool) {
	for _, item := range v.Owned {
		if item.TokenId == tokenId {
			return item, true
		}
	}

	return MarketItem{}, false
}

func (v OwnershipView) IsListed(tokenId uint64) bool {
	return contains(v.Listed, tokenId)
}

func (v OwnershipView) IsUnlisted(tokenId uint64) bool {
	return contains(v.Unlisted, tokenId)
}

func contains(items []MarketItem, tokenId uint64) bool {
	for _, item := range items {
		if item.TokenId == tokenId {
			return true
		}
	}

	return false
}
