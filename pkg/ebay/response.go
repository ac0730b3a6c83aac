package ebay

import (
	"strconv"
	"strings"
)

// Finding API XML response shapes. The service namespaces every element;
// encoding/xml matches on local names, so no namespace handling is needed.

type findItemsResponse struct {
	Ack          string       `xml:"ack"`
	ErrorMessage errorMessage `xml:"errorMessage"`
	SearchResult searchResult `xml:"searchResult"`
}

type errorMessage struct {
	Errors []apiError `xml:"error"`
}

type apiError struct {
	Message string `xml:"message"`
}

type searchResult struct {
	Items []xmlItem `xml:"item"`
}

type xmlItem struct {
	ItemID        string `xml:"itemId"`
	Title         string `xml:"title"`
	ViewItemURL   string `xml:"viewItemURL"`
	GalleryURL    string `xml:"galleryURL"`
	SellingStatus struct {
		CurrentPrice xmlPrice `xml:"currentPrice"`
	} `xml:"sellingStatus"`
	ShippingInfo struct {
		ShippingServiceCost *xmlPrice `xml:"shippingServiceCost"`
	} `xml:"shippingInfo"`
	Condition struct {
		DisplayName string `xml:"conditionDisplayName"`
	} `xml:"condition"`
}

type xmlPrice struct {
	CurrencyID string `xml:"currencyId,attr"`
	Value      string `xml:",chardata"`
}

func (p xmlPrice) amount() float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(p.Value), 64)
	if err != nil {
		return 0
	}
	return v
}

func (r findItemsResponse) errorText() string {
	msgs := make([]string, 0, len(r.ErrorMessage.Errors))
	for _, e := range r.ErrorMessage.Errors {
		if e.Message != "" {
			msgs = append(msgs, e.Message)
		}
	}
	if len(msgs) == 0 {
		return "ack " + r.Ack
	}
	return strings.Join(msgs, "; ")
}

func (it xmlItem) toItem() Item {
	item := Item{
		ItemID:    it.ItemID,
		Title:     it.Title,
		Price:     it.SellingStatus.CurrentPrice.amount(),
		Currency:  it.SellingStatus.CurrentPrice.CurrencyID,
		URL:       it.ViewItemURL,
		ImageURL:  it.GalleryURL,
		Condition: it.Condition.DisplayName,
	}
	if it.ShippingInfo.ShippingServiceCost != nil {
		item.ShippingCost = it.ShippingInfo.ShippingServiceCost.amount()
	}
	if item.Currency == "" {
		item.Currency = "USD"
	}
	return item
}
