package checkout

import "strings"

// Page identifies a storefront view the caller should show next.
type Page string

const (
	PageHome         Page = "home"
	PageCatalogue    Page = "catalogue"
	PageBouquet      Page = "bouquet"
	PageCart         Page = "cart"
	PageCheckout     Page = "checkout"
	PageConfirmation Page = "confirmation"
)

var pages = []Page{PageHome, PageCatalogue, PageBouquet, PageCart, PageCheckout, PageConfirmation}

func ParsePage(s string) (Page, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, p := range pages {
		if string(p) == s {
			return p, true
		}
	}
	return "", false
}

// Completion is told which page to show once an order is placed.
type Completion func(next Page, conf Confirmation)
