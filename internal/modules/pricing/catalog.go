// README: Static catalogs the wizard selects from by identifier.
package pricing

import "github.com/shopspring/decimal"

const (
	EditingServiceID = "photo_editing"
	StagingServiceID = "virtual_staging"
)

var (
	EditingUnitPrice = decimal.NewFromInt(10)
	StagingRoomPrice = decimal.NewFromInt(50)
)

var packages = []Package{
	{ID: "photo-basic", Name: "Basic", Type: "photography", Unit: "shoot", PhotoCount: 10, Tier: "basic", Price: decimal.NewFromInt(199)},
	{ID: "photo-standard", Name: "Standard", Type: "photography", Unit: "shoot", PhotoCount: 20, Tier: "standard", Price: decimal.NewFromInt(299)},
	{ID: "photo-premium", Name: "Premium", Type: "photography", Unit: "shoot", PhotoCount: 30, Tier: "premium", Price: decimal.NewFromInt(449)},
}

var addOns = []AddOn{
	{ID: "drone", Name: "Drone aerials", Price: decimal.NewFromInt(149)},
	{ID: "twilight", Name: "Twilight shots", Price: decimal.NewFromInt(99)},
	{ID: "video", Name: "Property video", Price: decimal.NewFromInt(249)},
	{ID: "express", Name: "24h express delivery", Price: decimal.NewFromInt(59)},
}

var editingOptions = []Item{
	{ID: "sky_replacement", Name: "Sky replacement", Price: decimal.NewFromInt(29)},
	{ID: "object_removal", Name: "Object removal", Price: decimal.NewFromInt(39)},
	{ID: "hdr_blend", Name: "HDR blending", Price: decimal.NewFromInt(19)},
}

var certificateSKUs = []Item{
	{ID: "consumption", Name: "Consumption-based energy certificate", Price: decimal.NewFromInt(99)},
	{ID: "demand", Name: "Demand-based energy certificate", Price: decimal.NewFromInt(249)},
}

func Packages() []Package { return append([]Package(nil), packages...) }

func PackageByID(id string) (Package, bool) {
	for _, p := range packages {
		if p.ID == id {
			return p, true
		}
	}
	return Package{}, false
}

func AddOnByID(id string) (AddOn, bool) {
	for _, a := range addOns {
		if a.ID == id {
			return a, true
		}
	}
	return AddOn{}, false
}

func EditingOptionByID(id string) (Item, bool) {
	return itemByID(editingOptions, id)
}

func CertificateByID(id string) (Item, bool) {
	return itemByID(certificateSKUs, id)
}

func itemByID(items []Item, id string) (Item, bool) {
	for _, it := range items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}
