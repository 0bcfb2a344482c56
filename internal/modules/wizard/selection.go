// README: Resolves identifier-based configuration requests into priced selections.
package wizard

import (
	"fmt"

	"github.com/npsfilm/spaceseller-36983-sub001/internal/modules/pricing"
)

// ResolveSelection builds the selection variant for category from the static catalogs.
func ResolveSelection(category pricing.Category, req ConfigureRequest) (pricing.Selection, error) {
	switch category {
	case pricing.CategoryPhotography:
		sel := pricing.Photography{Units: req.Units}
		if req.PackageID != "" {
			pkg, ok := pricing.PackageByID(req.PackageID)
			if !ok {
				return nil, fmt.Errorf("%w: package %q", ErrUnknownItem, req.PackageID)
			}
			sel.Package = &pkg
		}
		for _, id := range req.AddOnIDs {
			a, ok := pricing.AddOnByID(id)
			if !ok {
				return nil, fmt.Errorf("%w: add-on %q", ErrUnknownItem, id)
			}
			sel.AddOns = append(sel.AddOns, a)
		}
		return sel, nil
	case pricing.CategoryPhotoEditing:
		sel := pricing.PhotoEditing{Photos: req.Photos, UnitPrice: pricing.EditingUnitPrice}
		for _, id := range req.OptionIDs {
			o, ok := pricing.EditingOptionByID(id)
			if !ok {
				return nil, fmt.Errorf("%w: editing option %q", ErrUnknownItem, id)
			}
			sel.Options = append(sel.Options, o)
		}
		return sel, nil
	case pricing.CategoryVirtualStaging:
		return pricing.VirtualStaging{Rooms: req.Rooms, RoomPrice: pricing.StagingRoomPrice, Variations: req.Variations}, nil
	case pricing.CategoryEnergyCertificate:
		var sel pricing.EnergyCertificate
		for _, id := range req.CertificateIDs {
			sku, ok := pricing.CertificateByID(id)
			if !ok {
				return nil, fmt.Errorf("%w: certificate %q", ErrUnknownItem, id)
			}
			sel.SKUs = append(sel.SKUs, sku)
		}
		return sel, nil
	default:
		return nil, ErrNoCategory
	}
}
