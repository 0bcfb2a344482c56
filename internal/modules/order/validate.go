// README: Step validators; pure, so they can run on every change.
package order

import "strings"

const (
	msgStreetRequired      = "Street is required"
	msgHouseNumberRequired = "House number is required"
	msgPostalCodeRequired  = "Postal code is required"
	msgCityRequired        = "City is required"
	msgLocationNotChecked  = "Please validate the location"
	msgCategoryRequired    = "Please select a service category"
	msgSelectionRequired   = "Please select a package or at least one service"
)

// ValidateLocationStep reports every missing field at once.
func ValidateLocationStep(d Draft) []string {
	var errs []string
	if blank(d.Address.Street) {
		errs = append(errs, msgStreetRequired)
	}
	if blank(d.Address.HouseNumber) {
		errs = append(errs, msgHouseNumberRequired)
	}
	if blank(d.Address.PostalCode) {
		errs = append(errs, msgPostalCodeRequired)
	}
	if blank(d.Address.City) {
		errs = append(errs, msgCityRequired)
	}
	if !d.locationValidated {
		errs = append(errs, msgLocationNotChecked)
	}
	return errs
}

func ValidateCategoryStep(d Draft) []string {
	if d.Category == "" {
		return []string{msgCategoryRequired}
	}
	return nil
}

func ValidateConfigurationStep(d Draft) []string {
	if d.Selection == nil || !d.Selection.HasBasis() {
		return []string{msgSelectionRequired}
	}
	return nil
}

// CanAdvanceFrom gates forward navigation. The review step has no forward gate; submission
// uses CanSubmit instead.
func CanAdvanceFrom(step Step, d Draft) bool {
	switch step {
	case StepLocation:
		return len(ValidateLocationStep(d)) == 0
	case StepConfiguration:
		return len(ValidateLocationStep(d)) == 0 && len(ValidateCategoryStep(d)) == 0
	default:
		return false
	}
}

// StepErrors returns the errors blocking an advance from step.
func StepErrors(step Step, d Draft) []string {
	switch step {
	case StepLocation:
		return ValidateLocationStep(d)
	case StepConfiguration:
		return append(ValidateLocationStep(d), ValidateCategoryStep(d)...)
	default:
		return nil
	}
}

func ValidateOrder(d Draft) []string {
	var errs []string
	errs = append(errs, ValidateLocationStep(d)...)
	errs = append(errs, ValidateCategoryStep(d)...)
	errs = append(errs, ValidateConfigurationStep(d)...)
	return errs
}

func CanSubmit(d Draft) bool {
	return len(ValidateOrder(d)) == 0
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Complete reports whether every field needed to geocode the address is present.
func (a Address) Complete() bool {
	return !blank(a.Street) && !blank(a.HouseNumber) && !blank(a.PostalCode) && !blank(a.City)
}

func (a Address) String() string {
	return strings.TrimSpace(a.Street+" "+a.HouseNumber) + ", " + strings.TrimSpace(a.PostalCode+" "+a.City) + ", Deutschland"
}
