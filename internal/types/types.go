// README: Shared identifiers and geo point.
package types

type ID string

func (id ID) String() string { return string(id) }

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
