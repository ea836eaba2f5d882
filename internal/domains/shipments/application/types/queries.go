package types

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListShipmentsInput enumerates the only recognized list filters. Zero values mean "unset".
type ListShipmentsInput struct {
	Statuses     []string
	EnterpriseID string
	LogisticsID  string
	Page         int
	Limit        int
}

// ShipmentPage is one page of a listing plus the total number of matches.
type ShipmentPage struct {
	Items []*ShipmentProjection
	Page  int
	Limit int
	Total int64
}
