package models

// ShipmentInfo regroupe les identifiants renvoyés par l'agrégateur de transport.
type ShipmentInfo struct {
	ProviderOrderID int64  `json:"provider_order_id,omitempty"`
	ShipmentID      int64  `json:"shipment_id,omitempty"`
	AWBCode         string `json:"awb_code,omitempty"`
	CourierName     string `json:"courier_name,omitempty"`
	TrackingURL     string `json:"tracking_url,omitempty"`
}

func (s ShipmentInfo) Submitted() bool {
	return s.ShipmentID != 0
}
