package models

type Institution struct {
	Name         string  `json:"name"`
	Logo         *string `json:"logo"` // data URI, null when the aggregator has none
	PrimaryColor string  `json:"primaryColor"`
}
