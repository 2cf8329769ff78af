package types

// Place is one Nominatim search hit. Coordinates arrive as strings.
type Place struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// ReversePlace is a Nominatim reverse lookup result
type ReversePlace struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error,omitempty"`
}
