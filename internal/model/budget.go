package model

// Budget is the root entity; it transitively owns every other entity.
type Budget struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
}
