package models

import "time"

// Prize represents a single segment of the wheel.
// Icon, Color, ColorEnd and Image are presentation data passed through to the
// widget untouched; the engine never reads them.
type Prize struct {
	ID        string `json:"id" yaml:"id"`
	Label     string `json:"label" yaml:"label"`
	Icon      string `json:"icon" yaml:"icon"`
	Color     string `json:"color" yaml:"color"`
	ColorEnd  string `json:"colorEnd" yaml:"color_end"`
	Image     string `json:"image,omitempty" yaml:"image,omitempty"`
	IsWin     bool   `json:"isWin" yaml:"is_win"`     // true: landing consumes stock; false: unlimited "try again"
	Quantity  int    `json:"quantity" yaml:"quantity"` // remaining stock, never negative
	IsSpecial bool   `json:"isSpecial,omitempty" yaml:"is_special,omitempty"`
}

// SpinRecord stores the outcome of a single finalized spin,
// linking the spin to the prize it landed on.
type SpinRecord struct {
	SpinID     string    `json:"spinId"`
	PrizeID    string    `json:"prizeId"`
	Label      string    `json:"label"`
	IsWin      bool      `json:"isWin"`
	IsSpecial  bool      `json:"isSpecial"`
	Rotation   float64   `json:"rotation"`
	FinishedAt time.Time `json:"finishedAt"`
}
