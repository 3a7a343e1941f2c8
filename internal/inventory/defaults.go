package inventory

import "prizewheel/internal/models"

// Outcome describes what Reconcile did with persisted data.
type Outcome int

const (
	OutcomeKept Outcome = iota
	OutcomeBackfilled
	OutcomeReset
)

func (o Outcome) String() string {
	switch o {
	case OutcomeKept:
		return "kept"
	case OutcomeBackfilled:
		return "backfilled"
	case OutcomeReset:
		return "reset"
	}
	return "unknown"
}

var defaultPrizes = []models.Prize{
	{ID: "1", Label: "Teddy Bear", Icon: "🧸", Color: "#0054A6", ColorEnd: "#003D7A", IsWin: true, Quantity: 5},
	{ID: "2", Label: "Backpack", Icon: "🎒", Color: "#FFD700", ColorEnd: "#D4AF37", IsWin: true, Quantity: 5},
	{ID: "3", Label: "Try Again", Icon: "🔄", Color: "#E31837", ColorEnd: "#B91C3C", IsWin: false, Quantity: 999},
	{ID: "4", Label: "Water Bottle", Icon: "🍶", Color: "#0054A6", ColorEnd: "#003D7A", IsWin: true, Quantity: 5},
	{ID: "5", Label: "Helmet", Icon: "⛑️", Color: "#FFD700", ColorEnd: "#D4AF37", IsWin: true, Quantity: 3},
	{ID: "6", Label: "Good Luck", Icon: "🍀", Color: "#E31837", ColorEnd: "#B91C3C", IsWin: false, Quantity: 999},
	{ID: "7", Label: "Keychain", Icon: "🔑", Color: "#0054A6", ColorEnd: "#003D7A", IsWin: true, Quantity: 10},
	{ID: "8", Label: "T-Shirt", Icon: "👕", Color: "#FFD700", ColorEnd: "#D4AF37", IsWin: true, Quantity: 3},
}

// Defaults returns a fresh copy of the built-in prize list.
func Defaults() []models.Prize {
	return clone(defaultPrizes)
}

// Reconcile decides whether persisted prizes are still compatible with the
// canonical defaults. A different id set means the data was written for another
// prize layout and the defaults replace it entirely. With matching ids the
// persisted list wins, except that a missing image is copied from the default.
func Reconcile(persisted, defaults []models.Prize) ([]models.Prize, Outcome) {
	if !sameIDs(persisted, defaults) {
		return clone(defaults), OutcomeReset
	}

	images := make(map[string]string, len(defaults))
	for _, d := range defaults {
		if d.Image != "" {
			images[d.ID] = d.Image
		}
	}

	out := clone(persisted)
	outcome := OutcomeKept
	for i := range out {
		if out[i].Image != "" {
			continue
		}
		if img, ok := images[out[i].ID]; ok {
			out[i].Image = img
			outcome = OutcomeBackfilled
		}
	}
	return out, outcome
}

// sameIDs compares id sets ignoring order. A repeated id never matches.
func sameIDs(a, b []models.Prize) bool {
	if len(a) != len(b) {
		return false
	}
	ids := make(map[string]int, len(b))
	for _, p := range b {
		ids[p.ID]++
	}
	for _, p := range a {
		if ids[p.ID] == 0 {
			return false
		}
		ids[p.ID]--
	}
	return true
}
