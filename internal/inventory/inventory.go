// Package inventory holds the pure operations over a prize list: the active
// subset, the sold-out check, win decrements, admin edits and reconciliation of
// persisted data against the canonical defaults.
//
// Every function treats its input as immutable and returns a fresh slice.
package inventory

import (
	"errors"
	"fmt"

	"prizewheel/internal/models"
)

var (
	ErrPrizeNotFound   = errors.New("prize not found")
	ErrDuplicateID     = errors.New("duplicate prize id")
	ErrEmptyID         = errors.New("prize id is empty")
	ErrNegativeStock   = errors.New("prize quantity is negative")
	ErrMultipleSpecial = errors.New("more than one special prize")
)

// Active returns the prizes that still have stock, preserving their order.
func Active(all []models.Prize) []models.Prize {
	active := make([]models.Prize, 0, len(all))
	for _, p := range all {
		if p.Quantity > 0 {
			active = append(active, p)
		}
	}
	return active
}

// IsSoldOut reports whether every winning prize is out of stock.
// A list without any winning prize is sold out.
func IsSoldOut(all []models.Prize) bool {
	for _, p := range all {
		if p.IsWin && p.Quantity != 0 {
			return false
		}
	}
	return true
}

// ApplyWin decrements the stock of the winning prize. Non-winning outcomes and
// prizes already at zero leave the list unchanged.
func ApplyWin(all []models.Prize, winnerID string) []models.Prize {
	out := clone(all)
	for i := range out {
		if out[i].ID != winnerID {
			continue
		}
		if out[i].IsWin && out[i].Quantity > 0 {
			out[i].Quantity = max(0, out[i].Quantity-1)
		}
		break
	}
	return out
}

// SetQuantity sets the stock of a prize, clamping at zero.
func SetQuantity(all []models.Prize, id string, quantity int) ([]models.Prize, error) {
	return update(all, id, func(p *models.Prize) {
		p.Quantity = max(0, quantity)
	})
}

// AdjustQuantity adds delta to the stock of a prize, clamping at zero.
func AdjustQuantity(all []models.Prize, id string, delta int) ([]models.Prize, error) {
	return update(all, id, func(p *models.Prize) {
		p.Quantity = max(0, p.Quantity+delta)
	})
}

func Rename(all []models.Prize, id, label string) ([]models.Prize, error) {
	return update(all, id, func(p *models.Prize) {
		p.Label = label
	})
}

func SetImage(all []models.Prize, id, image string) ([]models.Prize, error) {
	return update(all, id, func(p *models.Prize) {
		p.Image = image
	})
}

// Restyle replaces the non-empty parts of a prize's icon and colour pair.
func Restyle(all []models.Prize, id, icon, color, colorEnd string) ([]models.Prize, error) {
	return update(all, id, func(p *models.Prize) {
		if icon != "" {
			p.Icon = icon
		}
		if color != "" {
			p.Color = color
		}
		if colorEnd != "" {
			p.ColorEnd = colorEnd
		}
	})
}

func SetWin(all []models.Prize, id string, isWin bool) ([]models.Prize, error) {
	return update(all, id, func(p *models.Prize) {
		p.IsWin = isWin
	})
}

// SetSpecial marks one prize as special and clears the flag everywhere else.
// Passing special=false only clears the flag on the given prize.
func SetSpecial(all []models.Prize, id string, special bool) ([]models.Prize, error) {
	if indexOf(all, id) < 0 {
		return nil, fmt.Errorf("%w: %s", ErrPrizeNotFound, id)
	}
	out := clone(all)
	for i := range out {
		switch {
		case out[i].ID == id:
			out[i].IsSpecial = special
		case special:
			out[i].IsSpecial = false
		}
	}
	return out, nil
}

// Add appends a prize at the end of the list.
func Add(all []models.Prize, p models.Prize) ([]models.Prize, error) {
	out := append(clone(all), p)
	if err := Validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Remove drops a prize from the list.
func Remove(all []models.Prize, id string) ([]models.Prize, error) {
	i := indexOf(all, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrPrizeNotFound, id)
	}
	out := make([]models.Prize, 0, len(all)-1)
	out = append(out, all[:i]...)
	return append(out, all[i+1:]...), nil
}

// Validate checks the invariants a written prize list must hold.
func Validate(all []models.Prize) error {
	seen := make(map[string]struct{}, len(all))
	special := 0
	for _, p := range all {
		if p.ID == "" {
			return ErrEmptyID
		}
		if _, ok := seen[p.ID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateID, p.ID)
		}
		seen[p.ID] = struct{}{}
		if p.Quantity < 0 {
			return fmt.Errorf("%w: %s", ErrNegativeStock, p.ID)
		}
		if p.IsSpecial {
			special++
		}
	}
	if special > 1 {
		return ErrMultipleSpecial
	}
	return nil
}

func update(all []models.Prize, id string, fn func(p *models.Prize)) ([]models.Prize, error) {
	i := indexOf(all, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrPrizeNotFound, id)
	}
	out := clone(all)
	fn(&out[i])
	return out, nil
}

func indexOf(all []models.Prize, id string) int {
	for i, p := range all {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func clone(all []models.Prize) []models.Prize {
	out := make([]models.Prize, len(all))
	copy(out, all)
	return out
}
