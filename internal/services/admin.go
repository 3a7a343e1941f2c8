package services

import (
	"context"
	"fmt"

	"github.com/google/logger"
	"github.com/google/uuid"

	"prizewheel/internal/inventory"
	"prizewheel/internal/models"
)

// PrizeInput describes a prize to add. The ID is assigned by the service.
type PrizeInput struct {
	Label     string `json:"label"`
	Icon      string `json:"icon"`
	Color     string `json:"color"`
	ColorEnd  string `json:"colorEnd"`
	Image     string `json:"image"`
	IsWin     bool   `json:"isWin"`
	Quantity  int    `json:"quantity"`
	IsSpecial bool   `json:"isSpecial"`
}

// PrizePatch lists the fields to change on an existing prize; nil fields are
// left alone. QuantityDelta is applied after Quantity.
type PrizePatch struct {
	Label         *string `json:"label"`
	Icon          *string `json:"icon"`
	Color         *string `json:"color"`
	ColorEnd      *string `json:"colorEnd"`
	Image         *string `json:"image"`
	IsWin         *bool   `json:"isWin"`
	Quantity      *int    `json:"quantity"`
	QuantityDelta *int    `json:"quantityDelta"`
	IsSpecial     *bool   `json:"isSpecial"`
}

// Prizes returns the full prize list, sold-out entries included.
func (s *WheelService) Prizes() []models.Prize {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneList(s.prizes)
}

// ReplacePrizes overwrites the whole list, as the admin panel's save does.
func (s *WheelService) ReplacePrizes(ctx context.Context, prizes []models.Prize) error {
	if err := inventory.Validate(prizes); err != nil {
		return err
	}
	if err := s.checkSize(len(prizes)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.commit(ctx, cloneList(prizes))
	logger.Infof("prize list replaced: %d prizes", len(prizes))
	return nil
}

// AddPrizes appends prizes in order and returns them with their new ids.
// Nothing is added when the result would exceed the size bound.
func (s *WheelService) AddPrizes(ctx context.Context, inputs ...PrizeInput) ([]models.Prize, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkSize(len(s.prizes) + len(inputs)); err != nil {
		return nil, err
	}

	next := s.prizes
	added := make([]models.Prize, 0, len(inputs))
	for _, in := range inputs {
		p := models.Prize{
			ID:       uuid.NewString(),
			Label:    in.Label,
			Icon:     in.Icon,
			Color:    in.Color,
			ColorEnd: in.ColorEnd,
			Image:    in.Image,
			IsWin:    in.IsWin,
			Quantity: max(0, in.Quantity),
		}
		var err error
		if next, err = inventory.Add(next, p); err != nil {
			return nil, err
		}
		if in.IsSpecial {
			if next, err = inventory.SetSpecial(next, p.ID, true); err != nil {
				return nil, err
			}
			p.IsSpecial = true
		}
		added = append(added, p)
	}

	s.commit(ctx, next)
	logger.Infof("added %d prizes", len(added))
	return added, nil
}

// UpdatePrize applies a patch to one prize and returns the result.
func (s *WheelService) UpdatePrize(ctx context.Context, id string, patch PrizePatch) (models.Prize, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := applyPatch(s.prizes, id, patch)
	if err != nil {
		return models.Prize{}, err
	}
	s.commit(ctx, next)

	for _, p := range next {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Prize{}, fmt.Errorf("%w: %s", inventory.ErrPrizeNotFound, id)
}

func applyPatch(prizes []models.Prize, id string, patch PrizePatch) ([]models.Prize, error) {
	next := prizes
	var err error
	step := func(fn func() ([]models.Prize, error)) {
		if err == nil {
			next, err = fn()
		}
	}

	// Resolves ErrPrizeNotFound even for an empty patch.
	step(func() ([]models.Prize, error) { return inventory.AdjustQuantity(next, id, 0) })

	if patch.Label != nil {
		step(func() ([]models.Prize, error) { return inventory.Rename(next, id, *patch.Label) })
	}
	if patch.Icon != nil || patch.Color != nil || patch.ColorEnd != nil {
		step(func() ([]models.Prize, error) {
			return inventory.Restyle(next, id, deref(patch.Icon), deref(patch.Color), deref(patch.ColorEnd))
		})
	}
	if patch.Image != nil {
		step(func() ([]models.Prize, error) { return inventory.SetImage(next, id, *patch.Image) })
	}
	if patch.IsWin != nil {
		step(func() ([]models.Prize, error) { return inventory.SetWin(next, id, *patch.IsWin) })
	}
	if patch.Quantity != nil {
		step(func() ([]models.Prize, error) { return inventory.SetQuantity(next, id, *patch.Quantity) })
	}
	if patch.QuantityDelta != nil {
		step(func() ([]models.Prize, error) { return inventory.AdjustQuantity(next, id, *patch.QuantityDelta) })
	}
	if patch.IsSpecial != nil {
		step(func() ([]models.Prize, error) { return inventory.SetSpecial(next, id, *patch.IsSpecial) })
	}
	return next, err
}

// SetSpecial marks one prize special, clearing the flag on every other prize.
func (s *WheelService) SetSpecial(ctx context.Context, id string, special bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := inventory.SetSpecial(s.prizes, id, special)
	if err != nil {
		return err
	}
	s.commit(ctx, next)
	return nil
}

// RemovePrize deletes a prize unless the list would drop below the size bound.
func (s *WheelService) RemovePrize(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkSize(len(s.prizes) - 1); err != nil {
		return err
	}
	next, err := inventory.Remove(s.prizes, id)
	if err != nil {
		return err
	}
	s.commit(ctx, next)
	logger.Infof("removed prize %s", id)
	return nil
}

// ResetToDefaults discards every admin edit and all stock changes.
func (s *WheelService) ResetToDefaults(ctx context.Context) []models.Prize {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.commit(ctx, cloneList(s.defaults))
	logger.Info("prizes reset to defaults")
	return cloneList(s.prizes)
}

func (s *WheelService) commit(ctx context.Context, next []models.Prize) {
	s.prizes = next
	s.persist(ctx)
	s.observe()
}

func (s *WheelService) checkSize(n int) error {
	if s.opts.MinPrizes > 0 && n < s.opts.MinPrizes {
		return fmt.Errorf("%w: at least %d prizes required", ErrPrizeLimit, s.opts.MinPrizes)
	}
	if s.opts.MaxPrizes > 0 && n > s.opts.MaxPrizes {
		return fmt.Errorf("%w: at most %d prizes allowed", ErrPrizeLimit, s.opts.MaxPrizes)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
