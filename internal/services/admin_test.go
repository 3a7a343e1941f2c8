package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"prizewheel/internal/inventory"
	"prizewheel/internal/models"
)

func boolPtr(v bool) *bool { return &v }

func strPtr(v string) *string { return &v }

func TestWheelService_AdminEdits(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0, Options{MinPrizes: 4, MaxPrizes: 10})
	_ = f.service.Load(ctx)

	t.Run("Test add assigns ids and keeps one special", func(t *testing.T) {
		if err := f.service.SetSpecial(ctx, "2", true); err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		added, err := f.service.AddPrizes(ctx, PrizeInput{Label: "Laptop", IsWin: true, Quantity: 1, IsSpecial: true})
		if err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		if added[0].ID == "" || !added[0].IsSpecial {
			t.Fatalf("Unexpected prize %+v", added[0])
		}
		special := 0
		for _, p := range f.service.Prizes() {
			if p.IsSpecial {
				special++
				if p.ID != added[0].ID {
					t.Errorf("Expected %s to be the special prize, but got %s", added[0].ID, p.ID)
				}
			}
		}
		if special != 1 {
			t.Errorf("Expected exactly one special prize, but got %d", special)
		}
	})

	t.Run("Test add over the bound is refused", func(t *testing.T) {
		_, err := f.service.AddPrizes(ctx, PrizeInput{Label: "a"}, PrizeInput{Label: "b"})
		if !errors.Is(err, ErrPrizeLimit) {
			t.Fatalf("Expected ErrPrizeLimit, but got %v", err)
		}
		if got := len(f.service.Prizes()); got != 9 {
			t.Errorf("Expected nothing added, but got %d prizes", got)
		}
	})

	t.Run("Test patch", func(t *testing.T) {
		got, err := f.service.UpdatePrize(ctx, "4", PrizePatch{
			Label:         strPtr("Flask"),
			Color:         strPtr("#000000"),
			Image:         strPtr("data:image/png;base64,AA"),
			Quantity:      intPtr(2),
			QuantityDelta: intPtr(-5),
			IsWin:         boolPtr(false),
		})
		if err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		if got.Label != "Flask" || got.Color != "#000000" || got.ColorEnd == "" || got.Quantity != 0 || got.IsWin {
			t.Errorf("Unexpected prize %+v", got)
		}
		saved, _ := f.repo.Load(ctx)
		for _, p := range saved {
			if p.ID == "4" && p.Label != "Flask" {
				t.Error("Expected the patch to be persisted")
			}
		}
	})

	t.Run("Test patch unknown prize", func(t *testing.T) {
		if _, err := f.service.UpdatePrize(ctx, "nope", PrizePatch{}); !errors.Is(err, inventory.ErrPrizeNotFound) {
			t.Errorf("Expected ErrPrizeNotFound, but got %v", err)
		}
	})

	t.Run("Test replace validates", func(t *testing.T) {
		bad := []models.Prize{
			{ID: "a", IsSpecial: true}, {ID: "b", IsSpecial: true}, {ID: "c"}, {ID: "d"},
		}
		if err := f.service.ReplacePrizes(ctx, bad); !errors.Is(err, inventory.ErrMultipleSpecial) {
			t.Errorf("Expected ErrMultipleSpecial, but got %v", err)
		}
		small := []models.Prize{{ID: "a"}, {ID: "b"}}
		if err := f.service.ReplacePrizes(ctx, small); !errors.Is(err, ErrPrizeLimit) {
			t.Errorf("Expected ErrPrizeLimit, but got %v", err)
		}
		good := []models.Prize{{ID: "a", IsWin: true, Quantity: 1}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
		if err := f.service.ReplacePrizes(ctx, good); err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		if got := len(f.service.State().Prizes); got != 1 {
			t.Errorf("Expected 1 active prize, but got %d", got)
		}
	})

	t.Run("Test remove below the bound is refused", func(t *testing.T) {
		if err := f.service.RemovePrize(ctx, "a"); !errors.Is(err, ErrPrizeLimit) {
			t.Errorf("Expected ErrPrizeLimit, but got %v", err)
		}
	})

	t.Run("Test reset restores defaults", func(t *testing.T) {
		got := f.service.ResetToDefaults(ctx)
		if len(got) != len(inventory.Defaults()) || got[0].Quantity != 5 {
			t.Errorf("Expected defaults, but got %+v", got)
		}
	})
}

func TestWheelService_Sessions(t *testing.T) {
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, 0, Options{
		Passphrase: "open-sesame",
		SessionTTL: 30 * time.Minute,
		Now:        func() time.Time { return now },
	})

	t.Run("Test wrong passphrase", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			if _, err := f.service.Login("guess"); !errors.Is(err, ErrWrongPassphrase) {
				t.Fatalf("Expected ErrWrongPassphrase, but got %v", err)
			}
		}
		if f.service.SessionCount() != 0 {
			t.Error("Expected no session")
		}
	})

	token, err := f.service.Login("open-sesame")
	if err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}

	t.Run("Test session stays alive with activity", func(t *testing.T) {
		now = now.Add(20 * time.Minute)
		if !f.service.Authorized(token) {
			t.Fatal("Expected the session to be authorized")
		}
		now = now.Add(20 * time.Minute)
		if !f.service.Authorized(token) {
			t.Fatal("Expected activity to extend the session")
		}
	})

	t.Run("Test idle session expires", func(t *testing.T) {
		now = now.Add(31 * time.Minute)
		if f.service.Authorized(token) {
			t.Fatal("Expected the session to have expired")
		}
		if f.service.Authorized("") {
			t.Error("Expected an empty token to be rejected")
		}
	})

	t.Run("Test janitor and logout", func(t *testing.T) {
		stale, _ := f.service.Login("open-sesame")
		now = now.Add(time.Hour)
		fresh, _ := f.service.Login("open-sesame")

		if removed := f.service.CleanUpInactiveSessions(); removed != 1 {
			t.Errorf("Expected 1 removed session, but got %d", removed)
		}
		if f.service.Authorized(stale) {
			t.Error("Expected the stale session to be gone")
		}
		f.service.Logout(fresh)
		if f.service.Authorized(fresh) {
			t.Error("Expected the session to be closed")
		}
	})
}
