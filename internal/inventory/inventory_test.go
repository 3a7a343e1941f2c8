package inventory

import (
	"errors"
	"testing"

	"prizewheel/internal/models"
)

func samplePrizes() []models.Prize {
	return []models.Prize{
		{ID: "a", Label: "Bear", IsWin: true, Quantity: 1},
		{ID: "b", Label: "Try Again", IsWin: false, Quantity: 999},
		{ID: "c", Label: "Cap", IsWin: true, Quantity: 0},
		{ID: "d", Label: "Mug", IsWin: true, Quantity: 4},
	}
}

func TestActive(t *testing.T) {
	active := Active(samplePrizes())

	want := []string{"a", "b", "d"}
	if len(active) != len(want) {
		t.Fatalf("Expected %d active prizes, but got %d", len(want), len(active))
	}
	for i, id := range want {
		if active[i].ID != id {
			t.Errorf("Expected active[%d] to be %s, but got %s", i, id, active[i].ID)
		}
	}
}

func TestIsSoldOut(t *testing.T) {
	t.Run("Test stock left on a winning prize", func(t *testing.T) {
		if IsSoldOut(samplePrizes()) {
			t.Error("Expected not sold out")
		}
	})

	t.Run("Test all winning prizes empty", func(t *testing.T) {
		prizes := samplePrizes()
		prizes[0].Quantity = 0
		prizes[3].Quantity = 0
		if !IsSoldOut(prizes) {
			t.Error("Expected sold out while only try-again entries have stock")
		}
	})

	t.Run("Test only non-winning prizes is vacuously sold out", func(t *testing.T) {
		prizes := []models.Prize{
			{ID: "x", IsWin: false, Quantity: 999},
			{ID: "y", IsWin: false, Quantity: 999},
		}
		if !IsSoldOut(prizes) {
			t.Error("Expected a list without winning prizes to be sold out")
		}
	})

	t.Run("Test empty list is sold out", func(t *testing.T) {
		if !IsSoldOut(nil) {
			t.Error("Expected an empty list to be sold out")
		}
	})

	t.Run("Test stays sold out after further wins", func(t *testing.T) {
		prizes := []models.Prize{
			{ID: "a", IsWin: true, Quantity: 0},
			{ID: "b", IsWin: false, Quantity: 5},
		}
		prizes = ApplyWin(prizes, "b")
		prizes = ApplyWin(prizes, "a")
		if !IsSoldOut(prizes) {
			t.Error("Expected sold out to persist")
		}
	})
}

func TestApplyWin(t *testing.T) {
	t.Run("Test last unit goes to zero", func(t *testing.T) {
		before := samplePrizes()
		after := ApplyWin(before, "a")

		if after[0].Quantity != 0 {
			t.Errorf("Expected quantity 0, but got %d", after[0].Quantity)
		}
		for i := 1; i < len(after); i++ {
			if after[i] != before[i] {
				t.Errorf("Expected prize %s unchanged, but got %+v", before[i].ID, after[i])
			}
		}
		if before[0].Quantity != 1 {
			t.Error("Expected the input list to be left untouched")
		}
	})

	t.Run("Test non-winning prize never changes stock", func(t *testing.T) {
		before := samplePrizes()
		after := ApplyWin(before, "b")
		for i := range before {
			if after[i].Quantity != before[i].Quantity {
				t.Errorf("Expected quantity of %s to stay %d, but got %d", before[i].ID, before[i].Quantity, after[i].Quantity)
			}
		}
	})

	t.Run("Test zero stock is clamped", func(t *testing.T) {
		after := ApplyWin(samplePrizes(), "c")
		if after[2].Quantity != 0 {
			t.Errorf("Expected quantity to stay 0, but got %d", after[2].Quantity)
		}
	})

	t.Run("Test unknown id is a no-op", func(t *testing.T) {
		before := samplePrizes()
		after := ApplyWin(before, "missing")
		for i := range before {
			if after[i] != before[i] {
				t.Errorf("Expected %s unchanged", before[i].ID)
			}
		}
	})
}

func TestAdminEdits(t *testing.T) {
	prizes := samplePrizes()

	got, err := AdjustQuantity(prizes, "a", -5)
	if err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}
	if got[0].Quantity != 0 {
		t.Errorf("Expected quantity clamped to 0, but got %d", got[0].Quantity)
	}

	got, err = SetQuantity(prizes, "d", -1)
	if err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}
	if got[3].Quantity != 0 {
		t.Errorf("Expected quantity clamped to 0, but got %d", got[3].Quantity)
	}

	got, err = Rename(prizes, "b", "Lucky")
	if err != nil || got[1].Label != "Lucky" {
		t.Errorf("Expected label Lucky, got %q (err %v)", got[1].Label, err)
	}

	if _, err := SetWin(prizes, "zzz", true); !errors.Is(err, ErrPrizeNotFound) {
		t.Errorf("Expected ErrPrizeNotFound, but got %v", err)
	}

	got, err = Remove(prizes, "c")
	if err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}
	if len(got) != 3 || got[2].ID != "d" {
		t.Errorf("Expected c removed and order kept, but got %+v", got)
	}
	if len(prizes) != 4 {
		t.Error("Expected the input list to be left untouched")
	}

	if _, err := Add(prizes, models.Prize{ID: "a"}); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("Expected ErrDuplicateID, but got %v", err)
	}
}

func TestSetSpecial(t *testing.T) {
	prizes := samplePrizes()
	prizes[0].IsSpecial = true

	got, err := SetSpecial(prizes, "d", true)
	if err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}
	for _, p := range got {
		if p.IsSpecial != (p.ID == "d") {
			t.Errorf("Expected only d to be special, but %s has IsSpecial=%v", p.ID, p.IsSpecial)
		}
	}

	got, err = SetSpecial(got, "d", false)
	if err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}
	for _, p := range got {
		if p.IsSpecial {
			t.Errorf("Expected no special prize, but %s is special", p.ID)
		}
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		prizes []models.Prize
		want   error
	}{
		{"valid", samplePrizes(), nil},
		{"empty id", []models.Prize{{ID: ""}}, ErrEmptyID},
		{"duplicate", []models.Prize{{ID: "a"}, {ID: "a"}}, ErrDuplicateID},
		{"negative", []models.Prize{{ID: "a", Quantity: -1}}, ErrNegativeStock},
		{"two specials", []models.Prize{{ID: "a", IsSpecial: true}, {ID: "b", IsSpecial: true}}, ErrMultipleSpecial},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.prizes)
			if tc.want == nil && err != nil {
				t.Fatalf("Expected no error, but got %v", err)
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Fatalf("Expected %v, but got %v", tc.want, err)
			}
		})
	}
}
