package dataset

import (
	"context"
	"testing"
	"time"

	"mql-predict/internal/domain"
	"mql-predict/internal/storage/memory"
)

func TestAssembler_OverlaysTags(t *testing.T) {
	wh := memory.NewWarehouse()
	wh.PutSample(&domain.UserSample{UserID: 1, Locale: "en_US", Age: 30})
	wh.PutTags(1, domain.TagCounts{VisitTraderoom: 4, PhoneConfirmed: 1})

	samples, err := NewAssembler(wh).Assemble(context.Background(), []int64{1})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(samples) != 1 {
		t.Fatalf("samples = %d, want 1", len(samples))
	}

	s := samples[0]
	if s.Locale != "en_US" || s.Age != 30 {
		t.Errorf("profile fields lost: %+v", s)
	}
	if s.Tags.VisitTraderoom != 4 || s.Tags.PhoneConfirmed != 1 {
		t.Errorf("tags not overlaid: %+v", s.Tags)
	}
}

func TestAssembler_MissingTagsZeroed(t *testing.T) {
	wh := memory.NewWarehouse()
	wh.PutSample(&domain.UserSample{UserID: 1})

	samples, err := NewAssembler(wh).Assemble(context.Background(), []int64{1})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if samples[0].Tags != (domain.TagCounts{}) {
		t.Errorf("absent tag row must zero all counters: %+v", samples[0].Tags)
	}
}

func TestAssembler_DropsProfilelessAndKeepsOrder(t *testing.T) {
	wh := memory.NewWarehouse()
	wh.PutSample(&domain.UserSample{UserID: 3})
	wh.PutSample(&domain.UserSample{UserID: 1})
	// User 2 only has tags, no profile.
	wh.PutTags(2, domain.TagCounts{VisitTraderoom: 9})

	samples, err := NewAssembler(wh).Assemble(context.Background(), []int64{3, 2, 1})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("samples = %d, want 2", len(samples))
	}
	if samples[0].UserID != 3 || samples[1].UserID != 1 {
		t.Errorf("order = %d,%d, want 3,1", samples[0].UserID, samples[1].UserID)
	}
}

func TestAssembler_EmptyInput(t *testing.T) {
	samples, err := NewAssembler(memory.NewWarehouse()).Assemble(context.Background(), nil)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if samples != nil {
		t.Errorf("samples = %+v, want nil", samples)
	}
}

func TestCSV_RoundTrip(t *testing.T) {
	created := time.Date(2018, 1, 5, 12, 30, 0, 0, time.UTC)
	in := []*domain.UserSample{
		{
			UserID: 42, Locale: "de_DE", Age: 33, CountryID: 94, Gender: 2,
			CurrencyID: 5, ClientPlatformID: 9, IsTrial: true, HasNick: true,
			Created: created,
			Trading: domain.TradingAggregate{
				VolumeTrainDigital: 12.5, PnlTrainDigital: -3.25,
				ClosedCount: 7, BinCount: 2, VolumeTrainBin: 100,
			},
			Tags:     domain.TagCounts{VisitTraderoom: 5, ButtonDepositPage: 1},
			Deposits: 2,
		},
		{UserID: 43, Locale: "en_US", Created: created},
	}

	path := t.TempDir() + "/mql_dataset.csv.gz"
	if err := WriteFile(path, in); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	out, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("rows = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if !out[i].Created.Equal(in[i].Created) {
			t.Errorf("row %d: created = %v, want %v", i, out[i].Created, in[i].Created)
		}
		got, want := *out[i], *in[i]
		got.Created, want.Created = time.Time{}, time.Time{}
		if got != want {
			t.Errorf("row %d: got %+v, want %+v", i, got, want)
		}
	}
}
