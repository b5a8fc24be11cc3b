package dataset

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"mql-predict/internal/domain"
	"mql-predict/internal/storage"
	"mql-predict/internal/storage/memory"
)

func TestBuilder_LabelsCohort(t *testing.T) {
	window := storage.CohortWindow{
		Start:           time.Date(2017, 12, 1, 0, 0, 0, 0, time.UTC),
		End:             time.Date(2018, 2, 1, 0, 0, 0, 0, time.UTC),
		TagCutoffDays:   1,
		LabelWindowDays: 30,
	}
	inWindow := time.Date(2018, 1, 10, 0, 0, 0, 0, time.UTC)
	outOfWindow := time.Date(2018, 3, 1, 0, 0, 0, 0, time.UTC)

	wh := memory.NewWarehouse()
	wh.PutSample(&domain.UserSample{UserID: 1, Created: inWindow})
	wh.PutSample(&domain.UserSample{UserID: 2, Created: inWindow})
	wh.PutSample(&domain.UserSample{UserID: 3, Created: outOfWindow})
	wh.PutTags(1, domain.TagCounts{RefreshedDemo: 2})

	qs := memory.NewQueueStore()
	qs.SetDepositCount(1, 2)

	builder := NewBuilder(wh, qs, zap.NewNop())
	samples, err := builder.Build(context.Background(), window)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(samples) != 2 {
		t.Fatalf("samples = %d, want 2 (cohort only)", len(samples))
	}
	if samples[0].UserID != 1 || samples[1].UserID != 2 {
		t.Fatalf("ids = %d,%d, want 1,2", samples[0].UserID, samples[1].UserID)
	}

	if samples[0].Deposits != 2 || samples[0].Tags.RefreshedDemo != 2 {
		t.Errorf("user 1 not labeled: %+v", samples[0])
	}
	if samples[1].Deposits != 0 || samples[1].Tags != (domain.TagCounts{}) {
		t.Errorf("user 2 must default to zeros: %+v", samples[1])
	}

	labels := Labels(samples)
	if !labels[0] || labels[1] {
		t.Errorf("labels = %v, want [true false]", labels)
	}
}
