package features

import (
	"errors"
	"strings"
	"testing"

	"mql-predict/internal/domain"
)

func ageBinValues(t *testing.T, age int64) map[string]float64 {
	t.Helper()

	s := &domain.UserSample{Age: age}
	bins := map[string]float64{}
	for _, f := range Catalog() {
		switch f.Name {
		case "age_18_24", "age_24_30", "age_30_40", "age_40_50", "age_50_80", "age_trash":
			bins[f.Name] = f.Compute(s)
		}
	}
	return bins
}

func TestAgeBins_ExactlyOneSet(t *testing.T) {
	// Bins must partition every age, including the boundary values.
	for age := int64(-5); age <= 120; age++ {
		bins := ageBinValues(t, age)
		var set int
		for _, v := range bins {
			if v == 1 {
				set++
			}
		}
		if set != 1 {
			t.Errorf("age %d: %d bins set, want exactly 1 (%v)", age, set, bins)
		}
	}
}

func TestAgeBins_Boundaries(t *testing.T) {
	cases := []struct {
		age  int64
		want string
	}{
		{17, "age_trash"},
		{18, "age_18_24"},
		{23, "age_18_24"},
		{24, "age_24_30"},
		{30, "age_30_40"},
		{40, "age_40_50"},
		{50, "age_50_80"},
		{80, "age_50_80"},
		{81, "age_trash"},
	}
	for _, tc := range cases {
		bins := ageBinValues(t, tc.age)
		if bins[tc.want] != 1 {
			t.Errorf("age %d: want bin %s set, got %v", tc.age, tc.want, bins)
		}
	}
}

func TestOneHot_UnseenValueYieldsAllZero(t *testing.T) {
	// A currency outside the training-time set lights no indicator at all.
	s := &domain.UserSample{CurrencyID: 999, Locale: "xx_XX", CountryID: -1}
	for _, f := range Catalog() {
		switch {
		case strings.HasPrefix(f.Name, "currency_id_"),
			strings.HasPrefix(f.Name, "locale_"),
			strings.HasPrefix(f.Name, "country_id_"):
			if v := f.Compute(s); v != 0 {
				t.Errorf("%s = %v for unseen value, want 0", f.Name, v)
			}
		}
	}
}

func TestIsPublicIndicators_Complementary(t *testing.T) {
	byName := map[string]Feature{}
	for _, f := range Catalog() {
		byName[f.Name] = f
	}

	public := &domain.UserSample{IsPublic: true}
	private := &domain.UserSample{IsPublic: false}

	if byName["is_public_1"].Compute(public) != 1 || byName["is_public_0"].Compute(public) != 0 {
		t.Error("is_public=true must set is_public_1 only")
	}
	if byName["is_public_1"].Compute(private) != 0 || byName["is_public_0"].Compute(private) != 1 {
		t.Error("is_public=false must set is_public_0 only")
	}
}

func TestCatalog_UniqueNames(t *testing.T) {
	seen := map[string]bool{}
	for _, f := range Catalog() {
		if seen[f.Name] {
			t.Errorf("duplicate catalog feature: %s", f.Name)
		}
		seen[f.Name] = true
	}
}

func TestResolveSchema_ManifestOrderPreserved(t *testing.T) {
	columns := []string{"closed_count", "age_18_24", "gender_2", "visit_traderoom"}
	schema, err := ResolveSchema(columns)
	if err != nil {
		t.Fatalf("ResolveSchema: %v", err)
	}

	got := schema.Columns()
	for i, want := range columns {
		if got[i] != want {
			t.Errorf("column %d: got %s, want %s", i, got[i], want)
		}
	}

	s := &domain.UserSample{Age: 20, Gender: 2}
	s.Trading.ClosedCount = 7
	s.Tags.VisitTraderoom = 3

	x := schema.Vector(s)
	want := []float64{7, 1, 1, 3}
	for i := range want {
		if x[i] != want[i] {
			t.Errorf("vector[%d]: got %v, want %v", i, x[i], want[i])
		}
	}
}

func TestResolveSchema_UnknownColumn(t *testing.T) {
	_, err := ResolveSchema([]string{"age_18_24", "b_volume_real"})
	if !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("got %v, want ErrUnknownColumn", err)
	}
}

func TestResolveSchema_DuplicateColumn(t *testing.T) {
	_, err := ResolveSchema([]string{"age_18_24", "age_18_24"})
	if err == nil {
		t.Fatal("duplicate column accepted")
	}
}

func TestVector_ZeroSampleIsMostlyZero(t *testing.T) {
	// A zero-value sample carries no activity; only age_trash and the
	// negative indicators may light up.
	schema, err := ResolveSchema(allColumns())
	if err != nil {
		t.Fatalf("ResolveSchema: %v", err)
	}

	x := schema.Vector(&domain.UserSample{})
	cols := schema.Columns()
	for i, v := range x {
		switch cols[i] {
		case "age_trash", "is_public_0", "country_id_0":
			if v != 1 {
				t.Errorf("%s = %v, want 1", cols[i], v)
			}
		default:
			if v != 0 {
				t.Errorf("%s = %v, want 0", cols[i], v)
			}
		}
	}
}

func allColumns() []string {
	var names []string
	for _, f := range Catalog() {
		names = append(names, f.Name)
	}
	return names
}
