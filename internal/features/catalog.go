// Package features turns assembled user samples into fixed-order numeric
// feature vectors. The catalog of known features is closed: every feature a
// model manifest may name must exist here, and a manifest naming anything
// else is schema drift and fails fast.
package features

import (
	"strconv"

	"mql-predict/internal/domain"
)

// Version identifies the feature catalog a model was trained against.
// Model manifests record it as features_v; the loader refuses a mismatched
// model unless explicitly overridden.
const Version = "1.2.0"

// Feature is one named column of the engineered matrix. Compute is pure:
// no I/O, no state, same sample in, same value out.
type Feature struct {
	Name    string
	Compute func(s *domain.UserSample) float64
}

// Fixed category sets known at training time. Values outside a set produce
// all-zero indicator columns; there is no "other" bucket.
var (
	genderValues   = []int64{1, 2}
	currencyIDs    = []int64{5, 1, 2, 6, 7, 4, 8, 9, 43, 10, 3}
	platformIDs    = []int64{2, 9, 3, 12, 1000, 14, 13}
	localeValues   = []string{"en_US", "pt_PT", "id_ID", "es_ES", "de_DE", "ru_RU", "fr_FR", "it_IT", "th_TH", "ko_KO", "zh_CN", "tr_TR", "ar_KW", "sv_SE", "no_NO"}
	countryIDs     = []int64{225, 94, 30, 194, 151, 119, 162, 128, 78, 206, 200, 180, 205, 157, 97, 72, 181, 175, 164, 212, 91, 182, 140, 46, 204, 18, 134, 183, 146, 191, 189, 171, 10, 62, 220, 2, 211, 14, 159, 156, 101, 160, 108, 3, 55, 0, 95, 42, 61, 59, 188, 77, 113, 92, 79, 102, 100, 143, 32, 130, 139, 104, 15, 81, 20, 176}
)

func b2f(v bool) float64 {
	if v {
		return 1
	}
	return 0
}

// Catalog returns all known features in canonical order. The order here is
// only the catalog's own; vector emission follows the model manifest.
func Catalog() []Feature {
	fs := []Feature{
		// Age bins: mutually exclusive, collectively exhaustive over all ints.
		{"age_18_24", func(s *domain.UserSample) float64 { return b2f(s.Age >= 18 && s.Age < 24) }},
		{"age_24_30", func(s *domain.UserSample) float64 { return b2f(s.Age >= 24 && s.Age < 30) }},
		{"age_30_40", func(s *domain.UserSample) float64 { return b2f(s.Age >= 30 && s.Age < 40) }},
		{"age_40_50", func(s *domain.UserSample) float64 { return b2f(s.Age >= 40 && s.Age < 50) }},
		{"age_50_80", func(s *domain.UserSample) float64 { return b2f(s.Age >= 50 && s.Age <= 80) }},
		{"age_trash", func(s *domain.UserSample) float64 { return b2f(s.Age < 18 || s.Age > 80) }},
	}

	fs = append(fs, oneHotInt64("gender_", genderValues, func(s *domain.UserSample) int64 { return s.Gender })...)
	fs = append(fs, oneHotInt64("currency_id_", currencyIDs, func(s *domain.UserSample) int64 { return s.CurrencyID })...)
	fs = append(fs, oneHotInt64("client_platform_id_", platformIDs, func(s *domain.UserSample) int64 { return s.ClientPlatformID })...)
	fs = append(fs, oneHotString("locale_", localeValues, func(s *domain.UserSample) string { return s.Locale })...)
	fs = append(fs, oneHotInt64("country_id_", countryIDs, func(s *domain.UserSample) int64 { return s.CountryID })...)

	fs = append(fs,
		Feature{"is_trial", func(s *domain.UserSample) float64 { return b2f(s.IsTrial) }},
		Feature{"is_regulated", func(s *domain.UserSample) float64 { return b2f(s.IsRegulated) }},
		Feature{"is_public", func(s *domain.UserSample) float64 { return b2f(s.IsPublic) }},
		Feature{"is_public_1", func(s *domain.UserSample) float64 { return b2f(s.IsPublic) }},
		Feature{"is_public_0", func(s *domain.UserSample) float64 { return b2f(!s.IsPublic) }},
		Feature{"has_nik", func(s *domain.UserSample) float64 { return b2f(s.HasNick) }},
	)

	// Behavioral counters. Column names keep the historical warehouse
	// spellings (button_deposit_pag, manualy) the models were trained on.
	fs = append(fs,
		Feature{"used_historical_prices", func(s *domain.UserSample) float64 { return float64(s.Tags.UsedHistoricalPrices) }},
		Feature{"tried_to_change_asset", func(s *domain.UserSample) float64 { return float64(s.Tags.TriedToChangeAsset) }},
		Feature{"changed_deal_amount_manualy", func(s *domain.UserSample) float64 { return float64(s.Tags.ChangedDealAmountManualy) }},
		Feature{"visit_traderoom", func(s *domain.UserSample) float64 { return float64(s.Tags.VisitTraderoom) }},
		Feature{"button_deposit_pag", func(s *domain.UserSample) float64 { return float64(s.Tags.ButtonDepositPage) }},
		Feature{"visited_withdrawal_page", func(s *domain.UserSample) float64 { return float64(s.Tags.VisitedWithdrawalPage) }},
		Feature{"added_technical_analysis", func(s *domain.UserSample) float64 { return float64(s.Tags.AddedTechnicalAnalysis) }},
		Feature{"changed_chart_type", func(s *domain.UserSample) float64 { return float64(s.Tags.ChangedChartType) }},
		Feature{"open_video_tutorial", func(s *domain.UserSample) float64 { return float64(s.Tags.OpenVideoTutorial) }},
		Feature{"sell_option_used", func(s *domain.UserSample) float64 { return float64(s.Tags.SellOptionUsed) }},
		Feature{"refreshed_demo", func(s *domain.UserSample) float64 { return float64(s.Tags.RefreshedDemo) }},
		Feature{"phone_confirmed", func(s *domain.UserSample) float64 { return float64(s.Tags.PhoneConfirmed) }},
		Feature{"user_use_buyback", func(s *domain.UserSample) float64 { return float64(s.Tags.UserUseBuyback) }},
		Feature{"trading_indicator_added", func(s *domain.UserSample) float64 { return float64(s.Tags.TradingIndicatorAdded) }},
	)

	// Trading aggregates: numeric passthrough.
	fs = append(fs,
		Feature{"volume_train_digital", func(s *domain.UserSample) float64 { return s.Trading.VolumeTrainDigital }},
		Feature{"pnl_train_digital", func(s *domain.UserSample) float64 { return s.Trading.PnlTrainDigital }},
		Feature{"volume_train_cfd", func(s *domain.UserSample) float64 { return s.Trading.VolumeTrainCfd }},
		Feature{"pnl_train_cfd", func(s *domain.UserSample) float64 { return s.Trading.PnlTrainCfd }},
		Feature{"volume_train_forex", func(s *domain.UserSample) float64 { return s.Trading.VolumeTrainForex }},
		Feature{"pnl_train_forex", func(s *domain.UserSample) float64 { return s.Trading.PnlTrainForex }},
		Feature{"volume_train_crypto", func(s *domain.UserSample) float64 { return s.Trading.VolumeTrainCrypto }},
		Feature{"pnl_train_crypto", func(s *domain.UserSample) float64 { return s.Trading.PnlTrainCrypto }},
		Feature{"closed_count", func(s *domain.UserSample) float64 { return float64(s.Trading.ClosedCount) }},
		Feature{"instrument_actives_count", func(s *domain.UserSample) float64 { return float64(s.Trading.InstrumentActivesCount) }},
		Feature{"instrument_actives_digital_count", func(s *domain.UserSample) float64 { return float64(s.Trading.InstrumentActivesDigitalCount) }},
		Feature{"instrument_actives_cfd_count", func(s *domain.UserSample) float64 { return float64(s.Trading.InstrumentActivesCfdCount) }},
		Feature{"instrument_actives_forex_count", func(s *domain.UserSample) float64 { return float64(s.Trading.InstrumentActivesForexCount) }},
		Feature{"instrument_actives_crypto_count", func(s *domain.UserSample) float64 { return float64(s.Trading.InstrumentActivesCryptoCount) }},
		Feature{"digital_count", func(s *domain.UserSample) float64 { return float64(s.Trading.DigitalCount) }},
		Feature{"cfd_count", func(s *domain.UserSample) float64 { return float64(s.Trading.CfdCount) }},
		Feature{"forex_count", func(s *domain.UserSample) float64 { return float64(s.Trading.ForexCount) }},
		Feature{"crypto_count", func(s *domain.UserSample) float64 { return float64(s.Trading.CryptoCount) }},
		Feature{"bin_count", func(s *domain.UserSample) float64 { return float64(s.Trading.BinCount) }},
		Feature{"volume_train_bin", func(s *domain.UserSample) float64 { return s.Trading.VolumeTrainBin }},
		Feature{"pnl_train_bin", func(s *domain.UserSample) float64 { return s.Trading.PnlTrainBin }},
		Feature{"instrument_actives_bin_count", func(s *domain.UserSample) float64 { return float64(s.Trading.InstrumentActivesBinCount) }},
	)

	return fs
}

func oneHotInt64(prefix string, values []int64, get func(*domain.UserSample) int64) []Feature {
	fs := make([]Feature, 0, len(values))
	for _, v := range values {
		v := v
		name := prefix + strconv.FormatInt(v, 10)
		fs = append(fs, Feature{name, func(s *domain.UserSample) float64 { return b2f(get(s) == v) }})
	}
	return fs
}

func oneHotString(prefix string, values []string, get func(*domain.UserSample) string) []Feature {
	fs := make([]Feature, 0, len(values))
	for _, v := range values {
		v := v
		fs = append(fs, Feature{prefix + v, func(s *domain.UserSample) float64 { return b2f(get(s) == v) }})
	}
	return fs
}

