package dataset

import (
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"mql-predict/internal/domain"
)

// rawColumns is the on-disk column order of a saved dataset. It matches the
// raw extract layout, not the engineered feature layout, so a saved dataset
// can be re-featurized after a catalog change.
var rawColumns = []string{
	"user_id", "locale", "age", "country_id", "gender", "currency_id",
	"client_platform_id", "is_trial", "is_regulated", "is_public", "has_nik",
	"created",
	"volume_train_digital", "pnl_train_digital",
	"volume_train_cfd", "pnl_train_cfd",
	"volume_train_forex", "pnl_train_forex",
	"volume_train_crypto", "pnl_train_crypto",
	"closed_count", "instrument_actives_count",
	"instrument_actives_digital_count", "instrument_actives_cfd_count",
	"instrument_actives_forex_count", "instrument_actives_crypto_count",
	"digital_count", "cfd_count", "forex_count", "crypto_count",
	"bin_count", "volume_train_bin", "pnl_train_bin", "instrument_actives_bin_count",
	"used_historical_prices", "tried_to_change_asset", "changed_deal_amount_manualy",
	"visit_traderoom", "button_deposit_pag", "visited_withdrawal_page",
	"added_technical_analysis", "changed_chart_type", "open_video_tutorial",
	"sell_option_used", "refreshed_demo", "phone_confirmed",
	"user_use_buyback", "trading_indicator_added",
	"deposits",
}

// WriteFile saves samples as a gzip-compressed CSV with a header row.
func WriteFile(path string, samples []*domain.UserSample) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dataset file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close dataset file: %w", closeErr)
		}
	}()

	gz := gzip.NewWriter(f)
	if err := write(gz, samples); err != nil {
		return err
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("close gzip stream: %w", err)
	}
	return nil
}

// ReadFile loads samples from a gzip-compressed CSV written by WriteFile.
func ReadFile(path string) (_ []*domain.UserSample, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset file: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("open gzip stream: %w", err)
	}
	defer gz.Close()

	return read(gz)
}

func write(w io.Writer, samples []*domain.UserSample) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(rawColumns); err != nil {
		return fmt.Errorf("write dataset header: %w", err)
	}

	for _, s := range samples {
		if err := cw.Write(record(s)); err != nil {
			return fmt.Errorf("write dataset row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush dataset rows: %w", err)
	}
	return nil
}

func read(r io.Reader) ([]*domain.UserSample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(rawColumns)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read dataset header: %w", err)
	}
	for i, col := range rawColumns {
		if header[i] != col {
			return nil, fmt.Errorf("dataset header mismatch at %d: got %q, want %q", i, header[i], col)
		}
	}

	var samples []*domain.UserSample
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read dataset row: %w", err)
		}

		s, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("dataset line %d: %w", line, err)
		}
		samples = append(samples, s)
	}
	return samples, nil
}

func record(s *domain.UserSample) []string {
	ints := []int64{
		s.Trading.ClosedCount, s.Trading.InstrumentActivesCount,
		s.Trading.InstrumentActivesDigitalCount, s.Trading.InstrumentActivesCfdCount,
		s.Trading.InstrumentActivesForexCount, s.Trading.InstrumentActivesCryptoCount,
		s.Trading.DigitalCount, s.Trading.CfdCount, s.Trading.ForexCount, s.Trading.CryptoCount,
	}
	tags := []int64{
		s.Tags.UsedHistoricalPrices, s.Tags.TriedToChangeAsset, s.Tags.ChangedDealAmountManualy,
		s.Tags.VisitTraderoom, s.Tags.ButtonDepositPage, s.Tags.VisitedWithdrawalPage,
		s.Tags.AddedTechnicalAnalysis, s.Tags.ChangedChartType, s.Tags.OpenVideoTutorial,
		s.Tags.SellOptionUsed, s.Tags.RefreshedDemo, s.Tags.PhoneConfirmed,
		s.Tags.UserUseBuyback, s.Tags.TradingIndicatorAdded,
	}

	rec := []string{
		formatInt(s.UserID), s.Locale, formatInt(s.Age), formatInt(s.CountryID),
		formatInt(s.Gender), formatInt(s.CurrencyID), formatInt(s.ClientPlatformID),
		strconv.FormatBool(s.IsTrial), strconv.FormatBool(s.IsRegulated),
		strconv.FormatBool(s.IsPublic), strconv.FormatBool(s.HasNick),
		s.Created.UTC().Format(time.RFC3339),
		formatFloat(s.Trading.VolumeTrainDigital), formatFloat(s.Trading.PnlTrainDigital),
		formatFloat(s.Trading.VolumeTrainCfd), formatFloat(s.Trading.PnlTrainCfd),
		formatFloat(s.Trading.VolumeTrainForex), formatFloat(s.Trading.PnlTrainForex),
		formatFloat(s.Trading.VolumeTrainCrypto), formatFloat(s.Trading.PnlTrainCrypto),
	}
	for _, v := range ints {
		rec = append(rec, formatInt(v))
	}
	rec = append(rec,
		formatInt(s.Trading.BinCount),
		formatFloat(s.Trading.VolumeTrainBin), formatFloat(s.Trading.PnlTrainBin),
		formatInt(s.Trading.InstrumentActivesBinCount),
	)
	for _, v := range tags {
		rec = append(rec, formatInt(v))
	}
	rec = append(rec, formatInt(s.Deposits))
	return rec
}

func parseRecord(rec []string) (*domain.UserSample, error) {
	p := &fieldParser{rec: rec}
	var s domain.UserSample

	s.UserID = p.int64("user_id")
	s.Locale = p.str()
	s.Age = p.int64("age")
	s.CountryID = p.int64("country_id")
	s.Gender = p.int64("gender")
	s.CurrencyID = p.int64("currency_id")
	s.ClientPlatformID = p.int64("client_platform_id")
	s.IsTrial = p.boolean("is_trial")
	s.IsRegulated = p.boolean("is_regulated")
	s.IsPublic = p.boolean("is_public")
	s.HasNick = p.boolean("has_nik")
	s.Created = p.timestamp("created")

	s.Trading.VolumeTrainDigital = p.float64("volume_train_digital")
	s.Trading.PnlTrainDigital = p.float64("pnl_train_digital")
	s.Trading.VolumeTrainCfd = p.float64("volume_train_cfd")
	s.Trading.PnlTrainCfd = p.float64("pnl_train_cfd")
	s.Trading.VolumeTrainForex = p.float64("volume_train_forex")
	s.Trading.PnlTrainForex = p.float64("pnl_train_forex")
	s.Trading.VolumeTrainCrypto = p.float64("volume_train_crypto")
	s.Trading.PnlTrainCrypto = p.float64("pnl_train_crypto")
	s.Trading.ClosedCount = p.int64("closed_count")
	s.Trading.InstrumentActivesCount = p.int64("instrument_actives_count")
	s.Trading.InstrumentActivesDigitalCount = p.int64("instrument_actives_digital_count")
	s.Trading.InstrumentActivesCfdCount = p.int64("instrument_actives_cfd_count")
	s.Trading.InstrumentActivesForexCount = p.int64("instrument_actives_forex_count")
	s.Trading.InstrumentActivesCryptoCount = p.int64("instrument_actives_crypto_count")
	s.Trading.DigitalCount = p.int64("digital_count")
	s.Trading.CfdCount = p.int64("cfd_count")
	s.Trading.ForexCount = p.int64("forex_count")
	s.Trading.CryptoCount = p.int64("crypto_count")
	s.Trading.BinCount = p.int64("bin_count")
	s.Trading.VolumeTrainBin = p.float64("volume_train_bin")
	s.Trading.PnlTrainBin = p.float64("pnl_train_bin")
	s.Trading.InstrumentActivesBinCount = p.int64("instrument_actives_bin_count")

	s.Tags.UsedHistoricalPrices = p.int64("used_historical_prices")
	s.Tags.TriedToChangeAsset = p.int64("tried_to_change_asset")
	s.Tags.ChangedDealAmountManualy = p.int64("changed_deal_amount_manualy")
	s.Tags.VisitTraderoom = p.int64("visit_traderoom")
	s.Tags.ButtonDepositPage = p.int64("button_deposit_pag")
	s.Tags.VisitedWithdrawalPage = p.int64("visited_withdrawal_page")
	s.Tags.AddedTechnicalAnalysis = p.int64("added_technical_analysis")
	s.Tags.ChangedChartType = p.int64("changed_chart_type")
	s.Tags.OpenVideoTutorial = p.int64("open_video_tutorial")
	s.Tags.SellOptionUsed = p.int64("sell_option_used")
	s.Tags.RefreshedDemo = p.int64("refreshed_demo")
	s.Tags.PhoneConfirmed = p.int64("phone_confirmed")
	s.Tags.UserUseBuyback = p.int64("user_use_buyback")
	s.Tags.TradingIndicatorAdded = p.int64("trading_indicator_added")

	s.Deposits = p.int64("deposits")

	if p.err != nil {
		return nil, p.err
	}
	return &s, nil
}

// fieldParser walks a CSV record left to right and remembers the first
// parse failure.
type fieldParser struct {
	rec []string
	pos int
	err error
}

func (p *fieldParser) next() string {
	v := p.rec[p.pos]
	p.pos++
	return v
}

func (p *fieldParser) str() string {
	return p.next()
}

func (p *fieldParser) int64(col string) int64 {
	v := p.next()
	if p.err != nil {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		p.err = fmt.Errorf("column %s: %w", col, err)
	}
	return n
}

func (p *fieldParser) float64(col string) float64 {
	v := p.next()
	if p.err != nil {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.err = fmt.Errorf("column %s: %w", col, err)
	}
	return f
}

func (p *fieldParser) boolean(col string) bool {
	v := p.next()
	if p.err != nil {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.err = fmt.Errorf("column %s: %w", col, err)
	}
	return b
}

func (p *fieldParser) timestamp(col string) time.Time {
	v := p.next()
	if p.err != nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		p.err = fmt.Errorf("column %s: %w", col, err)
	}
	return t
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
