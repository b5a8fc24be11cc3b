package domain

import "time"

// UserSample is one assembled row of the scoring dataset: the user profile
// snapshot joined with pre-cutoff trading and behavioral aggregates.
// Profile fields come from the warehouse `users` extract; Trading and Tags
// are filled by the dataset assembler and default to zero when the user has
// no matching aggregate row.
type UserSample struct {
	UserID           int64
	Locale           string
	Age              int64 // full years at extract time, derived from birthdate
	CountryID        int64
	Gender           int64
	CurrencyID       int64
	ClientPlatformID int64
	IsTrial          bool
	IsRegulated      bool
	IsPublic         bool
	HasNick          bool
	Created          time.Time // registration timestamp

	Trading TradingAggregate
	Tags    TagCounts

	// Deposits is the number of real-balance deposits within the label window
	// after registration. Only populated by the training-set builder; always
	// zero at scoring time.
	Deposits int64
}

// TradingAggregate holds per-user pre-cutoff practice-account activity:
// volume and PnL per instrument class from archive_position, plus the
// separate binary-options aggregate from archive_option.
type TradingAggregate struct {
	VolumeTrainDigital float64
	PnlTrainDigital    float64
	VolumeTrainCfd     float64
	PnlTrainCfd        float64
	VolumeTrainForex   float64
	PnlTrainForex      float64
	VolumeTrainCrypto  float64
	PnlTrainCrypto     float64

	ClosedCount                   int64
	InstrumentActivesCount        int64
	InstrumentActivesDigitalCount int64
	InstrumentActivesCfdCount     int64
	InstrumentActivesForexCount   int64
	InstrumentActivesCryptoCount  int64
	DigitalCount                  int64
	CfdCount                      int64
	ForexCount                    int64
	CryptoCount                   int64

	// Binary options (archive_option).
	BinCount                  int64
	VolumeTrainBin            float64
	PnlTrainBin               float64
	InstrumentActivesBinCount int64
}

// TagCounts holds per-user counts of named behavioral events observed before
// the cutoff (registration + N days). An absent user in the tag extract means
// zero for all counters, not missing data.
type TagCounts struct {
	UsedHistoricalPrices     int64
	TriedToChangeAsset       int64
	ChangedDealAmountManualy int64
	VisitTraderoom           int64
	ButtonDepositPage        int64
	VisitedWithdrawalPage    int64
	AddedTechnicalAnalysis   int64
	ChangedChartType         int64
	OpenVideoTutorial        int64
	SellOptionUsed           int64
	RefreshedDemo            int64
	PhoneConfirmed           int64
	UserUseBuyback           int64
	TradingIndicatorAdded    int64
}
