package models

// TextFragment is one positioned run of text extracted from a PDF page.
// Coordinates are PDF page points: y=0 is near the bottom of the page and
// y grows upward.
type TextFragment struct {
	Text   string  `json:"text"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Span is a half-open x-interval assigned to one output column.
// End may be math.Inf(1) for the rightmost column.
type Span struct {
	Start float64
	End   float64
}

// CashColumns holds the column boundaries for the account-transactions table,
// plus the y of the header row used to separate header from content.
type CashColumns struct {
	Date        Span
	Type        Span
	Description Span
	Incoming    Span
	Outgoing    Span
	Balance     Span
	HeaderY     float64
}

// InterestColumns holds the column boundaries for the money-market-fund table.
type InterestColumns struct {
	Date         Span
	PaymentType  Span
	Fund         Span
	Quantity     Span
	PricePerUnit Span
	Amount       Span
	HeaderY      float64
}

// CashTransaction is one row of the account-transactions table. All values
// are kept as the statement printed them (German number formatting included);
// numeric interpretation is left to consumers.
type CashTransaction struct {
	Date        string `json:"datum"`
	Type        string `json:"typ"`
	Description string `json:"beschreibung"`
	Incoming    string `json:"zahlungseingang"`
	Outgoing    string `json:"zahlungsausgang"`
	Balance     string `json:"saldo"`
	SanityOK    bool   `json:"sanityCheckOk"`
}

// InterestTransaction is one row of the money-market-fund table.
type InterestTransaction struct {
	Date         string `json:"datum"`
	PaymentType  string `json:"zahlungsart"`
	Fund         string `json:"geldmarktfonds"`
	Quantity     string `json:"stueck"`
	PricePerUnit string `json:"kurs"`
	Amount       string `json:"betrag"`
}

// StatementResult is the output of a full statement parse run.
type StatementResult struct {
	Cash     []CashTransaction     `json:"cash"`
	Interest []InterestTransaction `json:"interest"`
}

// TradingTransaction is a buy or sell derived from a cash transaction whose
// description matches the trade execution pattern.
type TradingTransaction struct {
	Date      string  `json:"date"`
	ISIN      string  `json:"isin"`
	StockName string  `json:"stockName"`
	Action    string  `json:"action"` // Kauf or Verkauf
	IsBuy     bool    `json:"isBuy"`
	Amount    float64 `json:"amount"`
	TradeID   string  `json:"tradeId"`
	Balance   string  `json:"balance"`
}

// Position status values.
const (
	StatusOpen          = "Offen (Holding)"
	StatusUnknownBuy    = "Verkauf (Unbekannter Einkauf)"
	StatusPartiallySold = "Teilweise verkauft"
	StatusClosed        = "Komplett verkauft"
	StatusBalanced      = "Ausgeglichen"
)

// Position aggregates all buys and sells of one instrument.
type Position struct {
	ISIN              string  `json:"isin"`
	StockName         string  `json:"stockName"`
	TotalBought       float64 `json:"totalBought"`
	TotalSold         float64 `json:"totalSold"`
	NetCashFlow       float64 `json:"netCashFlow"`
	RealizedGainLoss  float64 `json:"realizedGainLoss"`
	CostBasis         float64 `json:"costBasis"`
	Status            string  `json:"status"`
	IsOpen            bool    `json:"isOpen"`
	NumBuys           int     `json:"numBuys"`
	NumSells          int     `json:"numSells"`
	TotalTransactions int     `json:"totalTransactions"`
	FirstTrade        string  `json:"firstTrade,omitempty"`
	LastTrade         string  `json:"lastTrade,omitempty"`

	// Filled by securities enrichment for open positions.
	HasCurrentData   bool    `json:"hasCurrentData"`
	CurrentValue     float64 `json:"currentValue,omitempty"`
	CurrentPrice     float64 `json:"currentPrice,omitempty"`
	CurrentQuantity  float64 `json:"currentQuantity,omitempty"`
	PriceDate        string  `json:"priceDate,omitempty"`
	UnrealizedPnL    float64 `json:"unrealizedPnL"`
	UnrealizedPnLPct float64 `json:"unrealizedPnLPercentage,omitempty"`
	TotalPnL         float64 `json:"totalPnL"`
}

// TradingSummary is the aggregated P&L view over all trading transactions.
type TradingSummary struct {
	PnLSummary       []Position `json:"pnlSummary"`
	TotalInvested    float64    `json:"totalInvested"`
	TotalRealized    float64    `json:"totalRealized"`
	TotalNetCashFlow float64    `json:"totalNetCashFlow"`
	TotalTrades      int        `json:"totalTrades"`
	TotalVolume      float64    `json:"totalVolume"`
	OpenPositions    int        `json:"openPositions"`
	ClosedPositions  int        `json:"closedPositions"`

	// Filled by securities enrichment.
	HasSecuritiesData  bool    `json:"hasSecuritiesData"`
	TotalCurrentValue  float64 `json:"totalCurrentValue,omitempty"`
	TotalUnrealizedPnL float64 `json:"totalUnrealizedPnL"`
	TotalPnL           float64 `json:"totalPnL"`
	SecuritiesDate     string  `json:"securitiesDate,omitempty"`
}

// Security is one holding parsed from a depot (custody account) statement.
type Security struct {
	Quantity       float64 `json:"quantity"`
	Unit           string  `json:"unit"`
	Name           string  `json:"name"`
	NameExtra      string  `json:"nameExtra,omitempty"`
	ISIN           string  `json:"isin"`
	PricePerUnit   float64 `json:"pricePerUnit"`
	PriceDate      string  `json:"priceDate"`
	MarketValueEUR float64 `json:"marketValueEUR"`
	CustodyCountry string  `json:"custodyCountry,omitempty"`
	ComputedValue  float64 `json:"computedValue"`
}
