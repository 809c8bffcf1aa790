package dto

// TickerEventDTO is one record of the all-market ticker stream. The stream
// delivers an array of these per message. Numeric fields arrive as
// string-encoded decimals.
type TickerEventDTO struct {
	EventType          string `json:"e"`
	EventTime          int64  `json:"E"`
	Symbol             string `json:"s"`
	PriceChange        string `json:"p"`
	PriceChangePercent string `json:"P"`
	WeightedAvgPrice   string `json:"w"`
	LastPrice          string `json:"c"`
	LastQuantity       string `json:"Q"`
	OpenPrice          string `json:"o"`
	HighPrice          string `json:"h"`
	LowPrice           string `json:"l"`
	BaseVolume         string `json:"v"`
	QuoteVolume        string `json:"q"`
}

type SubscriptionRequest struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
	ID     int      `json:"id"`
}

type SubscriptionResponse struct {
	Result interface{} `json:"result"`
	ID     int         `json:"id"`
}
