package entities

import (
	"fmt"
	"strings"
)

// Instrument is a single tradeable pair together with its 24h statistics.
// Volume is the quote-asset volume.
type Instrument struct {
	Symbol             string
	BaseAsset          string
	LastPrice          float64
	PriceChangePercent float64
	Volume             float64
	HighPrice          float64
	LowPrice           float64
}

func NewInstrument(symbol, quoteAsset string, lastPrice, priceChangePercent, volume, highPrice, lowPrice float64) *Instrument {
	return &Instrument{
		Symbol:             symbol,
		BaseAsset:          BaseAssetOf(symbol, quoteAsset),
		LastPrice:          lastPrice,
		PriceChangePercent: priceChangePercent,
		Volume:             volume,
		HighPrice:          highPrice,
		LowPrice:           lowPrice,
	}
}

func (i *Instrument) Validate() error {
	if i.Symbol == "" {
		return ErrInvalidSymbol
	}
	if i.BaseAsset == "" {
		return ErrInvalidAsset
	}
	if i.LastPrice < 0 || i.HighPrice < 0 || i.LowPrice < 0 {
		return ErrInvalidPrice
	}
	if i.Volume < 0 {
		return ErrInvalidVolume
	}
	return nil
}

// BaseAssetOf derives the base asset by stripping the quote-asset suffix.
func BaseAssetOf(symbol, quoteAsset string) string {
	return strings.TrimSuffix(symbol, quoteAsset)
}

// InstrumentUpdate is a partial update merged into an existing instrument.
// Nil fields are left untouched.
type InstrumentUpdate struct {
	LastPrice          *float64
	PriceChangePercent *float64
	Volume             *float64
	HighPrice          *float64
	LowPrice           *float64
}

// Apply copies the set fields onto the instrument.
func (u InstrumentUpdate) Apply(i *Instrument) {
	if u.LastPrice != nil {
		i.LastPrice = *u.LastPrice
	}
	if u.PriceChangePercent != nil {
		i.PriceChangePercent = *u.PriceChangePercent
	}
	if u.Volume != nil {
		i.Volume = *u.Volume
	}
	if u.HighPrice != nil {
		i.HighPrice = *u.HighPrice
	}
	if u.LowPrice != nil {
		i.LowPrice = *u.LowPrice
	}
}

// FormatPrice renders a price with more decimals the smaller it is.
func FormatPrice(price float64) string {
	switch {
	case price >= 1000:
		return fmt.Sprintf("%.2f", price)
	case price >= 1:
		return fmt.Sprintf("%.4f", price)
	case price >= 0.01:
		return fmt.Sprintf("%.6f", price)
	default:
		return fmt.Sprintf("%.8f", price)
	}
}

// FormatVolume renders a volume in K/M/B units.
func FormatVolume(volume float64) string {
	switch {
	case volume >= 1_000_000_000:
		return fmt.Sprintf("%.2fB", volume/1_000_000_000)
	case volume >= 1_000_000:
		return fmt.Sprintf("%.2fM", volume/1_000_000)
	case volume >= 1_000:
		return fmt.Sprintf("%.2fK", volume/1_000)
	default:
		return fmt.Sprintf("%.2f", volume)
	}
}

// FormatPercent renders a signed percent change.
func FormatPercent(percent float64) string {
	if percent >= 0 {
		return fmt.Sprintf("+%.2f%%", percent)
	}
	return fmt.Sprintf("%.2f%%", percent)
}
