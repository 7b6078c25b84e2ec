package orderbook

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case Buy, Sell:
		return Side(s), nil
	}
	return "", fmt.Errorf("invalid side %q", s)
}

// Level is one price level of an L2 snapshot. Immutable once parsed.
type Level struct {
	Price float64
	Qty   float64
}

// Book is a single-request snapshot of levels. No ordering is assumed on
// input; Walk sorts before consuming.
type Book []Level

var (
	ErrEmptyBook = errors.New("orderbook is empty")
	ErrBadTarget = errors.New("target quantity must be positive")
)

// ParseLevels builds a Book from raw [price, qty] string pairs as they
// arrive on the wire. Prices must be positive, quantities non-negative.
func ParseLevels(raw [][]string) (Book, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyBook
	}
	book := make(Book, 0, len(raw))
	for i, pair := range raw {
		if len(pair) != 2 {
			return nil, fmt.Errorf("level %d: expected [price, qty] pair, got %d elements", i, len(pair))
		}
		price, err := decimal.NewFromString(pair[0])
		if err != nil {
			return nil, fmt.Errorf("level %d: bad price %q: %w", i, pair[0], err)
		}
		qty, err := decimal.NewFromString(pair[1])
		if err != nil {
			return nil, fmt.Errorf("level %d: bad quantity %q: %w", i, pair[1], err)
		}
		if !price.IsPositive() {
			return nil, fmt.Errorf("level %d: price must be positive, got %s", i, price)
		}
		if qty.IsNegative() {
			return nil, fmt.Errorf("level %d: quantity must be non-negative, got %s", i, qty)
		}
		book = append(book, Level{Price: price.InexactFloat64(), Qty: qty.InexactFloat64()})
	}
	return book, nil
}

// Fill is the outcome of walking a book for a target quantity.
type Fill struct {
	RequestedQty float64
	FilledQty    float64
	Notional     float64 // sum of price*qty over consumed levels
	StartPrice   float64 // best price in the sorted book
	AvgFillPrice float64 // Notional / RequestedQty
	Partial      bool    // book depth was insufficient
}

// Walk consumes the book best-price-first for the given side and target
// quantity: ascending prices for a buy, descending for a sell. The terminal
// level is consumed only up to the remaining quantity.
//
// When depth is insufficient, AvgFillPrice still divides by the requested
// quantity, which understates the true cost; Partial is set so callers can
// surface the degraded estimate instead of treating it as a full fill.
func Walk(book Book, side Side, targetQty float64) (Fill, error) {
	if len(book) == 0 {
		return Fill{}, ErrEmptyBook
	}
	if targetQty <= 0 {
		return Fill{}, ErrBadTarget
	}

	sorted := make(Book, len(book))
	copy(sorted, book)
	sort.Slice(sorted, func(i, j int) bool {
		if side == Sell {
			return sorted[i].Price > sorted[j].Price
		}
		return sorted[i].Price < sorted[j].Price
	})

	f := Fill{RequestedQty: targetQty, StartPrice: sorted[0].Price}
	for _, lvl := range sorted {
		if f.FilledQty+lvl.Qty >= targetQty {
			use := targetQty - f.FilledQty
			f.Notional += use * lvl.Price
			f.FilledQty = targetQty
			break
		}
		f.Notional += lvl.Qty * lvl.Price
		f.FilledQty += lvl.Qty
	}
	f.AvgFillPrice = f.Notional / targetQty
	f.Partial = f.FilledQty < targetQty
	return f, nil
}
