package analytics

import (
	"context"

	"github.com/shopspring/decimal"

	"stockfolio/internal/models"
)

// PortfolioItem is one open holding.
type PortfolioItem struct {
	Code        string
	TotalLot    int64
	AvgPrice    int64
	TotalValue  int64
	LatestPrice int64
	ProfitPct   decimal.Decimal
	RatioPct    decimal.Decimal
}

// UnrealizedPL is the paper profit of the holding at its latest price.
func (it PortfolioItem) UnrealizedPL() decimal.Decimal {
	return decimal.NewFromInt(it.LatestPrice - it.AvgPrice).
		Mul(decimal.NewFromInt(it.TotalLot)).
		Mul(sharesPerLot)
}

// Portfolio is the set of open holdings and their summed value.
type Portfolio struct {
	Items      []PortfolioItem
	GrandTotal decimal.Decimal
}

// TotalValue sums the truncated values of the items.
func (p Portfolio) TotalValue() decimal.Decimal {
	total := decimal.Zero
	for _, it := range p.Items {
		total = total.Add(decimal.NewFromInt(it.TotalValue))
	}
	return total
}

type position struct {
	lots     int64
	weighted decimal.Decimal
}

// BuildPortfolio folds trades into open holdings and prices them. Holdings
// appear in the order their code was first traded; closed or net-short
// holdings are left out. A failed price lookup values the holding at 0.
func (e *Engine) BuildPortfolio(ctx context.Context, trxs []models.TransactionRecord) Portfolio {
	var order []string
	acc := map[string]*position{}
	for _, t := range trxs {
		if !t.IsTrade() {
			continue
		}
		p, ok := acc[t.Code]
		if !ok {
			p = &position{weighted: decimal.Zero}
			acc[t.Code] = p
			order = append(order, t.Code)
		}
		w := decimal.NewFromInt(t.Lot * t.Price)
		if t.IsSell() {
			p.lots -= t.Lot
			p.weighted = p.weighted.Sub(w)
		} else {
			p.lots += t.Lot
			p.weighted = p.weighted.Add(w)
		}
	}

	out := Portfolio{Items: []PortfolioItem{}, GrandTotal: decimal.Zero}
	for _, code := range order {
		p := acc[code]
		if p.lots <= 0 {
			continue
		}
		avg := p.weighted.Div(decimal.NewFromInt(p.lots))
		value := p.weighted.Mul(sharesPerLot)
		latest := e.latestPrice(ctx, code)

		profit := decimal.Zero
		if avg.IsPositive() {
			profit = latest.Sub(avg).Div(avg).Mul(hundred)
		}

		out.GrandTotal = out.GrandTotal.Add(value)
		out.Items = append(out.Items, PortfolioItem{
			Code:        code,
			TotalLot:    p.lots,
			AvgPrice:    avg.IntPart(),
			TotalValue:  value.IntPart(),
			LatestPrice: latest.IntPart(),
			ProfitPct:   profit,
			RatioPct:    decimal.Zero,
		})
	}

	for i := range out.Items {
		out.Items[i].RatioPct = percentOf(decimal.NewFromInt(out.Items[i].TotalValue), out.GrandTotal)
	}
	return out
}

func (e *Engine) latestPrice(ctx context.Context, code string) decimal.Decimal {
	if e.prices == nil {
		return decimal.Zero
	}
	price, _, err := e.prices.GetPrice(ctx, code)
	if err != nil {
		e.log.Warnf("could not fetch price for %s: %v", code, err)
		return decimal.Zero
	}
	return price
}
