package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockfolio/internal/ledger"
	"stockfolio/internal/models"
	"stockfolio/internal/service"
)

func topup(date string, amount int64) models.TransactionRecord {
	return models.TransactionRecord{Date: date, Kind: models.KindTopUp, Amount: decimal.NewFromInt(amount)}
}

func dividend(date, code string, amount int64) models.TransactionRecord {
	return models.TransactionRecord{Date: date, Kind: models.KindDividend, Code: code, Amount: decimal.NewFromInt(amount)}
}

func buy(date, code string, lot, price int64) models.TransactionRecord {
	return models.TransactionRecord{
		Date: date, Kind: models.KindTransaction, Code: code,
		Amount: decimal.NewFromInt(-lot * price * models.SharesPerLot), Lot: lot, Price: price,
	}
}

func sell(date, code string, lot, price int64) models.TransactionRecord {
	return models.TransactionRecord{
		Date: date, Kind: models.KindTransaction, Code: code,
		Amount: decimal.NewFromInt(lot * price * models.SharesPerLot), Lot: lot, Price: price,
	}
}

func fixture() []models.TransactionRecord {
	return []models.TransactionRecord{
		topup("01/01/2024", 10000000),
		buy("02/01/2024", "BBCA", 5, 9000),
		buy("03/01/2024", "TLKM", 10, 4000),
		dividend("15/03/2024", "BBCA", 45000),
		sell("20/03/2024", "TLKM", 10, 4500),
		buy("01/04/2024", "BBCA", 5, 10000),
	}
}

func fixturePrices() service.StaticPrices {
	return service.StaticPrices{
		"BBCA": decimal.NewFromInt(10500),
		"TLKM": decimal.NewFromInt(5000),
	}
}

func TestBuildPortfolio(t *testing.T) {
	e := New(fixturePrices(), nil)
	p := e.BuildPortfolio(context.Background(), fixture())

	require.Len(t, p.Items, 1, "closed TLKM must be left out")
	it := p.Items[0]
	assert.Equal(t, "BBCA", it.Code)
	assert.Equal(t, int64(10), it.TotalLot)
	assert.Equal(t, int64(9500), it.AvgPrice)
	assert.Equal(t, int64(9500000), it.TotalValue)
	assert.Equal(t, int64(10500), it.LatestPrice)
	assert.Equal(t, "10.53", formatPct(it.ProfitPct))
	assert.Equal(t, "100.00", formatPct(it.RatioPct))
	assert.True(t, p.GrandTotal.Equal(decimal.NewFromInt(9500000)))
}

func TestBuildPortfolioRatiosSumToHundred(t *testing.T) {
	e := New(service.StaticPrices{}, nil)
	p := e.BuildPortfolio(context.Background(), []models.TransactionRecord{
		buy("01/01/2024", "AAAA", 1, 1000),
		buy("01/01/2024", "BBBB", 2, 1000),
		buy("01/01/2024", "CCCC", 3, 777),
	})
	require.Len(t, p.Items, 3)

	sum := decimal.Zero
	for _, it := range p.Items {
		sum = sum.Add(decimal.RequireFromString(formatPct(it.RatioPct)))
	}
	assert.True(t, sum.Sub(decimal.NewFromInt(100)).Abs().LessThanOrEqual(decimal.RequireFromString("0.02")), "sum %s", sum)
	assert.Equal(t, []string{"AAAA", "BBBB", "CCCC"}, []string{p.Items[0].Code, p.Items[1].Code, p.Items[2].Code})
}

func TestBuildPortfolioExcludesShortPositions(t *testing.T) {
	e := New(fixturePrices(), nil)
	p := e.BuildPortfolio(context.Background(), []models.TransactionRecord{
		buy("01/01/2024", "BBCA", 2, 9000),
		sell("02/01/2024", "BBCA", 5, 9100),
	})
	assert.Empty(t, p.Items)
	assert.True(t, p.GrandTotal.IsZero())
}

func TestRatiosGuardedWhenGrandTotalNotPositive(t *testing.T) {
	prices := service.StaticPrices{
		"X": decimal.NewFromInt(1200),
		"Y": decimal.NewFromInt(200),
	}
	e := New(prices, nil)
	trxs := []models.TransactionRecord{
		topup("01/01/2024", 1000000),
		buy("02/01/2024", "X", 2, 9000),
		sell("03/01/2024", "X", 5, 9100),
		buy("04/01/2024", "X", 4, 1000),
		buy("05/01/2024", "Y", 1, 150),
	}
	report := e.Build(context.Background(), trxs)

	// X folds to 1 lot with a negative weighted sum
	require.Len(t, report.Portfolio.Items, 2)
	assert.Equal(t, "-2335000", report.Portfolio.GrandTotal.String())

	snap := report.Render(time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC))
	for _, it := range snap.Portfolio {
		assert.Equal(t, "0.00", it.Ratio, it.Code)
	}
	assert.Equal(t, "0.00", snap.Portfolio[0].Profit)
	assert.Equal(t, "33.33", snap.Portfolio[1].Profit)

	assert.Equal(t, "-233.50", snap.Funds.TotalInvested)
	assert.Equal(t, "333.50", snap.Funds.TotalCash)
}

func TestPortfolioFoldIgnoresLedgerClamp(t *testing.T) {
	trxs := []models.TransactionRecord{
		buy("02/01/2024", "X", 2, 9000),
		sell("03/01/2024", "X", 5, 9100),
		buy("04/01/2024", "X", 4, 1000),
	}
	st := ledger.Replay(trxs, nil).State("X")
	assert.Equal(t, int64(4), st.Lots)
	assert.True(t, st.Cost.Equal(decimal.NewFromInt(4000)))

	p := New(service.StaticPrices{"X": decimal.NewFromInt(1000)}, nil).
		BuildPortfolio(context.Background(), trxs)
	require.Len(t, p.Items, 1)
	assert.Equal(t, int64(1), p.Items[0].TotalLot)
	assert.Equal(t, int64(-23500), p.Items[0].AvgPrice)
}

func TestRatiosGuardedForZeroPriceBuy(t *testing.T) {
	e := New(fixturePrices(), nil)
	p := e.BuildPortfolio(context.Background(), []models.TransactionRecord{
		buy("01/01/2024", "BBCA", 3, 0),
	})
	require.Len(t, p.Items, 1)
	assert.True(t, p.GrandTotal.IsZero())
	assert.Equal(t, "0.00", formatPct(p.Items[0].RatioPct))
	assert.Equal(t, "0.00", formatPct(p.Items[0].ProfitPct))
}

func TestBuildPortfolioPriceFailure(t *testing.T) {
	log, hook := test.NewNullLogger()
	prices := service.PriceFunc(func(_ context.Context, code string) (decimal.Decimal, error) {
		if code == "TLKM" {
			return decimal.Zero, errors.New("timeout")
		}
		return decimal.NewFromInt(10000), nil
	})
	e := New(prices, log)
	p := e.BuildPortfolio(context.Background(), []models.TransactionRecord{
		buy("01/01/2024", "TLKM", 1, 4000),
		buy("01/01/2024", "BBCA", 1, 9000),
	})

	require.Len(t, p.Items, 2)
	assert.Equal(t, int64(0), p.Items[0].LatestPrice)
	assert.Equal(t, "-100.00", formatPct(p.Items[0].ProfitPct))
	assert.Equal(t, int64(10000), p.Items[1].LatestPrice)

	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Contains(t, hook.LastEntry().Message, "TLKM")
}

func TestBuildProfit(t *testing.T) {
	e := New(fixturePrices(), nil)
	trxs := fixture()
	m := e.BuildProfit(trxs, e.BuildPortfolio(context.Background(), trxs))

	assert.True(t, m.RealizedPL.Equal(decimal.NewFromInt(500000)), "realized %s", m.RealizedPL)
	assert.True(t, m.UnrealizedPL.Equal(decimal.NewFromInt(1000000)), "unrealized %s", m.UnrealizedPL)
	assert.Equal(t, "0.45", formatPct(m.DividendPct))
	assert.Equal(t, "10.53", formatPct(m.UnrealizedPct))
	assert.Equal(t, "5.00", formatPct(m.RealizedPct))
	assert.Equal(t, "15.45", formatPct(m.TotalProfitPct))
}

func TestBuildProfitRoundTrip(t *testing.T) {
	e := New(nil, nil)
	trxs := []models.TransactionRecord{
		topup("01/01/2024", 1000000),
		buy("02/01/2024", "ASII", 10, 1000),
		sell("03/01/2024", "ASII", 10, 1200),
	}
	m := e.BuildProfit(trxs, e.BuildPortfolio(context.Background(), trxs))
	assert.True(t, m.RealizedPL.Equal(decimal.NewFromInt(200000)))
	assert.Equal(t, "20.00", formatPct(m.RealizedPct))
	assert.Equal(t, "0.00", formatPct(m.UnrealizedPct))
}

func TestZeroTopUp(t *testing.T) {
	e := New(fixturePrices(), nil)
	trxs := []models.TransactionRecord{
		buy("02/01/2024", "BBCA", 5, 9000),
		dividend("15/03/2024", "BBCA", 45000),
		sell("20/03/2024", "BBCA", 1, 9900),
	}
	snap := e.Build(context.Background(), trxs).Render(time.Now())

	assert.Equal(t, "0.00", snap.Profit.Dividend)
	assert.Equal(t, "0.00", snap.Profit.RealizedPL)
	assert.Equal(t, "0.00", snap.Profit.TotalProfit)
	assert.Equal(t, "0.00", snap.Funds.TotalInvested)
	assert.Equal(t, "0.00", snap.Funds.TotalCash)
}

func TestBuildFunds(t *testing.T) {
	e := New(fixturePrices(), nil)
	trxs := fixture()
	f := e.BuildFunds(trxs, e.BuildPortfolio(context.Background(), trxs))
	assert.Equal(t, "95.00", formatPct(f.InvestedPct))
	assert.Equal(t, "5.00", formatPct(f.CashPct))
	assert.True(t, f.InvestedPct.Add(f.CashPct).Equal(decimal.NewFromInt(100)))
}

func TestBuildActivity(t *testing.T) {
	e := New(nil, nil)
	feed := e.BuildActivity(fixture())

	want := []ActivityEntry{
		{Time: "01/04/2024", Description: "melakukan <strong>pembelian</strong> saham <strong>BBCA</strong>"},
		{Time: "20/03/2024", Description: "melakukan <strong>penjualan</strong> saham <strong>TLKM</strong>"},
		{Time: "15/03/2024", Description: "mendapatkan <strong>dividen</strong> dari <strong>BBCA</strong> sebesar 1.00%"},
		{Time: "03/01/2024", Description: "melakukan <strong>pembelian</strong> saham <strong>TLKM</strong>"},
		{Time: "02/01/2024", Description: "melakukan <strong>pembelian</strong> saham <strong>BBCA</strong>"},
		{Time: "01/01/2024", Description: "melakukan <strong>topup</strong> modal"},
	}
	assert.Equal(t, want, feed)
}

func TestDividendYieldOnHistoricalPosition(t *testing.T) {
	e := New(nil, nil)
	feed := e.BuildActivity([]models.TransactionRecord{
		buy("01/01/2024", "BBRI", 5, 100000),
		dividend("01/02/2024", "BBRI", 50000),
	})
	require.Len(t, feed, 2)
	assert.Equal(t, "mendapatkan <strong>dividen</strong> dari <strong>BBRI</strong> sebesar 0.10%", feed[0].Description)
}

func TestDividendYieldFallsBackToPeakPosition(t *testing.T) {
	e := New(nil, nil)
	trxs := []models.TransactionRecord{
		dividend("01/01/2024", "UNVR", 12000),
		dividend("not a date", "UNVR", 12000),
		buy("01/02/2024", "UNVR", 3, 1000),
		buy("01/03/2024", "UNVR", 2, 1500),
		sell("01/04/2024", "UNVR", 4, 1600),
	}
	feed := e.BuildActivity(trxs)
	require.Len(t, feed, 5)
	// peak is 5 lots costing 6000, valued 600000
	assert.Equal(t, "mendapatkan <strong>dividen</strong> dari <strong>UNVR</strong> sebesar 2.00%", feed[3].Description)
	assert.Equal(t, "not a date", feed[3].Time)
	assert.Equal(t, feed[3].Description, feed[4].Description)
}

func TestDividendYieldUnresolved(t *testing.T) {
	e := New(nil, nil)
	feed := e.BuildActivity([]models.TransactionRecord{
		dividend("01/01/2024", "ANTM", 1000),
		dividend("01/01/2024", "", 1000),
		sell("01/01/2024", "PTBA", 1, 1000),
		dividend("02/01/2024", "PTBA", 1000),
	})
	require.Len(t, feed, 4)
	assert.Equal(t, "mendapatkan <strong>dividen</strong> dari <strong>PTBA</strong> sebesar 0%", feed[0].Description)
	assert.Equal(t, "mendapatkan <strong>dividen</strong> dari <strong></strong> sebesar 0%", feed[2].Description)
	assert.Equal(t, "mendapatkan <strong>dividen</strong> dari <strong>ANTM</strong> sebesar 0%", feed[3].Description)
}

func TestActivityStripsMarkupFromCodes(t *testing.T) {
	e := New(nil, nil)
	feed := e.BuildActivity([]models.TransactionRecord{
		buy("<i>01/01/2024</i>", "<script>alert(1)</script>BBCA", 1, 1000),
	})
	require.Len(t, feed, 1)
	assert.Equal(t, "<i>01/01/2024</i>", feed[0].Time)
	assert.NotContains(t, feed[0].Description, "<script>")
	assert.Contains(t, feed[0].Description, "BBCA</strong>")
}

func TestSnapshotIsDeterministic(t *testing.T) {
	e := New(fixturePrices(), nil)
	e.now = func() time.Time { return time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC) }

	first, err := json.Marshal(e.Snapshot(context.Background(), fixture()))
	require.NoError(t, err)
	second, err := json.Marshal(e.Snapshot(context.Background(), fixture()))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(first, &doc))
	assert.Equal(t, "09:30 16/10/2026", doc["last_update"])
	assert.Equal(t, float64(9500000), doc["grand_total"])
	assert.Equal(t, map[string]any{"totalInvested": "95.00", "totalCash": "5.00"}, doc["funds"])
	assert.Equal(t, map[string]any{
		"dividend":      "0.45",
		"unrealized_pl": "10.53",
		"realized_pl":   "5.00",
		"total_profit":  "15.45",
	}, doc["profit"])
	assert.Equal(t, []any{map[string]any{
		"code":         "BBCA",
		"avg_price":    float64(9500),
		"latest_price": float64(10500),
		"profit":       "10.53",
		"ratio":        "100.00",
	}}, doc["portfolio"])
}

func TestSnapshotEmptyLedger(t *testing.T) {
	e := New(nil, nil)
	out, err := json.Marshal(e.Snapshot(context.Background(), nil))
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, []any{}, doc["portfolio"])
	assert.Equal(t, []any{}, doc["activity"])
	assert.Equal(t, float64(0), doc["grand_total"])
}
