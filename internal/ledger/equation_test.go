package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallywallet/tallywallet/internal/currency"
	"github.com/tallywallet/tallywallet/internal/exchange"
)

func TestEquation_EmptyLedger(t *testing.T) {
	l := selinger(t)
	eq := l.Equation()
	assert.True(t, eq.OK())
	assert.True(t, eq.LHS.Valid)
	assert.True(t, eq.RHS.Valid)
}

func TestEquation_MissingRate(t *testing.T) {
	l := selinger(t, cadCash, usCash, capital)
	eq := l.Equation()
	assert.Equal(t, StatusFailed, eq.Status)
	assert.False(t, eq.LHS.Valid)
	assert.False(t, eq.RHS.Valid)
	assert.ErrorIs(t, eq.Err, exchange.ErrNoRate)
	assert.Contains(t, eq.String(), "US cash")
}

func TestEquation_PairedCommits(t *testing.T) {
	l := selinger(t, cadCash, capital, expense, NewColumn("Loan", currency.CAD, RoleLiability, ""))
	require.True(t, l.Equation().OK())

	pairs := []struct {
		left, right Column
		amount      string
	}{
		{cadCash, capital, "500"},
		{expense, capital, "12.34"},
		{cadCash, l.ByLabel()["Loan"], "-80"},
	}
	for _, p := range pairs {
		require.True(t, l.Post(dec(p.amount), p.left, nil).OK())
		assert.Equal(t, StatusFailed, l.Equation().Status, "one side only: %s", p.left.Name())
		require.True(t, l.Post(dec(p.amount), p.right, nil).OK())
		assert.Equal(t, StatusOK, l.Equation().Status, "both sides: %s", p.right.Name())
	}

	// Moving value between two left-hand columns keeps the balance.
	require.True(t, l.Post(dec("-20"), cadCash, nil).OK())
	require.True(t, l.Post(dec("20"), expense, nil).OK())
	assert.True(t, l.Equation().OK())
}

func TestEquation_DividendAndIncome(t *testing.T) {
	dividend := NewColumn("Drawings", currency.CAD, RoleDividend, "")
	income := NewColumn("Sales", currency.CAD, RoleIncome, "")
	l := selinger(t, cadCash, dividend, income)

	require.True(t, l.Post(dec("100"), cadCash, nil).OK())
	require.True(t, l.Post(dec("100"), income, nil).OK())
	require.True(t, l.Equation().OK())

	require.True(t, l.Post(dec("-30"), cadCash, nil).OK())
	require.True(t, l.Post(dec("30"), dividend, nil).OK())
	eq := l.Equation()
	require.True(t, eq.OK())
	assertDec(t, "100", eq.LHS.Decimal)
	assertDec(t, "100", eq.RHS.Decimal)
}

// Both sides are rounded to EquationPlaces, half away from zero, before
// they are compared.
func TestEquation_RoundingPolicy(t *testing.T) {
	assert.Equal(t, 2, EquationPlaces)

	tests := []struct {
		asset string
		want  Status
	}{
		{"0.004", StatusOK},
		{"0.0049999", StatusOK},
		{"0.005", StatusFailed},
		{"-0.004", StatusOK},
		{"-0.005", StatusFailed},
		{"0.01", StatusFailed},
	}
	for _, tt := range tests {
		l := selinger(t, cadCash, capital)
		require.True(t, l.Post(dec(tt.asset), cadCash, nil).OK())
		eq := l.Equation()
		assert.Equal(t, tt.want, eq.Status, "asset %s", tt.asset)
		assertDec(t, tt.asset, eq.LHS.Decimal, "LHS is reported unrounded")
	}
}

func TestEquation_NoSideEffects(t *testing.T) {
	l := selinger(t, cadCash, usCash, capital)
	_, err := l.Revalue(usdCAD("1.2"), nil)
	require.NoError(t, err)
	require.True(t, l.Post(dec("100"), usCash, nil).OK())

	before := snapshot(l)
	history := len(l.History())
	for i := 0; i < 3; i++ {
		l.Equation()
	}
	assert.Equal(t, before, snapshot(l))
	assert.Len(t, l.History(), history)
}

func TestEquation_String(t *testing.T) {
	l := selinger(t, cadCash, capital)
	require.True(t, l.Post(dec("10"), cadCash, nil).OK())
	assert.Equal(t, "failed: 10.00 = 0.00", l.Equation().String())
}

// Two assets and one capital column; a rate move shows up in the USD trading
// account only and the books stay balanced.
func TestScenario_RevaluationGain(t *testing.T) {
	l := selinger(t, cadCash, usCash, capital)

	for adj, err := range l.Adjustments(usdCAD("1.2"), usCash) {
		require.NoError(t, err)
		assert.True(t, adj.Gain.IsZero())
		require.True(t, l.Apply(adj, Meta{"ts": "2013-01-01"}).OK())
	}

	for _, p := range []struct {
		col    Column
		amount string
	}{
		{cadCash, "60"},
		{usCash, "100"},
		{capital, "180"},
	} {
		require.True(t, l.Post(dec(p.amount), p.col, Meta{"note": "Initial balance"}).OK())
	}
	eq := l.Equation()
	require.Equal(t, StatusOK, eq.Status, eq.String())
	assertDec(t, "180", eq.LHS.Decimal)
	assertDec(t, "180", eq.RHS.Decimal)

	adj, err := onlyAdjustment(l, usdCAD("1.3"), usCash)
	require.NoError(t, err)
	assert.Equal(t, usCash, adj.Column)
	assertDec(t, "10", adj.Gain.Gain)

	require.True(t, l.Apply(adj, nil).OK())
	assertDec(t, "10", mustValue(t, l, "USD trading account"))
	assertDec(t, "100", mustValue(t, l, "US cash"))
	eq = l.Equation()
	assert.Equal(t, StatusOK, eq.Status, eq.String())
	assertDec(t, "190", eq.LHS.Decimal)
}

// Selinger, "Accounting for foreign exchange", table 4.1: previews against a
// fixed committed rate.
//
//	date                             asset  asset   capital gain
//	Jan 1 Balance (1 USD = 1.20 CAD) CAD 60 USD 100 CAD 180 CAD 0
//	Jan 2 Balance (1 USD = 1.30 CAD) CAD 60 USD 100 CAD 180 CAD 10
//	Jan 3 Balance (1 USD = 1.25 CAD) CAD 60 USD 100 CAD 180 CAD 5
//	Jan 4 Balance (1 USD = 1.15 CAD) CAD 60 USD 100 CAD 180 – CAD 5
func TestScenario_FixedAssetGains(t *testing.T) {
	l := selinger(t, cadCash, usCash, capital)
	_, err := l.Revalue(usdCAD("1.2"), Meta{"note": "1 USD = 1.20 CAD"})
	require.NoError(t, err)
	require.True(t, l.Equation().OK())

	for _, p := range []struct {
		col    Column
		amount string
	}{
		{cadCash, "60"},
		{usCash, "100"},
		{capital, "180"},
	} {
		require.True(t, l.Post(dec(p.amount), p.col, nil).OK())
	}
	require.True(t, l.Equation().OK())

	for rate, gain := range map[string]string{"1.3": "10", "1.25": "5", "1.15": "-5"} {
		adj, err := onlyAdjustment(l, usdCAD(rate), usCash)
		require.NoError(t, err)
		assertDec(t, gain, adj.Gain.Gain, "rate ", rate)
	}
	assert.True(t, l.Equation().OK())
}

// Selinger table 4.4: currency bought, partly spent and sold back while the
// rate moves; the trading account ends at CAD 7.
func TestScenario_GainViaExpenses(t *testing.T) {
	l := selinger(t, cadCash, usCash, capital, expense)
	assert.Equal(t, StatusFailed, l.Equation().Status, "USD has no rate yet")

	// Jan 1: opening balance.
	for _, p := range []struct {
		col    Column
		amount string
	}{
		{cadCash, "200"},
		{usCash, "0"},
		{capital, "200"},
		{expense, "0"},
	} {
		require.True(t, l.Post(dec(p.amount), p.col, Meta{"note": "Opening balance"}).OK())
	}
	assertDec(t, "200", mustValue(t, l, "Canadian cash"))
	assertDec(t, "0", mustValue(t, l, "USD trading account"))
	assert.Equal(t, StatusFailed, l.Equation().Status)

	// Jan 2: buy USD 100 at 1.20.
	ex := usdCAD("1.2")
	_, err := l.Revalue(ex, Meta{"note": "1 USD = 1.20 CAD"})
	require.NoError(t, err)
	require.True(t, l.Equation().OK())

	usd, err := ex.Convert(dec("120"), exchange.Path(currency.CAD, currency.CAD, currency.USD), exchange.NoFees)
	require.NoError(t, err)
	usd = usd.Round(2)
	assertDec(t, "100", usd)
	l.Post(dec("-120"), cadCash, nil)
	assert.Equal(t, StatusFailed, l.Equation().Status)
	l.Post(usd, usCash, nil)
	assert.Equal(t, StatusOK, l.Equation().Status)

	// Jan 3: spend USD 40 at 1.30.
	ex = usdCAD("1.3")
	_, err = l.Revalue(ex, Meta{"note": "1 USD = 1.30 CAD"})
	require.NoError(t, err)
	cad, err := ex.Convert(dec("40"), exchange.Path(currency.USD, currency.CAD, currency.CAD), exchange.NoFees)
	require.NoError(t, err)
	assertDec(t, "52", cad)
	assert.Equal(t, StatusOK, l.Equation().Status)
	l.Post(dec("-40"), usCash, nil)
	assert.Equal(t, StatusFailed, l.Equation().Status)
	l.Post(cad, expense, nil)
	assert.Equal(t, StatusOK, l.Equation().Status)

	// Jan 5: sell the remaining USD 60 at 1.25.
	ex = usdCAD("1.25")
	_, err = l.Revalue(ex, Meta{"note": "1 USD = 1.25 CAD"})
	require.NoError(t, err)
	cad, err = ex.Convert(dec("60"), exchange.Path(currency.USD, currency.CAD, currency.CAD), exchange.NoFees)
	require.NoError(t, err)
	assertDec(t, "75", cad)
	assert.Equal(t, StatusOK, l.Equation().Status)
	l.Post(dec("-60"), usCash, nil)
	assert.Equal(t, StatusFailed, l.Equation().Status)
	l.Post(cad, cadCash, nil)
	assert.Equal(t, StatusOK, l.Equation().Status)
	assertDec(t, "155", mustValue(t, l, "Canadian cash"))

	// Jan 7: buy food.
	l.Post(dec("-20"), cadCash, Meta{"note": "Buy food"})
	assert.Equal(t, StatusFailed, l.Equation().Status)
	l.Post(dec("20"), expense, Meta{"note": "Buy food"})
	assert.Equal(t, StatusOK, l.Equation().Status)

	want := map[string]string{
		"Canadian cash":       "135",
		"US cash":             "0",
		"Capital":             "200",
		"Expense":             "72",
		"USD trading account": "7",
		"CAD trading account": "0",
	}
	for name, v := range want {
		assertDec(t, v, mustValue(t, l, name), name)
	}
}

func TestScenario_ForeignLiability(t *testing.T) {
	loan := NewColumn("Loan", currency.USD, RoleLiability, "")
	l := selinger(t, cadCash, loan)
	_, err := l.Revalue(usdCAD("1.2"), nil)
	require.NoError(t, err)

	// Borrow USD 100 and hold the proceeds in CAD.
	require.True(t, l.Post(dec("100"), loan, nil).OK())
	require.True(t, l.Post(dec("120"), cadCash, nil).OK())
	require.True(t, l.Equation().OK())

	// The USD strengthens: the debt grows by CAD 30 and the trading account
	// offsets it.
	results, err := l.Revalue(usdCAD("1.5"), nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assertDec(t, "30", results[1].Value.(Revaluation).Gain)
	assertDec(t, "-30", mustValue(t, l, "USD trading account"))

	eq := l.Equation()
	require.Equal(t, StatusOK, eq.Status, eq.String())
	assertDec(t, "120", eq.LHS.Decimal)
	assertDec(t, "120", eq.RHS.Decimal)
}

func TestScenario_MixedSides(t *testing.T) {
	loan := NewColumn("Loan", currency.USD, RoleLiability, "")
	l := selinger(t, cadCash, usCash, capital, loan)
	_, err := l.Revalue(usdCAD("1.2"), nil)
	require.NoError(t, err)

	require.True(t, l.Post(dec("500"), usCash, nil).OK())
	require.True(t, l.Post(dec("200"), loan, nil).OK())
	require.True(t, l.Post(dec("360"), capital, nil).OK())
	require.True(t, l.Equation().OK())

	for _, rate := range []string{"1.31", "0.97", "1.2345"} {
		_, err := l.Revalue(usdCAD(rate), nil)
		require.NoError(t, err)
		eq := l.Equation()
		assert.True(t, eq.OK(), "rate %s: %s", rate, eq)
	}
	// Net USD exposure is 300; 300 * (1.2345 - 1.2) = 10.35.
	assertDec(t, "10.35", mustValue(t, l, "USD trading account"))
}
