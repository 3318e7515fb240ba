package trading

import (
	"strings"

	"github.com/atharvakonge/edustocks/internal/models"
)

// State is a copy of the model for rendering
type State struct {
	Stocks    []models.Stock
	Portfolio *models.Portfolio
	Selected  *models.Stock
	Quantity  string
	Side      models.Side
	Search    string
	Loading   bool
	InFlight  bool
}

// State returns a snapshot of the model
func (m *Model) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := State{
		Stocks:   append([]models.Stock(nil), m.stocks...),
		Quantity: m.quantity,
		Side:     m.side,
		Search:   m.search,
		Loading:  m.loading,
		InFlight: m.inFlight,
	}
	if m.portfolio != nil {
		p := *m.portfolio
		p.Holdings = append([]models.Holding(nil), m.portfolio.Holdings...)
		st.Portfolio = &p
	}
	if m.selected != nil {
		s := *m.selected
		st.Selected = &s
	}
	return st
}

// TradeTotal is quantity × price of the selected stock. A missing stock or
// an unparseable quantity yields 0.
func (s State) TradeTotal() float64 {
	if s.Selected == nil {
		return 0
	}
	qty, err := ParseQuantity(s.Quantity)
	if err != nil {
		return 0
	}
	return float64(qty) * s.Selected.Price
}

// FilteredStocks matches the search term case-insensitively against symbol
// or name. An empty term matches everything.
func (s State) FilteredStocks() []models.Stock {
	return FilterStocks(s.Stocks, s.Search)
}

// HoldingFor returns the user's position in symbol, if any.
func (s State) HoldingFor(symbol string) *models.Holding {
	return s.Portfolio.Holding(symbol)
}

// CanExecute reports whether the trade control should be enabled
func (s State) CanExecute() bool {
	return !s.InFlight && s.Selected != nil
}

// FilterStocks returns the stocks whose symbol or name contains term,
// ignoring case.
func FilterStocks(stocks []models.Stock, term string) []models.Stock {
	needle := strings.ToLower(term)
	out := make([]models.Stock, 0, len(stocks))
	for _, st := range stocks {
		if strings.Contains(strings.ToLower(st.Symbol), needle) ||
			strings.Contains(strings.ToLower(st.Name), needle) {
			out = append(out, st)
		}
	}
	return out
}

// TradeTotal is a convenience for State().TradeTotal()
func (m *Model) TradeTotal() float64 {
	return m.State().TradeTotal()
}

// FilteredStocks is a convenience for State().FilteredStocks()
func (m *Model) FilteredStocks() []models.Stock {
	return m.State().FilteredStocks()
}
