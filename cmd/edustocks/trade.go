package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/atharvakonge/edustocks/internal/models"
	"github.com/atharvakonge/edustocks/internal/quotes"
	"github.com/atharvakonge/edustocks/internal/scheduler"
	"github.com/atharvakonge/edustocks/internal/trading"
)

func newTradingModel(sched *scheduler.Scheduler) *trading.Model {
	return trading.NewModel(app.backend, app.notifier, trading.Options{
		Scheduler:       sched,
		RefreshInterval: app.cfg.RefreshInterval,
		RefreshTimeout:  app.cfg.HTTPTimeout,
	}, app.log)
}

var stocksCmd = &cobra.Command{
	Use:   "stocks",
	Short: "List market quotes",
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")
		m := newTradingModel(nil)
		return app.protected(cmd.Context(), m, func(ctx context.Context) error {
			m.SetSearch(search)
			st := m.State()
			filtered := st.FilteredStocks()
			if len(filtered) == 0 {
				fmt.Println(mutedStyle.Render("No stocks match"))
				return nil
			}
			fmt.Println(stocksTable(filtered))
			return nil
		})
	},
}

func init() {
	stocksCmd.Flags().StringP("search", "s", "", "filter by symbol or name")
}

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Show balance and holdings",
	RunE: func(cmd *cobra.Command, args []string) error {
		m := newTradingModel(nil)
		return app.protected(cmd.Context(), m, func(ctx context.Context) error {
			fmt.Println(portfolioView(m.State().Portfolio))
			return nil
		})
	},
}

var buyCmd = &cobra.Command{
	Use:   "buy SYMBOL QUANTITY",
	Short: "Buy shares at the current quote",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTrade(cmd.Context(), models.Buy, args[0], args[1])
	},
}

var sellCmd = &cobra.Command{
	Use:   "sell SYMBOL QUANTITY",
	Short: "Sell shares at the current quote",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTrade(cmd.Context(), models.Sell, args[0], args[1])
	},
}

func runTrade(ctx context.Context, side models.Side, symbol, quantity string) error {
	m := newTradingModel(nil)
	return app.protected(ctx, m, func(ctx context.Context) error {
		if !m.SelectSymbol(symbol) {
			app.notifier.Error("Stock not found")
			return fmt.Errorf("unknown symbol %q", strings.ToUpper(symbol))
		}
		m.SetSide(side)
		m.SetQuantity(quantity)

		st := m.State()
		fmt.Printf("%s %s x %s @ %s = %s\n", strings.ToUpper(string(side)), st.Selected.Symbol,
			st.Quantity, money(st.Selected.Price), money(st.TradeTotal()))

		if err := m.Execute(ctx); err != nil {
			return err
		}
		st = m.State()
		if h := st.HoldingFor(st.Selected.Symbol); h != nil {
			fmt.Printf("You own %d shares of %s\n", h.Quantity, h.Symbol)
		}
		if st.Portfolio != nil {
			fmt.Printf("Cash: %s\n", money(st.Portfolio.Balance))
		}
		return nil
	})
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow quotes and the portfolio until interrupted",
	Long: `Keep the trading floor open: quotes and the portfolio reload every
EDUSTOCKS_REFRESH_INTERVAL, and live prices from EDUSTOCKS_QUOTES_URL are
applied between reloads when it is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		every, _ := cmd.Flags().GetDuration("every")
		search, _ := cmd.Flags().GetString("search")
		if every <= 0 {
			return fmt.Errorf("--every must be positive")
		}

		sched := scheduler.New(app.log)
		sched.Start()
		defer sched.Stop()

		m := newTradingModel(sched)
		return app.protected(cmd.Context(), m, func(ctx context.Context) error {
			m.SetSearch(search)
			if app.cfg.QuotesURL != "" {
				stream := quotes.NewStream(app.cfg.QuotesURL, quotes.Options{
					Tokens:         app.session,
					ReconnectDelay: 5 * time.Second,
				}, app.log)
				go func() {
					if err := stream.Run(ctx, m.ApplyQuote); err != nil {
						app.log.Error().Err(err).Msg("Quote stream stopped")
					}
				}()
			}

			ticker := time.NewTicker(every)
			defer ticker.Stop()
			for {
				renderFloor(m.State())
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
				}
			}
		})
	},
}

func init() {
	watchCmd.Flags().Duration("every", 5*time.Second, "redraw interval")
	watchCmd.Flags().StringP("search", "s", "", "filter by symbol or name")
}

func renderFloor(st trading.State) {
	fmt.Print("\033[H\033[2J")
	fmt.Println(titleStyle.Render("EduStocks trading floor"), mutedStyle.Render(time.Now().Format("15:04:05")))
	if st.Loading {
		fmt.Println(mutedStyle.Render("Loading..."))
		return
	}
	fmt.Println(stocksTable(st.FilteredStocks()))
	fmt.Println(portfolioView(st.Portfolio))
}
