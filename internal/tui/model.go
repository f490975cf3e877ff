// Package tui is the three-page terminal dashboard: exploration averages
// with the cross-market snapshot, the predefined SQL runner, and a per-coin
// price trend. It consumes only the exploration service, never the store.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cross-market-pulse/internal/domain"
	"cross-market-pulse/internal/queries"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const dateLayout = "2006-01-02"

type page int

const (
	pageExplore page = iota
	pageRunner
	pageTrend
)

var pageNames = []string{"Explore", "SQL Runner", "Trend"}

// Explorer is the slice of the exploration service the dashboard needs.
type Explorer interface {
	RunQuery(ctx context.Context, query string) (*domain.ResultTable, error)
	AverageCoinPrice(ctx context.Context, coinID, start, end string) (float64, error)
	AverageOilPrice(ctx context.Context, start, end string) (float64, error)
	AverageStockClose(ctx context.Context, ticker, start, end string) (float64, error)
	DailySnapshot(ctx context.Context, start, end string) ([]domain.SnapshotRow, error)
	ListTrackedCoins(ctx context.Context) ([]domain.TrackedCoin, error)
	CoinPriceSeries(ctx context.Context, coinID, start, end string) ([]domain.CoinPrice, error)
}

type exploreData struct {
	coinAvg  float64
	oilAvg   float64
	stockAvg float64
	snapshot []domain.SnapshotRow
}

type (
	exploreLoadedMsg exploreData
	coinsLoadedMsg   []domain.TrackedCoin
	seriesLoadedMsg  []domain.CoinPrice
	queryResultMsg   *domain.ResultTable
	errMsg           struct{ err error }
)

type Model struct {
	explore Explorer

	page    page
	width   int
	height  int
	errText string

	// Explore page
	data          exploreData
	snapshotTable table.Model

	// SQL runner page
	cursor      int
	resultTable table.Model
	hasResult   bool

	// Trend page
	coins     []domain.TrackedCoin
	coinIndex int
	series    []domain.CoinPrice
}

func NewModel(explore Explorer) Model {
	return Model{
		explore:       explore,
		snapshotTable: newTable(),
		resultTable:   newTable(),
	}
}

func newTable() table.Model {
	t := table.New(table.WithHeight(12))
	s := table.DefaultStyles()
	s.Header = s.Header.Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true)
	s.Selected = s.Selected.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	t.SetStyles(s)
	return t
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadExplore(), m.loadCoins())
}

func trailingRange(days int) (string, string) {
	now := time.Now().UTC()
	return now.AddDate(0, 0, -days).Format(dateLayout), now.Format(dateLayout)
}

func (m Model) loadExplore() tea.Cmd {
	explore := m.explore
	return func() tea.Msg {
		ctx := context.Background()
		start, end := trailingRange(90)

		var d exploreData
		var err error
		if d.coinAvg, err = explore.AverageCoinPrice(ctx, "bitcoin", start, end); err != nil {
			return errMsg{err}
		}
		if d.oilAvg, err = explore.AverageOilPrice(ctx, start, end); err != nil {
			return errMsg{err}
		}
		if d.stockAvg, err = explore.AverageStockClose(ctx, "^GSPC", start, end); err != nil {
			return errMsg{err}
		}
		if d.snapshot, err = explore.DailySnapshot(ctx, start, end); err != nil {
			return errMsg{err}
		}
		return exploreLoadedMsg(d)
	}
}

func (m Model) loadCoins() tea.Cmd {
	explore := m.explore
	return func() tea.Msg {
		coins, err := explore.ListTrackedCoins(context.Background())
		if err != nil {
			return errMsg{err}
		}
		return coinsLoadedMsg(coins)
	}
}

func (m Model) loadSeries(coinID string) tea.Cmd {
	explore := m.explore
	return func() tea.Msg {
		start, end := trailingRange(365)
		series, err := explore.CoinPriceSeries(context.Background(), coinID, start, end)
		if err != nil {
			return errMsg{err}
		}
		return seriesLoadedMsg(series)
	}
}

func (m Model) runCatalogQuery(sql string) tea.Cmd {
	explore := m.explore
	return func() tea.Msg {
		result, err := explore.RunQuery(context.Background(), sql)
		if err != nil {
			// A failing query is shown, never fatal to the session.
			return errMsg{err}
		}
		return queryResultMsg(result)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case errMsg:
		m.errText = msg.err.Error()
		return m, nil

	case exploreLoadedMsg:
		m.data = exploreData(msg)
		m.snapshotTable.SetColumns([]table.Column{
			{Title: "Date", Width: 12},
			{Title: "Coin $", Width: 12},
			{Title: "Oil $", Width: 10},
			{Title: "S&P 500", Width: 10},
			{Title: "NIFTY", Width: 10},
		})
		rows := make([]table.Row, 0, len(m.data.snapshot))
		for _, s := range m.data.snapshot {
			rows = append(rows, table.Row{
				s.Date,
				fmt.Sprintf("%.2f", s.CoinPrice),
				fmt.Sprintf("%.2f", s.OilPrice),
				fmt.Sprintf("%.2f", s.IndexAClose),
				fmt.Sprintf("%.2f", s.IndexBClose),
			})
		}
		m.snapshotTable.SetRows(rows)
		return m, nil

	case coinsLoadedMsg:
		m.coins = msg
		if len(m.coins) > 0 {
			return m, m.loadSeries(m.coins[0].ID)
		}
		return m, nil

	case seriesLoadedMsg:
		m.series = msg
		return m, nil

	case queryResultMsg:
		m.hasResult = true
		m.errText = ""
		m.resultTable.SetColumns(resultColumns(msg))
		m.resultTable.SetRows(resultRows(msg))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "1":
		m.page = pageExplore
		return m, nil
	case "2":
		m.page = pageRunner
		return m, nil
	case "3":
		m.page = pageTrend
		return m, nil
	case "tab":
		m.page = (m.page + 1) % 3
		return m, nil
	case "r":
		return m, tea.Batch(m.loadExplore(), m.loadCoins())
	}

	switch m.page {
	case pageExplore:
		var cmd tea.Cmd
		m.snapshotTable, cmd = m.snapshotTable.Update(msg)
		return m, cmd

	case pageRunner:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(queries.Catalog)-1 {
				m.cursor++
			}
		case "enter":
			m.errText = ""
			return m, m.runCatalogQuery(queries.Catalog[m.cursor].SQL)
		default:
			var cmd tea.Cmd
			m.resultTable, cmd = m.resultTable.Update(msg)
			return m, cmd
		}

	case pageTrend:
		switch msg.String() {
		case "left", "h":
			if len(m.coins) > 0 {
				m.coinIndex = (m.coinIndex + len(m.coins) - 1) % len(m.coins)
				return m, m.loadSeries(m.coins[m.coinIndex].ID)
			}
		case "right", "l":
			if len(m.coins) > 0 {
				m.coinIndex = (m.coinIndex + 1) % len(m.coins)
				return m, m.loadSeries(m.coins[m.coinIndex].ID)
			}
		}
	}
	return m, nil
}

func resultColumns(t *domain.ResultTable) []table.Column {
	cols := make([]table.Column, len(t.Columns))
	for i, name := range t.Columns {
		w := len(name) + 2
		if w < 14 {
			w = 14
		}
		cols[i] = table.Column{Title: name, Width: w}
	}
	return cols
}

func resultRows(t *domain.ResultTable) []table.Row {
	rows := make([]table.Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		row := make(table.Row, len(r))
		for i, v := range r {
			row[i] = formatValue(v)
		}
		rows = append(rows, row)
	}
	return rows
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case float64:
		return fmt.Sprintf("%.4f", v)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	tabStyle    = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("245"))
	activeTab   = lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Cross-Market Pulse"))
	b.WriteString("  ")
	for i, name := range pageNames {
		style := tabStyle
		if page(i) == m.page {
			style = activeTab
		}
		b.WriteString(style.Render(fmt.Sprintf("%d %s", i+1, name)))
	}
	b.WriteString("\n\n")

	if m.errText != "" {
		b.WriteString(errorStyle.Render("error: "+m.errText) + "\n\n")
	}

	switch m.page {
	case pageExplore:
		b.WriteString(m.viewExplore())
	case pageRunner:
		b.WriteString(m.viewRunner())
	case pageTrend:
		b.WriteString(m.viewTrend())
	}

	b.WriteString("\n" + helpStyle.Render("1/2/3 pages · tab next · r reload · q quit"))
	return b.String()
}

func (m Model) viewExplore() string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("Trailing 90 days") + "\n")
	fmt.Fprintf(&b, "  Bitcoin avg:  $%.2f\n", m.data.coinAvg)
	fmt.Fprintf(&b, "  WTI avg:      $%.2f\n", m.data.oilAvg)
	fmt.Fprintf(&b, "  S&P 500 avg:  %.2f\n\n", m.data.stockAvg)
	b.WriteString(labelStyle.Render(fmt.Sprintf("Daily snapshot (%d dates in all four series)", len(m.data.snapshot))) + "\n")
	b.WriteString(m.snapshotTable.View())
	return b.String()
}

func (m Model) viewRunner() string {
	var b strings.Builder
	group := ""
	for i, e := range queries.Catalog {
		if e.Group != group {
			group = e.Group
			b.WriteString(labelStyle.Render(group) + "\n")
		}
		line := "  " + e.Label
		if i == m.cursor {
			line = cursorStyle.Render("> " + e.Label)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
	if m.hasResult {
		b.WriteString(m.resultTable.View())
	} else {
		b.WriteString(helpStyle.Render("enter to run the selected query"))
	}
	return b.String()
}

func (m Model) viewTrend() string {
	if len(m.coins) == 0 {
		return helpStyle.Render("No coins loaded. Run the pipeline, then press r.")
	}
	coin := m.coins[m.coinIndex]

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)  ", coin.Name, coin.Symbol)
	b.WriteString(helpStyle.Render("←/→ switch coin") + "\n\n")

	width := m.width - 4
	if width < 20 {
		width = 60
	}
	b.WriteString(renderChart(m.series, width, 12))

	if n := len(m.series); n > 0 {
		fmt.Fprintf(&b, "\n%s  $%.2f  →  %s  $%.2f",
			m.series[0].Date, m.series[0].PriceUSD,
			m.series[n-1].Date, m.series[n-1].PriceUSD)
	}
	return b.String()
}
