// Live terminal dashboard polling the stockpulse HTTP API.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"stockpulse/internal/domain"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
)

const defaultAPIURL = "http://localhost:8000"

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Padding(0, 1)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	gainStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	lossStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

type stocksMsg []domain.StockData

type fetchErrMsg struct{ err error }

type tickMsg time.Time

type model struct {
	apiURL    string
	client    *http.Client
	spinner   spinner.Model
	stocks    []domain.StockData
	err       error
	lastFetch time.Time
	interval  time.Duration
}

func newModel(apiURL string, interval time.Duration) model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return model{
		apiURL:   strings.TrimRight(apiURL, "/"),
		client:   &http.Client{Timeout: 10 * time.Second},
		spinner:  sp,
		interval: interval,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchStocks)
}

func (m model) fetchStocks() tea.Msg {
	resp, err := m.client.Get(m.apiURL + "/stocks")
	if err != nil {
		return fetchErrMsg{err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fetchErrMsg{err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var stocks []domain.StockData
	if err := json.NewDecoder(resp.Body).Decode(&stocks); err != nil {
		return fetchErrMsg{err: fmt.Errorf("decode stocks: %w", err)}
	}
	return stocksMsg(stocks)
}

func (m model) scheduleTick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.fetchStocks
		}
	case stocksMsg:
		m.stocks = msg
		m.err = nil
		m.lastFetch = time.Now()
		return m, m.scheduleTick()
	case fetchErrMsg:
		m.err = msg.err
		return m, m.scheduleTick()
	case tickMsg:
		return m, m.fetchStocks
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("StockPulse"))
	sb.WriteString("\n\n")

	if m.err != nil {
		sb.WriteString(errStyle.Render("error: " + m.err.Error()))
		sb.WriteString("\n\n")
	}

	if len(m.stocks) == 0 {
		sb.WriteString(m.spinner.View())
		sb.WriteString(" waiting for first refresh cycle...\n")
	} else {
		sb.WriteString(headerStyle.Render(fmt.Sprintf("%-7s %-22s %10s %9s  %-8s %-5s %s",
			"TICKER", "COMPANY", "PRICE", "CHANGE", "SENTIMENT", "REC", "RISK")))
		sb.WriteString("\n")
		for _, s := range m.stocks {
			sb.WriteString(renderRow(s))
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	if !m.lastFetch.IsZero() {
		sb.WriteString(dimStyle.Render("updated " + m.lastFetch.Format("15:04:05") + "  "))
	}
	sb.WriteString(dimStyle.Render("r refresh • q quit"))
	sb.WriteString("\n")
	return sb.String()
}

func renderRow(s domain.StockData) string {
	change := fmt.Sprintf("%+.2f%%", s.ChangePercent)
	switch {
	case s.ChangePercent > 0:
		change = gainStyle.Render(change)
	case s.ChangePercent < 0:
		change = lossStyle.Render(change)
	}

	sentiment, rec, risk := "-", "-", "-"
	if s.AIAnalysis != nil {
		sentiment = string(s.AIAnalysis.Sentiment)
		rec = string(s.AIAnalysis.Recommendation)
		risk = string(s.AIAnalysis.RiskLevel)
	}

	company := s.CompanyName
	if len(company) > 22 {
		company = company[:21] + "…"
	}

	return fmt.Sprintf("%-7s %-22s %10.2f %9s  %-8s %-5s %s",
		s.Ticker, company, s.Price, change, sentiment, rec, risk)
}

func main() {
	_ = godotenv.Load()

	apiURL := strings.TrimSpace(os.Getenv("STOCKPULSE_API_URL"))
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	interval := 5 * time.Second
	p := tea.NewProgram(newModel(apiURL, interval), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "dashboard error: %v\n", err)
		os.Exit(1)
	}
}
