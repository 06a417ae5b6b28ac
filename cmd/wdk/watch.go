package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	cl "wondesk/internal/cli"
	"wondesk/internal/game"
	"wondesk/internal/market"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newWatchCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Live dashboard (c=click, u=buy upgrade, space=pause/resume, q=quit)",
		RunE: func(cmd *cobra.Command, args []string) error {
			model := newWatchModel(newClient(apiBase))
			_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
			return err
		},
	}
}

const watchRefreshInterval = time.Second

var watchKeys = struct {
	Quit    key.Binding
	Click   key.Binding
	Upgrade key.Binding
	Toggle  key.Binding
}{
	Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c")),
	Click:   key.NewBinding(key.WithKeys("c")),
	Upgrade: key.NewBinding(key.WithKeys("u")),
	Toggle:  key.NewBinding(key.WithKeys(" ")),
}

var (
	watchTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	watchLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	watchUpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	watchDownStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	watchErrStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	watchDimStyle   = lipgloss.NewStyle().Faint(true)
)

type watchModel struct {
	client *cl.Client

	state   game.StateView
	quotes  []market.Quote
	loaded  bool
	lastErr error

	width  int
	height int
}

type stateMsg struct {
	state game.StateView
	err   error
}

type quotesMsg struct {
	quotes []market.Quote
	err    error
}

type watchRefreshMsg struct{}

func newWatchModel(client *cl.Client) watchModel {
	return watchModel{client: client}
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(fetchState(m.client), fetchQuotes(m.client), scheduleWatchRefresh())
}

func fetchState(c *cl.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		state, err := c.GameState(ctx)
		return stateMsg{state, err}
	}
}

func fetchQuotes(c *cl.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		quotes, err := c.Assets(ctx, "")
		if err == nil {
			sort.Slice(quotes, func(i, j int) bool {
				return quotes[i].MarketCapWon > quotes[j].MarketCapWon
			})
		}
		return quotesMsg{quotes, err}
	}
}

func clickOnce(c *cl.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_, state, err := c.Click(ctx, 1)
		return stateMsg{state, err}
	}
}

// buyCheapestUpgrade buys the cheapest upgrade the clicker can afford.
func buyCheapestUpgrade(c *cl.Client, state game.StateView) tea.Cmd {
	return func() tea.Msg {
		var pick *game.Upgrade
		for i := range state.Clicker.Upgrades {
			u := state.Clicker.Upgrades[i]
			if u.NextCost() > state.Clicker.Coins {
				continue
			}
			if pick == nil || u.NextCost() < pick.NextCost() {
				pick = &state.Clicker.Upgrades[i]
			}
		}
		if pick == nil {
			return stateMsg{state, nil}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		next, err := c.BuyUpgrade(ctx, pick.ID, uuid.NewString())
		return stateMsg{next, err}
	}
}

func toggleRunning(c *cl.Client, running bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		state, err := c.SetRunning(ctx, running)
		return stateMsg{state, err}
	}
}

func scheduleWatchRefresh() tea.Cmd {
	return tea.Tick(watchRefreshInterval, func(time.Time) tea.Msg {
		return watchRefreshMsg{}
	})
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, watchKeys.Quit):
			return m, tea.Quit
		case key.Matches(msg, watchKeys.Click):
			return m, clickOnce(m.client)
		case key.Matches(msg, watchKeys.Upgrade):
			return m, buyCheapestUpgrade(m.client, m.state)
		case key.Matches(msg, watchKeys.Toggle):
			return m, toggleRunning(m.client, !m.state.Portfolio.Running)
		}

	case watchRefreshMsg:
		return m, tea.Batch(fetchState(m.client), fetchQuotes(m.client), scheduleWatchRefresh())

	case stateMsg:
		m.lastErr = msg.err
		if msg.err == nil {
			m.state = msg.state
			m.loaded = true
		}

	case quotesMsg:
		if msg.err == nil {
			m.quotes = msg.quotes
		} else {
			m.lastErr = msg.err
		}
	}
	return m, nil
}

func (m watchModel) View() string {
	if !m.loaded {
		if m.lastErr != nil {
			return watchErrStyle.Render(fmt.Sprintf("\n  Cannot reach API: %v\n", m.lastErr))
		}
		return "\n  Loading..."
	}

	var b strings.Builder
	running := "PAUSED"
	if m.state.Portfolio.Running {
		running = "RUNNING"
	}
	b.WriteString(watchTitleStyle.Render(fmt.Sprintf(" WONDESK  t=%d  %s", m.state.Portfolio.GameTime, running)))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf(" %s %s won   %s %s won   %s %s won\n",
		watchLabelStyle.Render("cash"), formatMicros(m.state.Portfolio.CashMicros),
		watchLabelStyle.Render("holdings"), formatMicros(m.state.HoldingsMicros),
		watchLabelStyle.Render("total"), formatMicros(m.state.TotalValueMicros),
	))
	b.WriteString(fmt.Sprintf(" %s %s   %s %s   %s %s/tick\n\n",
		watchLabelStyle.Render("coins"), comma(m.state.Clicker.Coins),
		watchLabelStyle.Render("power"), comma(m.state.Clicker.ClickPower),
		watchLabelStyle.Render("auto"), comma(m.state.Clicker.AutoClickRate),
	))

	b.WriteString(watchTitleStyle.Render(" Market"))
	b.WriteString("\n")
	limit := len(m.quotes)
	if m.height > 0 && limit > m.height-12 {
		limit = m.height - 12
	}
	if limit < 0 {
		limit = 0
	}
	for _, q := range m.quotes[:limit] {
		change := watchUpStyle
		if q.ChangePct < 0 {
			change = watchDownStyle
		}
		b.WriteString(fmt.Sprintf(" %-18s %16s %s\n",
			truncate(q.Name, 18),
			formatMicros(q.PriceMicros),
			change.Render(fmt.Sprintf("%+.2f%%", q.ChangePct)),
		))
	}

	if len(m.state.Portfolio.Holdings) > 0 {
		b.WriteString("\n")
		b.WriteString(watchTitleStyle.Render(" Holdings"))
		b.WriteString("\n")
		for _, h := range m.state.Portfolio.Holdings {
			b.WriteString(fmt.Sprintf(" %-18s %12.4f %16s\n",
				truncate(h.Name, 18),
				game.UnitsToShares(h.QuantityUnits),
				formatMicros(h.TotalValueMicros),
			))
		}
	}

	b.WriteString("\n")
	if m.lastErr != nil {
		b.WriteString(watchErrStyle.Render(fmt.Sprintf(" %v", m.lastErr)))
		b.WriteString("\n")
	}
	b.WriteString(watchDimStyle.Render(" c click   u buy upgrade   space pause/resume   q quit"))
	return b.String()
}
