// Package tui renders the progressive load and the resulting catalog.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/drake/gamevault/internal/assetcache"
	"github.com/drake/gamevault/internal/domain"
	"github.com/drake/gamevault/internal/loader"
	"github.com/drake/gamevault/internal/search"
	"github.com/drake/gamevault/internal/state"
	"github.com/drake/gamevault/internal/tui/styles"
)

const maxVisibleRows = 20

// Model is the root Bubble Tea model.
type Model struct {
	live      *loader.Progressive
	cacheOnly *loader.CacheOnly
	state     *state.Store
	assets    *assetcache.Cache
	searchSvc *search.Service

	identifier    string
	cacheOnlyMode bool

	msgCh chan tea.Msg

	loading      bool
	spinnerFrame int
	progressBar  progress.Model
	current      int
	total        int
	progressText string

	status    string
	statusSev domain.Severity

	items       []domain.ItemSummary
	cursor      int
	filtering   bool
	filterQuery string
	filteredIdx []int

	width  int
	height int
}

// NewModel creates the root model.
func NewModel(
	live *loader.Progressive,
	cacheOnly *loader.CacheOnly,
	st *state.Store,
	assets *assetcache.Cache,
	searchSvc *search.Service,
	identifier string,
	cacheOnlyMode bool,
) Model {
	return Model{
		live:          live,
		cacheOnly:     cacheOnly,
		state:         st,
		assets:        assets,
		searchSvc:     searchSvc,
		identifier:    identifier,
		cacheOnlyMode: cacheOnlyMode,
		msgCh:         make(chan tea.Msg, 64),
		progressBar:   progress.New(progress.WithDefaultGradient()),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.startLoad(), m.waitForMsg())
}

// startLoad runs the load in a goroutine; callbacks stream through msgCh.
func (m Model) startLoad() tea.Cmd {
	ch := m.msgCh
	cbs := NewChannelCallbacks(ch).Callbacks()
	live, cacheOnly := m.live, m.cacheOnly
	identifier, fromCache := m.identifier, m.cacheOnlyMode

	return func() tea.Msg {
		go func() {
			var err error
			if fromCache {
				err = cacheOnly.LoadFromCache(identifier, cbs, true)
			} else {
				err = live.LoadForIdentifier(context.Background(), identifier, cbs)
			}
			ch <- LoadFinishedMsg{Err: err}
		}()
		return nil
	}
}

// waitForMsg pumps the next loader message into the update loop.
func (m Model) waitForMsg() tea.Cmd {
	ch := m.msgCh
	return func() tea.Msg {
		return <-ch
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progressBar.Width = min(msg.Width-8, 60)
		return m, nil

	case ProgressMsg:
		m.loading = true
		m.current = msg.Current
		m.total = msg.Total
		m.progressText = msg.Message
		m.spinnerFrame++
		return m, m.waitForMsg()

	case ItemLoadedMsg:
		m.upsertItem(msg.Item)
		return m, m.waitForMsg()

	case StatusMsg:
		m.status = msg.Message
		m.statusSev = msg.Severity
		return m, m.waitForMsg()

	case LoadFinishedMsg:
		m.loading = false
		snap := m.state.Snapshot()
		m.items = snap.Items
		m.searchSvc.Index(snap.Items)
		m.applyFilter()
		return m, m.waitForMsg()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering {
		switch msg.String() {
		case "esc":
			m.filtering = false
			m.filterQuery = ""
			m.applyFilter()
		case "enter":
			m.filtering = false
		case "backspace":
			if len(m.filterQuery) > 0 {
				m.filterQuery = m.filterQuery[:len(m.filterQuery)-1]
				m.applyFilter()
			}
		default:
			if len(msg.String()) == 1 {
				m.filterQuery += msg.String()
				m.applyFilter()
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.visibleItems())-1 {
			m.cursor++
		}

	case "/":
		m.filtering = true
		m.filterQuery = ""

	case "r":
		if !m.loading {
			m.loading = true
			m.items = nil
			m.cursor = 0
			m.progressText = "Refreshing…"
			live := m.live
			cbs := NewChannelCallbacks(m.msgCh).Callbacks()
			ch := m.msgCh
			return m, func() tea.Msg {
				go func() {
					ch <- LoadFinishedMsg{Err: live.Refresh(context.Background(), cbs)}
				}()
				return nil
			}
		}

	case "s":
		stats := m.assets.Stats(context.Background())
		m.status = fmt.Sprintf("artwork cache: %d blobs, %s", stats.Count, formatBytes(stats.TotalBytes))
		if stats.Quota.TotalBytes > 0 {
			m.status += fmt.Sprintf(" (%s of %s used)", formatBytes(stats.Quota.UsedBytes), formatBytes(stats.Quota.TotalBytes))
		}
		if stats.QuotaNearLimit {
			m.status += " — near quota limit"
			m.statusSev = domain.SeverityWarn
		} else {
			m.statusSev = domain.SeverityInfo
		}
	}

	return m, nil
}

// upsertItem replaces an in-list item by ID or appends a new one.
func (m *Model) upsertItem(item domain.ItemSummary) {
	for i := range m.items {
		if m.items[i].ItemID == item.ItemID {
			m.items[i] = item
			return
		}
	}
	m.items = append(m.items, item)
	m.applyFilter()
}

// applyFilter recomputes filteredIdx from the current query.
func (m *Model) applyFilter() {
	if m.filterQuery == "" {
		m.filteredIdx = nil
		m.cursor = 0
		return
	}

	lowerNames := make([]string, len(m.items))
	for i, item := range m.items {
		lowerNames[i] = strings.ToLower(item.Name)
	}

	matches := fuzzy.Find(strings.ToLower(m.filterQuery), lowerNames)
	m.filteredIdx = make([]int, len(matches))
	for i, match := range matches {
		m.filteredIdx[i] = match.Index
	}
	m.cursor = 0
}

// visibleItems returns the filtered view of the item list.
func (m Model) visibleItems() []domain.ItemSummary {
	if m.filterQuery == "" {
		return m.items
	}
	out := make([]domain.ItemSummary, 0, len(m.filteredIdx))
	for _, idx := range m.filteredIdx {
		out = append(out, m.items[idx])
	}
	return out
}

func (m Model) View() string {
	var b strings.Builder

	snap := m.state.Snapshot()
	title := "gamevault"
	if snap.DisplayName != "" {
		title = fmt.Sprintf("gamevault — %s (%d games)", snap.DisplayName, len(m.items))
	}
	b.WriteString(styles.TitleStyle.Render(title))
	b.WriteString("\n\n")

	if m.loading {
		frame := styles.SpinnerFrames[m.spinnerFrame%len(styles.SpinnerFrames)]
		b.WriteString(fmt.Sprintf("%s %s\n", styles.AccentStyle.Render(frame), m.progressText))
		if m.total > 0 {
			b.WriteString(m.progressBar.ViewAs(float64(m.current) / float64(m.total)))
			b.WriteString(styles.DimStyle.Render(fmt.Sprintf("  %d/%d", m.current, m.total)))
		}
		b.WriteString("\n\n")
	}

	if m.filtering || m.filterQuery != "" {
		b.WriteString(styles.AccentStyle.Render("/" + m.filterQuery))
		b.WriteString("\n")
	}

	items := m.visibleItems()
	for i, item := range items {
		if i >= maxVisibleRows {
			b.WriteString(styles.DimStyle.Render(fmt.Sprintf("  … and %d more\n", len(items)-maxVisibleRows)))
			break
		}
		line := fmt.Sprintf("%-40.40s %10s", item.Name, item.FormattedPlaytime())
		if item.Artwork == nil {
			line += styles.DimStyle.Render("  (no artwork)")
		}
		if i == m.cursor {
			b.WriteString(styles.SelectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n")
		switch m.statusSev {
		case domain.SeverityError:
			b.WriteString(styles.ErrorStyle.Render(m.status))
		case domain.SeverityWarn:
			b.WriteString(styles.WarnStyle.Render(m.status))
		default:
			b.WriteString(styles.SuccessStyle.Render(m.status))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.DimStyle.Render("↑/↓ move · / filter · r refresh · s cache stats · q quit"))
	return b.String()
}

func formatBytes(n int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
		gb = 1024 * mb
	)
	switch {
	case n >= gb:
		return fmt.Sprintf("%.1f GB", float64(n)/float64(gb))
	case n >= mb:
		return fmt.Sprintf("%.1f MB", float64(n)/float64(mb))
	case n >= kb:
		return fmt.Sprintf("%.1f KB", float64(n)/float64(kb))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
