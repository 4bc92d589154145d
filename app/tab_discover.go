package app

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/kastheco/craftdeck/async"
	"github.com/kastheco/craftdeck/keys"
	"github.com/kastheco/craftdeck/launcher"
	"github.com/kastheco/craftdeck/notify"
	"github.com/kastheco/craftdeck/schedule"
	"github.com/kastheco/craftdeck/ui"
	"github.com/kastheco/craftdeck/ui/input"
)

const mouseScrollLines = 3

type discoverFocus int

const (
	discoverFocusNone discoverFocus = iota
	discoverFocusQuery
	discoverFocusResults
)

// projectDetails is an opened project page.
type projectDetails struct {
	project  launcher.ProjectDetail
	viewport viewport.Model
	width    int // width the body was last rendered at
}

// discoverTab searches Modrinth for mods matching the instance.
type discoverTab struct {
	v       *viewScreen
	focus   discoverFocus
	query   *input.TextBuffer
	search  *input.SearchCursor[launcher.SearchHit]
	pager   paginator.Model
	details *projectDetails
}

func newDiscoverTab(v *viewScreen) *discoverTab {
	t := &discoverTab{v: v, query: input.NewTextBuffer("")}
	t.search = input.NewSearchCursor(t.fetch, v.m.cfg.GetPageSize())
	t.pager = paginator.New()
	t.pager.Type = paginator.Arabic
	t.pager.ArabicFormat = "Page %d of %d"
	return t
}

// facets narrow the search to mods for the instance's loader and version.
func (t *discoverTab) facets() []string {
	return []string{
		"project_type:mod",
		"categories:" + string(t.v.inst.Loader),
		"versions:" + t.v.inst.GameVersion,
	}
}

func (t *discoverTab) fetch(req input.SearchRequest) (input.SearchPage[launcher.SearchHit], bool) {
	res, ok := async.RunOrNotify(t.v.m.bridge, "search projects", func(ctx context.Context) (launcher.SearchResult, error) {
		return t.v.m.backend.Search(ctx, launcher.SearchQuery{
			Facets: req.Facets,
			Query:  req.Query,
			Limit:  req.PageSize,
			Offset: req.Offset(),
		})
	}, func(err error) string { return "Search failed: " + err.Error() })
	if !ok {
		return input.SearchPage[launcher.SearchHit]{}, false
	}
	return input.SearchPage[launcher.SearchHit]{Hits: res.Hits, Offset: res.Offset, TotalHits: res.TotalHits}, true
}

// tick re-runs the search at most once per fast window, and only when the
// query or facets changed.
func (t *discoverTab) tick() {
	t.query.Tick(t.v.m.sched.Tick())
	if t.v.m.sched.Due(schedule.Fast) {
		t.search.TrySearch(t.facets(), strings.TrimSpace(t.query.Value()))
	}
}

func (t *discoverTab) handleKey(msg tea.KeyMsg) bool {
	if t.details != nil {
		if keys.Matches(msg, keys.KeyEsc) {
			t.details = nil
			return true
		}
		t.details.viewport, _ = t.details.viewport.Update(msg)
		return true
	}

	if t.focus != discoverFocusNone && keys.Matches(msg, keys.KeyEsc) {
		t.focus = discoverFocusNone
		return true
	}
	switch t.focus {
	case discoverFocusQuery:
		if keys.Matches(msg, keys.KeyEnter) {
			t.focus = discoverFocusResults
			return true
		}
		return t.query.HandleKey(msg)
	case discoverFocusResults:
		switch {
		case keys.Matches(msg, keys.KeyEnter):
			t.install()
			return true
		case keys.Matches(msg, keys.KeyDetails):
			t.openDetails()
			return true
		}
		return t.search.HandleKey(msg)
	}

	switch {
	case keys.Matches(msg, keys.KeyFocusSearch):
		t.focus = discoverFocusQuery
	case keys.Matches(msg, keys.KeyFocusResults):
		t.focus = discoverFocusResults
	case keys.Matches(msg, keys.KeyDetails):
		t.openDetails()
	default:
		return false
	}
	return true
}

// handleMouse focuses the query bar, selects a clicked hit, or scrolls an
// open project page.
func (t *discoverTab) handleMouse(msg tea.MouseMsg) bool {
	if t.details != nil {
		up, ok := ui.Wheel(msg)
		if !ok || !ui.InZone(msg, ui.ZoneDetails) {
			return false
		}
		if up {
			t.details.viewport.ScrollUp(mouseScrollLines)
		} else {
			t.details.viewport.ScrollDown(mouseScrollLines)
		}
		return true
	}
	if ui.LeftPress(msg) && ui.InZone(msg, ui.ZoneSearchBar) {
		t.focus = discoverFocusQuery
		return true
	}
	if i, ok := ui.ClickedRow(msg, 0, len(t.search.Hits())); ok {
		t.focus = discoverFocusResults
		t.search.Select(i)
		return true
	}
	return false
}

func (t *discoverTab) install() {
	hit, ok := t.search.Selected()
	if !ok {
		return
	}
	if t.v.files.installedProjects()[hit.ProjectID] {
		t.v.m.notifier.Push("Already Installed", hit.Title, notify.InfoPair, 3*time.Second)
		return
	}
	f, ok := async.RunOrNotify(t.v.m.bridge, "install project", func(ctx context.Context) (launcher.ProjectFile, error) {
		return t.v.m.backend.InstallProject(ctx, t.v.inst.ID, hit.ProjectID)
	}, func(err error) string { return "Failed to install " + hit.Title + ": " + err.Error() })
	if !ok {
		return
	}
	t.v.files.reload(f.ID)
	t.v.m.success("Installed", hit.Title+" ("+f.FileName+")")
}

func (t *discoverTab) openDetails() {
	hit, ok := t.search.Selected()
	if !ok {
		return
	}
	p, ok := async.RunOrNotify(t.v.m.bridge, "project details", func(ctx context.Context) (launcher.ProjectDetail, error) {
		return t.v.m.backend.Project(ctx, hit.ProjectID)
	}, nil)
	if !ok {
		return
	}
	t.details = &projectDetails{project: p, viewport: viewport.New(0, 0)}
}

func (t *discoverTab) bindings() []key.Binding {
	switch {
	case t.details != nil:
		return keys.Bindings(keys.KeyUp, keys.KeyDown)
	case t.focus == discoverFocusQuery:
		return keys.Bindings(keys.KeyEnter)
	case t.focus == discoverFocusResults:
		return append(keys.Bindings(keys.KeyLeft, keys.KeyRight, keys.KeyDetails),
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("↵", "install")))
	}
	return keys.Bindings(keys.KeyFocusSearch, keys.KeyFocusResults)
}

func (t *discoverTab) view(width, height int) string {
	if t.details != nil {
		return t.detailsView(width, height)
	}

	label := ui.SubtleStyle.Render("[S]earch ")
	if t.focus == discoverFocusQuery {
		label = ui.HighlightStyle.Render("[S]earch ")
	}
	queryLine := zone.Mark(ui.ZoneSearchBar,
		label+ui.TextStyle.Render(t.query.Display(t.focus == discoverFocusQuery)))

	t.pager.PerPage = max(t.v.m.cfg.GetPageSize(), 1)
	t.pager.SetTotalPages(t.search.Total())
	t.pager.Page = t.search.Page()
	pageLine := ui.MutedStyle.Render(t.pager.View())

	hits := t.search.Hits()
	if len(hits) == 0 {
		empty := lipgloss.Place(width, max(height-3, 1), lipgloss.Center, lipgloss.Center,
			ui.MutedStyle.Render("No results"))
		return lipgloss.JoinVertical(lipgloss.Left, queryLine, "", empty, pageLine)
	}

	installed := t.v.files.installedProjects()
	// two lines per hit
	rowsH := max((height-3)/2, 1)
	sel := t.search.Index()
	start := 0
	if sel >= rowsH {
		start = sel - rowsH + 1
	}
	end := min(start+rowsH, len(hits))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		h := hits[i]
		title := h.Title
		if h.Author != "" {
			title += " by " + h.Author
		}
		meta := "↓" + h.DownloadsLabel() + "  ♥" + h.FollowsLabel()
		if mod := h.ModifiedLabel(); mod != "" {
			meta += "  updated " + mod
		}
		if installed[h.ProjectID] {
			meta += "  Installed"
		}
		selected := i == sel && t.focus == discoverFocusResults
		lines = append(lines, zone.Mark(ui.RowZoneID(i),
			ui.Row(title, width, selected)+"\n"+
				ui.MutedStyle.Render(ui.Truncate("  "+h.Description+"  ·  "+meta, width))))
	}
	list := lipgloss.NewStyle().Height(height - 3).Render(joinLines(lines))
	return lipgloss.JoinVertical(lipgloss.Left, queryLine, "", list, pageLine)
}

func (t *discoverTab) detailsView(width, height int) string {
	d := t.details
	if d.width != width {
		body, err := ui.RenderMarkdown(d.project.Body, width)
		if err != nil {
			body = d.project.Body
		}
		d.viewport.SetContent(body)
		d.width = width
	}
	d.viewport.Width = width
	d.viewport.Height = max(height-2, 1)

	header := ui.TextStyle.Bold(true).Render(d.project.Title) + "  " + ui.MutedStyle.Render(d.project.Description)
	return lipgloss.JoinVertical(lipgloss.Left, ui.Truncate(header, width), "",
		zone.Mark(ui.ZoneDetails, d.viewport.View()))
}
