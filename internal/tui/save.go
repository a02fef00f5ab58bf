package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/lumen/internal/config"
)

type savePhase int

const (
	saveHidden  savePhase = iota
	savePreview           // showing diff, awaiting confirm
	saveResult            // showing outcome message
)

type diffKind int

const (
	diffContext diffKind = iota
	diffRemoved
	diffAdded
)

type diffLine struct {
	kind diffKind
	text string
}

// SaveOverlay manages the config save diff preview and confirmation workflow.
type SaveOverlay struct {
	phase        savePhase
	diffLines    []diffLine
	err          error
	applied      bool
	scrollOffset int
}

// Active reports whether the overlay is visible.
func (s SaveOverlay) Active() bool {
	return s.phase != saveHidden
}

// Show computes the diff and opens the preview overlay.
func (s *SaveOverlay) Show(original, current *config.Config) {
	s.err = nil
	s.applied = false
	s.scrollOffset = 0

	lines := computeDiffLines(original, current)
	if len(lines) == 0 {
		s.phase = saveResult
		s.err = fmt.Errorf("no changes to save")
		return
	}
	s.diffLines = lines
	s.phase = savePreview
}

// SaveSucceeded reports whether the last save completed without error.
func (s SaveOverlay) SaveSucceeded() bool {
	return s.phase == saveResult && s.err == nil
}

// Update handles input while the overlay is active. On confirm the config is
// written to path and, when an engine is running, its vsync setting is applied
// live. Everything else takes effect on the next run.
func (s SaveOverlay) Update(msg tea.Msg, cfg *config.Config, path string, inspector Inspector, connected bool) SaveOverlay {
	switch s.phase {
	case savePreview:
		if km, ok := msg.(tea.KeyMsg); ok {
			switch km.String() {
			case "esc":
				s.phase = saveHidden
			case "enter", "y":
				s.err = cfg.SaveTo(path)
				if s.err == nil && connected && inspector != nil {
					s.applied = inspector.SetVSync(cfg.Window.VSync) == nil
				}
				s.phase = saveResult
			case "up", "k":
				if s.scrollOffset > 0 {
					s.scrollOffset--
				}
			case "down", "j":
				s.scrollOffset++
			}
		}
	case saveResult:
		if _, ok := msg.(tea.KeyMsg); ok {
			s.phase = saveHidden
		}
	}
	return s
}

var (
	overlayTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	diffAddedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	diffRemovedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	diffContextStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	overlayFootStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// View renders the overlay centered in the content area.
func (s SaveOverlay) View(width, height int) string {
	var content string
	maxW := 60
	switch s.phase {
	case savePreview:
		maxW = 80
		content = s.previewContent(clamp(width-8, 30, maxW)-6, height-10)
	case saveResult:
		content = s.resultContent()
	default:
		return ""
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2).
		Width(clamp(width-8, 30, maxW)).
		Render(content)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// previewContent renders the scrolled diff window. innerW excludes border
// and padding.
func (s SaveOverlay) previewContent(innerW, diffH int) string {
	innerW = max(innerW, 10)
	diffH = max(diffH, 3)
	off := min(s.scrollOffset, max(len(s.diffLines)-diffH, 0))
	end := min(off+diffH, len(s.diffLines))

	var b strings.Builder
	b.WriteString(overlayTitleStyle.Render("Save Config: Pending Changes"))
	b.WriteString("\n\n")
	for i, dl := range s.diffLines[off:end] {
		if i > 0 {
			b.WriteByte('\n')
		}
		text := dl.text
		if len(text) > innerW-2 {
			text = text[:innerW-2]
		}
		switch dl.kind {
		case diffAdded:
			b.WriteString(diffAddedStyle.Render("+ " + text))
		case diffRemoved:
			b.WriteString(diffRemovedStyle.Render("- " + text))
		default:
			b.WriteString(diffContextStyle.Render("  " + text))
		}
	}
	b.WriteString("\n\n")
	b.WriteString(overlayFootStyle.Render("enter: save  esc: cancel  j/k: scroll"))
	return b.String()
}

func (s SaveOverlay) resultContent() string {
	if s.err != nil {
		return diffRemovedStyle.Bold(true).Render("Error: "+s.err.Error()) +
			"\n\n" + overlayFootStyle.Render("press any key to dismiss")
	}
	lines := []string{diffAddedStyle.Bold(true).Render("Config saved successfully")}
	if s.applied {
		lines = append(lines, diffAddedStyle.Render("VSync applied to running engine"))
	}
	lines = append(lines,
		diffContextStyle.Render("Other changes apply on the next 'lumen run'"),
		"",
		overlayFootStyle.Render("press any key to dismiss"),
	)
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// computeDiffLines diffs the YAML renderings of two configs.
func computeDiffLines(original, current *config.Config) []diffLine {
	if original == nil || current == nil {
		return nil
	}
	before, err := original.Marshal()
	if err != nil {
		return nil
	}
	after, err := current.Marshal()
	if err != nil {
		return nil
	}
	a := strings.Split(strings.TrimSpace(string(before)), "\n")
	b := strings.Split(strings.TrimSpace(string(after)), "\n")
	return withContext(lcsDiff(a, b), 2)
}

// lcsDiff computes a line diff from the longest common subsequence of a and b.
func lcsDiff(a, b []string) []diffLine {
	m, n := len(a), len(b)
	tbl := make([][]int, m+1)
	for i := range tbl {
		tbl[i] = make([]int, n+1)
	}
	for i := m - 1; i >= 0; i-- {
		for j := n - 1; j >= 0; j-- {
			switch {
			case a[i] == b[j]:
				tbl[i][j] = tbl[i+1][j+1] + 1
			default:
				tbl[i][j] = max(tbl[i+1][j], tbl[i][j+1])
			}
		}
	}

	var out []diffLine
	i, j := 0, 0
	for i < m || j < n {
		switch {
		case i < m && j < n && a[i] == b[j]:
			out = append(out, diffLine{kind: diffContext, text: a[i]})
			i++
			j++
		case j == n || (i < m && tbl[i+1][j] >= tbl[i][j+1]):
			out = append(out, diffLine{kind: diffRemoved, text: a[i]})
			i++
		default:
			out = append(out, diffLine{kind: diffAdded, text: b[j]})
			j++
		}
	}
	return out
}

// withContext keeps changed lines plus ctx lines around each change and
// collapses the gaps to "...". Returns nil when nothing changed.
func withContext(lines []diffLine, ctx int) []diffLine {
	keep := make([]bool, len(lines))
	changed := false
	for i, l := range lines {
		if l.kind == diffContext {
			continue
		}
		changed = true
		for j := max(0, i-ctx); j <= min(len(lines)-1, i+ctx); j++ {
			keep[j] = true
		}
	}
	if !changed {
		return nil
	}

	var out []diffLine
	gap := false
	for i, l := range lines {
		if !keep[i] {
			gap = true
			continue
		}
		if gap && len(out) > 0 {
			out = append(out, diffLine{kind: diffContext, text: "..."})
		}
		gap = false
		out = append(out, l)
	}
	return out
}

// cloneConfig creates a deep copy of a Config via YAML round-trip.
func cloneConfig(cfg *config.Config) *config.Config {
	if cfg == nil {
		return nil
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil
	}
	var clone config.Config
	if err := yaml.Unmarshal(data, &clone); err != nil {
		return nil
	}
	return &clone
}
