package ui

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mrsingh-rishi/voicescribe/model"
	"github.com/mrsingh-rishi/voicescribe/output"
	"github.com/mrsingh-rishi/voicescribe/session"
	"github.com/mrsingh-rishi/voicescribe/store"
)

const noticeTTL = 3 * time.Second

type snapshotMsg struct {
	snap store.Snapshot
}

type notificationMsg struct {
	note output.Notification
}

type clearNoticeMsg struct {
	id int
}

type actionErrMsg struct {
	action string
	err    error
}

// Model is the bubbletea model for a recording session.
type Model struct {
	ctx         context.Context
	session     *session.Session
	updates     <-chan store.Snapshot
	unsubscribe func()

	keys    keyMap
	help    help.Model
	spinner spinner.Model

	snap     store.Snapshot
	notice   *output.Notification
	noticeID int
	quitting bool
}

func New(ctx context.Context, s *session.Session) Model {
	updates, unsubscribe := s.Store.Subscribe()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	return Model{
		ctx:         ctx,
		session:     s,
		updates:     updates,
		unsubscribe: unsubscribe,
		keys:        defaultKeys(),
		help:        help.New(),
		spinner:     sp,
		snap:        s.Store.Snapshot(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		waitForSnapshot(m.updates),
		waitForNotification(m.session.Notifier.C()),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case snapshotMsg:
		m.snap = msg.snap
		return m, waitForSnapshot(m.updates)

	case notificationMsg:
		note := msg.note
		m.notice = &note
		m.noticeID++
		id := m.noticeID
		return m, tea.Batch(
			waitForNotification(m.session.Notifier.C()),
			tea.Tick(noticeTTL, func(time.Time) tea.Msg { return clearNoticeMsg{id: id} }),
		)

	case clearNoticeMsg:
		if msg.id == m.noticeID {
			m.notice = nil
		}
		return m, nil

	case actionErrMsg:
		log.Printf("ui: %s: %v", msg.action, msg.err)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.session
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		if m.unsubscribe != nil {
			m.unsubscribe()
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.Toggle):
		return m, run("toggle", func() error { return s.Toggle(m.ctx) })
	case key.Matches(msg, m.keys.Stop):
		if !m.snap.State.Active() {
			return m, nil
		}
		return m, run("stop", s.Stop)
	case key.Matches(msg, m.keys.Reset):
		return m, run("reset", s.Reset)
	case key.Matches(msg, m.keys.Copy):
		return m, run("copy", s.Copy)
	case key.Matches(msg, m.keys.Download):
		return m, run("download", func() error {
			_, err := s.Download("")
			return err
		})
	}
	return m, nil
}

// run performs a session action off the update loop; results reach the view
// through the store and notifier.
func run(action string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(); err != nil {
			return actionErrMsg{action: action, err: err}
		}
		return nil
	}
}

func waitForSnapshot(ch <-chan store.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return nil
		}
		return snapshotMsg{snap: snap}
	}
}

func waitForNotification(ch <-chan output.Notification) tea.Cmd {
	return func() tea.Msg {
		return notificationMsg{note: <-ch}
	}
}

func (m Model) View() string {
	if m.quitting {
		return BulletStyle.Render("└") + TextStyle.Render("Bye.") + "\n"
	}

	var b strings.Builder
	b.WriteString(BulletStyle.Render("┌") + TitleStyle.Render("voicescribe") + "  " + stateBadge(m.snap) + "\n")
	b.WriteString(BulletStyle.Render("│") + "\n")

	if m.snap.Transcript != "" {
		b.WriteString(TranscriptStyle.Render(m.snap.Transcript) + "\n")
	} else {
		b.WriteString(PlaceholderStyle.Render(Placeholder(m.snap.State)) + "\n")
	}

	b.WriteString(BulletStyle.Render("│") + "\n")
	if m.snap.Transcribing {
		b.WriteString(BulletStyle.Render("├") + m.spinner.View() + DimTextStyle.Render("Transcribing...") + "\n")
	}
	if m.notice != nil {
		b.WriteString(BulletStyle.Render("├") + renderNotice(*m.notice) + "\n")
	}
	b.WriteString(BulletStyle.Render("└") + m.help.View(m.keys) + "\n")
	return b.String()
}

// Placeholder is the text shown while there is no transcript yet.
func Placeholder(state model.RecordingState) string {
	switch state {
	case model.StatePlaying:
		return "Listening..."
	case model.StatePaused:
		return "Paused."
	default:
		return "Press space to start."
	}
}

func stateBadge(snap store.Snapshot) string {
	var duration string
	if snap.Asset != nil {
		duration = " " + snap.Asset.Duration.Round(time.Second).String()
	}
	switch snap.State {
	case model.StatePlaying:
		return RecordingStyle.Render("● REC" + duration)
	case model.StatePaused:
		return PausedStyle.Render("❚❚ PAUSED" + duration)
	case model.StateStopped:
		return DimTextStyle.Render("■ STOPPED" + duration)
	default:
		return DimTextStyle.Render("○ READY")
	}
}

func renderNotice(n output.Notification) string {
	text := n.Title
	if n.Description != "" {
		text = fmt.Sprintf("%s %s", n.Title, n.Description)
	}
	switch n.Level {
	case output.LevelError:
		return ErrorStyle.Render(text)
	case output.LevelWarning:
		return WarningStyle.Render(text)
	case output.LevelSuccess:
		return SuccessStyle.Render(text)
	default:
		return InfoStyle.Render(text)
	}
}
