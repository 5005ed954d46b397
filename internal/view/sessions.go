// Package view builds the read-only saved sessions page.
package view

import (
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"example.com/mentalreset/internal/domain"
)

// State is the rendering state of the saved sessions page.
type State string

const (
	StateLoading   State = "loading"
	StateEmpty     State = "empty"
	StatePopulated State = "populated"
)

const (
	pageTitle      = "Your Saved Sessions"
	emptyMessage   = "No saved sessions yet. Complete a mental reset session to see it here!"
	loadingMessage = "Loading your sessions..."
	longDateLayout = "January 2, 2006"
)

// Reflection is one answered prompt.
type Reflection struct {
	Prompt string `json:"prompt"`
	Answer string `json:"answer"`
}

// Entry is one saved session as displayed.
type Entry struct {
	ID          string       `json:"id"`
	Date        string       `json:"date"`
	Mood        string       `json:"mood,omitempty"`
	MoodEmoji   string       `json:"mood_emoji,omitempty"`
	Activities  []string     `json:"activities"`
	Reflections []Reflection `json:"reflections"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Page is the saved sessions view model.
type Page struct {
	State     State   `json:"state"`
	Title     string  `json:"title"`
	Message   string  `json:"message,omitempty"`
	BackRoute string  `json:"back_route"`
	Entries   []Entry `json:"entries"`
}

// Loading is the placeholder page for client renderers to show while their
// list fetch is in flight. The server renders lists synchronously and never
// serves it.
func Loading(backRoute string) Page {
	return Page{State: StateLoading, Title: pageTitle, Message: loadingMessage, BackRoute: backRoute, Entries: []Entry{}}
}

// Build renders records, already ordered newest first, into a page.
func Build(records []domain.SessionRecord, backRoute string) Page {
	page := Page{Title: pageTitle, BackRoute: backRoute, Entries: make([]Entry, 0, len(records))}
	if len(records) == 0 {
		page.State = StateEmpty
		page.Message = emptyMessage
		return page
	}

	title := cases.Title(language.English)
	page.State = StatePopulated
	for _, rec := range records {
		page.Entries = append(page.Entries, buildEntry(rec, title))
	}
	return page
}

func buildEntry(rec domain.SessionRecord, title cases.Caser) Entry {
	e := Entry{
		ID:          rec.ID,
		Date:        longDate(rec.Date),
		Activities:  make([]string, 0, len(rec.Activities)+1),
		Reflections: make([]Reflection, 0, 4),
		CreatedAt:   rec.CreatedAt,
	}
	if rec.Mood != "" {
		e.Mood = title.String(rec.Mood)
		e.MoodEmoji = domain.Mood(rec.Mood).Emoji()
	}

	for _, raw := range rec.Activities {
		if key, err := domain.ParseActivityKey(raw); err == nil && key != domain.ActivityCustom {
			e.Activities = append(e.Activities, key.Label())
			continue
		}
		if raw != string(domain.ActivityCustom) {
			e.Activities = append(e.Activities, raw)
		}
	}
	if rec.CustomActivity != nil {
		e.Activities = append(e.Activities, *rec.CustomActivity)
	}

	for _, r := range []struct {
		prompt string
		answer *string
	}{
		{"What can you control?", rec.ControlAnswer},
		{"What's not your job?", rec.NotMyJobAnswer},
		{"Will this matter in 5 days?", rec.FiveDaysAnswer},
		{"Next step", rec.NextStep},
	} {
		if r.answer != nil && *r.answer != "" {
			e.Reflections = append(e.Reflections, Reflection{Prompt: r.prompt, Answer: *r.answer})
		}
	}
	return e
}

func longDate(raw string) string {
	day, err := time.Parse(domain.DateLayout, raw)
	if err != nil {
		return raw
	}
	return day.Format(longDateLayout)
}
