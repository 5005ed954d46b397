package view

import (
	"html/template"
	"io"
)

var pageTemplate = template.Must(template.New("sessions").Parse(`<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<main class="sessions sessions--{{.State}}">
<header>
<a href="{{.BackRoute}}">Back to Planner</a>
<h1>{{.Title}}</h1>
</header>
{{- if .Message}}
<p class="sessions__message">{{.Message}}</p>
{{- end}}
{{- if eq (print .State) "empty"}}
<a class="sessions__start" href="{{.BackRoute}}">Start Your First Session</a>
{{- end}}
{{- range .Entries}}
<article class="session" id="session-{{.ID}}">
<h2>{{.Date}}</h2>
{{- if .Mood}}
<span class="badge badge--mood">{{.MoodEmoji}} {{.Mood}}</span>
{{- end}}
{{- if .Activities}}
<section class="session__activities">
<h3>Activities</h3>
{{- range .Activities}}
<span class="badge">{{.}}</span>
{{- end}}
</section>
{{- end}}
{{- if .Reflections}}
<section class="session__reflections">
<h3>Reflections</h3>
{{- range .Reflections}}
<div><p class="prompt">{{.Prompt}}</p><p>{{.Answer}}</p></div>
{{- end}}
</section>
{{- end}}
</article>
{{- end}}
</main>
</body>
</html>
`))

// Render writes page as HTML.
func Render(w io.Writer, page Page) error {
	return pageTemplate.Execute(w, page)
}
