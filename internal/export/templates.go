package export

import (
	"bytes"
	"html/template"
	"time"
)

var funcMap = template.FuncMap{
	"formatDate": func(v any) string {
		return formatWhen(v, "Monday, January 2, 2006")
	},
	"formatShortDate": func(v any) string {
		return formatWhen(v, "Jan 2, 2006")
	},
}

func formatWhen(v any, layout string) string {
	switch t := v.(type) {
	case time.Time:
		return t.Format(layout)
	case *time.Time:
		if t == nil {
			return ""
		}
		return t.Format(layout)
	default:
		return ""
	}
}

var (
	itineraryTemplate = template.Must(template.New("itinerary").Funcs(funcMap).Parse(itineraryTemplateHTML))
	roadmapTemplate   = template.Must(template.New("roadmap").Funcs(funcMap).Parse(roadmapTemplateHTML))
)

// ItineraryData holds data for itinerary template rendering.
type ItineraryData struct {
	Project ProjectInfo
	Days    []ItineraryDay
}

// ItineraryDay groups events falling on the same calendar day.
type ItineraryDay struct {
	Date   time.Time
	Events []EventInfo
}

// RoadmapData holds data for roadmap template rendering.
type RoadmapData struct {
	Project ProjectInfo
	Phases  []PhaseInfo
}

// RenderItineraryHTML renders the itinerary template.
func RenderItineraryHTML(data ItineraryData) (string, error) {
	var buf bytes.Buffer
	if err := itineraryTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderRoadmapHTML renders the roadmap template.
func RenderRoadmapHTML(data RoadmapData) (string, error) {
	var buf bytes.Buffer
	if err := roadmapTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const itineraryTemplateHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Project.Title}}</title>
  <style>
    body { font-family: Georgia, serif; line-height: 1.6; max-width: 800px; margin: 2rem auto; color: #2b2b2b; }
    h1 { text-align: center; border-bottom: 2px solid #b76e79; padding-bottom: 0.5rem; }
    .meta { text-align: center; color: #666; font-size: 0.9em; margin-bottom: 2rem; }
    h2 { color: #b76e79; margin-top: 2rem; }
    .event { margin: 1rem 0; padding: 0.75rem 1rem; border-left: 3px solid #b76e79; background: #faf5f6; page-break-inside: avoid; }
    .time { font-weight: bold; }
    .location { color: #666; font-style: italic; }
  </style>
</head>
<body>
  <h1>{{.Project.Title}}</h1>
  <div class="meta">
    {{if .Project.Partner1Name}}{{.Project.Partner1Name}} &amp; {{.Project.Partner2Name}}{{end}}
    {{if .Project.Location}} | {{.Project.Location}}{{end}}
  </div>
  {{range .Days}}
  <h2>{{formatDate .Date}}</h2>
  {{range .Events}}
  <div class="event">
    <div><span class="time">{{.TimeOfDay}}</span> {{.Title}}</div>
    {{if .Location}}<div class="location">{{.Location}}</div>{{end}}
    {{if .Description}}<div>{{.Description}}</div>{{end}}
  </div>
  {{end}}
  {{end}}
</body>
</html>`

const roadmapTemplateHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Project.Title}}</title>
  <style>
    body { font-family: Georgia, serif; line-height: 1.6; max-width: 800px; margin: 2rem auto; color: #2b2b2b; }
    h1 { text-align: center; border-bottom: 2px solid #b76e79; padding-bottom: 0.5rem; }
    .meta { text-align: center; color: #666; font-size: 0.9em; margin-bottom: 2rem; }
    h2 { color: #b76e79; margin-top: 2rem; page-break-after: avoid; }
    ul { list-style: none; padding-left: 0; }
    li { padding: 0.25rem 0; page-break-inside: avoid; }
    .done { color: #888; text-decoration: line-through; }
    .detail { color: #666; font-size: 0.85em; margin-left: 1.5rem; }
  </style>
</head>
<body>
  <h1>{{.Project.Title}}</h1>
  <div class="meta">
    {{if .Project.Date}}{{formatDate .Project.Date}}{{end}}
    {{if .Project.Location}} | {{.Project.Location}}{{end}}
  </div>
  {{range .Phases}}
  <h2>{{.Title}}</h2>
  <ul>
    {{range .Tasks}}
    <li{{if .IsCompleted}} class="done"{{end}}>
      {{if .IsCompleted}}&#9745;{{else}}&#9744;{{end}} {{.Title}}
      {{if .Deadline}}<div class="detail">due {{formatShortDate .Deadline}}</div>{{end}}
      {{if .AssignedTo}}<div class="detail">assigned to {{.AssignedTo}}</div>{{end}}
    </li>
    {{end}}
  </ul>
  {{end}}
</body>
</html>`
