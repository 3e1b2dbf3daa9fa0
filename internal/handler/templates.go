package handler

import (
	"fmt"
	"html/template"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TemplateFuncs returns a FuncMap with custom template functions
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		// Date/Time functions
		"year": func() int {
			return time.Now().Year()
		},
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("Jan 2, 2006")
		},
		"formatDateTime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("Jan 2, 2006 3:04 PM")
		},

		// String functions
		"title": func(v interface{}) string {
			s := fmt.Sprint(v)
			return cases.Title(language.English).String(s)
		},
		"truncate": func(s string, length int) string {
			runes := []rune(s)
			if len(runes) <= length {
				return s
			}
			return string(runes[:length]) + "..."
		},

		// Form helpers
		"csrfField": func(token string) template.HTML {
			return template.HTML(fmt.Sprintf(`<input type="hidden" name="csrf_token" value="%s">`, template.HTMLEscapeString(token)))
		},

		// Testimonial rating rendered as a five-star row
		"stars": func(rating int) template.HTML {
			if rating < 0 {
				rating = 0
			}
			if rating > 5 {
				rating = 5
			}
			var b strings.Builder
			for i := 0; i < rating; i++ {
				b.WriteString(`<span class="star filled">&#9733;</span>`)
			}
			for i := rating; i < 5; i++ {
				b.WriteString(`<span class="star">&#9734;</span>`)
			}
			return template.HTML(b.String())
		},

		// Avatar fallback when a user has no profile picture
		"initials": func(name string) string {
			fields := strings.Fields(name)
			if len(fields) == 0 {
				return "?"
			}
			var b strings.Builder
			for i, f := range fields {
				if i >= 2 {
					break
				}
				r, _ := utf8.DecodeRuneInString(f)
				b.WriteString(strings.ToUpper(string(r)))
			}
			return b.String()
		},
	}
}
