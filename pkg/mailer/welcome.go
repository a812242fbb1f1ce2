package mailer

import (
	"bytes"
	"embed"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*
var templateFS embed.FS

var (
	welcomeHTML = htmltemplate.Must(htmltemplate.New("welcome.html").Funcs(htmltemplate.FuncMap{
		"greeting": Greeting,
	}).ParseFS(templateFS, "templates/welcome.html"))

	welcomeText = texttemplate.Must(texttemplate.New("welcome.txt").Funcs(texttemplate.FuncMap{
		"greeting": Greeting,
	}).ParseFS(templateFS, "templates/welcome.txt"))
)

type WelcomeData struct {
	Name string
}

// Greeting title-cases a name, or returns "there" when it is blank.
func Greeting(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "there"
	}
	return cases.Title(language.Und).String(name)
}

// RenderWelcome returns the HTML and plain-text bodies of the welcome email.
func RenderWelcome(data WelcomeData) (html string, text string, err error) {
	var hb, tb bytes.Buffer

	if err := welcomeHTML.Execute(&hb, data); err != nil {
		return "", "", err
	}
	if err := welcomeText.Execute(&tb, data); err != nil {
		return "", "", err
	}

	return hb.String(), tb.String(), nil
}
