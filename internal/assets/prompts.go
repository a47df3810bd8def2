// Package assets holds the prompt templates embedded into the binaries.
//
// Static system prompts are plain strings; request prompts are text/template
// files rendered with the data structs below.
package assets

import (
	"bytes"
	_ "embed"
	"strings"
	"text/template"
)

// ClassifySystemPrompt instructs the vision model to return one analysis
// record per photo.
//
//go:embed prompts/classify-system.txt
var ClassifySystemPrompt string

// StoryboardSystemPrompt describes the layout catalog and the JSON plan shape.
//
//go:embed prompts/storyboard-system.txt
var StoryboardSystemPrompt string

//go:embed prompts/storyboard-request.txt
var storyboardRequestTemplate string

//go:embed prompts/background.txt
var backgroundTemplate string

var storyboardRequestTmpl = template.Must(template.New("storyboard").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(storyboardRequestTemplate))

var backgroundTmpl = template.Must(template.New("background").Parse(backgroundTemplate))

// Answer is one questionnaire entry.
type Answer struct {
	Key   string
	Value string
}

// PhotoLine is the per-photo metadata shown to the planner.
type PhotoLine struct {
	ID          string
	Orientation string
	Type        string
	Quality     string
	Emotion     string
	Content     string
	TakenAt     string
}

// StoryboardRequest is the data for the storyboard request prompt.
type StoryboardRequest struct {
	Occasion  string
	Style     string
	Title     string
	PageCount int
	IsSample  bool
	Answers   []Answer
	Photos    []PhotoLine
	Groupings [][]string
}

// RenderStoryboardRequest renders the per-job planning prompt.
func RenderStoryboardRequest(data StoryboardRequest) (string, error) {
	var buf bytes.Buffer
	if err := storyboardRequestTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// BackgroundPrompt is the data for a page background prompt.
type BackgroundPrompt struct {
	Style    string
	Occasion string
	Mood     string
	Detail   string
}

// RenderBackgroundPrompt renders an image synthesis prompt for one page.
func RenderBackgroundPrompt(data BackgroundPrompt) string {
	var buf bytes.Buffer
	// The template only references string fields, so Execute cannot fail.
	_ = backgroundTmpl.Execute(&buf, data)
	return strings.TrimSpace(buf.String())
}
