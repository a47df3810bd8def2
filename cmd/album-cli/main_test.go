package main

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/fpang/photo-album-pipeline/internal/album"
	"github.com/fpang/photo-album-pipeline/internal/config"
)

func TestParseGroups(t *testing.T) {
	got := parseGroups([]string{"a, b,,c", " ", "d"})
	want := [][]string{{"a", "b", "c"}, {"d"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseGroups() = %v, want %v", got, want)
	}
}

func TestQuestionnaire_NamedFlagsWin(t *testing.T) {
	answerFlags = map[string]string{"occasion": "party", "venue": "beach"}
	occasionFlag, styleFlag, namesFlag, messageFlag, titleFlag = "wedding", "", "Ana", "", ""
	t.Cleanup(func() {
		answerFlags = nil
		occasionFlag, namesFlag = "", ""
	})

	q := questionnaire()
	if q.Occasion() != "wedding" || q.Names() != "Ana" || q["venue"] != "beach" {
		t.Errorf("questionnaire() = %v", q)
	}
	if _, ok := q[album.KeyStyle]; ok {
		t.Error("blank flag should not set an answer")
	}
}

func TestFormatsCommand(t *testing.T) {
	var out bytes.Buffer
	formatsCmd.SetOut(&out)
	formatsCmd.Run(formatsCmd, nil)

	if !strings.Contains(out.String(), "* print_20x20") {
		t.Errorf("default format not marked:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "print_a4_landscape") {
		t.Errorf("missing format:\n%s", out.String())
	}
}

func TestConfigInitPrintsSample(t *testing.T) {
	var out bytes.Buffer
	configInitCmd.SetOut(&out)
	configWriteFlag = ""
	configInitCmd.Run(configInitCmd, nil)

	if out.String() != config.SampleConfig() {
		t.Error("config init output differs from the sample config")
	}
}
