// ABOUTME: Pure rendering of the subject selection keyboard and resource listings
// ABOUTME: Keyboard state is derived entirely from the chosen set, never incrementally

package bot

import (
	"fmt"
	"strings"

	"github.com/studybuddy/studybuddy/internal/store"
	"github.com/studybuddy/studybuddy/internal/subjects"
)

// Callback payloads carried by keyboard buttons.
const (
	subjectPrefix = "subject_"
	doneData      = "done"
)

const chosenMark = "✅ "

// kindTitles maps the stored kind enum to its Russian display name.
var kindTitles = map[store.ResourceKind]string{
	store.KindArticle:  "Статья",
	store.KindVideo:    "Видео",
	store.KindTutorial: "Туториал",
}

// selectionKeyboard renders the full catalog with each entry marked according
// to the chosen set. The render is a pure function of chosen: the same set
// always yields the same keyboard.
func selectionKeyboard(chosen []string) [][]Button {
	set := make(map[string]struct{}, len(chosen))
	for _, subj := range chosen {
		set[subj] = struct{}{}
	}

	catalog := subjects.Catalog()
	keyboard := make([][]Button, 0, len(catalog)+1)
	for _, subj := range catalog {
		label := subj
		if _, ok := set[subj]; ok {
			label = chosenMark + subj
		}
		keyboard = append(keyboard, []Button{{Text: label, Data: subjectPrefix + subj}})
	}

	keyboard = append(keyboard, []Button{{Text: "Готово", Data: doneData}})
	return keyboard
}

// formatResources renders the resource listing grouped by subject and kind.
func formatResources(resources []*store.Resource) string {
	var b strings.Builder
	b.WriteString("Вот некоторые учебные материалы для тебя:\n\n")

	var lastGroup string
	for _, r := range resources {
		kind := kindTitles[r.Kind]
		if kind == "" {
			kind = string(r.Kind)
		}
		group := fmt.Sprintf("**%s - %s**", r.Subject, kind)
		if group != lastGroup {
			b.WriteString(group)
			b.WriteString("\n")
			lastGroup = group
		}
		fmt.Fprintf(&b, "[%s](%s)\n\n", r.Title, r.Link)
	}

	return strings.TrimRight(b.String(), "\n")
}
