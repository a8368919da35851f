package streamquery

import (
	"regexp"
	"strconv"
)

var citationPattern = regexp.MustCompile(`\[(\d+)\]`)

// Answer is the fold of one session's events into the final answer.
// The zero value is an empty answer ready for Apply.
type Answer struct {
	ChatID                  string
	TurnID                  string
	Text                    string
	SearchResults           []SearchResult
	FactualConsistencyScore *float64 // nil until the score event arrives
	Errors                  []string
	Generating              bool // true between the first chunk and EventGenerationEnd
	Done                    bool // true once EventEnd was applied
}

// Apply folds e into the answer.
func (a *Answer) Apply(e Event) {
	switch ev := e.(type) {
	case EventError:
		a.Errors = append(a.Errors, ev.Messages...)
	case EventSearchResults:
		a.SearchResults = ev.Results
	case EventChatInfo:
		a.ChatID = ev.ChatID
		a.TurnID = ev.TurnID
	case EventGenerationChunk:
		a.Text = ev.UpdatedText
		a.Generating = true
	case EventGenerationEnd:
		a.Generating = false
	case EventFactualConsistencyScore:
		score := ev.Score
		a.FactualConsistencyScore = &score
	case EventEnd:
		a.Generating = false
		a.Done = true
	}
}

// Failed reports whether the server reported any error.
func (a Answer) Failed() bool {
	return len(a.Errors) > 0
}

// Citations returns the distinct [n] citation numbers in the generated text
// in order of first appearance. Numbers are 1-based positions into
// SearchResults as written by the model and are not range checked.
func (a Answer) Citations() []int {
	var out []int
	seen := make(map[int]bool)
	for _, m := range citationPattern.FindAllStringSubmatch(a.Text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
