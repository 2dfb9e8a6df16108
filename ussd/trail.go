package ussd

import (
	"strings"

	"pocket-ussd/catalog"
)

// Tokens the subscriber types to move between pages of the service list.
const (
	nextToken = "n"
	prevToken = "0"
)

type position int

const (
	atServiceList position = iota
	atOptions
	atAmount
	amountEntered
	pastEnd
)

// trail is the gateway's accumulated input, split on "*" and replayed from
// the first segment. Nothing from earlier requests is trusted: the page and
// the menu position are rebuilt from the full text every time.
type trail struct {
	raw      string
	segments []string

	// page is count("n") - count("0") over every segment after the
	// language, clamped only once the whole trail has been read.
	page int
	pos  position

	service     string
	servicePage int
	option      string
	amount      string
}

func parseTrail(text string) trail {
	t := trail{raw: text}
	if text == "" {
		return t
	}
	t.segments = strings.Split(text, "*")
	running := 0
	for _, seg := range t.segments[1:] {
		seg = strings.TrimSpace(seg)
		before := running
		switch seg {
		case nextToken:
			running++
		case prevToken:
			running--
		}
		switch t.pos {
		case atServiceList:
			// leading "n"/"0" only page through the list
			if seg == nextToken || seg == prevToken {
				continue
			}
			t.service = seg
			t.servicePage = max(before, 0)
			t.pos = atOptions
		case atOptions:
			if seg == catalog.BackKey {
				t.service = ""
				t.pos = atServiceList
				continue
			}
			t.option = seg
			t.pos = atAmount
		case atAmount:
			t.amount = seg
			t.pos = amountEntered
		default:
			t.pos = pastEnd
		}
	}
	t.page = max(running, 0)
	return t
}

func (t trail) empty() bool {
	return len(t.segments) == 0
}

func (t trail) language() string {
	if t.empty() {
		return ""
	}
	return strings.TrimSpace(t.segments[0])
}
