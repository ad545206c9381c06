package content

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/starford/folio/internal/models"
)

var linkRe = regexp.MustCompile(`\[\[(.*?)\]\]`)

// Link is an internal reference embedded in note content as
// [[notes:3|label]] or [[events:2]].
type Link struct {
	Kind  models.Kind `json:"kind"`
	ID    int         `json:"id"`
	Label string      `json:"label"`
}

// Rendered is note content with link markup resolved.
type Rendered struct {
	Text  string `json:"text"`
	Links []Link `json:"links"`
}

// Render replaces link markup with its label and collects the targets.
// Malformed markup is left in the text untouched.
func Render(src string) Rendered {
	seen := make(map[Link]struct{})
	links := []Link{}
	text := linkRe.ReplaceAllStringFunc(src, func(m string) string {
		link, ok := parseLink(m[2 : len(m)-2])
		if !ok {
			return m
		}
		key := Link{Kind: link.Kind, ID: link.ID}
		if _, dup := seen[key]; !dup {
			seen[key] = struct{}{}
			links = append(links, link)
		}
		return link.Label
	})
	return Rendered{Text: text, Links: links}
}

func parseLink(raw string) (Link, bool) {
	target, label := raw, ""
	if i := strings.Index(raw, "|"); i >= 0 {
		target, label = raw[:i], strings.TrimSpace(raw[i+1:])
	}
	kindStr, idStr, ok := strings.Cut(strings.TrimSpace(target), ":")
	if !ok {
		return Link{}, false
	}
	kind, err := models.ParseKind(kindStr)
	if err != nil {
		return Link{}, false
	}
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		return Link{}, false
	}
	if label == "" {
		label = strings.TrimSpace(target)
	}
	return Link{Kind: kind, ID: id, Label: label}, true
}
