package news

import "strings"

const unavailableText = "Could not fetch news at this time."

// RenderBullets renders up to limit items as Slack-markup bullet lines, one
// "• <link|title>" per item. An empty list yields the unavailable sentence.
func RenderBullets(items []Item, limit int) string {
	if len(items) == 0 {
		return unavailableText
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, "• "+FormatLink(item))
	}
	return strings.Join(lines, "\n")
}

// FormatLink renders one item using Slack's <url|label> link markup, falling
// back to the bare title when the item has no link.
func FormatLink(item Item) string {
	if strings.TrimSpace(item.Link) == "" {
		return item.Title
	}
	return "<" + item.Link + "|" + item.Title + ">"
}
