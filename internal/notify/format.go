// Package notify — format.go собирает тексты сообщений (HTML parse mode Telegram).
package notify

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"serotonyl.ru/newsboard/internal/common"
)

// Длинные заголовки режем, чтобы дайджест не упирался в лимит сообщения.
const maxTitleRunes = 120

// Link — внешняя ссылка истории или страница обсуждения.
func Link(s Story, baseURL string) string {
	if s.URL != "" {
		return s.URL
	}
	return ItemURL(s.ID, baseURL)
}

// ItemURL — страница обсуждения на сайте.
func ItemURL(id fmt.Stringer, baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/item/" + id.String()
}

// FormatAnnouncement — сообщение о новой истории.
func FormatAnnouncement(s Story, baseURL string, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🆕 <a href=\"%s\">%s</a>\n",
		html.EscapeString(Link(s, baseURL)),
		html.EscapeString(common.Truncate(s.Title, maxTitleRunes)),
	)
	fmt.Fprintf(&b, "by %s, %s", html.EscapeString(s.Author), humanize.RelTime(s.CreatedAt, now, "ago", "from now"))
	if s.URL != "" {
		fmt.Fprintf(&b, "\n💬 <a href=\"%s\">discuss</a>", html.EscapeString(ItemURL(s.ID, baseURL)))
	}
	return b.String()
}

// FormatDigest — пронумерованный список лучших историй.
func FormatDigest(stories []Story, baseURL string, now time.Time) string {
	var b strings.Builder
	b.WriteString("🔥 <b>Top stories of the day</b>\n")
	for i, s := range stories {
		fmt.Fprintf(&b, "\n%d. <a href=\"%s\">%s</a>\n   %s %s by %s, %s | <a href=\"%s\">%s %s</a>\n",
			i+1,
			html.EscapeString(Link(s, baseURL)),
			html.EscapeString(common.Truncate(s.Title, maxTitleRunes)),
			humanize.Comma(int64(s.Score)), common.Pluralize(s.Score, "point", "points"),
			html.EscapeString(s.Author),
			humanize.RelTime(s.CreatedAt, now, "ago", "from now"),
			html.EscapeString(ItemURL(s.ID, baseURL)),
			humanize.Comma(int64(s.Comments)), common.Pluralize(s.Comments, "comment", "comments"),
		)
	}
	return strings.TrimRight(b.String(), "\n")
}
