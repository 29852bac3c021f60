package notifications

import (
	"fmt"
	"time"

	"github.com/goliatone/go-lfg-client/pkg/domain"
)

var typeIcons = map[domain.Type]string{
	domain.TypeRequestReceived: "📩",
	domain.TypeRequestAccepted: "✅",
	domain.TypeRequestRejected: "❌",
	domain.TypeLeaderChanged:   "👑",
	domain.TypeMemberJoined:    "🎉",
	domain.TypeMemberLeft:      "👣",
	domain.TypeKicked:          "🚫",
	domain.TypeGroupClosed:     "🚪",
	domain.TypeGeneric:         "🔔",
}

// TypeIcon returns the toast/list glyph for a notification type.
func TypeIcon(t domain.Type) string {
	if icon, ok := typeIcons[t]; ok {
		return icon
	}
	return typeIcons[domain.TypeGeneric]
}

// Age renders a notification's age for list displays: "just now" under a
// minute, then minutes, then hours, then the calendar date.
func Age(createdAt, now time.Time) string {
	diff := now.Sub(createdAt)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%d min", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh", int(diff.Hours()))
	default:
		return createdAt.Format("2006-01-02")
	}
}
