package notifications

import "github.com/goliatone/go-lfg-client/pkg/domain"

// Messages returns the default per-type message templates. Localization
// happens inside each template through the t() helper, so a single template
// serves every locale.
func Messages() map[domain.Type]string {
	return map[domain.Type]string{
		domain.TypeRequestReceived: `{{ t(locale, "notifs.request_received", charName, groupTitle, dungeon) }}`,
		domain.TypeRequestAccepted: `{% if charName %}{{ t(locale, "notifs.request_accepted_by", charName, dungeon) }}{% else %}{{ t(locale, "notifs.request_accepted", dungeon) }}{% endif %}`,
		domain.TypeRequestRejected: `{{ t(locale, "notifs.request_rejected", dungeon) }}`,
		domain.TypeLeaderChanged:   `{{ t(locale, "notifs.leader_changed") }}`,
		domain.TypeMemberJoined:    `{% if charName %}{{ t(locale, "notifs.member_joined", charName) }}{% else %}{{ t(locale, "notifs.member_joined", t(locale, "notifs.someone")) }}{% endif %}`,
		domain.TypeMemberLeft:      `{% if charName %}{{ t(locale, "notifs.member_left", charName) }}{% else %}{{ t(locale, "notifs.member_left", t(locale, "notifs.someone")) }}{% endif %}`,
		domain.TypeKicked:          `{{ t(locale, "notifs.kicked_from_group", dungeon) }}`,
		domain.TypeGroupClosed:     `{{ t(locale, "notifs.group_closed", dungeon) }}`,
		domain.TypeGeneric:         `{% if message %}{{ message }}{% else %}{{ t(locale, "notifs.generic") }}{% endif %}`,
	}
}
