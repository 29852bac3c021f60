package notifications

import (
	i18n "github.com/goliatone/go-i18n"
)

// Translations returns the default catalog for notification messages.
// Hosts can supply their own translator to extend or replace these.
func Translations() i18n.Translations {
	return i18n.Translations{
		"en": newCatalog("en", map[string]string{
			"notifs.request_received":    `%s wants to join %s (%s)`,
			"notifs.request_accepted":    `Your request for %s was accepted!`,
			"notifs.request_accepted_by": `%s accepted your request for %s`,
			"notifs.request_rejected":    `Your request for %s was rejected.`,
			"notifs.leader_changed":      `You are now the group leader!`,
			"notifs.member_joined":       `%s joined the group.`,
			"notifs.member_left":         `%s left the group.`,
			"notifs.kicked_from_group":   `You were removed from the %s group.`,
			"notifs.group_closed":        `The %s group was closed.`,
			"notifs.generic":             `New notification`,
			"notifs.someone":             `Someone`,
		}),
		"es": newCatalog("es", map[string]string{
			"notifs.request_received":    `%s quiere unirse a %s (%s)`,
			"notifs.request_accepted":    `¡Tu solicitud para %s fue aceptada!`,
			"notifs.request_accepted_by": `%s aceptó tu solicitud para %s`,
			"notifs.request_rejected":    `Tu solicitud para %s fue rechazada.`,
			"notifs.leader_changed":      `¡Ahora eres el nuevo líder del grupo!`,
			"notifs.member_joined":       `%s se unió al grupo.`,
			"notifs.member_left":         `%s abandonó el grupo.`,
			"notifs.kicked_from_group":   `Fuiste expulsado del grupo de %s.`,
			"notifs.group_closed":        `El grupo de %s fue cerrado.`,
			"notifs.generic":             `Nueva notificación`,
			"notifs.someone":             `Alguien`,
		}),
	}
}

func newCatalog(locale string, entries map[string]string) *i18n.TranslationCatalog {
	catalog := &i18n.TranslationCatalog{
		Locale:   i18n.Locale{Code: locale},
		Messages: make(map[string]i18n.Message),
	}
	for key, template := range entries {
		msg := i18n.Message{}
		msg.SetContent(template)
		catalog.Messages[key] = msg
	}
	return catalog
}
