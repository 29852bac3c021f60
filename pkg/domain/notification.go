package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Type enumerates the notification kinds delivered by the backend.
type Type string

const (
	TypeRequestReceived Type = "request_received"
	TypeRequestAccepted Type = "request_accepted"
	TypeRequestRejected Type = "request_rejected"
	TypeLeaderChanged   Type = "leader_changed"
	TypeMemberJoined    Type = "member_joined"
	TypeMemberLeft      Type = "member_left"
	TypeKicked          Type = "kicked_from_group"
	TypeGroupClosed     Type = "group_closed"
	TypeGeneric         Type = "info"
)

// Known reports whether the type is part of the enumerated set. Unknown types
// still flow through the system and render with the generic message.
func (t Type) Known() bool {
	switch t {
	case TypeRequestReceived, TypeRequestAccepted, TypeRequestRejected,
		TypeLeaderChanged, TypeMemberJoined, TypeMemberLeft,
		TypeKicked, TypeGroupClosed, TypeGeneric:
		return true
	}
	return false
}

// SyncState tracks reconciliation between an optimistic local mutation and the
// remote store. Local state is authoritative; a failed remote call only flips
// the marker, it never rolls the mutation back.
type SyncState string

const (
	SyncClean   SyncState = ""
	SyncPending SyncState = "pending"
)

// Payload carries the type-specific fields of a notification. Which fields are
// populated depends on Type: request/member events carry character info, group
// events carry the group reference, generic events may only carry Message.
type Payload struct {
	GroupID       string `json:"groupId,omitempty"`
	GroupTitle    string `json:"groupTitle,omitempty"`
	CharacterID   string `json:"characterId,omitempty"`
	CharacterName string `json:"characterName,omitempty"`
	ClassID       int    `json:"classId,omitempty"`
	Gender        int    `json:"gender,omitempty"`
	DungeonID     string `json:"dungeonId,omitempty"`
	DungeonName   string `json:"dungeonName,omitempty"`
	Message       string `json:"message,omitempty"`
}

// ClassIcon returns the padded class/gender asset key used for avatars,
// e.g. classId 3 gender 1 -> "031".
func (p Payload) ClassIcon() string {
	if p.ClassID == 0 {
		return ""
	}
	return fmt.Sprintf("%02d%d", p.ClassID, p.Gender)
}

// ID is a wire identifier. The backend assigns integer ids while
// client-synthesized fallbacks are ULID strings, so both JSON numbers and
// JSON strings decode.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("domain: invalid id %s", data)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Notification is one delivered or fetched event in the local log.
type Notification struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Payload   Payload   `json:"data"`
	CreatedAt time.Time `json:"createdAt"`
	Read      bool      `json:"is_read"`
	Sync      SyncState `json:"-"`
}

// UnmarshalJSON tolerates numeric identifiers; the backend assigns integer ids
// while client-synthesized fallbacks are strings.
func (n *Notification) UnmarshalJSON(data []byte) error {
	type alias Notification
	var raw struct {
		alias
		ID ID `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*n = Notification(raw.alias)
	n.ID = raw.ID.String()
	return nil
}

// PushEvent is the payload of a `new_notification` push. The type-specific
// fields arrive at the top level next to id and type.
type PushEvent struct {
	ID   ID   `json:"id,omitempty"`
	Type Type `json:"type"`
	Payload
}

// EventID normalizes the server identifier, empty when the server omitted it.
func (e PushEvent) EventID() string {
	id := e.ID.String()
	if id == "" || id == "0" {
		return ""
	}
	return id
}

// GroupUpdate is a room-scoped `group_update` push.
type GroupUpdate struct {
	Type Type `json:"type"`
}

// Closed reports the terminal variant: the group no longer exists and the
// client should navigate away instead of refreshing.
func (u GroupUpdate) Closed() bool {
	return u.Type == TypeGroupClosed
}

// RequestProcessed is a room-scoped `request_processed` push.
type RequestProcessed struct {
	GroupID ID     `json:"groupId"`
	Status  string `json:"status"`
}

// ForGroup matches the event against a detail view's entity id.
func (r RequestProcessed) ForGroup(groupID string) bool {
	return strings.TrimSpace(groupID) != "" && r.GroupID.String() == groupID
}

// ListUpdate is the broadcast `group_list_update` push. The payload beyond the
// change type is opaque to this layer.
type ListUpdate struct {
	Type string `json:"type"`
}

// Stats is the broadcast `stats_update` push consumed by simple displays.
type Stats struct {
	Online       int `json:"online"`
	ActiveGroups int `json:"activeGroups"`
}

// Event names on the push channel.
const (
	EventIdentify         = "identify"
	EventJoinGroup        = "join_group"
	EventLeaveGroup       = "leave_group"
	EventNewNotification  = "new_notification"
	EventGroupUpdate      = "group_update"
	EventRequestProcessed = "request_processed"
	EventListUpdate       = "group_list_update"
	EventStats            = "stats_update"
)
