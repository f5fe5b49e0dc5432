package flow

import (
	"strconv"
	"strings"
)

const idSeparator = ":"

// CustomID identifies one component or modal of one flow instance.
// Token is unique per session, Seq distinguishes repeated steps of the same instance.
type CustomID struct {
	Flow  string
	Step  string
	Token string
	Seq   int
}

// String renders flow:step:token[:seq]
func (c CustomID) String() string {
	parts := []string{c.Flow, c.Step, c.Token}
	if c.Seq > 0 {
		parts = append(parts, strconv.Itoa(c.Seq))
	}
	return strings.Join(parts, idSeparator)
}

// ParseCustomID splits a rendered custom id back into its parts
func ParseCustomID(s string) (CustomID, bool) {
	parts := strings.Split(s, idSeparator)
	if len(parts) < 3 || len(parts) > 4 {
		return CustomID{}, false
	}
	id := CustomID{Flow: parts[0], Step: parts[1], Token: parts[2]}
	if id.Flow == "" || id.Step == "" || id.Token == "" {
		return CustomID{}, false
	}
	if len(parts) == 4 {
		seq, err := strconv.Atoi(parts[3])
		if err != nil || seq <= 0 {
			return CustomID{}, false
		}
		id.Seq = seq
	}
	return id, true
}

// Key identifies a live session for duplicate detection
type Key struct {
	Flow   string
	UserID string
	Scope  string
}

func (k Key) String() string {
	if k.Scope == "" {
		return k.Flow + idSeparator + k.UserID
	}
	return k.Flow + idSeparator + k.UserID + idSeparator + k.Scope
}

// UserKey scopes a flow to the acting user
func UserKey(flow, userID string) Key {
	return Key{Flow: flow, UserID: userID}
}

// GuildKey scopes a flow to the acting user within one guild
func GuildKey(flow, userID, guildID string) Key {
	return Key{Flow: flow, UserID: userID, Scope: guildID}
}

// TargetKey scopes a flow to the member being acted on
func TargetKey(flow, targetID, guildID string) Key {
	return Key{Flow: flow, UserID: targetID, Scope: guildID}
}
