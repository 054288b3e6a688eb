package entity

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	UserDestinationPrefix         = "user:"
	ConversationDestinationPrefix = "conversation:"
)

// ConversationKey names the unordered pair {a, b}: key(a, b) == key(b, a).
func ConversationKey(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d_%d", a, b)
}

// UserDestination is the private live queue of a single user.
func UserDestination(userId int64) string {
	return UserDestinationPrefix + strconv.FormatInt(userId, 10)
}

// ConversationDestination is the shared live topic of a conversation.
func ConversationDestination(key string) string {
	return ConversationDestinationPrefix + key
}

// IsUserDestination reports whether destination is a private user queue and
// returns its owner.
func IsUserDestination(destination string) (int64, bool) {
	rest, ok := strings.CutPrefix(destination, UserDestinationPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// ParseConversationDestination returns the participants of a well-formed
// conversation topic, smaller id first.
func ParseConversationDestination(destination string) (int64, int64, bool) {
	rest, ok := strings.CutPrefix(destination, ConversationDestinationPrefix)
	if !ok {
		return 0, 0, false
	}
	a, b, ok := strings.Cut(rest, "_")
	if !ok {
		return 0, 0, false
	}
	first, err := strconv.ParseInt(a, 10, 64)
	if err != nil {
		return 0, 0, false
	}
	second, err := strconv.ParseInt(b, 10, 64)
	if err != nil || first > second {
		return 0, 0, false
	}
	return first, second, true
}

func IsConversationDestination(destination string) bool {
	_, _, ok := ParseConversationDestination(destination)
	return ok
}
