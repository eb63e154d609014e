// Package match decides whether a subscriber should hear about an announcement.
package match

import "github.com/shanehull/oslonotify/internal/types"

// ShouldNotify reports whether ann's issuer sign is on sub's watchlist and the
// pair has not been notified yet. It never mutates known.
func ShouldNotify(sub types.Subscriber, ann types.Announcement, known types.KeySet) bool {
	if ann.IssuerSign == "" {
		return false
	}
	if !sub.Watches(ann.IssuerSign) {
		return false
	}
	return !known.Has(KeyFor(sub, ann))
}

// KeyFor is the idempotency key for a subscriber/announcement pair.
func KeyFor(sub types.Subscriber, ann types.Announcement) types.Key {
	return types.Key{SubscriberID: sub.ID, AnnouncementID: ann.ID}
}
