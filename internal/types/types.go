package types

import (
	"strconv"
	"strings"
	"time"
)

// Announcement is a single item from the exchange news feed.
// An empty IssuerSign means the announcement cannot be matched by ticker.
type Announcement struct {
	ID                     int64
	MessageID              int64
	NewsID                 int64
	IssuerSign             string
	IssuerName             string
	InstrumentName         string
	Title                  string
	Category               []string
	Markets                []string
	PublishedTime          time.Time
	CorrectionForMessageID int64
	Attachments            int
	Test                   bool
}

// Content is the full text of an announcement, fetched on demand.
type Content struct {
	Title string
	Body  string
}

type Subscriber struct {
	ID      string
	Address string
	Tickers map[string]struct{}
}

// NewSubscriber builds a subscriber with a normalised ticker set.
func NewSubscriber(id, address string, tickers []string) Subscriber {
	set := make(map[string]struct{}, len(tickers))
	for _, t := range tickers {
		if n := NormalizeTicker(t); n != "" {
			set[n] = struct{}{}
		}
	}
	return Subscriber{ID: id, Address: address, Tickers: set}
}

func (s Subscriber) Watches(sign string) bool {
	_, ok := s.Tickers[sign]
	return ok
}

// NormalizeTicker trims and upper-cases a ticker or issuer sign.
func NormalizeTicker(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}

// Key identifies a single subscriber/announcement notification.
type Key struct {
	SubscriberID   string
	AnnouncementID int64
}

func (k Key) String() string {
	return k.SubscriberID + ":" + strconv.FormatInt(k.AnnouncementID, 10)
}

// ParseKey parses the token form written by Key.String. The subscriber part
// may itself contain colons, so the split happens at the last one.
func ParseKey(token string) (Key, bool) {
	i := strings.LastIndexByte(token, ':')
	if i <= 0 || i == len(token)-1 {
		return Key{}, false
	}
	id, err := strconv.ParseInt(token[i+1:], 10, 64)
	if err != nil {
		return Key{}, false
	}
	return Key{SubscriberID: token[:i], AnnouncementID: id}, true
}

type KeySet map[Key]struct{}

func (s KeySet) Has(k Key) bool {
	_, ok := s[k]
	return ok
}

func (s KeySet) Add(k Key) {
	s[k] = struct{}{}
}

func (s KeySet) Len() int {
	return len(s)
}

// ParseKeys splits whitespace separated tokens into a KeySet, silently
// dropping empty and malformed tokens.
func ParseKeys(data string) KeySet {
	keys := make(KeySet)
	for _, token := range strings.Fields(data) {
		if k, ok := ParseKey(token); ok {
			keys.Add(k)
		}
	}
	return keys
}

// Delivery is the outcome of one send attempt.
type Delivery struct {
	Key     Key
	Address string
	Ticker  string
	Subject string
	Err     error
}

// RunSummary tallies one pass of the pipeline.
type RunSummary struct {
	RunID           string
	Day             string
	Announcements   int
	Subscribers     int
	Matched         int
	AlreadyNotified int
	Sent            int
	Failed          int
	Deliveries      []Delivery
}
