package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FeedKind identifies one of the publisher's change-feed files.
type FeedKind string

const (
	KindNews  FeedKind = "news"
	KindEvent FeedKind = "event"
	KindGacha FeedKind = "gacha"
)

// Record is the common surface shared by all feed variants.
type Record interface {
	Kind() FeedKind
	EntryID() int
	StartAtMillis() int64
}

// NewsRecord is one entry of the in-game news feed. DetailURL and
// DetailHTMLURL are derived once at decode time and never serialized.
type NewsRecord struct {
	ID              int    `json:"id"`
	Seq             int    `json:"seq"`
	InformationType string `json:"informationType"`
	InformationTag  string `json:"informationTag"`
	BrowseType      string `json:"browseType"`
	Platform        string `json:"platform"`
	Title           string `json:"title"`
	Path            string `json:"path"`
	StartAt         int64  `json:"startAt"`
	EndAt           int64  `json:"endAt"`

	DetailURL     string `json:"-"`
	DetailHTMLURL string `json:"-"`
}

func (n NewsRecord) Kind() FeedKind       { return KindNews }
func (n NewsRecord) EntryID() int         { return n.ID }
func (n NewsRecord) StartAtMillis() int64 { return n.StartAt }

// EventRecord carries event scheduling metadata; the notification core only
// reads the common fields, the rest passes through.
type EventRecord struct {
	ID                  int    `json:"id"`
	EventType           string `json:"eventType"`
	Name                string `json:"name"`
	AssetbundleName     string `json:"assetbundleName"`
	BgmAssetbundleName  string `json:"bgmAssetbundleName"`
	StartAt             int64  `json:"startAt"`
	AggregateAt         int64  `json:"aggregateAt"`
	RankingAnnounceAt   int64  `json:"rankingAnnounceAt"`
	DistributionStartAt int64  `json:"distributionStartAt"`
	ClosedAt            int64  `json:"closedAt"`
	DistributionEndAt   int64  `json:"distributionEndAt"`
	VirtualLiveID       int    `json:"virtualLiveId"`
}

func (e EventRecord) Kind() FeedKind       { return KindEvent }
func (e EventRecord) EntryID() int         { return e.ID }
func (e EventRecord) StartAtMillis() int64 { return e.StartAt }

// GachaRecord carries gacha scheduling and rate metadata; pass-through only.
type GachaRecord struct {
	ID              int    `json:"id"`
	GachaType       string `json:"gachaType"`
	Name            string `json:"name"`
	Seq             int    `json:"seq"`
	AssetbundleName string `json:"assetbundleName"`
	Rarity1Rate     int    `json:"rarity1Rate"`
	Rarity2Rate     int    `json:"rarity2Rate"`
	Rarity3Rate     int    `json:"rarity3Rate"`
	Rarity4Rate     int    `json:"rarity4Rate"`
	StartAt         int64  `json:"startAt"`
	EndAt           int64  `json:"endAt"`
	GachaCeilItemID int    `json:"gachaCeilItemId"`
}

func (g GachaRecord) Kind() FeedKind       { return KindGacha }
func (g GachaRecord) EntryID() int         { return g.ID }
func (g GachaRecord) StartAtMillis() int64 { return g.StartAt }

// DecodeNewsFeed parses the raw news feed file and derives per-entry detail
// URLs against the publisher's base URLs. Unknown JSON fields are ignored.
func DecodeNewsFeed(raw []byte, baseURL, htmlBaseURL string) ([]NewsRecord, error) {
	var records []NewsRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode news feed: %w", err)
	}
	for i := range records {
		records[i].deriveURLs(baseURL, htmlBaseURL)
	}
	return records, nil
}

// DecodeEventFeed parses the raw events feed file.
func DecodeEventFeed(raw []byte) ([]EventRecord, error) {
	var records []EventRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode event feed: %w", err)
	}
	return records, nil
}

// DecodeGachaFeed parses the raw gachas feed file.
func DecodeGachaFeed(raw []byte) ([]GachaRecord, error) {
	var records []GachaRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode gacha feed: %w", err)
	}
	return records, nil
}

// deriveURLs resolves the entry's detail page locations. Only paths under the
// publisher's "information" section have a fetchable HTML counterpart.
func (n *NewsRecord) deriveURLs(baseURL, htmlBaseURL string) {
	if !strings.HasPrefix(n.Path, "information") {
		return
	}
	n.DetailURL = baseURL + n.Path
	if idx := strings.Index(n.Path, "?id="); idx >= 0 {
		n.DetailHTMLURL = htmlBaseURL + n.Path[idx+len("?id="):] + ".html"
	}
}
