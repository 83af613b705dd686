package domain

// Notification is one delivery-ready message: a short lead sentence plus a
// single rich card.
type Notification struct {
	Content string
	Card    Card
}

// Card is the rich part of a notification. Zero values mean "absent": an
// empty Body makes the card link-only, a zero Color applies no accent.
type Card struct {
	Title    string
	Body     string
	URL      string
	Color    int
	ImageURL string
	Footer   string
}
