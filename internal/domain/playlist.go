package domain

// DefaultPageSize is the number of playlist items rendered per page.
const DefaultPageSize = 5

// PlaylistItem is a lightweight leaf item of a resolved playlist. Index is
// the absolute position in the full item list, not the page-relative row.
type PlaylistItem struct {
	Index    int
	URL      string
	Title    string
	Duration *float64
}

// PlaylistSession is the paginated view state over a resolved playlist for
// one owner. Starting a new browse for the same owner replaces the session.
type PlaylistSession struct {
	OwnerID   string
	SourceURL string
	Platform  Platform
	Title     string
	Items     []PlaylistItem
	Page      int
}

// NewPlaylistSession builds a session from extracted collection info,
// keeping only true leaf items. Nested playlist placeholders and entries
// missing both a URL and a title are malformed and skipped.
func NewPlaylistSession(ownerID string, info *MediaInfo) *PlaylistSession {
	items := make([]PlaylistItem, 0, len(info.Entries))
	for _, entry := range info.Entries {
		if entry.Type != "" && entry.Type != "video" && entry.Type != "url" {
			continue
		}
		if entry.URL == "" || entry.Title == "" {
			continue
		}
		items = append(items, PlaylistItem{
			Index:    len(items),
			URL:      entry.URL,
			Title:    entry.Title,
			Duration: entry.Duration,
		})
	}

	return &PlaylistSession{
		OwnerID:   ownerID,
		SourceURL: info.URL,
		Platform:  info.Platform,
		Title:     info.Title,
		Items:     items,
	}
}

// PageItems returns the items of a 0-indexed page. A page past the end
// yields an empty slice with hasNext=false, never an error.
func (s *PlaylistSession) PageItems(page, pageSize int) (items []PlaylistItem, hasNext, hasPrev bool) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page < 0 {
		page = 0
	}

	start := page * pageSize
	if start >= len(s.Items) {
		return []PlaylistItem{}, false, page > 0
	}

	end := start + pageSize
	if end > len(s.Items) {
		end = len(s.Items)
	}

	return s.Items[start:end], end < len(s.Items), page > 0
}

// TotalPages returns the page count for the given page size.
func (s *PlaylistSession) TotalPages(pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if len(s.Items) == 0 {
		return 1
	}
	return (len(s.Items) + pageSize - 1) / pageSize
}

// Item resolves one item by its absolute index in the full item list.
func (s *PlaylistSession) Item(index int) (PlaylistItem, bool) {
	if index < 0 || index >= len(s.Items) {
		return PlaylistItem{}, false
	}
	return s.Items[index], true
}
