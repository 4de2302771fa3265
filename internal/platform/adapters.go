package platform

import (
	"log/slog"

	"github.com/iconidentify/mediagrab/internal/domain"
	"github.com/iconidentify/mediagrab/pkg/extractor"
)

// Domain claim lists per platform. Substring matching means shorteners and
// regional mirrors are covered without enumerating every host.
var (
	youtubeDomains   = []string{"youtube.com", "youtu.be"}
	tiktokDomains    = []string{"tiktok.com"}
	facebookDomains  = []string{"facebook.com", "fb.watch", "fb.com"}
	instagramDomains = []string{"instagram.com"}
	snapchatDomains  = []string{"snapchat.com"}
	pinterestDomains = []string{"pinterest.com", "pin.it"}
)

// NewYouTube creates the YouTube adapter.
func NewYouTube(client *extractor.Client, cookiesDir string, logger *slog.Logger) Adapter {
	return newAdapter(domain.PlatformYouTube, youtubeDomains, client, cookiesDir, logger)
}

// NewTikTok creates the TikTok adapter.
func NewTikTok(client *extractor.Client, cookiesDir string, logger *slog.Logger) Adapter {
	return newAdapter(domain.PlatformTikTok, tiktokDomains, client, cookiesDir, logger)
}

// NewFacebook creates the Facebook adapter.
func NewFacebook(client *extractor.Client, cookiesDir string, logger *slog.Logger) Adapter {
	return newAdapter(domain.PlatformFacebook, facebookDomains, client, cookiesDir, logger)
}

// NewInstagram creates the Instagram adapter.
func NewInstagram(client *extractor.Client, cookiesDir string, logger *slog.Logger) Adapter {
	return newAdapter(domain.PlatformInstagram, instagramDomains, client, cookiesDir, logger)
}

// NewSnapchat creates the Snapchat adapter.
func NewSnapchat(client *extractor.Client, cookiesDir string, logger *slog.Logger) Adapter {
	return newAdapter(domain.PlatformSnapchat, snapchatDomains, client, cookiesDir, logger)
}

// NewPinterest creates the Pinterest adapter.
func NewPinterest(client *extractor.Client, cookiesDir string, logger *slog.Logger) Adapter {
	return newAdapter(domain.PlatformPinterest, pinterestDomains, client, cookiesDir, logger)
}

// DefaultAdapters returns all supported adapters in resolution order.
func DefaultAdapters(client *extractor.Client, cookiesDir string, logger *slog.Logger) []Adapter {
	return []Adapter{
		NewYouTube(client, cookiesDir, logger),
		NewTikTok(client, cookiesDir, logger),
		NewFacebook(client, cookiesDir, logger),
		NewInstagram(client, cookiesDir, logger),
		NewSnapchat(client, cookiesDir, logger),
		NewPinterest(client, cookiesDir, logger),
	}
}
