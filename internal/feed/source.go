package feed

import (
	"log/slog"

	"github.com/tartampluch/go-age/internal/config"
	"github.com/zalando/go-keyring"
)

// Source describes where contacts are read from and how the calendar is
// decorated.
type Source struct {
	Mode     string // config.SourceModeLocal or config.SourceModeWeb
	Path     string // Path to the .vcf file (local mode)
	URL      string // CardDAV or WebDAV URL (web mode)
	User     string // HTTP Basic Auth username
	Password string // HTTP Basic Auth password
	Reminder string // ISO8601 duration for the VALARM trigger (e.g. "-P1D"), empty for none
}

// SourceFromSettings builds the feed source configured for the server.
func SourceFromSettings(s *config.Settings) Source {
	return Source{
		Mode:     s.FeedMode,
		Path:     s.FeedPath,
		URL:      s.FeedURL,
		User:     s.FeedUser,
		Password: s.FeedPassword,
		Reminder: s.FeedReminder,
	}
}

// WithKeyringPassword returns a copy of s whose empty password is filled from
// the OS keyring entry (config.KeyringService, User). A failed lookup leaves
// the password empty; some servers accept anonymous reads.
func (s Source) WithKeyringPassword() Source {
	if s.Password != "" || s.User == "" {
		return s
	}

	p, err := keyring.Get(config.KeyringService, s.User)
	if err != nil {
		slog.Debug(config.MsgPassFail,
			config.LogKeyUser, s.User,
			config.LogKeyError, err,
			config.LogKeyComponent, config.CompFeed)
		return s
	}
	s.Password = p
	return s
}
