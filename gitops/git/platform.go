package git

import "fmt"

// Platform describes where a site is hosted: the git host
// that receives pushes and the domain that serves pages.
type Platform struct {
	// Name is a short label used in logs.
	Name string
	// GitHost is the git server hostname
	// (e.g. "github.com").
	GitHost string
	// PagesHost is the domain under which account
	// sites are served (e.g. "github.io").
	PagesHost string
	// NoReplyDomain is the e-mail domain for
	// anonymised committer addresses.
	NoReplyDomain string
}

// GitHub is github.com with GitHub Pages.
var GitHub = Platform{
	Name:          "github",
	GitHost:       "github.com",
	PagesHost:     "github.io",
	NoReplyDomain: "users.noreply.github.com",
}

// GitLab is gitlab.com with GitLab Pages.
var GitLab = Platform{
	Name:          "gitlab",
	GitHost:       "gitlab.com",
	PagesHost:     "gitlab.io",
	NoReplyDomain: "users.noreply.gitlab.com",
}

// RemoteURL returns the HTTPS clone URL of repo. The URL
// never carries credentials.
func (p Platform) RemoteURL(account, repo string) string {
	return fmt.Sprintf(
		"https://%s/%s/%s.git", p.GitHost, account, repo,
	)
}

// PagesURL returns the public URL the site is served at.
func (p Platform) PagesURL(account, repo string) string {
	return fmt.Sprintf(
		"https://%s.%s/%s/", account, p.PagesHost, repo,
	)
}

// CommitterEmail returns the no-reply address used as
// the commit author e-mail.
func (p Platform) CommitterEmail(account string) string {
	return account + "@" + p.NoReplyDomain
}
