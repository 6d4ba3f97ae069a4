package commitmsg

import (
	"strings"

	"github.com/valyala/fasttemplate"
)

// Default is the message used when none is configured.
const Default = "Automatic dashboard update"

// Vars are the values available to a message template.
type Vars struct {
	Account string
	Repo    string
	Branch  string
}

// Generate substitutes {account}, {repo} and {branch} in
// format. Unknown placeholders are preserved as-is. An
// empty or blank format yields Default.
func Generate(format string, vars Vars) string {
	if strings.TrimSpace(format) == "" {
		return Default
	}

	return fasttemplate.ExecuteStringStd(
		format, "{", "}",
		map[string]interface{}{
			"account": vars.Account,
			"repo":    vars.Repo,
			"branch":  vars.Branch,
		},
	)
}
