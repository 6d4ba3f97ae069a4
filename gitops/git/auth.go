package git

import (
	"encoding/base64"
	"strconv"
)

// BasicAuth holds HTTP credentials for a push. For
// personal access tokens Password is the token.
type BasicAuth struct {
	Username string
	Password string
}

// IsZero reports whether no credential is set.
func (a BasicAuth) IsZero() bool {
	return a.Password == ""
}

// String never includes the password.
func (a BasicAuth) String() string {
	if a.IsZero() {
		return "none"
	}

	return a.Username + ":***"
}

// env returns git environment configuration that adds an
// Authorization header to HTTP requests.
func (a BasicAuth) env() []string {
	if a.IsZero() {
		return nil
	}

	raw := a.Username + ":" + a.Password
	header := "Authorization: Basic " +
		base64.StdEncoding.EncodeToString([]byte(raw))

	return configEnv(map[string]string{
		"http.extraHeader": header,
	})
}

// configEnv renders key/value pairs as the
// GIT_CONFIG_COUNT/KEY/VALUE environment understood by
// git 2.31 and later.
func configEnv(kv map[string]string) []string {
	env := []string{
		"GIT_CONFIG_COUNT=" + strconv.Itoa(len(kv)),
	}

	i := 0

	for k, v := range kv {
		idx := strconv.Itoa(i)
		env = append(env,
			"GIT_CONFIG_KEY_"+idx+"="+k,
			"GIT_CONFIG_VALUE_"+idx+"="+v,
		)
		i++
	}

	return env
}
