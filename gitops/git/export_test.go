package git

// AuthEnvForTest exposes BasicAuth.env.
func AuthEnvForTest(a BasicAuth) []string {
	return a.env()
}
