package cli

type errNotConfigured struct{}

func (errNotConfigured) Error() string {
	return "no provider configured; run `hdnotes init --api-url URL --api-key KEY` (or pass --api-url/--api-key, or try --demo)"
}

type errNotSignedIn struct{}

func (errNotSignedIn) Error() string {
	return "not signed in; run `hdnotes login --email you@example.com` then `hdnotes verify`"
}
