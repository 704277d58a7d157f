package ingest

// ResolveAuthor maps a raw author label onto one of the two canonical
// conversation identities. Exact matches return the canonical label;
// anything else passes through unchanged so third-party and group
// senders stay distinguishable. An empty label defaults to the
// counterpart identity.
func ResolveAuthor(raw, self, counterpart string) string {
	switch raw {
	case self:
		return self
	case counterpart:
		return counterpart
	case "":
		return counterpart
	}
	return raw
}
