package authcode

// ProfileEmail is one email address attached to a provider profile.
type ProfileEmail struct {
	Value string `json:"value"`
	Type  string `json:"type,omitempty"`
}

// ProfilePhoto is one photo/avatar URL attached to a provider profile.
type ProfilePhoto struct {
	Value string `json:"value"`
}

// Profile is the normalized user identity a provider hands back after
// authentication, distinct from the OAuth tokens themselves. Only Provider is
// guaranteed; everything else depends on what the provider exposes.
type Profile struct {
	Provider    string         `json:"provider"`
	ID          string         `json:"id,omitempty"`
	DisplayName string         `json:"displayName,omitempty"`
	Name        string         `json:"name,omitempty"`
	Emails      []ProfileEmail `json:"emails,omitempty"`
	Photos      []ProfilePhoto `json:"photos,omitempty"`

	// Raw is the provider's unparsed userinfo payload, for fields the
	// normalized shape doesn't cover.
	Raw map[string]any `json:"-"`
}
