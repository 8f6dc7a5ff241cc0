package domain

// Settings holds the global, single-instance preferences.
// Loaded once at startup, merged over hard defaults, persisted on every
// change.
type Settings struct {
	// DefaultDurationMs seeds the cooldown length of newly created sites.
	DefaultDurationMs int64 `json:"defaultDurationMs"`

	// SoundOn gates the audio side effect on cooldown expiry.
	SoundOn bool `json:"soundOn"`
}

// DefaultSettings returns the hard defaults used when nothing was
// persisted yet or the persisted payload is unreadable.
func DefaultSettings() Settings {
	return Settings{
		DefaultDurationMs: (30 * MinCooldown).Milliseconds(),
		SoundOn:           true,
	}
}

// Merge overlays s over the hard defaults, discarding invalid fields.
// A non-positive or sub-floor default duration falls back to the default.
func (s Settings) Merge() Settings {
	out := DefaultSettings()
	if s.DefaultDurationMs >= MinCooldown.Milliseconds() {
		out.DefaultDurationMs = s.DefaultDurationMs
	}
	out.SoundOn = s.SoundOn
	return out
}

// SettingsPatch is a settings document arriving from the outside (a PUT
// body, an import section, a persisted blob). Fields are pointers so an
// absent field keeps its default instead of collapsing to the zero
// value.
type SettingsPatch struct {
	DefaultDurationMs *int64 `json:"defaultDurationMs"`
	SoundOn           *bool  `json:"soundOn"`
}

// Merge overlays the present fields over the hard defaults, discarding
// invalid ones.
func (p SettingsPatch) Merge() Settings {
	out := DefaultSettings()
	if p.DefaultDurationMs != nil && *p.DefaultDurationMs >= MinCooldown.Milliseconds() {
		out.DefaultDurationMs = *p.DefaultDurationMs
	}
	if p.SoundOn != nil {
		out.SoundOn = *p.SoundOn
	}
	return out
}
