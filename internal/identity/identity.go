// Package identity holds the outbound request fingerprints rotated by the
// fetch pipeline to avoid naive per-identity blocking.
package identity

// Profile is a fixed (User-Agent, Accept-Language) pair.
type Profile struct {
	UserAgent      string
	AcceptLanguage string
}

// Rotation is the fixed set of browser-like profiles. Attempt i uses
// profile i modulo the rotation size.
var Rotation = []Profile{
	{
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
			"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120 Safari/537.36",
		AcceptLanguage: "en-US,en;q=0.9",
	},
	{
		UserAgent: "Mozilla/5.0 (X11; Linux x86_64) " +
			"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120 Safari/537.36",
		AcceptLanguage: "en-US,en;q=0.9",
	},
	{
		UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
			"AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.0 Safari/605.1.15",
		AcceptLanguage: "en-US,en;q=0.9",
	},
}

// ForAttempt returns the profile for a zero-based attempt index.
func ForAttempt(i int) Profile {
	if i < 0 {
		i = 0
	}
	return Rotation[i%len(Rotation)]
}
