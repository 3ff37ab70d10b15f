// Package configs manages user configuration and process settings for kapu.
//
// # Settings
//
// Global settings are initialized at startup:
//   - UserKapuSettings: paths to the config directory, the keys directory
//     and the audit log
//
// Tests replace UserKapuSettings with temporary directories.
//
// # User Configuration
//
// The user config lives at <config dir>/config.toml and stores defaults the
// CLI applies when a flag is absent:
//
//	[defaults]
//	cipher = "rabin"
//
//	[rabin]
//	prime_min = 300
//	prime_max = 400
//
//	[security]
//	max_attempts = 0
//	expiry_hours = 0
//
// Zero security values mean "not set". A missing file yields DefaultUserConfig.
package configs
