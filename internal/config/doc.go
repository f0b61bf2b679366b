// Package config loads the launcher settings from an INI file against an
// explicit schema: defaults are seeded first, file values override them,
// and required keys are verified once at load time. Values may reference
// other keys with %(key)s interpolation; raw accessors suppress it for
// values that carry their own placeholders.
package config
