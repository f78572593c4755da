package platform

// NewPlatform creates the platform implementation.
// Process groups and signals are POSIX only, so there is a single one.
func NewPlatform() Platform {
	return &UnixPlatform{}
}
