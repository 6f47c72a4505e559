package domain

const (
	// ConfigFileName is the name of the pipeline configuration file.
	ConfigFileName = "planar.yaml"

	// EdgeFileExt is the extension of edge-list files picked up by watch mode.
	EdgeFileExt = ".edges"

	// FingerprintVersion prefixes every digest so algorithm changes invalidate old entries.
	FingerprintVersion = "planar/v1"

	// DefaultCacheDir is where the disk backend keeps results, relative to the config root.
	DefaultCacheDir = ".planar/cache"

	// DefaultRedisPrefix namespaces result keys in an external store.
	DefaultRedisPrefix = "planar:result:"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)
