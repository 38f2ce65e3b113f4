package util

const DateFormat = "2006-01-02"

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
	StorageS3    = "s3"
)

const MimeJPEG = "image/jpeg"

// Storage key prefixes for normalized images.
const (
	ScopeProfilePicture = "profile/picture"
	ScopeProfileSample  = "profile/sample"
	ScopeAdImage        = "register-ad"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 1000
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)
