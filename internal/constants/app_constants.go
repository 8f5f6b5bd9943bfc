package constants

import "time"

const (
	// Application-level constants
	DefaultParserVer = "eino-pdf-1.0"

	// Processing status values for resume submissions
	StatusPendingParsing   = "PENDING_PARSING"
	StatusParsing          = "PARSING"
	StatusExtracting       = "EXTRACTING"
	StatusIndexing         = "INDEXING"
	StatusCompleted        = "COMPLETED"
	StatusParseFailed      = "PARSE_FAILED"
	StatusExtractionFailed = "EXTRACTION_FAILED"

	// MD5记录默认过期时间
	DefaultMD5Expire = 365 * 24 * time.Hour
)
