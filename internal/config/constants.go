package config

// Application constants
const (
	AppName    = "Salesboard"
	AppVersion = "1.2.0"

	// DefaultBucket holds the ERP exports.
	DefaultBucket = "chodang"

	// DefaultQuantityColumn is the average-quantity header in the ERP exports.
	DefaultQuantityColumn = "평균매출수량"
)
