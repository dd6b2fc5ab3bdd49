// Package config loads the Salesboard configuration.
//
// # Configuration Sources
//
// Values are layered in increasing order of precedence:
//
//  1. Default() values
//  2. An optional YAML file (SALESBOARD_CONFIG_FILE, config.yaml or configs/config.yaml)
//  3. An optional .env file in the working directory (never overrides the real environment)
//  4. SALESBOARD_* environment variables
//
// # Environment Variables
//
//	SALESBOARD_SERVER_PORT=8080
//	SALESBOARD_STORAGE_BACKEND=s3
//	SALESBOARD_STORAGE_BUCKET=chodang
//	SALESBOARD_STORAGE_PRODUCTS=550:erp/550.csv,콩국물:erp/soup.csv
//	SALESBOARD_STORAGE_ENCODING=euc-kr
//	SALESBOARD_REPORT_WINDOW_DAYS=5
//	SALESBOARD_LOGGING_LEVEL=debug
//
// Storage credentials are not part of this configuration. The S3 backend uses
// the AWS default chain (AWS_ACCESS_KEY_ID or AWS_ACCESS_KEY, shared config,
// instance roles); the Google backends use application default credentials
// unless storage.credentials_file is set.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
