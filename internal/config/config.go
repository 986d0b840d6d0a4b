package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Airtable
	AirtableBaseURL string
	AirtablePAT     string
	AirtableBaseID  string

	CoursesTable          string
	CoursesView           string
	CoursesViewSmartlions string

	SessionsTable           string
	SessionsView            string
	SessionsViewSmartlions  string
	SessionsCourseLinkField string

	// SFTP (feed delivery)
	SFTPHost                  string
	SFTPPort                  int
	SFTPUser                  string
	SFTPPass                  string
	SFTPDir                   string
	SFTPInsecureIgnoreHostKey bool
}

// Load reads the configuration from the environment, after loading a local
// .env file when one exists (runs are usually started from a repo checkout).
func Load() Config {
	_ = godotenv.Load()

	return Config{
		// Airtable
		AirtableBaseURL: getenv("AIRTABLE_BASE_URL", "https://api.airtable.com/v0"),
		AirtablePAT:     os.Getenv("AIRTABLE_PAT"),
		AirtableBaseID:  os.Getenv("AIRTABLE_BASE_ID"),

		CoursesTable:          os.Getenv("AIRTABLE_TABLE_NAME"),
		CoursesView:           os.Getenv("AIRTABLE_VIEW_NAME"),
		CoursesViewSmartlions: os.Getenv("AIRTABLE_VIEW_NAME_SMARTLIONS"),

		SessionsTable:           os.Getenv("AIRTABLE_SESSIONS_TABLE_NAME"),
		SessionsView:            os.Getenv("AIRTABLE_SESSIONS_VIEW_NAME"),
		SessionsViewSmartlions:  os.Getenv("AIRTABLE_SESSIONS_VIEW_NAME_SMARTLIONS"),
		SessionsCourseLinkField: getenv("AIRTABLE_SESSIONS_COURSE_LINK_FIELD", "Course"),

		// SFTP
		SFTPHost:                  os.Getenv("SFTP_HOST"),
		SFTPPort:                  getenvInt("SFTP_PORT", 22),
		SFTPUser:                  os.Getenv("SFTP_USER"),
		SFTPPass:                  os.Getenv("SFTP_PASS"),
		SFTPDir:                   getenv("SFTP_DIR", "/"),
		SFTPInsecureIgnoreHostKey: getenvBool("SFTP_INSECURE_IGNORE_HOST_KEY", true),
	}
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvBool(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
