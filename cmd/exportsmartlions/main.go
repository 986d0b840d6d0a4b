package main

import (
	"context"
	"flag"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"

	"course-feeds/internal/config"
	"course-feeds/internal/export"
	"course-feeds/internal/mappers"
	"course-feeds/internal/providers/airtable"
	"course-feeds/internal/sftpclient"
)

func main() {
	var (
		outPath = flag.String("out", "data/smartlions.json", "output json path (Smartlions feed)")
		view    = flag.String("view", "", "override AIRTABLE_VIEW_NAME_SMARTLIONS for this run")
		upload  = flag.Bool("upload", false, "upload the feed to SFTP after writing it")
	)
	flag.Parse()

	rootCtx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	cfg := config.Load()

	if missing := missingEnv(cfg); len(missing) > 0 {
		log.Fatalf("missing env: %s", strings.Join(missing, ", "))
	}

	start := time.Now()
	defer func() {
		log.Printf("job finished in %s", time.Since(start))
	}()

	client := airtable.New(cfg.AirtableBaseURL, cfg.AirtableBaseID, cfg.AirtablePAT)

	coursesView := cfg.CoursesViewSmartlions
	if *view != "" {
		coursesView = *view
	}

	courses, err := client.FetchAll(rootCtx, cfg.CoursesTable, coursesView)
	if err != nil {
		log.Fatal(err)
	}

	// sessions view is optional; empty means all sessions
	sessions, err := client.FetchAll(rootCtx, cfg.SessionsTable, cfg.SessionsViewSmartlions)
	if err != nil {
		log.Fatal(err)
	}

	feed := mappers.BuildSmartlionsFeed(courses, sessions, cfg.SessionsCourseLinkField)

	if err := export.WriteFeed(*outPath, feed); err != nil {
		log.Fatal(err)
	}
	color.Green("Exported %d records to %s", len(feed), *outPath)

	if *upload {
		upCfg := sftpclient.Config{
			Host:                  cfg.SFTPHost,
			Port:                  cfg.SFTPPort,
			User:                  cfg.SFTPUser,
			Pass:                  cfg.SFTPPass,
			RemoteDir:             cfg.SFTPDir,
			InsecureIgnoreHostKey: cfg.SFTPInsecureIgnoreHostKey,
		}

		upCtx, upCancel := context.WithTimeout(rootCtx, 5*time.Minute)
		defer upCancel()

		remoteName := filepath.Base(*outPath)
		if err := sftpclient.UploadFile(upCtx, upCfg, *outPath, remoteName); err != nil {
			log.Fatal(err)
		}
		color.Green("Uploaded to sftp://%s:%d%s/%s", upCfg.Host, upCfg.Port, upCfg.RemoteDir, remoteName)
	}
}

func missingEnv(cfg config.Config) []string {
	var missing []string
	if cfg.AirtablePAT == "" {
		missing = append(missing, "AIRTABLE_PAT")
	}
	if cfg.AirtableBaseID == "" {
		missing = append(missing, "AIRTABLE_BASE_ID")
	}
	if cfg.CoursesTable == "" {
		missing = append(missing, "AIRTABLE_TABLE_NAME")
	}
	if cfg.SessionsTable == "" {
		missing = append(missing, "AIRTABLE_SESSIONS_TABLE_NAME")
	}
	if cfg.SessionsCourseLinkField == "" {
		missing = append(missing, "AIRTABLE_SESSIONS_COURSE_LINK_FIELD")
	}
	return missing
}
