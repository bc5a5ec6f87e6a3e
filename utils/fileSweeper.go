package utils

import (
	"classboard/config"
	"classboard/database"
	"classboard/models"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
)

// logSweeper logs sweeper events with timestamp
func logSweeper(message string) {
	log.Printf("[FILE-SWEEPER %s] %s", time.Now().Format(time.RFC3339), message)
}

// StartFileSweeper schedules a nightly sweep of the uploads directory for
// files no lesson or submission references anymore. Deletion removes files
// only after commit, so a crash in that window leaves orphans; the sweeper
// bounds that leak. Only meaningful for the local store.
func StartFileSweeper() *cron.Cron {
	if config.AppConfig.FileStore != "local" {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc("0 3 * * *", sweepOrphanFiles); err != nil {
		logSweeper("Error scheduling sweep: " + err.Error())
		return nil
	}
	c.Start()
	logSweeper("Scheduled nightly orphan sweep of " + config.AppConfig.UploadDir)
	return c
}

// sweepOrphanFiles removes unreferenced files older than 24h. The age guard
// keeps the sweep from racing an upload whose row is not committed yet.
func sweepOrphanFiles() {
	db := database.Database.Db
	dir := config.AppConfig.UploadDir

	referenced := make(map[string]bool)

	var lessonPaths []string
	if err := db.Model(&models.Lesson{}).Where("file_path <> ''").Pluck("file_path", &lessonPaths).Error; err != nil {
		logSweeper("Error fetching lesson file paths: " + err.Error())
		return
	}
	var submissionPaths []string
	if err := db.Model(&models.Submission{}).Where("file_path <> ''").Pluck("file_path", &submissionPaths).Error; err != nil {
		logSweeper("Error fetching submission file paths: " + err.Error())
		return
	}
	for _, p := range lessonPaths {
		referenced[p] = true
	}
	for _, p := range submissionPaths {
		referenced[p] = true
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			logSweeper("Error reading upload dir: " + err.Error())
		}
		return
	}

	removed := 0
	cutoff := time.Now().Add(-24 * time.Hour)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if referenced[path] {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			logSweeper("Error removing orphan " + path + ": " + err.Error())
			continue
		}
		removed++
	}

	if removed > 0 {
		logSweeper(fmt.Sprintf("Removed %d orphan files", removed))
	}
}
