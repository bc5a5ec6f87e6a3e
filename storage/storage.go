package storage

import (
	"classboard/config"
	"log"
	"mime/multipart"
)

// FileStore abstracts where uploaded lesson and submission files live.
// Remove treats an already-missing file as success.
type FileStore interface {
	Save(file *multipart.FileHeader) (string, error)
	Remove(path string) error
}

// Files is the global file store instance
var Files FileStore

// Init builds the configured store: a remote HTTP file service when
// FILE_STORE=remote, the local uploads directory otherwise.
func Init() {
	if config.AppConfig.FileStore == "remote" {
		log.Println("Using remote file store at", config.AppConfig.FileStoreURL)
		Files = NewRemoteStore(config.AppConfig.FileStoreURL, config.AppConfig.FileStoreKey)
		return
	}
	Files = NewLocalStore(config.AppConfig.UploadDir)
}
